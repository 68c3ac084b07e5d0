// Package shelflife resolves how long an opened bottle stays in good
// condition, and from that the drink-by date stamped at open time.
package shelflife

import (
	"strings"
	"time"

	"github.com/cellarline/cellarline-backend/pkg/enums"
)

// Fallback day counts used when no table entry matches the category.
const (
	AgingFallbackDays     = 730
	ImmediateFallbackDays = 3
)

type entry struct {
	key  string
	days int
}

// table maps category labels to post-opening shelf life in days. Order is
// significant: substring matching scans entries top to bottom and the first
// hit wins, so overlapping keys resolve the same way on every run.
var table = []entry{
	{"beer", 1},
	{"sparkling wine", 2},
	{"champagne", 2},
	{"white wine", 4},
	{"rosé", 4},
	{"red wine", 5},
	{"sake", 7},
	{"dessert wine", 14},
	{"botrytized wine", 14},
	{"port", 30},
	{"sherry", 30},
	{"whiskey", 730},
	{"brandy", 730},
	{"vodka", 730},
	{"rum", 730},
	{"gin", 730},
	{"sorghum liquor", 730},
	{"plum wine", 365},
}

// Days resolves the shelf life in days for a category label.
//
// Resolution is ordered: exact match on the trimmed label, then the first
// table key contained in the label, then a preservation-mode fallback.
// Unknown categories are never an error; anything that is not explicitly
// aging falls back to the short window.
func Days(category string, mode enums.PreservationMode) int {
	label := strings.TrimSpace(category)

	if label != "" {
		for _, e := range table {
			if e.key == label {
				return e.days
			}
		}
		for _, e := range table {
			if strings.Contains(label, e.key) {
				return e.days
			}
		}
	}

	if mode == enums.PreservationModeAging {
		return AgingFallbackDays
	}
	return ImmediateFallbackDays
}

// DrinkBy computes the drink-by date for a bottle opened on openedOn.
// The addition is in calendar days; the result carries no time of day.
func DrinkBy(category string, mode enums.PreservationMode, openedOn time.Time) time.Time {
	y, m, d := openedOn.Date()
	opened := time.Date(y, m, d, 0, 0, 0, 0, openedOn.Location())
	return opened.AddDate(0, 0, Days(category, mode))
}
