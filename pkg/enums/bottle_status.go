package enums

import "fmt"

// BottleStatus tracks whether an item has been opened.
type BottleStatus string

const (
	BottleStatusUnopened BottleStatus = "unopened"
	BottleStatusOpened   BottleStatus = "opened"
)

var validBottleStatuses = []BottleStatus{
	BottleStatusUnopened,
	BottleStatusOpened,
}

// IsValid reports whether the value matches the canonical bottle status enum.
func (b BottleStatus) IsValid() bool {
	for _, candidate := range validBottleStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBottleStatus converts the raw string to BottleStatus.
func ParseBottleStatus(value string) (BottleStatus, error) {
	for _, candidate := range validBottleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bottle status %q", value)
}
