package enums

import "fmt"

// RemainingAmount is the coarse fill level of an opened bottle.
type RemainingAmount string

const (
	RemainingFull          RemainingAmount = "full"
	RemainingThreeQuarters RemainingAmount = "3/4"
	RemainingHalf          RemainingAmount = "1/2"
	RemainingQuarter       RemainingAmount = "1/4"
	RemainingEmpty         RemainingAmount = "empty"
)

var validRemainingAmounts = []RemainingAmount{
	RemainingFull,
	RemainingThreeQuarters,
	RemainingHalf,
	RemainingQuarter,
	RemainingEmpty,
}

// IsValid reports whether the value matches the canonical remaining amount enum.
func (r RemainingAmount) IsValid() bool {
	for _, candidate := range validRemainingAmounts {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRemainingAmount converts the raw string to RemainingAmount.
func ParseRemainingAmount(value string) (RemainingAmount, error) {
	for _, candidate := range validRemainingAmounts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid remaining amount %q", value)
}
