package enums

import "fmt"

// ItemStatus is the lifecycle state of a wine item. Everything outside
// `active` is inert for reminders.
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusSold     ItemStatus = "sold"
	ItemStatusGifted   ItemStatus = "gifted"
	ItemStatusConsumed ItemStatus = "consumed"
)

var validItemStatuses = []ItemStatus{
	ItemStatusActive,
	ItemStatusSold,
	ItemStatusGifted,
	ItemStatusConsumed,
}

// IsValid reports whether the value matches the canonical item status enum.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemStatus converts the raw string to ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
