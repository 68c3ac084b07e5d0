package enums

import "fmt"

// NotificationKind labels rows in the notification delivery log.
type NotificationKind string

const (
	NotificationKindDrinkByDigest  NotificationKind = "drinkby_digest"
	NotificationKindOpenedReminder NotificationKind = "opened_reminder"
	NotificationKindSpaceWarning   NotificationKind = "space_warning"
)

var validNotificationKinds = []NotificationKind{
	NotificationKindDrinkByDigest,
	NotificationKindOpenedReminder,
	NotificationKindSpaceWarning,
}

// IsValid reports whether the value matches the canonical notification kind enum.
func (n NotificationKind) IsValid() bool {
	for _, candidate := range validNotificationKinds {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationKind converts the raw string to NotificationKind.
func ParseNotificationKind(value string) (NotificationKind, error) {
	for _, candidate := range validNotificationKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification kind %q", value)
}
