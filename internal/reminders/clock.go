package reminders

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NotifyTime is a preferred time of day in HH:MM form.
type NotifyTime struct {
	Hour   int
	Minute int
}

// ParseNotifyTime parses an "HH:MM" preference value.
func ParseNotifyTime(value string) (NotifyTime, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return NotifyTime{}, fmt.Errorf("invalid notify time %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return NotifyTime{}, fmt.Errorf("invalid notify hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return NotifyTime{}, fmt.Errorf("invalid notify minute in %q", value)
	}
	return NotifyTime{Hour: hour, Minute: minute}, nil
}

// On pins the notify time onto the calendar day of t in t's location.
func (n NotifyTime) On(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, n.Hour, n.Minute, 0, 0, t.Location())
}

// Minutes returns the offset from midnight in minutes.
func (n NotifyTime) Minutes() int {
	return n.Hour*60 + n.Minute
}

// midnight truncates t to the start of its calendar day in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DaysRemaining counts whole calendar days from now's date to the drink-by
// date, both interpreted in the reference timezone. Past dates yield negative
// values.
func DaysRemaining(drinkBy time.Time, now time.Time, loc *time.Location) int {
	dy, dm, dd := drinkBy.Date()
	target := time.Date(dy, dm, dd, 0, 0, 0, 0, loc)
	today := midnight(now, loc)
	return int(target.Sub(today) / (24 * time.Hour))
}

// WithinTolerance reports whether now's local time of day is within tol of
// the preferred notify time.
func WithinTolerance(now time.Time, pref NotifyTime, tol time.Duration, loc *time.Location) bool {
	local := now.In(loc)
	nowMinutes := local.Hour()*60 + local.Minute()
	diff := nowMinutes - pref.Minutes()
	if diff < 0 {
		diff = -diff
	}
	return time.Duration(diff)*time.Minute <= tol
}
