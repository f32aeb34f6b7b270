package model

import "time"

// Associate is one sales rep from the roster.
type Associate struct {
	Name  string
	Email string
	// Days holds availability keyed by weekday, Monday..Sunday.
	Days map[time.Weekday]bool
}

// AvailableOn reports whether the associate works on the given date.
func (a Associate) AvailableOn(date time.Time) bool {
	return a.Days[date.Weekday()]
}
