package pipeline

import (
	"strconv"
	"strings"
	"time"
)

// isoLayouts are tried in order when a property is not an epoch number.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// coerceToUTC parses an epoch (seconds or milliseconds) or ISO-8601
// string into a UTC time. Naive timestamps are assumed to be UTC.
// Returns the zero time when nothing parses; callers treat that as
// "no date" rather than an error.
func coerceToUTC(value string) time.Time {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}
	}
	if num, err := strconv.ParseFloat(s, 64); err == nil && isDigits(s) {
		if num >= 1e12 {
			return time.UnixMilli(int64(num)).UTC()
		}
		return time.Unix(int64(num), 0).UTC()
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// LocalDate converts an epoch or ISO property to a date in loc,
// truncated to midnight. HubSpot date properties are epoch
// milliseconds, so bare digit strings are always read as ms here.
func LocalDate(value string, loc *time.Location) time.Time {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}
	}
	var t time.Time
	if isDigits(s) {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}
		}
		t = time.UnixMilli(ms)
	} else {
		t = coerceToUTC(s)
		if t.IsZero() {
			return time.Time{}
		}
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// LocalTime converts an epoch or ISO property to a local time-of-day
// string like "09:30 AM". Empty on failure.
func LocalTime(value string, loc *time.Location) string {
	t := coerceToUTC(value)
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format("03:04 PM")
}

// slotTimeLayouts cover the common shapes of the dedicated
// booking-time property.
var slotTimeLayouts = []string{"15:04", "3:04 PM", "15:04:05"}

// SlotTimeProp normalizes the dedicated booking-time property to
// "HH:MM" 24-hour form. Epoch values are converted to local time;
// unrecognized values pass through unchanged.
func SlotTimeProp(value string, loc *time.Location) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return ""
	}
	if isDigits(s) && len(s) >= 10 {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).In(loc).Format("15:04")
		}
	}
	for _, layout := range slotTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	if t := coerceToUTC(s); !t.IsZero() {
		return t.In(loc).Format("15:04")
	}
	return s
}

// DayBoundsEpochMS returns the UTC epoch-millisecond bounds of the
// local day containing d: local midnight through 23:59:59.999.
func DayBoundsEpochMS(d time.Time, loc *time.Location) (int64, int64) {
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24*time.Hour - time.Millisecond)
	return start.UnixMilli(), end.UnixMilli()
}

// FormatDateAU renders a date as "02 Jan 2006". Empty for zero dates.
func FormatDateAU(d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("02 Jan 2006")
}

// RelDate phrases a date relative to today for SMS copy.
func RelDate(d, today time.Time) string {
	if d.IsZero() {
		return ""
	}
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	diff := int(day(d).Sub(day(today)).Hours() / 24)
	switch {
	case diff == 0:
		return "today"
	case diff == 1:
		return "tomorrow"
	case diff == -1:
		return "yesterday"
	case diff > 1 && diff <= 7:
		return "in a few days"
	case diff >= -7 && diff < -1:
		return "a few days ago"
	case diff >= 8 && diff <= 14:
		return "next week"
	case diff >= -14 && diff <= -8:
		return "last week"
	}
	return d.Format("Jan 02")
}

// WeekStart returns the Monday beginning the week containing d.
func WeekStart(d time.Time) time.Time {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
