package models

import (
	"strings"
	"time"
)

// NotAvailable is rendered in place of a missing optional scalar.
const NotAvailable = "N/A"

// DayLayout is the calendar-day layout used by every date-only field.
const DayLayout = "2006-01-02"

func fillNA(fields ...*string) {
	for _, f := range fields {
		if strings.TrimSpace(*f) == "" {
			*f = NotAvailable
		}
	}
}

func clearNA(fields ...*string) {
	for _, f := range fields {
		if *f == NotAvailable {
			*f = ""
		}
	}
}

// dayOrNA reduces an ISO timestamp to its calendar day.
func dayOrNA(raw string) string {
	day, ok := ParseDay(raw)
	if !ok {
		return NotAvailable
	}
	return day.Format(DayLayout)
}

// ParseDay accepts either a bare calendar day or an RFC 3339 timestamp.
func ParseDay(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == NotAvailable {
		return time.Time{}, false
	}
	if t, err := time.Parse(DayLayout, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	if len(raw) >= len(DayLayout) {
		if t, err := time.Parse(DayLayout, raw[:len(DayLayout)]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Today returns the current calendar day in UTC.
func Today(now time.Time) string {
	return now.UTC().Format(DayLayout)
}
