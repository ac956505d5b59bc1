package event

import (
	"time"
)

// Time format constants for the wire envelope.
const (
	// TimeFormat is the standard envelope time format (RFC3339).
	TimeFormat = time.RFC3339

	// TimeFormatNano is the RFC3339 format with nanosecond precision.
	TimeFormatNano = time.RFC3339Nano
)

// ParseTime parses a timestamp string in various formats. Producers emit
// RFC3339 with a UTC offset, but older publishers omitted the offset or sent
// date-only values, so those are tolerated.
func ParseTime(s string) (time.Time, error) {
	// Try RFC3339Nano first
	if t, err := time.Parse(TimeFormatNano, s); err == nil {
		return t, nil
	}

	// Try RFC3339
	if t, err := time.Parse(TimeFormat, s); err == nil {
		return t, nil
	}

	// Try additional formats
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, &time.ParseError{
		Layout:     TimeFormat,
		Value:      s,
		LayoutElem: "",
		ValueElem:  "",
		Message:    "cannot parse as envelope time",
	}
}

// FormatTime formats a time value for the wire envelope.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}
