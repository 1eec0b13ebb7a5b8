package time_parser

import (
	"fmt"
	"strings"
	"time"
)

const isoLayout = "2006-01-02T15:04:05"

// FormatISOTimestamp renders t as a naive ISO-8601 string followed by a
// literal "Z". Fractional seconds are written with microsecond precision
// and omitted entirely when zero. The "Z" is appended regardless of t's
// location, so callers pass a UTC clock reading.
func FormatISOTimestamp(t time.Time) string {
	base := t.Format(isoLayout)

	micros := t.Nanosecond() / int(time.Microsecond)
	if micros == 0 {
		return base + "Z"
	}

	return fmt.Sprintf("%s.%06dZ", base, micros)
}

// ParseTimestamp converts an ISO string into time.Time in UTC
// Supported formats:
//   - RFC3339, RFC3339Nano
//   - "2006-01-02T15:04:05Z", "2006-01-02T15:04:05" (treated as UTC)
//   - "2006-01-02 15:04:05"
//   - Returns error for empty strings or unsupported formats
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}

	formats := []string{
		time.RFC3339,           // "2006-01-02T15:04:05Z07:00"
		time.RFC3339Nano,       // "2006-01-02T15:04:05.999999999Z07:00"
		"2006-01-02T15:04:05Z", // ISO with Z suffix
		isoLayout,              // ISO without timezone
		"2006-01-02 15:04:05",  // Space-separated format
	}

	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported timestamp format: %q", value)
}
