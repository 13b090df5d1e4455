package payment

import (
	"fmt"
	"strings"
	"time"
)

// ISO8601 is the canonical timestamp layout: UTC with millisecond precision.
const ISO8601 = "2006-01-02T15:04:05.000Z07:00"

var acceptedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// FormatTime renders t in the canonical layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(ISO8601)
}

// FormatUnix renders epoch seconds in the canonical layout. Zero yields "".
func FormatUnix(sec int64) string {
	if sec <= 0 {
		return ""
	}
	return FormatTime(time.Unix(sec, 0))
}

// ParseTimestamp accepts full ISO-8601 date-times and plain dates.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: not ISO-8601", s)
}

// NormalizeTimestamp re-renders an ISO-8601 string in the canonical layout,
// returning "" for empty or unparseable input.
func NormalizeTimestamp(s string) string {
	if s == "" {
		return ""
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		return ""
	}
	return FormatTime(t)
}
