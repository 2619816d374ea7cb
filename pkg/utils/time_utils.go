package utils

import (
	"time"
)

// FormatTime formats time in ISO 8601 format
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseTime parses ISO 8601 formatted time string
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(time.RFC3339, timeStr)
}

// FormatDate formats a time as an ISO calendar date (yyyy-mm-dd), the form
// used when auto-filling date fields
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// CurrentDate returns today's date in ISO form
func CurrentDate() string {
	return FormatDate(time.Now())
}
