package utils

import (
	"testing"
	"time"
)

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, time.March, 9, 15, 4, 5, 0, time.UTC)
	if got := FormatDate(ts); got != "2026-03-09" {
		t.Errorf("FormatDate() = %q, want %q", got, "2026-03-09")
	}
}

func TestFormatParseTimeRoundTrip(t *testing.T) {
	ts := time.Date(2026, time.March, 9, 15, 4, 5, 0, time.UTC)
	formatted := FormatTime(ts)

	parsed, err := ParseTime(formatted)
	if err != nil {
		t.Fatalf("ParseTime(%q) returned error: %v", formatted, err)
	}
	if !parsed.Equal(ts) {
		t.Errorf("round trip mismatch: got %v, want %v", parsed, ts)
	}
}

func TestCurrentDate(t *testing.T) {
	got := CurrentDate()
	if _, err := time.Parse("2006-01-02", got); err != nil {
		t.Errorf("CurrentDate() = %q is not an ISO date: %v", got, err)
	}
}
