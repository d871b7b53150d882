package mcp

import (
	"testing"
	"time"
)

// TestParseAsOfDefaults verifies an empty as_of falls back to the current
// time.
func TestParseAsOfDefaults(t *testing.T) {
	before := time.Now().UTC()
	got, err := parseAsOf("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Before(before) || got.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("parseAsOf(\"\") = %v, want roughly now", got)
	}
}

// TestParseAsOfFormats verifies both accepted date formats parse.
func TestParseAsOfFormats(t *testing.T) {
	got, err := parseAsOf("2025-01-06")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2025 || got.Month() != 1 || got.Day() != 6 {
		t.Errorf("parseAsOf date = %v, want 2025-01-06", got)
	}

	got, err = parseAsOf("2025-01-06T15:30:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 15 || got.Minute() != 30 {
		t.Errorf("parseAsOf time = %v, want 15:30", got)
	}

	if _, err := parseAsOf("not-a-date"); err == nil {
		t.Error("invalid date accepted")
	}
}
