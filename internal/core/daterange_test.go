package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb1 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		start     string
		end       string
		wantFrom  time.Time
		wantUntil time.Time
		wantErr   bool
	}{
		{name: "empty", wantFrom: time.Time{}, wantUntil: time.Time{}},
		{name: "calendar days", start: "2024-01-01", end: "2024-01-31", wantFrom: jan1, wantUntil: feb1},
		{name: "start only", start: "2024-01-01", wantFrom: jan1},
		{name: "end only", end: "2024-01-31", wantUntil: feb1},
		{
			name:      "timestamps",
			start:     "2024-01-01T00:00:00.000Z",
			end:       "2024-01-31T23:59:59Z",
			wantFrom:  jan1,
			wantUntil: time.Date(2024, 1, 31, 23, 59, 59, 1, time.UTC),
		},
		{name: "same day", start: "2024-01-31", end: "2024-01-31", wantFrom: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), wantUntil: feb1},
		{name: "garbage start", start: "yesterday", wantErr: true},
		{name: "garbage end", end: "2024-13-45", wantErr: true},
		{name: "zero time start", start: "0001-01-01", wantErr: true},
		{name: "zero time timestamp start", start: "0001-01-01T00:00:00Z", wantErr: true},
		{name: "end before start", start: "2024-02-01", end: "2024-01-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseDateRange(tt.start, tt.end)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRange) {
					t.Fatalf("expected ErrInvalidRange, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !r.From.Equal(tt.wantFrom) || !r.Until.Equal(tt.wantUntil) {
				t.Fatalf("got [%v, %v), want [%v, %v)", r.From, r.Until, tt.wantFrom, tt.wantUntil)
			}
		})
	}
}

func TestDateRangeContains(t *testing.T) {
	r, err := ParseDateRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatal(err)
	}
	in := []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
	}
	out := []time.Time{
		time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, ts := range in {
		if !r.Contains(ts) {
			t.Errorf("expected %v inside range", ts)
		}
	}
	for _, ts := range out {
		if r.Contains(ts) {
			t.Errorf("expected %v outside range", ts)
		}
	}
	if !(DateRange{}).Contains(time.Unix(0, 0)) {
		t.Error("zero range is unbounded")
	}
	if !(DateRange{}).IsZero() || Since(in[0]).IsZero() {
		t.Error("IsZero mismatch")
	}
}

func TestDayOf(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	ts := time.Date(2024, 1, 6, 1, 0, 0, 0, loc)
	if got := DayOf(ts); got != "2024-01-05" {
		t.Fatalf("DayOf = %s, want 2024-01-05", got)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), false},
		{" 2024-03-05T10:30:00+02:00 ", time.Date(2024, 3, 5, 8, 30, 0, 0, time.UTC), false},
		{"05/03/2024", time.Time{}, true},
		{"", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDate) {
				t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDate", tt.in, err)
			}
			continue
		}
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
