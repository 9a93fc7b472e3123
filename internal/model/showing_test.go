package model

import (
	"testing"
	"time"
)

func TestShowingOverlaps(t *testing.T) {
	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time {
		return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	}
	s := &Showing{StartTime: at(10, 0), EndTime: at(12, 0)}

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"starts at the end", at(12, 0), at(13, 0), false},
		{"ends at the start", at(9, 0), at(10, 0), false},
		{"overlaps the tail", at(11, 59), at(12, 30), true},
		{"overlaps the head", at(9, 30), at(10, 1), true},
		{"contained", at(10, 30), at(11, 0), true},
		{"contains", at(9, 0), at(13, 0), true},
		{"identical", at(10, 0), at(12, 0), true},
		{"well before", at(7, 0), at(8, 0), false},
		{"well after", at(14, 0), at(15, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Overlaps(tc.start, tc.end); got != tc.want {
				t.Fatalf("Overlaps(%s, %s) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}
