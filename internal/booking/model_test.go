package booking

import (
	"regexp"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"partial overlap", date(2026, 1, 1), date(2026, 1, 5), date(2026, 1, 4), date(2026, 1, 8), true},
		{"disjoint after", date(2026, 1, 1), date(2026, 1, 5), date(2026, 1, 6), date(2026, 1, 8), false},
		{"touching endpoints", date(2026, 1, 1), date(2026, 1, 5), date(2026, 1, 5), date(2026, 1, 8), true},
		{"contained", date(2026, 1, 1), date(2026, 1, 10), date(2026, 1, 3), date(2026, 1, 4), true},
		{"disjoint before", date(2026, 1, 6), date(2026, 1, 8), date(2026, 1, 1), date(2026, 1, 5), false},
	}
	for _, c := range cases {
		if got := Overlaps(c.aStart, c.aEnd, c.bStart, c.bEnd); got != c.want {
			t.Errorf("%s: Overlaps = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestTotalDaysBetween(t *testing.T) {
	cases := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"same day", date(2026, 1, 1), date(2026, 1, 1), 1},
		{"two full days", date(2026, 1, 1), date(2026, 1, 3), 2},
		{"partial day rounds up", date(2026, 1, 1), date(2026, 1, 2).Add(6 * time.Hour), 2},
		{"end before start", date(2026, 1, 5), date(2026, 1, 1), 0},
	}
	for _, c := range cases {
		if got := TotalDaysBetween(c.start, c.end); got != c.want {
			t.Errorf("%s: TotalDaysBetween = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestNewBookingNo(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 30, 0, 123456789, time.UTC)
	no := NewBookingNo(now)
	matched, err := regexp.MatchString(`^BK-202603-\d{6}$`, no)
	if err != nil {
		t.Fatalf("regexp: %v", err)
	}
	if !matched {
		t.Fatalf("booking no %q does not match BK-YYYYMM-XXXXXX", no)
	}
}
