package utils

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, IST)
}

func TestNearestWeekday(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"saturday shifts to friday", date(2025, time.June, 28), date(2025, time.June, 27)},
		{"sunday shifts to friday", date(2025, time.June, 29), date(2025, time.June, 27)},
		{"monday unchanged", date(2025, time.June, 30), date(2025, time.June, 30)},
		{"wednesday unchanged", date(2025, time.June, 25), date(2025, time.June, 25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NearestWeekday(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("NearestWeekday(%s) = %s, want %s",
					FormatDate(tt.in), FormatDate(got), FormatDate(tt.want))
			}
		})
	}
}

func TestPrevMonthEnd(t *testing.T) {
	got := PrevMonthEnd(date(2025, time.March, 15))
	want := date(2025, time.February, 28)
	if !got.Equal(want) {
		t.Errorf("PrevMonthEnd = %s, want %s", FormatDate(got), FormatDate(want))
	}

	// Year boundary.
	got = PrevMonthEnd(date(2025, time.January, 2))
	want = date(2024, time.December, 31)
	if !got.Equal(want) {
		t.Errorf("PrevMonthEnd across year = %s, want %s", FormatDate(got), FormatDate(want))
	}
}

func TestMonthEnds(t *testing.T) {
	from := date(2025, time.January, 1)
	to := date(2025, time.April, 30)

	got := MonthEnds(from, to)
	if len(got) != 4 {
		t.Fatalf("expected 4 month ends, got %d: %v", len(got), got)
	}

	// 2025-03-31 is a Monday, stays. 2025-06-28/29 style weekend shifts
	// are covered by the February check: 2025-02-28 is a Friday.
	want := []time.Time{
		date(2025, time.January, 31),  // Friday
		date(2025, time.February, 28), // Friday
		date(2025, time.March, 31),    // Monday
		date(2025, time.April, 30),    // Wednesday
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("MonthEnds[%d] = %s, want %s", i, FormatDate(got[i]), FormatDate(want[i]))
		}
	}
}

func TestMonthEndsWeekendShift(t *testing.T) {
	// August 2025 ends on a Sunday; expect the preceding Friday.
	got := MonthEnds(date(2025, time.August, 1), date(2025, time.August, 31))
	if len(got) != 1 {
		t.Fatalf("expected 1 month end, got %d", len(got))
	}
	want := date(2025, time.August, 29) // Friday
	if !got[0].Equal(want) {
		t.Errorf("MonthEnds = %s, want %s", FormatDate(got[0]), FormatDate(want))
	}
}

func TestMonthEndsEmptyRange(t *testing.T) {
	if got := MonthEnds(date(2025, time.May, 1), date(2025, time.April, 1)); got != nil {
		t.Errorf("expected nil for inverted range, got %v", got)
	}
}

func TestLookbackWindow(t *testing.T) {
	asOf := date(2025, time.June, 28)
	start, end := LookbackWindow(asOf, 12)

	wantEnd := date(2025, time.May, 30) // May 31 is a Saturday
	wantStart := date(2024, time.May, 1)
	if !end.Equal(wantEnd) {
		t.Errorf("window end = %s, want %s", FormatDate(end), FormatDate(wantEnd))
	}
	if !start.Equal(wantStart) {
		t.Errorf("window start = %s, want %s", FormatDate(start), FormatDate(wantStart))
	}
}

func TestParseDateIST(t *testing.T) {
	got, err := ParseDateIST("2025-06-28")
	if err != nil {
		t.Fatalf("ParseDateIST: %v", err)
	}
	if got.Hour() != 0 || got.Location() != IST {
		t.Errorf("expected midnight IST, got %v", got)
	}

	if _, err := ParseDateIST("28/06/2025"); err == nil {
		t.Error("expected error for malformed date")
	}
}
