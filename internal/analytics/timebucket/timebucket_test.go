package timebucket

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestDayKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	late := time.Date(2025, 3, 1, 20, 30, 0, 0, loc)
	if got := DayKey(late); got != "2025-03-02" {
		t.Fatalf("expected UTC day 2025-03-02, got %s", got)
	}
	a := time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 3, 2, 23, 59, 59, 0, time.UTC)
	if DayKey(a) != DayKey(b) {
		t.Fatalf("same UTC day should share a key")
	}
}

func TestWeekKeyYearBoundaries(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{date(2024, time.December, 29), "2024-W52"},
		{date(2024, time.December, 30), "2025-W01"},
		{date(2024, time.December, 31), "2025-W01"},
		{date(2025, time.January, 1), "2025-W01"},
		{date(2025, time.January, 5), "2025-W01"},
		{date(2025, time.January, 6), "2025-W02"},
		{date(2020, time.December, 31), "2020-W53"},
		{date(2021, time.January, 3), "2020-W53"},
		{date(2021, time.January, 4), "2021-W01"},
		{date(2022, time.January, 1), "2021-W52"},
		{date(2023, time.January, 1), "2022-W52"},
		{date(2026, time.December, 31), "2026-W53"},
		{date(2027, time.January, 1), "2026-W53"},
		{date(2015, time.December, 31), "2015-W53"},
		{date(2016, time.January, 3), "2015-W53"},
	}
	for _, tc := range cases {
		if got := WeekKey(tc.in); got != tc.want {
			t.Fatalf("WeekKey(%s)=%s want %s", tc.in.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestWeekKeyMatchesStandardLibrary(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 500
	properties := gopter.NewProperties(params)

	properties.Property("iso week agrees with time.ISOWeek", prop.ForAll(
		func(offset int) bool {
			t := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
			year, week := t.ISOWeek()
			return WeekKey(t) == fmt.Sprintf("%d-W%02d", year, week)
		},
		gen.IntRange(0, 365*60),
	))

	properties.Property("week start is the monday of the same week", prop.ForAll(
		func(offset int) bool {
			t := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
			start, err := WeekStart(WeekKey(t))
			if err != nil {
				return false
			}
			return start.Weekday() == time.Monday && WeekKey(start) == WeekKey(t) &&
				!start.After(t) && t.Sub(start) < 7*24*time.Hour
		},
		gen.IntRange(0, 365*60),
	))

	properties.TestingRun(t)
}

func TestWeekStart(t *testing.T) {
	start, err := WeekStart("2025-W01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected week start %v", start)
	}
	if _, err := WeekStart("2025-01"); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := WeekStart("2025-W60"); err == nil {
		t.Fatal("expected range error")
	}
}

func TestDayRange(t *testing.T) {
	keys := DayRange(time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC), 4)
	want := []string{"2025-02-27", "2025-02-28", "2025-03-01", "2025-03-02"}
	if len(keys) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("key %d = %s want %s", i, keys[i], want[i])
		}
	}
	if got := DayRange(time.Now(), 0); len(got) != 0 {
		t.Fatalf("expected empty range, got %v", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, a.Add(36*time.Hour)); got != 1.5 {
		t.Fatalf("expected 1.5 days, got %f", got)
	}
}
