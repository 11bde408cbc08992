// Package timebucket maps timestamps onto UTC day keys and ISO-8601 week keys.
package timebucket

import (
	"fmt"
	"math"
	"time"
)

const (
	dayLayout = "2006-01-02"
	day       = 24 * time.Hour
)

// DayKey formats the UTC calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ISOWeek returns the ISO year and week of t in UTC. The year is taken from the
// Thursday of t's week, so late-December dates can belong to week 1 of the next year.
func ISOWeek(t time.Time) (year, week int) {
	date := StartOfDay(t)
	// Monday=1 ... Sunday=7
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	thursday := date.AddDate(0, 0, 4-weekday)
	year = thursday.Year()
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := thursday.Sub(yearStart).Hours() / 24
	week = int(math.Ceil((days + 1) / 7))
	return year, week
}

// WeekKey formats the ISO week of t as "{isoYear}-W{week:02d}".
func WeekKey(t time.Time) string {
	year, week := ISOWeek(t)
	return fmt.Sprintf("%d-W%02d", year, week)
}

// WeekStart resolves a week key back to the Monday that opens it.
func WeekStart(key string) (time.Time, error) {
	var year, week int
	if _, err := fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
		return time.Time{}, fmt.Errorf("invalid week key %q: %w", key, err)
	}
	if week < 1 || week > 53 {
		return time.Time{}, fmt.Errorf("invalid week key %q: week out of range", key)
	}
	// January 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := jan4.AddDate(0, 0, 1-weekday)
	return monday.AddDate(0, 0, (week-1)*7), nil
}

// DayRange returns the n consecutive day keys ending with the day of end, oldest first.
func DayRange(end time.Time, n int) []string {
	if n <= 0 {
		return []string{}
	}
	last := StartOfDay(end)
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = DayKey(last.AddDate(0, 0, i-(n-1)))
	}
	return keys
}

// DaysBetween returns the signed fractional number of days from a to b.
func DaysBetween(a, b time.Time) float64 {
	return float64(b.Sub(a)) / float64(day)
}
