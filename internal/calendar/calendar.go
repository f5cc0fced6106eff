// Package calendar produces month names and calendar-day keys.
//
// Month identifiers use the YYYY-MM layout and day keys the YYYY-MM-DD
// layout. Month indexes are zero based (0 = January) to match the
// selection model of the renderers.
package calendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MonthIDLayout is the time layout of a month identifier.
	MonthIDLayout = "2006-01"
	// DayKeyLayout is the time layout of a day key.
	DayKeyLayout = "2006-01-02"
)

var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// MonthNames returns the twelve month names for a year, January first.
// The year does not change the result.
func MonthNames(_ int) []string {
	names := make([]string, 12)
	for i := range names {
		names[i] = time.Month(i + 1).String()
	}
	return names
}

// MonthName returns the display name for a zero based month index.
func MonthName(monthIndex int) string {
	return time.Month(monthIndex + 1).String()
}

// IsLeapYear reports whether February of year has 29 days.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in the month.
func DaysIn(year, monthIndex int) int {
	if monthIndex == 1 && IsLeapYear(year) {
		return 29
	}
	return monthLengths[monthIndex]
}

// DaysInMonth returns every day key of the month in ascending order.
func DaysInMonth(year, monthIndex int) []string {
	n := DaysIn(year, monthIndex)
	keys := make([]string, n)
	for d := 1; d <= n; d++ {
		keys[d-1] = DayKey(year, monthIndex, d)
	}
	return keys
}

// DayKey formats a day key.
func DayKey(year, monthIndex, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, monthIndex+1, day)
}

// MonthID formats the identifier of a month.
func MonthID(year, monthIndex int) string {
	return fmt.Sprintf("%04d-%02d", year, monthIndex+1)
}

// YearPrefix is the prefix shared by every month identifier of a year.
func YearPrefix(year int) string {
	return fmt.Sprintf("%04d-", year)
}

// ParseMonthID splits a month identifier into year and zero based month index.
func ParseMonthID(id string) (year, monthIndex int, err error) {
	t, err := time.Parse(MonthIDLayout, id)
	if err != nil {
		return 0, 0, fmt.Errorf("parse month id %q: %w", id, err)
	}
	return t.Year(), int(t.Month()) - 1, nil
}

// ParseDayKey validates a day key, including the length of its month.
func ParseDayKey(key string) (year, monthIndex, day int, err error) {
	t, err := time.Parse(DayKeyLayout, key)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parse day key %q: %w", key, err)
	}
	return t.Year(), int(t.Month()) - 1, t.Day(), nil
}

// DayBelongsToMonth reports whether dayKey is a valid date inside monthID.
func DayBelongsToMonth(dayKey, monthID string) bool {
	if _, _, _, err := ParseDayKey(dayKey); err != nil {
		return false
	}
	return strings.HasPrefix(dayKey, monthID+"-")
}
