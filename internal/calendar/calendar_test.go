package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthNames(t *testing.T) {
	names := MonthNames(2026)
	require.Len(t, names, 12)
	assert.Equal(t, "January", names[0])
	assert.Equal(t, "December", names[11])
	assert.Equal(t, names, MonthNames(1999))
}

func TestDaysInMonth_February(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{2026, 28},
		{2027, 28},
		{2028, 29},
		{1900, 28},
		{2000, 29},
	}
	for _, tt := range tests {
		days := DaysInMonth(tt.year, 1)
		assert.Len(t, days, tt.want, "year %d", tt.year)
	}
}

func TestDaysInMonth_OrderAndFormat(t *testing.T) {
	days := DaysInMonth(2026, 2)
	require.Len(t, days, 31)
	assert.Equal(t, "2026-03-01", days[0])
	assert.Equal(t, "2026-03-15", days[14])
	assert.Equal(t, "2026-03-31", days[30])

	assert.Len(t, DaysInMonth(2026, 3), 30)
	assert.Len(t, DaysInMonth(2026, 11), 31)
}

func TestMonthID(t *testing.T) {
	assert.Equal(t, "2026-03", MonthID(2026, 2))
	assert.Equal(t, "2026-12", MonthID(2026, 11))

	year, idx, err := ParseMonthID("2026-03")
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	assert.Equal(t, 2, idx)

	_, _, err = ParseMonthID("2026-13")
	assert.Error(t, err)
	_, _, err = ParseMonthID("march")
	assert.Error(t, err)
}

func TestDayBelongsToMonth(t *testing.T) {
	assert.True(t, DayBelongsToMonth("2026-03-15", "2026-03"))
	assert.False(t, DayBelongsToMonth("2026-04-01", "2026-03"))
	assert.False(t, DayBelongsToMonth("2026-02-29", "2026-02"))
	assert.True(t, DayBelongsToMonth("2028-02-29", "2028-02"))
	assert.False(t, DayBelongsToMonth("garbage", "2026-03"))
}
