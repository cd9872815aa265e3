package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSlotsOneHourYieldsTwoPerWindow(t *testing.T) {
	slots := Slots(1)
	require.Len(t, slots, 8)
	assert.Equal(t, 8*time.Hour, slots[0].Start)
	assert.Equal(t, 9*time.Hour, slots[1].Start)
	assert.Equal(t, 10*time.Hour+15*time.Minute, slots[2].Start)
	assert.Equal(t, 16*time.Hour+45*time.Minute, slots[7].Start)
}

func TestSlotsTwoHoursYieldsOnePerWindow(t *testing.T) {
	slots := Slots(2)
	require.Len(t, slots, 4)
	for i, w := range WorkingWindows {
		assert.Equal(t, w.Start, slots[i].Start)
		assert.Equal(t, w.End, slots[i].End)
	}
}

func TestWeeksInExcludesFullyClosedWeeks(t *testing.T) {
	closings := []ClosingPeriod{
		{ID: "winter-break", Range: DateRange{Start: date(2025, 12, 22), End: date(2026, 1, 2)}},
	}
	cal := NewCalendar(closings)
	window := DateRange{Start: date(2025, 12, 15), End: date(2026, 1, 9)}

	weeks := cal.WeeksIn(window)

	for _, w := range weeks {
		assert.NotEqual(t, date(2025, 12, 22), w, "fully-closed week must be excluded")
	}
	assert.Contains(t, weeks, date(2025, 12, 15))
}

func TestWorkingDaysExcludesClosedDates(t *testing.T) {
	closings := []ClosingPeriod{
		{ID: "one-day", Range: DateRange{Start: date(2025, 10, 14), End: date(2025, 10, 14)}},
	}
	cal := NewCalendar(closings)
	window := DateRange{Start: date(2025, 10, 13), End: date(2025, 10, 17)}

	days := cal.WorkingDays(date(2025, 10, 13), window)

	assert.Len(t, days, 4)
	assert.NotContains(t, days, date(2025, 10, 14))
}
