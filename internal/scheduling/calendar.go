package scheduling

import (
	"sort"
	"time"
)

// Window is one of the four canonical daily working intervals.
type Window struct {
	Start time.Duration
	End   time.Duration
}

// WorkingWindows are the canonical daily intervals sessions may start in,
// fixed per spec: 08:00-10:00, 10:15-12:15, 13:30-15:30, 15:45-17:45.
var WorkingWindows = []Window{
	{Start: 8 * time.Hour, End: 10 * time.Hour},
	{Start: 10*time.Hour + 15*time.Minute, End: 12*time.Hour + 15*time.Minute},
	{Start: 13*time.Hour + 30*time.Minute, End: 15*time.Hour + 30*time.Minute},
	{Start: 15*time.Hour + 45*time.Minute, End: 17*time.Hour + 45*time.Minute},
}

// Calendar enumerates working days, weeks, and canonical slots within a
// planning window, honoring a fixed set of global closing periods.
type Calendar struct {
	Closings []ClosingPeriod
}

// NewCalendar builds a calendar over the given closing periods.
func NewCalendar(closings []ClosingPeriod) *Calendar {
	return &Calendar{Closings: closings}
}

// IsClosed reports whether d falls inside any closing period.
func (c *Calendar) IsClosed(d time.Time) bool {
	return c.isClosed(d)
}

func (c *Calendar) isClosed(d time.Time) bool {
	for _, cp := range c.Closings {
		if cp.Range.Contains(d) {
			return true
		}
	}
	return false
}

// WeeksIn returns ordered Monday week-starts intersecting the window,
// excluding weeks whose every weekday (Mon-Fri) is closed.
func (c *Calendar) WeeksIn(window DateRange) []time.Time {
	var weeks []time.Time
	monday := mondayOf(window.Start)
	for !monday.After(window.End) {
		if len(c.WorkingDays(monday, window)) > 0 {
			weeks = append(weeks, monday)
		}
		monday = monday.AddDate(0, 0, 7)
	}
	return weeks
}

// WorkingDays returns the weekdays of the week starting at weekStart that
// fall inside the window and are not excluded by a closing period.
func (c *Calendar) WorkingDays(weekStart time.Time, window DateRange) []time.Time {
	var days []time.Time
	for i := 0; i < 5; i++ { // Mon..Fri
		day := weekStart.AddDate(0, 0, i)
		if day.Before(truncateDate(window.Start)) || day.After(truncateDate(window.End)) {
			continue
		}
		if c.isClosed(day) {
			continue
		}
		days = append(days, day)
	}
	return days
}

// Slots returns the deterministic, earliest-first ordered (start,end) pairs
// of length durationHours whose start coincides with a working-window start
// and whose end does not exceed that window's end.
func Slots(durationHours float64) []TimeInterval {
	duration := time.Duration(durationHours * float64(time.Hour))
	var slots []TimeInterval
	for _, w := range WorkingWindows {
		for start := w.Start; start+duration <= w.End; start += time.Hour {
			slots = append(slots, TimeInterval{Start: start, End: start + duration})
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	return slots
}

func mondayOf(d time.Time) time.Time {
	d = truncateDate(d)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return d.AddDate(0, 0, -offset)
}

// DateAt combines a calendar date with a time-of-day offset into a datetime.
func DateAt(day time.Time, offset time.Duration) time.Time {
	day = truncateDate(day)
	return day.Add(offset)
}
