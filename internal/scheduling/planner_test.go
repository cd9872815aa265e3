package scheduling

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idGenerator() func() string {
	n := 0
	return func() string {
		n++
		return "session-" + strconv.Itoa(n)
	}
}

// TestWeeklyPlannerSingleTDOneTeacherOneRoom mirrors the spec's first
// concrete scenario: one TD course, one class, one teacher, one lab room,
// capped to one session per targeted week via AllowedWeek quotas.
func TestWeeklyPlannerSingleTDOneTeacherOneRoom(t *testing.T) {
	course := Course{
		ID:                 "c1",
		Name:               "Algorithms",
		Type:               CourseTD,
		SessionLengthHours: 2,
		SessionsRequired:   4,
		WindowStart:        date(2025, 10, 13),
		WindowEnd:          date(2025, 11, 21),
	}
	link := CourseClassLink{ID: "link1", CourseID: "c1", ClassGroupID: "a2", GroupCount: 1, TeacherAID: "t1"}
	teacher := Teacher{
		ID: "t1", Name: "T1",
		Weekly: []WeeklyAvailability{
			{Weekday: time.Monday, Intervals: []TimeInterval{{Start: 8 * time.Hour, End: 12*time.Hour + 15*time.Minute}, {Start: 13*time.Hour + 30*time.Minute, End: 17*time.Hour + 45*time.Minute}}},
			{Weekday: time.Tuesday, Intervals: []TimeInterval{{Start: 8 * time.Hour, End: 12*time.Hour + 15*time.Minute}, {Start: 13*time.Hour + 30*time.Minute, End: 17*time.Hour + 45*time.Minute}}},
			{Weekday: time.Wednesday, Intervals: []TimeInterval{{Start: 8 * time.Hour, End: 12*time.Hour + 15*time.Minute}, {Start: 13*time.Hour + 30*time.Minute, End: 17*time.Hour + 45*time.Minute}}},
			{Weekday: time.Thursday, Intervals: []TimeInterval{{Start: 8 * time.Hour, End: 12*time.Hour + 15*time.Minute}, {Start: 13*time.Hour + 30*time.Minute, End: 17*time.Hour + 45*time.Minute}}},
		},
	}
	class := ClassGroup{ID: "a2", Name: "A2", Size: 20}
	room := Room{ID: "r15", Name: "R15", Capacity: 20, Computers: 20, Equipment: map[string]struct{}{}, Software: map[string]struct{}{}}

	one := 1
	allowedWeeks := []AllowedWeek{
		{CourseID: "c1", WeekStart: date(2025, 10, 13), Quota: &one},
		{CourseID: "c1", WeekStart: date(2025, 10, 20), Quota: &one},
		{CourseID: "c1", WeekStart: date(2025, 10, 27), Quota: &one},
		{CourseID: "c1", WeekStart: date(2025, 11, 3), Quota: &one},
	}

	idx := NewAvailabilityIndex([]Teacher{teacher}, []ClassGroup{class}, []Room{room}, nil)
	cal := NewCalendar(nil)
	placement := NewPlacementEngine(idx, cal, []CourseClassLink{link}, nil, idGenerator())
	relocation := NewRelocationEngine(idx, placement, []Course{course})
	sink := NewProgressSink(4)
	planner := NewWeeklyPlanner(idx, cal, placement, relocation, sink, nil)

	requests := BuildRequests([]Course{course}, []CourseClassLink{link}, nil)
	require.Len(t, requests, 4)

	result := planner.Run(requests, allowedWeeks, DateRange{Start: course.WindowStart, End: course.WindowEnd}, nil, time.Time{})

	require.NoError(t, result.Err)
	require.Len(t, result.Placed, 4)
	assert.Empty(t, result.Failures)

	expectedMondays := []time.Time{date(2025, 10, 13), date(2025, 10, 20), date(2025, 10, 27), date(2025, 11, 3)}
	for i, s := range result.Placed {
		assert.Equal(t, expectedMondays[i], truncateDate(s.Start))
		assert.Equal(t, 8*time.Hour, s.Start.Sub(truncateDate(s.Start)))
		assert.Equal(t, "t1", s.TeacherID)
		assert.Equal(t, "r15", s.RoomID)
	}
}

// TestWeeklyPlannerTeacherDateUnavailability mirrors the spec's third
// concrete scenario: a teacher unavailability forces the placement onto the
// next compatible date.
func TestWeeklyPlannerTeacherDateUnavailability(t *testing.T) {
	course := Course{
		ID: "c1", Name: "Algorithms", Type: CourseTD, SessionLengthHours: 2, SessionsRequired: 1,
		WindowStart: date(2025, 10, 20), WindowEnd: date(2025, 10, 24),
	}
	link := CourseClassLink{ID: "link1", CourseID: "c1", ClassGroupID: "a2", GroupCount: 1, TeacherAID: "t1"}
	teacher := Teacher{
		ID: "t1", Name: "T1",
		Weekly: []WeeklyAvailability{
			{Weekday: time.Monday, Intervals: []TimeInterval{{Start: 8 * time.Hour, End: 10 * time.Hour}}},
			{Weekday: time.Tuesday, Intervals: []TimeInterval{{Start: 8 * time.Hour, End: 10 * time.Hour}}},
			{Weekday: time.Wednesday, Intervals: []TimeInterval{{Start: 8 * time.Hour, End: 10 * time.Hour}}},
		},
		UnavailableRanges: []DateRange{{Start: date(2025, 10, 20), End: date(2025, 10, 21)}},
	}
	class := ClassGroup{ID: "a2", Name: "A2", Size: 10}
	room := Room{ID: "r15", Name: "R15", Capacity: 20, Computers: 20, Equipment: map[string]struct{}{}, Software: map[string]struct{}{}}

	idx := NewAvailabilityIndex([]Teacher{teacher}, []ClassGroup{class}, []Room{room}, nil)
	cal := NewCalendar(nil)
	placement := NewPlacementEngine(idx, cal, []CourseClassLink{link}, nil, idGenerator())
	relocation := NewRelocationEngine(idx, placement, []Course{course})
	sink := NewProgressSink(1)
	planner := NewWeeklyPlanner(idx, cal, placement, relocation, sink, nil)

	requests := BuildRequests([]Course{course}, []CourseClassLink{link}, nil)
	require.Len(t, requests, 1)

	result := planner.Run(requests, nil, DateRange{Start: course.WindowStart, End: course.WindowEnd}, nil, time.Time{})

	require.NoError(t, result.Err)
	require.Len(t, result.Placed, 1)
	assert.Equal(t, date(2025, 10, 22), truncateDate(result.Placed[0].Start))
}

func TestWeeklyPlannerWindowEmptyWhenAllWeeksClosed(t *testing.T) {
	cal := NewCalendar([]ClosingPeriod{{ID: "break", Range: DateRange{Start: date(2025, 10, 13), End: date(2025, 10, 19)}}})
	idx := NewAvailabilityIndex(nil, nil, nil, nil)
	placement := NewPlacementEngine(idx, cal, nil, nil, idGenerator())
	relocation := NewRelocationEngine(idx, placement, nil)
	sink := NewProgressSink(0)
	planner := NewWeeklyPlanner(idx, cal, placement, relocation, sink, nil)

	result := planner.Run(nil, nil, DateRange{Start: date(2025, 10, 13), End: date(2025, 10, 19)}, nil, time.Time{})

	require.Error(t, result.Err)
	assert.IsType(t, &WindowEmptyError{}, result.Err)
}
