package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRelocationEngineMovesConflictingTDToFreeSlot mirrors the spec's fourth
// concrete scenario: a TP request needs the only lab room; an existing TD
// session is moved elsewhere in the same week to free it.
func TestRelocationEngineMovesConflictingTDToFreeSlot(t *testing.T) {
	weekStart := date(2025, 10, 13) // Monday

	tdCourse := Course{ID: "td", Name: "Networks", Type: CourseTD, SessionLengthHours: 1, SessionsRequired: 1, WindowStart: weekStart, WindowEnd: date(2025, 11, 21)}
	tpCourse := Course{ID: "tp", Name: "Databases", Type: CourseTP, SessionLengthHours: 1, SessionsRequired: 1, WindowStart: weekStart, WindowEnd: date(2025, 11, 21)}
	link := CourseClassLink{ID: "l-tp", CourseID: "tp", ClassGroupID: "a1", GroupCount: 1, TeacherAID: "t-tp"}

	teacher := Teacher{ID: "t-td", Name: "TD teacher", Weekly: []WeeklyAvailability{
		{Weekday: time.Monday, Intervals: []TimeInterval{{Start: 8 * time.Hour, End: 9 * time.Hour}, {Start: 9 * time.Hour, End: 10 * time.Hour}}},
	}}
	tpTeacher := Teacher{ID: "t-tp", Name: "TP teacher", Weekly: []WeeklyAvailability{
		{Weekday: time.Monday, Intervals: []TimeInterval{{Start: 8 * time.Hour, End: 9 * time.Hour}}},
	}}
	class := ClassGroup{ID: "a1", Name: "A1", Size: 10}
	lab := Room{ID: "lab", Name: "Lab", Capacity: 20, Computers: 20}

	existingTD := Session{
		ID: "existing-td", CourseID: "td", ClassGroupID: "a1", TeacherID: "t-td", RoomID: "lab", Type: CourseTD,
		Start: DateAt(weekStart, 8*time.Hour), End: DateAt(weekStart, 9*time.Hour),
	}

	idx := NewAvailabilityIndex([]Teacher{teacher, tpTeacher}, []ClassGroup{class}, []Room{lab}, []Session{existingTD})
	cal := NewCalendar(nil)
	placement := NewPlacementEngine(idx, cal, []CourseClassLink{link}, []Session{existingTD}, idGenerator())
	relocation := NewRelocationEngine(idx, placement, []Course{tdCourse, tpCourse})

	tpRequest := &SessionRequest{Course: tpCourse, ClassGroupID: "a1", Type: CourseTP, PreferredTeacherID: "t-tp"}

	placed, ok, _ := placement.Place(tpRequest, weekStart, nil)
	require.False(t, ok, "direct placement must fail: the lab is occupied at the only slot the TP teacher is free")

	placed, ok, reason := relocation.Relocate(tpRequest, weekStart, nil)
	require.True(t, ok, "relocation should free the lab by moving the TD session: last reason %s", reason)
	assert.Equal(t, "lab", placed.RoomID)

	_, stillThere := idx.byID["existing-td"]
	assert.False(t, stillThere, "original TD session id should no longer be indexed under its old id")

	moved := idx.byTeacher["t-td"]
	require.Len(t, moved, 1, "the displaced TD session should have been re-placed elsewhere in the week")
	assert.NotEqual(t, placed.Start, moved[0].Start, "TD and TP should not collide")
}
