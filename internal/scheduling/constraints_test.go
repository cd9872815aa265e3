package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func baseCandidate() Candidate {
	day := date(2025, 10, 13) // Monday
	course := Course{
		ID:                 "c1",
		Name:               "Algorithms",
		Type:               CourseTD,
		SessionLengthHours: 1,
		SessionsRequired:   4,
		WindowStart:        date(2025, 10, 1),
		WindowEnd:          date(2025, 11, 30),
	}
	return Candidate{
		Course:                 course,
		ClassGroupID:           "a1",
		AttendingClassGroupIDs: []string{"a1"},
		AttendingSize:          10,
		TeacherID:              "t1",
		RoomID:                 "r1",
		Day:                    day,
		Slot:                   TimeInterval{Start: 8 * time.Hour, End: 9 * time.Hour},
		CourseWindow:           DateRange{Start: date(2025, 10, 1), End: date(2025, 11, 30)},
		WeekStart:              date(2025, 10, 13),
	}
}

func baseIndex() *AvailabilityIndex {
	teacher := Teacher{ID: "t1", Name: "T1", Weekly: []WeeklyAvailability{
		{Weekday: time.Monday, Intervals: []TimeInterval{{Start: 8 * time.Hour, End: 12*time.Hour + 15*time.Minute}}},
	}}
	class := ClassGroup{ID: "a1", Name: "A1", Size: 10}
	room := Room{ID: "r1", Name: "R1", Capacity: 20, Computers: 20, Equipment: map[string]struct{}{}, Software: map[string]struct{}{}}
	return NewAvailabilityIndex([]Teacher{teacher}, []ClassGroup{class}, []Room{room}, nil)
}

func TestEvaluateAcceptsValidCandidate(t *testing.T) {
	idx := baseIndex()
	eval := NewEvaluator(idx, NewCalendar(nil))
	v := eval.Evaluate(baseCandidate())
	assert.True(t, v.OK)
}

func TestEvaluateRejectsWindowOutOfCoursePeriod(t *testing.T) {
	idx := baseIndex()
	eval := NewEvaluator(idx, NewCalendar(nil))
	c := baseCandidate()
	c.Day = date(2025, 12, 1)
	v := eval.Evaluate(c)
	assert.False(t, v.OK)
	assert.Equal(t, ReasonWindowOutOfCoursePeriod, v.Reason)
}

func TestEvaluateRejectsDateClosed(t *testing.T) {
	idx := baseIndex()
	cal := NewCalendar([]ClosingPeriod{{ID: "closed", Range: DateRange{Start: date(2025, 10, 13), End: date(2025, 10, 13)}}})
	eval := NewEvaluator(idx, cal)
	v := eval.Evaluate(baseCandidate())
	assert.False(t, v.OK)
	assert.Equal(t, ReasonDateClosed, v.Reason)
}

func TestEvaluateRejectsTeacherUnavailableOutsideInterval(t *testing.T) {
	idx := baseIndex()
	eval := NewEvaluator(idx, NewCalendar(nil))
	c := baseCandidate()
	c.Slot = TimeInterval{Start: 15*time.Hour + 45*time.Minute, End: 16*time.Hour + 45*time.Minute}
	v := eval.Evaluate(c)
	assert.False(t, v.OK)
	assert.Equal(t, ReasonTeacherUnavailable, v.Reason)
}

func TestEvaluateRejectsTeacherBusy(t *testing.T) {
	idx := baseIndex()
	idx.Add(Session{
		ID: "s-existing", CourseID: "other", ClassGroupID: "other-class", TeacherID: "t1", RoomID: "other-room",
		Start: time.Date(2025, 10, 13, 8, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC),
		Type:  CourseTD,
	})
	eval := NewEvaluator(idx, NewCalendar(nil))
	v := eval.Evaluate(baseCandidate())
	assert.False(t, v.OK)
	assert.Equal(t, ReasonTeacherBusy, v.Reason)
}

func TestEvaluateRejectsRoomBusy(t *testing.T) {
	idx := baseIndex()
	idx.Add(Session{
		ID: "s-existing", CourseID: "other", ClassGroupID: "other-class", TeacherID: "other-teacher", RoomID: "r1",
		Start: time.Date(2025, 10, 13, 8, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC),
		Type:  CourseTD,
	})
	eval := NewEvaluator(idx, NewCalendar(nil))
	v := eval.Evaluate(baseCandidate())
	assert.False(t, v.OK)
	assert.Equal(t, ReasonRoomBusy, v.Reason)
}

func TestEvaluateAllowsOppositeSubgroupSameSlotDifferentRoom(t *testing.T) {
	idx := baseIndex()
	idx.Add(Session{
		ID: "s-subgroup-b", CourseID: "c1", ClassGroupID: "a1", Subgroup: "B", TeacherID: "t2", RoomID: "r2",
		Start: time.Date(2025, 10, 13, 8, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 10, 13, 9, 0, 0, 0, time.UTC),
		Type:  CourseTP,
	})
	eval := NewEvaluator(idx, NewCalendar(nil))
	c := baseCandidate()
	c.Subgroup = "A"
	v := eval.Evaluate(c)
	assert.True(t, v.OK)
}

func TestEvaluateRejectsCapacityInsufficient(t *testing.T) {
	idx := baseIndex()
	eval := NewEvaluator(idx, NewCalendar(nil))
	c := baseCandidate()
	c.AttendingSize = 30
	v := eval.Evaluate(c)
	assert.False(t, v.OK)
	assert.Equal(t, ReasonCapacityInsufficient, v.Reason)
}

func TestEvaluateRejectsEquipmentMissing(t *testing.T) {
	idx := baseIndex()
	eval := NewEvaluator(idx, NewCalendar(nil))
	c := baseCandidate()
	c.Course.RequiredEquipment = map[string]struct{}{"projector": {}}
	v := eval.Evaluate(c)
	assert.False(t, v.OK)
	assert.Equal(t, ReasonEquipmentMissing, v.Reason)
}

func TestEvaluateRejectsWeekQuotaReached(t *testing.T) {
	idx := baseIndex()
	eval := NewEvaluator(idx, NewCalendar(nil))
	c := baseCandidate()
	zero := 0
	c.QuotaRemaining = &zero
	v := eval.Evaluate(c)
	assert.False(t, v.OK)
	assert.Equal(t, ReasonWeekQuotaReached, v.Reason)
}

func TestEvaluateRejectsTeacherOverloaded(t *testing.T) {
	idx := baseIndex()
	max := 1
	teacher := idx.teachers["t1"]
	teacher.MaxWeeklyLoadHours = &max
	idx.teachers["t1"] = teacher
	idx.Add(Session{
		ID: "s-existing", CourseID: "other", ClassGroupID: "other-class", TeacherID: "t1", RoomID: "other-room",
		Start: time.Date(2025, 10, 13, 10, 15, 0, 0, time.UTC),
		End:   time.Date(2025, 10, 13, 11, 15, 0, 0, time.UTC),
		Type:  CourseTD,
	})
	eval := NewEvaluator(idx, NewCalendar(nil))
	v := eval.Evaluate(baseCandidate())
	assert.False(t, v.OK)
	assert.Equal(t, ReasonTeacherOverloaded, v.Reason)
}
