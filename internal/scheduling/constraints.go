package scheduling

import "time"

// Candidate is one fully-specified placement attempt for the Constraint
// Evaluator: a request's course/class/subgroup bound to a concrete
// teacher(s), room, and (day, slot).
type Candidate struct {
	Course       Course
	ClassGroupID string
	Subgroup     string
	// AttendingClassGroupIDs is the full set of class-groups attending this
	// candidate (just ClassGroupID for everything but CM, which lists every
	// linked class-group).
	AttendingClassGroupIDs []string
	AttendingSize           int // sum of attending class-group sizes (halved per subgroup where applicable)
	TeacherID               string
	SecondaryTeacherID      string // non-empty only for SAE
	RoomID                  string
	Day                     time.Time
	Slot                    TimeInterval
	CourseWindow            DateRange
	WeekStart               time.Time
	QuotaRemaining          *int // nil = unlimited, from AllowedWeek
}

// Evaluator is the stateless Constraint Evaluator: given an Availability
// Index and a Calendar, it decides whether a Candidate may be placed,
// returning the first failing reason in the fixed, documented check order
// so rejections are reproducible.
type Evaluator struct {
	Index    *AvailabilityIndex
	Calendar *Calendar
}

// NewEvaluator builds an Evaluator bound to the given index and calendar.
func NewEvaluator(idx *AvailabilityIndex, cal *Calendar) *Evaluator {
	return &Evaluator{Index: idx, Calendar: cal}
}

// Evaluate runs the fixed check order: cheapest first (course window,
// closing period, working-window alignment, week quota), then availability
// (teacher, class, room), then resource fit (capacity, computers,
// equipment, software).
func (e *Evaluator) Evaluate(c Candidate) Verdict {
	if !c.CourseWindow.Contains(c.Day) {
		return reject(ReasonWindowOutOfCoursePeriod)
	}
	if e.Calendar.IsClosed(c.Day) {
		return reject(ReasonDateClosed)
	}
	if !withinWorkingWindow(c.Slot) {
		return reject(ReasonOutsideWorkingWindow)
	}
	if c.QuotaRemaining != nil && *c.QuotaRemaining <= 0 {
		return reject(ReasonWeekQuotaReached)
	}

	start := DateAt(c.Day, c.Slot.Start)
	end := DateAt(c.Day, c.Slot.End)

	if reason := e.checkTeacher(c.TeacherID, c.Day, start, end, c.Course.Type, c.WeekStart); reason != ReasonNone {
		return reject(reason)
	}
	if c.SecondaryTeacherID != "" {
		if reason := e.checkTeacher(c.SecondaryTeacherID, c.Day, start, end, c.Course.Type, c.WeekStart); reason != ReasonNone {
			return reject(reason)
		}
	}
	for _, cg := range c.AttendingClassGroupIDs {
		if reason := e.checkClass(cg, c.Subgroup, c.Day, start, end); reason != ReasonNone {
			return reject(reason)
		}
	}
	if !e.Index.RoomFree(c.RoomID, start, end) {
		return reject(ReasonRoomBusy)
	}

	room, found := e.Index.Room(c.RoomID)
	if !found {
		return reject(ReasonCapacityInsufficient)
	}
	if room.Capacity < c.AttendingSize {
		return reject(ReasonCapacityInsufficient)
	}
	if room.Computers < c.Course.RequiredComputers {
		return reject(ReasonComputersInsufficient)
	}
	if !room.hasEquipment(c.Course.RequiredEquipment) {
		return reject(ReasonEquipmentMissing)
	}
	if !room.hasSoftware(c.Course.RequiredSoftware) {
		return reject(ReasonSoftwareMissing)
	}
	return ok()
}

func withinWorkingWindow(slot TimeInterval) bool {
	for _, w := range WorkingWindows {
		if slot.Start >= w.Start && slot.End <= w.End {
			return true
		}
	}
	return false
}

// checkTeacher evaluates unavailability, recurring-interval fit, overlap
// with already-committed sessions, and the weekly-hours ceiling, in that
// order, returning the first reason that applies.
func (e *Evaluator) checkTeacher(teacherID string, day, start, end time.Time, courseType CourseType, weekStart time.Time) RejectReason {
	t, ok := e.Index.teachers[teacherID]
	if !ok {
		return ReasonTeacherUnavailable
	}
	if t.unavailableOn(day) {
		return ReasonTeacherUnavailable
	}
	intervals := t.intervalsFor(day.Weekday())
	if len(intervals) == 0 {
		return ReasonTeacherUnavailable
	}
	startOffset := start.Sub(truncateDate(day))
	endOffset := end.Sub(truncateDate(day))
	fits := false
	for _, iv := range intervals {
		if iv.Contains(startOffset, endOffset) {
			fits = true
			break
		}
	}
	if !fits {
		return ReasonTeacherUnavailable
	}
	for _, s := range e.Index.byTeacher[teacherID] {
		if overlaps(s.Start, s.End, start, end) {
			return ReasonTeacherBusy
		}
	}
	if t.MaxWeeklyLoadHours != nil {
		sessionHours := end.Sub(start).Hours()
		if e.Index.TeacherWeeklyHours(teacherID, weekStart)+sessionHours > float64(*t.MaxWeeklyLoadHours) {
			return ReasonTeacherOverloaded
		}
	}
	return ReasonNone
}

// checkClass evaluates date-specific unavailability then overlap, honoring
// the subgroup exception: a session for the opposite subgroup of the same
// class-group running in the same slot is not a conflict.
func (e *Evaluator) checkClass(classGroupID, subgroup string, day, start, end time.Time) RejectReason {
	c, ok := e.Index.classGroups[classGroupID]
	if !ok {
		return ReasonClassUnavailable
	}
	if c.unavailableOn(day) {
		return ReasonClassUnavailable
	}
	for _, s := range e.Index.byClass[classGroupID] {
		if !overlaps(s.Start, s.End, start, end) {
			continue
		}
		if subgroup != "" && s.Subgroup != "" && s.Subgroup != subgroup {
			continue
		}
		return ReasonClassBusy
	}
	return ReasonNone
}
