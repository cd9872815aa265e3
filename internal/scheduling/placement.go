package scheduling

import (
	"sort"
	"time"
)

// PlacementEngine searches candidate (day, slot, teacher, room) tuples for
// a single SessionRequest within one week, and commits the first one that
// passes the Constraint Evaluator.
type PlacementEngine struct {
	Index    *AvailabilityIndex
	Calendar *Calendar
	Eval     *Evaluator

	// linkedTeachers holds, per course, the teachers declared on its
	// CourseClassLinks in declaration order (deduplicated).
	linkedTeachers map[string][]string
	// lastTeacher tracks, per (course, class-group, subgroup) series, the
	// teacher used on the most recently placed session, for continuity.
	lastTeacher map[string]string

	NewSessionID func() string
}

// NewPlacementEngine builds a PlacementEngine seeded with the declared
// course-teacher links and the continuity state implied by already-placed
// sessions.
func NewPlacementEngine(idx *AvailabilityIndex, cal *Calendar, links []CourseClassLink, existing []Session, newSessionID func() string) *PlacementEngine {
	pe := &PlacementEngine{
		Index:          idx,
		Calendar:       cal,
		Eval:           NewEvaluator(idx, cal),
		linkedTeachers: make(map[string][]string),
		lastTeacher:    make(map[string]string),
		NewSessionID:   newSessionID,
	}
	for _, l := range links {
		pe.linkedTeachers[l.CourseID] = appendUnique(pe.linkedTeachers[l.CourseID], l.TeacherAID)
		if l.TeacherBID != "" {
			pe.linkedTeachers[l.CourseID] = appendUnique(pe.linkedTeachers[l.CourseID], l.TeacherBID)
		}
	}

	sorted := append([]Session(nil), existing...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })
	for _, s := range sorted {
		pe.lastTeacher[seriesKey(s.CourseID, s.ClassGroupID, s.Subgroup)] = s.TeacherID
	}
	return pe
}

func appendUnique(list []string, id string) []string {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}

func seriesKey(courseID, classGroupID, subgroup string) string {
	return courseID + "|" + classGroupID + "|" + subgroup
}

// teacherPriority orders candidate teachers: continuity (previous session's
// teacher), then the request's preferred teacher, then every teacher
// declared on the course's links, in declaration order.
func (pe *PlacementEngine) teacherPriority(req *SessionRequest) []string {
	var list []string
	if prev, ok := pe.lastTeacher[seriesKey(req.Course.ID, req.ClassGroupID, req.Subgroup)]; ok && prev != "" {
		list = appendUnique(list, prev)
	}
	if req.PreferredTeacherID != "" {
		list = appendUnique(list, req.PreferredTeacherID)
	}
	for _, t := range pe.linkedTeachers[req.Course.ID] {
		list = appendUnique(list, t)
	}
	return list
}

// candidateRooms returns rooms meeting capacity/resource requirements,
// ascending by capacity then id.
func (pe *PlacementEngine) candidateRooms(req *SessionRequest, attendingSize int) []Room {
	var rooms []Room
	for _, r := range pe.Index.Rooms() {
		if r.Capacity < attendingSize {
			continue
		}
		if r.Computers < req.Course.RequiredComputers {
			continue
		}
		if !r.hasEquipment(req.Course.RequiredEquipment) {
			continue
		}
		if !r.hasSoftware(req.Course.RequiredSoftware) {
			continue
		}
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Capacity != rooms[j].Capacity {
			return rooms[i].Capacity < rooms[j].Capacity
		}
		return rooms[i].ID < rooms[j].ID
	})
	return rooms
}

// Place searches for a valid placement of req within the week starting at
// weekStart, committing the session to the Availability Index on success.
func (pe *PlacementEngine) Place(req *SessionRequest, weekStart time.Time, quotaRemaining *int) (Session, bool, RejectReason) {
	courseWindow := DateRange{Start: req.Course.WindowStart, End: req.Course.WindowEnd}
	days := pe.Calendar.WorkingDays(weekStart, courseWindow)
	slots := Slots(req.Course.SessionLengthHours)
	teachers := pe.teacherPriority(req)
	attendingSize := req.attendingSize(pe.Index)
	rooms := pe.candidateRooms(req, attendingSize)
	attending := req.AttendingClassGroupIDs
	if len(attending) == 0 {
		attending = []string{req.ClassGroupID}
	}

	var lastReason RejectReason
	note := func(v Verdict) {
		if !v.OK && v.Reason != ReasonNone {
			lastReason = v.Reason
		}
	}

	tryOne := func(day time.Time, slot TimeInterval, teacherID, secondary string, room Room) (Session, bool) {
		cand := Candidate{
			Course:                  req.Course,
			ClassGroupID:            req.ClassGroupID,
			Subgroup:                req.Subgroup,
			AttendingClassGroupIDs:  attending,
			AttendingSize:           attendingSize,
			TeacherID:               teacherID,
			SecondaryTeacherID:      secondary,
			RoomID:                  room.ID,
			Day:                     day,
			Slot:                    slot,
			CourseWindow:            courseWindow,
			WeekStart:               weekStart,
			QuotaRemaining:          quotaRemaining,
		}
		v := pe.Eval.Evaluate(cand)
		note(v)
		if !v.OK {
			return Session{}, false
		}
		session := Session{
			ID:                     pe.NewSessionID(),
			CourseID:               req.Course.ID,
			ClassGroupID:           req.ClassGroupID,
			Subgroup:               req.Subgroup,
			TeacherID:              teacherID,
			SecondaryTeacherID:     secondary,
			RoomID:                 room.ID,
			Start:                  DateAt(day, slot.Start),
			End:                    DateAt(day, slot.End),
			Type:                   req.Type,
			AttendingClassGroupIDs: req.AttendingClassGroupIDs,
		}
		pe.Index.Add(session)
		pe.lastTeacher[seriesKey(req.Course.ID, req.ClassGroupID, req.Subgroup)] = teacherID
		return session, true
	}

	for _, day := range days {
		for _, slot := range slots {
			if req.Type == CourseSAE {
				for _, tA := range teachers {
					for _, tB := range teachers {
						if tA == tB {
							continue
						}
						for _, room := range rooms {
							if s, ok := tryOne(day, slot, tA, tB, room); ok {
								return s, true, ReasonNone
							}
						}
					}
				}
				continue
			}
			for _, t := range teachers {
				for _, room := range rooms {
					if s, ok := tryOne(day, slot, t, "", room); ok {
						return s, true, ReasonNone
					}
				}
			}
		}
	}
	return Session{}, false, lastReason
}
