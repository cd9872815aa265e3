package scheduling

import "time"

// AvailabilityIndex answers "is X free during [start,end) on date D"
// queries by scanning each resource's list of placed sessions, and tracks already-placed sessions during a generation
// run. It is built once from the repository snapshot and mutated in place
// as the Placement and Relocation Engines commit or revert placements.
type AvailabilityIndex struct {
	teachers    map[string]Teacher
	classGroups map[string]ClassGroup
	rooms       map[string]Room

	byTeacher map[string][]*Session
	byClass   map[string][]*Session
	byRoom    map[string][]*Session
	byID      map[string]*Session
}

// NewAvailabilityIndex builds an index from the snapshot loaded at job start.
func NewAvailabilityIndex(teachers []Teacher, classGroups []ClassGroup, rooms []Room, existing []Session) *AvailabilityIndex {
	idx := &AvailabilityIndex{
		teachers:    make(map[string]Teacher, len(teachers)),
		classGroups: make(map[string]ClassGroup, len(classGroups)),
		rooms:       make(map[string]Room, len(rooms)),
		byTeacher:   make(map[string][]*Session),
		byClass:     make(map[string][]*Session),
		byRoom:      make(map[string][]*Session),
		byID:        make(map[string]*Session),
	}
	for _, t := range teachers {
		idx.teachers[t.ID] = t
	}
	for _, c := range classGroups {
		idx.classGroups[c.ID] = c
	}
	for _, r := range rooms {
		idx.rooms[r.ID] = r
	}
	for i := range existing {
		idx.index(&existing[i])
	}
	return idx
}

func (idx *AvailabilityIndex) index(s *Session) {
	idx.byID[s.ID] = s
	idx.byTeacher[s.TeacherID] = append(idx.byTeacher[s.TeacherID], s)
	if s.SecondaryTeacherID != "" {
		idx.byTeacher[s.SecondaryTeacherID] = append(idx.byTeacher[s.SecondaryTeacherID], s)
	}
	idx.byClass[s.ClassGroupID] = append(idx.byClass[s.ClassGroupID], s)
	for _, extra := range s.AttendingClassGroupIDs {
		idx.byClass[extra] = append(idx.byClass[extra], s)
	}
	idx.byRoom[s.RoomID] = append(idx.byRoom[s.RoomID], s)
}

func (idx *AvailabilityIndex) unindex(s *Session) {
	delete(idx.byID, s.ID)
	idx.byTeacher[s.TeacherID] = removeSession(idx.byTeacher[s.TeacherID], s.ID)
	if s.SecondaryTeacherID != "" {
		idx.byTeacher[s.SecondaryTeacherID] = removeSession(idx.byTeacher[s.SecondaryTeacherID], s.ID)
	}
	idx.byClass[s.ClassGroupID] = removeSession(idx.byClass[s.ClassGroupID], s.ID)
	for _, extra := range s.AttendingClassGroupIDs {
		idx.byClass[extra] = removeSession(idx.byClass[extra], s.ID)
	}
	idx.byRoom[s.RoomID] = removeSession(idx.byRoom[s.RoomID], s.ID)
}

func removeSession(list []*Session, id string) []*Session {
	out := list[:0]
	for _, s := range list {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Add commits a placed session into the index.
func (idx *AvailabilityIndex) Add(s Session) {
	cp := s
	idx.index(&cp)
}

// Remove takes a previously placed session back out of the index, returning
// it so the caller can restore it on a failed transaction.
func (idx *AvailabilityIndex) Remove(sessionID string) (Session, bool) {
	s, ok := idx.byID[sessionID]
	if !ok {
		return Session{}, false
	}
	cp := *s
	idx.unindex(s)
	return cp, true
}

// TeacherFree reports whether the teacher has no overlapping session and is
// within their recurring/weekly and date-specific availability.
func (idx *AvailabilityIndex) TeacherFree(teacherID string, day time.Time, start, end time.Time) bool {
	t, ok := idx.teachers[teacherID]
	if !ok {
		return false
	}
	if t.unavailableOn(day) {
		return false
	}
	intervals := t.intervalsFor(day.Weekday())
	if len(intervals) == 0 {
		return false
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
		return false
	}
	for _, s := range idx.byTeacher[teacherID] {
		if overlaps(s.Start, s.End, start, end) {
			return false
		}
	}
	return true
}

// TeacherWeeklyHours sums the duration of sessions already committed for the
// teacher within the week starting at weekStart (Monday).
func (idx *AvailabilityIndex) TeacherWeeklyHours(teacherID string, weekStart time.Time) float64 {
	weekEnd := weekStart.AddDate(0, 0, 7)
	var total float64
	for _, s := range idx.byTeacher[teacherID] {
		if !s.Start.Before(weekStart) && s.Start.Before(weekEnd) {
			total += s.End.Sub(s.Start).Hours()
		}
	}
	return total
}

// ClassFree reports whether the class-group (or its subgroup) has no
// overlapping committed session. Sessions booked for the opposite subgroup
// of the same class-group are not considered conflicting, per spec: a split
// class-group may run both subgroups in the same slot in different rooms.
func (idx *AvailabilityIndex) ClassFree(classGroupID, subgroup string, day time.Time, start, end time.Time) bool {
	c, ok := idx.classGroups[classGroupID]
	if !ok {
		return false
	}
	if c.unavailableOn(day) {
		return false
	}
	for _, s := range idx.byClass[classGroupID] {
		if !overlaps(s.Start, s.End, start, end) {
			continue
		}
		if subgroup != "" && s.Subgroup != "" && s.Subgroup != subgroup {
			continue // opposite subgroup running in parallel: allowed
		}
		return false
	}
	return true
}

// RoomFree reports whether the room has no overlapping committed session,
// optionally excluding a set of session ids (used mid-relocation, where the
// session under consideration for a swap has already been removed from the
// index but callers may still want to express the exclusion explicitly).
func (idx *AvailabilityIndex) RoomFree(roomID string, start, end time.Time, excluding ...string) bool {
	skip := make(map[string]struct{}, len(excluding))
	for _, id := range excluding {
		skip[id] = struct{}{}
	}
	for _, s := range idx.byRoom[roomID] {
		if _, excluded := skip[s.ID]; excluded {
			continue
		}
		if overlaps(s.Start, s.End, start, end) {
			return false
		}
	}
	return true
}

// Room returns the room snapshot by id.
func (idx *AvailabilityIndex) Room(id string) (Room, bool) {
	r, ok := idx.rooms[id]
	return r, ok
}

// Teacher returns the teacher snapshot by id.
func (idx *AvailabilityIndex) Teacher(id string) (Teacher, bool) {
	t, ok := idx.teachers[id]
	return t, ok
}

// ClassGroup returns the class-group snapshot by id.
func (idx *AvailabilityIndex) ClassGroup(id string) (ClassGroup, bool) {
	c, ok := idx.classGroups[id]
	return c, ok
}

// Rooms returns every room in the snapshot.
func (idx *AvailabilityIndex) Rooms() []Room {
	out := make([]Room, 0, len(idx.rooms))
	for _, r := range idx.rooms {
		out = append(out, r)
	}
	return out
}

// SessionsInWeek returns committed sessions for a class-group within the
// given week, of the requested types, ordered by start time then id — used
// by the Relocation Engine to build its candidate set.
func (idx *AvailabilityIndex) SessionsInWeek(classGroupID string, weekStart time.Time, types ...CourseType) []Session {
	weekEnd := weekStart.AddDate(0, 0, 7)
	allowed := make(map[CourseType]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	var out []Session
	for _, s := range idx.byClass[classGroupID] {
		if s.Start.Before(weekStart) || !s.Start.Before(weekEnd) {
			continue
		}
		if _, ok := allowed[s.Type]; ok {
			out = append(out, *s)
		}
	}
	sortSessions(out)
	return out
}

func sortSessions(sessions []Session) {
	for i := 1; i < len(sessions); i++ {
		for j := i; j > 0; j-- {
			a, b := sessions[j-1], sessions[j]
			if a.Start.Before(b.Start) || (a.Start.Equal(b.Start) && a.ID <= b.ID) {
				break
			}
			sessions[j-1], sessions[j] = sessions[j], sessions[j-1]
		}
	}
}
