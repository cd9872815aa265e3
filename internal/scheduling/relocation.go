package scheduling

import "time"

// RelocationEngine attempts, for a TD/TP request the Placement Engine
// could not place, to free a slot by moving one already-placed TD/TP
// session of the same class-group elsewhere within the same week. At most
// one swap is committed per call; each swap is transactional in the
// Availability Index.
type RelocationEngine struct {
	Index     *AvailabilityIndex
	Placement *PlacementEngine
	Courses   map[string]Course
}

// NewRelocationEngine builds a RelocationEngine sharing the Placement
// Engine's Availability Index.
func NewRelocationEngine(idx *AvailabilityIndex, placement *PlacementEngine, courses []Course) *RelocationEngine {
	byID := make(map[string]Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	return &RelocationEngine{Index: idx, Placement: placement, Courses: byID}
}

// Relocate tries each candidate displaced session in deterministic order
// (start ascending, then id) until one swap succeeds or the candidate set
// is exhausted. req must be of type TD or TP; any other type is rejected
// outright, preserving the spec's asymmetry against reshuffling CM/SAE/Eval.
func (re *RelocationEngine) Relocate(req *SessionRequest, weekStart time.Time, quotaRemaining *int) (Session, bool, RejectReason) {
	if req.Type != CourseTD && req.Type != CourseTP {
		return Session{}, false, ReasonNone
	}

	candidates := re.Index.SessionsInWeek(req.ClassGroupID, weekStart, CourseTD, CourseTP)
	var lastReason RejectReason

	for _, displaced := range candidates {
		removed, ok := re.Index.Remove(displaced.ID)
		if !ok {
			continue
		}

		placedReq, ok, reason := re.Placement.Place(req, weekStart, quotaRemaining)
		if !ok {
			if reason != ReasonNone {
				lastReason = reason
			}
			re.Index.Add(removed)
			continue
		}

		course, hasCourse := re.Courses[removed.CourseID]
		if !hasCourse {
			re.Index.Remove(placedReq.ID)
			re.Index.Add(removed)
			lastReason = ReasonWindowOutOfCoursePeriod
			continue
		}
		displacedReq := &SessionRequest{
			Course:             course,
			ClassGroupID:       removed.ClassGroupID,
			Subgroup:           removed.Subgroup,
			Type:               removed.Type,
			PreferredTeacherID: removed.TeacherID,
			SecondaryTeacherID: removed.SecondaryTeacherID,
		}
		if _, replaced, replaceReason := re.Placement.Place(displacedReq, weekStart, nil); replaced {
			return placedReq, true, ReasonNone
		} else {
			re.Index.Remove(placedReq.ID)
			re.Index.Add(removed)
			lastReason = replaceReason
		}
	}
	return Session{}, false, lastReason
}
