package scheduling

// SessionRequest is the tagged variant the Placement Engine consumes: one
// instance represents exactly one still-needed session of a (course,
// class-group, subgroup) series. The Constraint Evaluator and Placement
// Engine dispatch on Type, never on which optional fields happen to be set.
type SessionRequest struct {
	Course       Course
	ClassGroupID string
	Subgroup     string // "" unless this is one half of a TP split
	Type         CourseType

	// AttendingClassGroupIDs is populated only for CM: every class-group
	// the single shared session must also satisfy.
	AttendingClassGroupIDs []string

	PreferredTeacherID string
	// SecondaryTeacherID is populated only for SAE (teacher-B).
	SecondaryTeacherID string

	PlacementAttempts int
	CarryOverWeeks    int

	// LastRejectReason is the most specific Constraint Evaluator rejection
	// observed for this request so far, kept for end-of-run diagnostics.
	LastRejectReason RejectReason
}

// attendingSize resolves the seat count a candidate placement must fit, per
// invariant 2: class-group size, halved and rounded up when split, summed
// across every attending class-group for CM.
func (r SessionRequest) attendingSize(idx *AvailabilityIndex) int {
	total := 0
	ids := r.AttendingClassGroupIDs
	if len(ids) == 0 {
		ids = []string{r.ClassGroupID}
	}
	for _, id := range ids {
		cg, ok := idx.ClassGroup(id)
		if !ok {
			continue
		}
		size := cg.Size
		if r.Subgroup != "" {
			size = (size + 1) / 2
		}
		total += size
	}
	return total
}

// BuildRequests translates courses and their CourseClassLinks into the
// per-type queue of still-needed SessionRequests, accounting for sessions
// already persisted from prior generation runs.
func BuildRequests(courses []Course, links []CourseClassLink, existing []Session) []*SessionRequest {
	linksByCourse := make(map[string][]CourseClassLink)
	for _, l := range links {
		linksByCourse[l.CourseID] = append(linksByCourse[l.CourseID], l)
	}

	var out []*SessionRequest
	for _, course := range courses {
		courseLinks := linksByCourse[course.ID]
		switch course.Type {
		case CourseCM:
			out = append(out, buildCMRequests(course, courseLinks, existing)...)
		case CourseSAE:
			for _, link := range courseLinks {
				out = append(out, buildSimpleRequests(course, link, "", link.TeacherAID, link.TeacherBID, existing)...)
			}
		case CourseEval, CourseTD:
			for _, link := range courseLinks {
				out = append(out, buildSimpleRequests(course, link, "", link.TeacherAID, "", existing)...)
			}
		case CourseTP:
			for _, link := range courseLinks {
				if link.GroupCount == 2 {
					out = append(out, buildSimpleRequests(course, link, link.SubgroupA, link.TeacherAID, "", existing)...)
					out = append(out, buildSimpleRequests(course, link, link.SubgroupB, link.TeacherBID, "", existing)...)
				} else {
					out = append(out, buildSimpleRequests(course, link, "", link.TeacherAID, "", existing)...)
				}
			}
		}
	}
	return out
}

func buildSimpleRequests(course Course, link CourseClassLink, subgroup, preferredTeacher, secondaryTeacher string, existing []Session) []*SessionRequest {
	placed := 0
	for _, s := range existing {
		if s.CourseID != course.ID || s.ClassGroupID != link.ClassGroupID {
			continue
		}
		if s.Subgroup != subgroup {
			continue
		}
		placed++
	}
	remaining := course.SessionsRequired - placed
	var reqs []*SessionRequest
	for i := 0; i < remaining; i++ {
		reqs = append(reqs, &SessionRequest{
			Course:             course,
			ClassGroupID:       link.ClassGroupID,
			Subgroup:           subgroup,
			Type:               course.Type,
			PreferredTeacherID: preferredTeacher,
			SecondaryTeacherID: secondaryTeacher,
		})
	}
	return reqs
}

// buildCMRequests treats every link of a CM course as one jointly-attended
// series: the persisted count is taken from distinct session start times
// (since a single CM session is replicated per attending class-group, not
// duplicated per link) rather than per-link counts.
func buildCMRequests(course Course, courseLinks []CourseClassLink, existing []Session) []*SessionRequest {
	if len(courseLinks) == 0 {
		return nil
	}
	attending := make([]string, 0, len(courseLinks))
	for _, l := range courseLinks {
		attending = append(attending, l.ClassGroupID)
	}

	seenStarts := make(map[int64]struct{})
	for _, s := range existing {
		if s.CourseID != course.ID || s.Type != CourseCM {
			continue
		}
		seenStarts[s.Start.Unix()] = struct{}{}
	}
	placed := len(seenStarts)
	remaining := course.SessionsRequired - placed

	var reqs []*SessionRequest
	for i := 0; i < remaining; i++ {
		reqs = append(reqs, &SessionRequest{
			Course:                 course,
			ClassGroupID:           courseLinks[0].ClassGroupID,
			AttendingClassGroupIDs: attending,
			Type:                   CourseCM,
			PreferredTeacherID:     courseLinks[0].TeacherAID,
		})
	}
	return reqs
}
