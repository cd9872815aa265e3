package scheduling

// ValidateDataset checks the invariants that must hold before planning
// starts: every course must be linked to at least one class-group, and
// every link must name at least one eligible teacher. Violations abort the
// job before any placement is attempted.
func ValidateDataset(courses []Course, links []CourseClassLink) *DataInconsistencyError {
	linksByCourse := make(map[string]int)
	for _, l := range links {
		linksByCourse[l.CourseID]++
		if l.TeacherAID == "" {
			return &DataInconsistencyError{Description: "class-group link " + l.ID + " has no eligible teacher"}
		}
		if l.GroupCount == 2 && l.TeacherBID == "" {
			return &DataInconsistencyError{Description: "split class-group link " + l.ID + " is missing subgroup-B's teacher"}
		}
	}
	for _, c := range courses {
		if linksByCourse[c.ID] == 0 {
			return &DataInconsistencyError{Description: "course " + c.ID + " is linked to no class-group"}
		}
		if c.Type == CourseSAE {
			// SAE requires two teachers on every link; re-checked here since
			// the generic loop above only enforces it for split TP.
			for _, l := range links {
				if l.CourseID == c.ID && l.TeacherBID == "" {
					return &DataInconsistencyError{Description: "SAE course " + c.ID + " link " + l.ID + " is missing teacher-B"}
				}
			}
		}
	}
	return nil
}
