package service

import (
	"time"

	"github.com/schoolforge/timetable-engine/internal/models"
	"github.com/schoolforge/timetable-engine/internal/scheduling"
)

func courseTypeToScheduling(t models.CourseType) scheduling.CourseType {
	return scheduling.CourseType(t)
}

func courseTypeFromScheduling(t scheduling.CourseType) models.CourseType {
	return models.CourseType(t)
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// buildTeachers converts persisted teacher rows plus their availability and
// unavailability side-tables into scheduling.Teacher, seeding the
// Availability Index.
func buildTeachers(rows []models.Teacher, weekly map[string][]models.TeacherWeeklyAvailability, unavailable map[string][]models.TeacherUnavailability) []scheduling.Teacher {
	out := make([]scheduling.Teacher, 0, len(rows))
	for _, row := range rows {
		byWeekday := make(map[time.Weekday][]scheduling.TimeInterval)
		for _, a := range weekly[row.ID] {
			wd := time.Weekday(a.Weekday)
			byWeekday[wd] = append(byWeekday[wd], scheduling.TimeInterval{
				Start: time.Duration(a.StartMinute) * time.Minute,
				End:   time.Duration(a.EndMinute) * time.Minute,
			})
		}
		var weeklyAvail []scheduling.WeeklyAvailability
		for wd, intervals := range byWeekday {
			weeklyAvail = append(weeklyAvail, scheduling.WeeklyAvailability{Weekday: wd, Intervals: intervals})
		}

		var ranges []scheduling.DateRange
		for _, u := range unavailable[row.ID] {
			ranges = append(ranges, scheduling.DateRange{Start: u.StartDate, End: u.EndDate})
		}

		out = append(out, scheduling.Teacher{
			ID:                 row.ID,
			Name:               row.FullName,
			Weekly:             weeklyAvail,
			UnavailableRanges:  ranges,
			MaxWeeklyLoadHours: row.MaxWeeklyLoadHours,
		})
	}
	return out
}

func buildClassGroups(rows []models.ClassGroup, unavailable map[string][]models.ClassGroupUnavailability) []scheduling.ClassGroup {
	out := make([]scheduling.ClassGroup, 0, len(rows))
	for _, row := range rows {
		var ranges []scheduling.DateRange
		for _, u := range unavailable[row.ID] {
			ranges = append(ranges, scheduling.DateRange{Start: u.StartDate, End: u.EndDate})
		}
		out = append(out, scheduling.ClassGroup{
			ID:                row.ID,
			Name:              row.Name,
			Size:              row.Size,
			UnavailableRanges: ranges,
		})
	}
	return out
}

func buildRooms(rows []models.Room, equipment map[string][]models.RoomEquipment, software map[string][]models.RoomSoftware) []scheduling.Room {
	out := make([]scheduling.Room, 0, len(rows))
	for _, row := range rows {
		eq := make(map[string]struct{})
		for _, e := range equipment[row.ID] {
			eq[e.Item] = struct{}{}
		}
		sw := make(map[string]struct{})
		for _, s := range software[row.ID] {
			sw[s.Item] = struct{}{}
		}
		out = append(out, scheduling.Room{
			ID:        row.ID,
			Name:      row.Name,
			Capacity:  row.Capacity,
			Computers: row.Computers,
			Equipment: eq,
			Software:  sw,
		})
	}
	return out
}

func buildCourses(rows []models.Course, equipment map[string][]models.CourseEquipmentRequirement, software map[string][]models.CourseSoftwareRequirement) []scheduling.Course {
	out := make([]scheduling.Course, 0, len(rows))
	for _, row := range rows {
		eq := make(map[string]struct{})
		for _, e := range equipment[row.ID] {
			eq[e.Item] = struct{}{}
		}
		sw := make(map[string]struct{})
		for _, s := range software[row.ID] {
			sw[s.Item] = struct{}{}
		}
		out = append(out, scheduling.Course{
			ID:                 row.ID,
			Name:               row.Name,
			Type:               courseTypeToScheduling(row.Type),
			SessionLengthHours: row.SessionLengthHours,
			SessionsRequired:   row.SessionsRequired,
			WindowStart:        row.WindowStart,
			WindowEnd:          row.WindowEnd,
			Priority:           row.Priority,
			RequiredEquipment:  eq,
			RequiredSoftware:   sw,
			RequiredComputers:  row.RequiredComputers,
		})
	}
	return out
}

func buildLinks(rows []models.CourseClassLink) []scheduling.CourseClassLink {
	out := make([]scheduling.CourseClassLink, 0, len(rows))
	for _, row := range rows {
		out = append(out, scheduling.CourseClassLink{
			ID:           row.ID,
			CourseID:     row.CourseID,
			ClassGroupID: row.ClassGroupID,
			GroupCount:   row.GroupCount,
			TeacherAID:   row.TeacherAID,
			TeacherBID:   strOrEmpty(row.TeacherBID),
			SubgroupA:    strOrEmpty(row.SubgroupA),
			SubgroupB:    strOrEmpty(row.SubgroupB),
		})
	}
	return out
}

func buildClosings(rows []models.ClosingPeriod) []scheduling.ClosingPeriod {
	out := make([]scheduling.ClosingPeriod, 0, len(rows))
	for _, row := range rows {
		out = append(out, scheduling.ClosingPeriod{
			ID:    row.ID,
			Range: scheduling.DateRange{Start: row.StartDate, End: row.EndDate},
			Label: row.Label,
		})
	}
	return out
}

func buildAllowedWeeks(rows []models.AllowedWeek) []scheduling.AllowedWeek {
	out := make([]scheduling.AllowedWeek, 0, len(rows))
	for _, row := range rows {
		out = append(out, scheduling.AllowedWeek{
			CourseID:  row.CourseID,
			WeekStart: row.WeekStart,
			Quota:     row.Quota,
		})
	}
	return out
}

// buildExistingSessions converts previously-persisted sessions into the
// engine's in-memory representation, resolving CM attendance rows so the
// planner's per-course placed count and the Availability Index agree with
// what is already on the calendar.
func buildExistingSessions(rows []models.Session, attendance map[string][]models.SessionAttendance) []scheduling.Session {
	out := make([]scheduling.Session, 0, len(rows))
	for _, row := range rows {
		var attending []string
		if row.Type == models.CourseTypeCM {
			for _, a := range attendance[row.ID] {
				attending = append(attending, a.ClassGroupID)
			}
		}
		out = append(out, scheduling.Session{
			ID:                     row.ID,
			CourseID:               row.CourseID,
			ClassGroupID:           row.ClassGroupID,
			Subgroup:               strOrEmpty(row.Subgroup),
			TeacherID:              row.TeacherID,
			SecondaryTeacherID:     strOrEmpty(row.SecondaryTeacherID),
			RoomID:                 row.RoomID,
			Start:                  row.Start,
			End:                    row.End,
			Type:                   courseTypeToScheduling(row.Type),
			AttendingClassGroupIDs: attending,
		})
	}
	return out
}

// toPersistedSession converts a placed engine session back to its
// persistence shape. It returns the row plus the extra class-groups (beyond
// ClassGroupID itself) that must be recorded as CM attendees.
func toPersistedSession(s scheduling.Session) (models.Session, []string) {
	row := models.Session{
		ID:                 s.ID,
		CourseID:           s.CourseID,
		ClassGroupID:       s.ClassGroupID,
		Subgroup:           emptyToNil(s.Subgroup),
		TeacherID:          s.TeacherID,
		SecondaryTeacherID: emptyToNil(s.SecondaryTeacherID),
		RoomID:             s.RoomID,
		Type:               courseTypeFromScheduling(s.Type),
		Start:              s.Start,
		End:                s.End,
	}
	var extras []string
	for _, id := range s.AttendingClassGroupIDs {
		if id != s.ClassGroupID {
			extras = append(extras, id)
		}
	}
	return row, extras
}
