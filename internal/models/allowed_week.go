package models

import "time"

// AllowedWeek restricts (and optionally caps) placements for a course in a
// given ISO week. Absence of entries for a course means every week in its
// planning window is allowed, with no quota.
type AllowedWeek struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	WeekStart time.Time `db:"week_start" json:"week_start"`
	Quota     *int      `db:"quota" json:"quota,omitempty"`
}
