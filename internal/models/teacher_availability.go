package models

import "time"

// TeacherWeeklyAvailability is one recurring available interval for a
// teacher on a given weekday (0=Sunday, per time.Weekday).
type TeacherWeeklyAvailability struct {
	ID           string `db:"id" json:"id"`
	TeacherID    string `db:"teacher_id" json:"teacher_id"`
	Weekday      int    `db:"weekday" json:"weekday"`
	StartMinute  int    `db:"start_minute" json:"start_minute"`
	EndMinute    int    `db:"end_minute" json:"end_minute"`
}

// TeacherUnavailability is a date-range during which a teacher cannot be
// assigned any session, regardless of their recurring availability.
type TeacherUnavailability struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
