package models

import "time"

// Session is a single placed occurrence of a course: one teacher (plus an
// optional secondary for SAE), one room, one time range, for one class-group
// or subgroup.
type Session struct {
	ID                string    `db:"id" json:"id"`
	CourseID          string    `db:"course_id" json:"course_id"`
	ClassGroupID      string    `db:"class_group_id" json:"class_group_id"`
	Subgroup          *string   `db:"subgroup" json:"subgroup,omitempty"`
	TeacherID         string    `db:"teacher_id" json:"teacher_id"`
	SecondaryTeacherID *string  `db:"secondary_teacher_id" json:"secondary_teacher_id,omitempty"`
	RoomID            string    `db:"room_id" json:"room_id"`
	Type              CourseType `db:"type" json:"type"`
	Start             time.Time `db:"start_time" json:"start_time"`
	End               time.Time `db:"end_time" json:"end_time"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// SessionFilter describes query params for listing placed sessions.
type SessionFilter struct {
	CourseID     string
	ClassGroupID string
	TeacherID    string
	RoomID       string
	WeekStart    *time.Time
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// SessionAttendance is a join row recording which class-group attends a
// shared CM session alongside the one it was originally requested for.
type SessionAttendance struct {
	SessionID    string `db:"session_id" json:"session_id"`
	ClassGroupID string `db:"class_group_id" json:"class_group_id"`
}

// SessionConflict describes an existing session that collides with a
// candidate placement.
type SessionConflict struct {
	SessionID string `json:"session_id"`
	CourseID  string `json:"course_id"`
	TeacherID string `json:"teacher_id"`
	RoomID    string `json:"room_id"`
	Start     time.Time `json:"start_time"`
	End       time.Time `json:"end_time"`
	Dimension string `json:"dimension"`
}

// SessionConflictError is returned when a session would collide with an
// existing one despite the engine's own checks, e.g. on direct import.
type SessionConflictError struct {
	Type     string            `json:"type"`
	Message  string            `json:"message"`
	Conflict SessionConflict   `json:"conflict"`
	Errors   []SessionConflict `json:"errors,omitempty"`
}

// Error implements the error interface for conflict errors.
func (e *SessionConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
