package models

import "time"

// Teacher represents an instructor eligible for session assignment.
type Teacher struct {
	ID                 string    `db:"id" json:"id"`
	FullName           string    `db:"full_name" json:"full_name"`
	Email              *string   `db:"email" json:"email,omitempty"`
	MaxWeeklyLoadHours *int      `db:"max_weekly_load_hours" json:"max_weekly_load_hours,omitempty"`
	Active             bool      `db:"active" json:"active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
