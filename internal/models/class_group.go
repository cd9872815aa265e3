package models

import "time"

// ClassGroup is a cohort of students scheduled as a unit.
type ClassGroup struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Grade     string    `db:"grade" json:"grade"`
	Track     string    `db:"track" json:"track"`
	Size      int       `db:"size" json:"size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassGroupFilter defines filter criteria for listing class-groups.
type ClassGroupFilter struct {
	Grade     string
	Track     string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ClassGroupUnavailability is a date-range during which a class-group
// cannot receive any session (e.g. an internship or field-trip block).
type ClassGroupUnavailability struct {
	ID           string    `db:"id" json:"id"`
	ClassGroupID string    `db:"class_group_id" json:"class_group_id"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	Reason       *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
