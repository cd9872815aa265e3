package models

import "time"

// CourseType tags the kind of session a course produces, mirroring
// scheduling.CourseType at the persistence boundary.
type CourseType string

const (
	CourseTypeCM   CourseType = "CM"
	CourseTypeSAE  CourseType = "SAE"
	CourseTypeEval CourseType = "EVAL"
	CourseTypeTD   CourseType = "TD"
	CourseTypeTP   CourseType = "TP"
)

// Course is the schedulable unit: a type, a duration, a target session count.
type Course struct {
	ID                 string     `db:"id" json:"id"`
	Name               string     `db:"name" json:"name"`
	Type               CourseType `db:"type" json:"type"`
	SessionLengthHours float64    `db:"session_length_hours" json:"session_length_hours"`
	SessionsRequired   int        `db:"sessions_required" json:"sessions_required"`
	WindowStart        time.Time  `db:"window_start" json:"window_start"`
	WindowEnd          time.Time  `db:"window_end" json:"window_end"`
	Priority           int        `db:"priority" json:"priority"`
	RequiredComputers  int        `db:"required_computers" json:"required_computers"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures supported filters for listing courses.
type CourseFilter struct {
	Type      CourseType
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CourseEquipmentRequirement is a join row naming one piece of equipment a
// course's room must have.
type CourseEquipmentRequirement struct {
	CourseID string `db:"course_id" json:"course_id"`
	Item     string `db:"item" json:"item"`
}

// CourseSoftwareRequirement is a join row naming one piece of software a
// course's room must have installed.
type CourseSoftwareRequirement struct {
	CourseID string `db:"course_id" json:"course_id"`
	Item     string `db:"item" json:"item"`
}
