package models

import "time"

// CourseClassLink binds a course to a class-group, with an optional
// subgroup split (group_count=2 requires subgroup labels and a second
// teacher).
type CourseClassLink struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	ClassGroupID string    `db:"class_group_id" json:"class_group_id"`
	GroupCount   int       `db:"group_count" json:"group_count"`
	TeacherAID   string    `db:"teacher_a_id" json:"teacher_a_id"`
	TeacherBID   *string   `db:"teacher_b_id" json:"teacher_b_id,omitempty"`
	SubgroupA    *string   `db:"subgroup_a" json:"subgroup_a,omitempty"`
	SubgroupB    *string   `db:"subgroup_b" json:"subgroup_b,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CourseClassLinkDetail enriches a link with descriptive fields for
// read-heavy responses.
type CourseClassLinkDetail struct {
	CourseClassLink
	CourseName     string  `db:"course_name" json:"course_name"`
	ClassGroupName string  `db:"class_group_name" json:"class_group_name"`
	TeacherAName   string  `db:"teacher_a_name" json:"teacher_a_name"`
	TeacherBName   *string `db:"teacher_b_name" json:"teacher_b_name,omitempty"`
}
