package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ScheduleLogStatus represents lifecycle phases for a generated timetable version.
type ScheduleLogStatus string

const (
	ScheduleLogStatusDraft     ScheduleLogStatus = "DRAFT"
	ScheduleLogStatusPublished ScheduleLogStatus = "PUBLISHED"
	ScheduleLogStatusArchived  ScheduleLogStatus = "ARCHIVED"
)

// ScheduleLog captures one versioned outcome of a generation job over a
// planning window: which sessions it produced and at what cost. Generation
// runs create logs as DRAFT; nothing in this repository moves a log to
// PUBLISHED or ARCHIVED.
type ScheduleLog struct {
	ID            string            `db:"id" json:"id"`
	GenerationJobID string          `db:"generation_job_id" json:"generation_job_id"`
	WindowStart   time.Time         `db:"window_start" json:"window_start"`
	WindowEnd     time.Time         `db:"window_end" json:"window_end"`
	Version       int               `db:"version" json:"version"`
	Status        ScheduleLogStatus `db:"status" json:"status"`
	PlacedCount   int               `db:"placed_count" json:"placed_count"`
	FailedCount   int               `db:"failed_count" json:"failed_count"`
	Meta          types.JSONText    `db:"meta" json:"meta"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// ScheduleLogFailure is a single unplaced request recorded against a log,
// carrying the typed rejection reason the evaluator last returned for it.
type ScheduleLogFailure struct {
	ID            string  `db:"id" json:"id"`
	ScheduleLogID string  `db:"schedule_log_id" json:"schedule_log_id"`
	CourseID      string  `db:"course_id" json:"course_id"`
	ClassGroupID  string  `db:"class_group_id" json:"class_group_id"`
	Subgroup      *string `db:"subgroup" json:"subgroup,omitempty"`
	Reason        string  `db:"reason" json:"reason"`
	Attempts      int     `db:"attempts" json:"attempts"`
}

// ScheduleLogSummary aggregates the versions available for a planning window.
type ScheduleLogSummary struct {
	WindowStart time.Time         `json:"window_start"`
	WindowEnd   time.Time         `json:"window_end"`
	ActiveID    *string           `json:"active_id,omitempty"`
	Versions    []ScheduleLogMeta `json:"versions"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ScheduleLogMeta is a lightweight view of a log for list endpoints.
type ScheduleLogMeta struct {
	ID          string            `json:"id"`
	Version     int               `json:"version"`
	Status      ScheduleLogStatus `json:"status"`
	PlacedCount int               `json:"placed_count"`
	FailedCount int               `json:"failed_count"`
	CreatedAt   time.Time         `json:"created_at"`
}
