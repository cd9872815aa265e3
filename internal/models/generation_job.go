package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// GenerationStatus captures the background job lifecycle for a timetable
// generation run.
type GenerationStatus string

const (
	GenerationStatusQueued     GenerationStatus = "QUEUED"
	GenerationStatusProcessing GenerationStatus = "PROCESSING"
	GenerationStatusFinished   GenerationStatus = "FINISHED"
	GenerationStatusFailed     GenerationStatus = "FAILED"
	GenerationStatusCancelled  GenerationStatus = "CANCELLED"
)

// GenerationJob is persisted metadata for one asynchronous run of the
// weekly planner over a requested window.
type GenerationJob struct {
	ID           string            `db:"id" json:"id"`
	Params       GenerationParams  `db:"params" json:"params"`
	Status       GenerationStatus  `db:"status" json:"status"`
	Progress     int               `db:"progress" json:"progress"`
	ScheduleLogID *string          `db:"schedule_log_id" json:"schedule_log_id,omitempty"`
	CreatedBy    string            `db:"created_by" json:"created_by"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time        `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string           `db:"error_message" json:"error_message,omitempty"`
}

// GenerationParams stores request-scoped options persisted as JSONB.
type GenerationParams struct {
	WindowStart time.Time         `json:"windowStart"`
	WindowEnd   time.Time         `json:"windowEnd"`
	CourseIDs   []string          `json:"courseIds,omitempty"`
	Extras      map[string]string `json:"extras,omitempty"`
}

// Value marshals params to JSON for persistence.
func (p GenerationParams) Value() (driver.Value, error) {
	if p.Extras == nil {
		p.Extras = map[string]string{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal generation params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *GenerationParams) Scan(value interface{}) error {
	if value == nil {
		*p = GenerationParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for GenerationParams", value)
	}
	if len(data) == 0 {
		*p = GenerationParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal generation params: %w", err)
	}
	return nil
}
