package dto

import "time"

// GenerateRequest instructs the engine to plan sessions over a window.
type GenerateRequest struct {
	WindowStart time.Time `json:"windowStart" validate:"required"`
	WindowEnd   time.Time `json:"windowEnd" validate:"required,gtfield=WindowStart"`
	CourseIDs   []string  `json:"courseIds"`
}

// GenerateResponse acknowledges a queued generation run.
type GenerateResponse struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

// GenerationStatusResponse reports the live progress of a run.
type GenerationStatusResponse struct {
	JobID         string    `json:"jobId"`
	Status        string    `json:"status"`
	Progress      int       `json:"progress"`
	ScheduleLogID *string   `json:"scheduleLogId,omitempty"`
	ErrorMessage  *string   `json:"errorMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
}

// PlacedSessionView is one session in a generation result.
type PlacedSessionView struct {
	ID                 string    `json:"id"`
	CourseID           string    `json:"courseId"`
	ClassGroupID       string    `json:"classGroupId"`
	Subgroup           *string   `json:"subgroup,omitempty"`
	TeacherID          string    `json:"teacherId"`
	SecondaryTeacherID *string   `json:"secondaryTeacherId,omitempty"`
	RoomID             string    `json:"roomId"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
}

// UnplacedRequestView names a request the engine could not satisfy.
type UnplacedRequestView struct {
	CourseID     string `json:"courseId"`
	ClassGroupID string `json:"classGroupId"`
	Subgroup     *string `json:"subgroup,omitempty"`
	Reason       string `json:"reason"`
	Attempts     int    `json:"attempts"`
}

// GenerationResultResponse returns the placements and failures of a finished run.
type GenerationResultResponse struct {
	JobID         string                 `json:"jobId"`
	ScheduleLogID string                 `json:"scheduleLogId"`
	PlacedCount   int                    `json:"placedCount"`
	FailedCount   int                    `json:"failedCount"`
	Sessions      []PlacedSessionView    `json:"sessions"`
	Unplaced      []UnplacedRequestView  `json:"unplaced"`
}
