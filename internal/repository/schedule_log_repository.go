package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/schoolforge/timetable-engine/internal/models"
)

// ScheduleLogRepository persists versioned outcomes of generation runs.
type ScheduleLogRepository struct {
	db *sqlx.DB
}

// NewScheduleLogRepository constructs the repository.
func NewScheduleLogRepository(db *sqlx.DB) *ScheduleLogRepository {
	return &ScheduleLogRepository{db: db}
}

func (r *ScheduleLogRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a log entry assigning the next version for the window.
func (r *ScheduleLogRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, log *models.ScheduleLog) error {
	if log == nil {
		return fmt.Errorf("schedule log payload is nil")
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Status == "" {
		log.Status = models.ScheduleLogStatusDraft
	}
	if len(log.Meta) == 0 {
		log.Meta = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if log.CreatedAt.IsZero() {
		log.CreatedAt = now
	}
	log.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM schedule_logs WHERE window_start = $1 AND window_end = $2`
	if err := sqlx.GetContext(ctx, target, &log.Version, nextVersionQuery, log.WindowStart, log.WindowEnd); err != nil {
		return fmt.Errorf("compute next schedule log version: %w", err)
	}

	const insertQuery = `
INSERT INTO schedule_logs (id, generation_job_id, window_start, window_end, version, status, placed_count, failed_count, meta, created_at, updated_at)
VALUES (:id, :generation_job_id, :window_start, :window_end, :version, :status, :placed_count, :failed_count, :meta, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, log); err != nil {
		return fmt.Errorf("insert schedule log: %w", err)
	}
	return nil
}

// ListByWindow returns all versions for the given planning window.
func (r *ScheduleLogRepository) ListByWindow(ctx context.Context, start, end time.Time) ([]models.ScheduleLog, error) {
	const query = `SELECT id, generation_job_id, window_start, window_end, version, status, placed_count, failed_count, meta, created_at, updated_at
FROM schedule_logs WHERE window_start = $1 AND window_end = $2 ORDER BY version DESC`
	var logs []models.ScheduleLog
	if err := r.db.SelectContext(ctx, &logs, query, start, end); err != nil {
		return nil, fmt.Errorf("list schedule logs: %w", err)
	}
	return logs, nil
}

// FindByID loads a log by its identifier.
func (r *ScheduleLogRepository) FindByID(ctx context.Context, id string) (*models.ScheduleLog, error) {
	const query = `SELECT id, generation_job_id, window_start, window_end, version, status, placed_count, failed_count, meta, created_at, updated_at FROM schedule_logs WHERE id = $1`
	var log models.ScheduleLog
	if err := r.db.GetContext(ctx, &log, query, id); err != nil {
		return nil, err
	}
	return &log, nil
}

// InsertFailures records the unplaced requests left over from a run.
func (r *ScheduleLogRepository) InsertFailures(ctx context.Context, exec sqlx.ExtContext, failures []models.ScheduleLogFailure) error {
	target := r.exec(exec)
	const insert = `INSERT INTO schedule_log_failures (id, schedule_log_id, course_id, class_group_id, subgroup, reason, attempts)
		VALUES (:id, :schedule_log_id, :course_id, :class_group_id, :subgroup, :reason, :attempts)`
	for i := range failures {
		payload := failures[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if _, err := sqlx.NamedExecContext(ctx, target, insert, &payload); err != nil {
			return fmt.Errorf("insert schedule log failure: %w", err)
		}
	}
	return nil
}

// ListFailures returns the unplaced requests recorded against a log version.
func (r *ScheduleLogRepository) ListFailures(ctx context.Context, scheduleLogID string) ([]models.ScheduleLogFailure, error) {
	const query = `SELECT id, schedule_log_id, course_id, class_group_id, subgroup, reason, attempts
FROM schedule_log_failures WHERE schedule_log_id = $1 ORDER BY course_id, class_group_id`
	var failures []models.ScheduleLogFailure
	if err := r.db.SelectContext(ctx, &failures, query, scheduleLogID); err != nil {
		return nil, fmt.Errorf("list schedule log failures: %w", err)
	}
	return failures, nil
}

// Delete removes a stored log version.
func (r *ScheduleLogRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM schedule_logs WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete schedule log: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("schedule log rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus updates the status (and optionally meta) of a log.
func (r *ScheduleLogRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.ScheduleLogStatus, meta types.JSONText) error {
	target := r.exec(exec)
	now := time.Now().UTC()

	var (
		query string
		args  []interface{}
	)
	if len(meta) > 0 {
		query = `UPDATE schedule_logs SET status = $1, meta = $2, updated_at = $3 WHERE id = $4`
		args = []interface{}{status, meta, now, id}
	} else {
		query = `UPDATE schedule_logs SET status = $1, updated_at = $2 WHERE id = $3`
		args = []interface{}{status, now, id}
	}
	result, err := target.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update schedule log status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("schedule log status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
