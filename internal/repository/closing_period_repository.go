package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolforge/timetable-engine/internal/models"
)

// ClosingPeriodRepository persists calendar ranges excluded from placement.
type ClosingPeriodRepository struct {
	db *sqlx.DB
}

// NewClosingPeriodRepository constructs the repository.
func NewClosingPeriodRepository(db *sqlx.DB) *ClosingPeriodRepository {
	return &ClosingPeriodRepository{db: db}
}

// ListOverlapping returns closing periods intersecting [start, end), used to
// seed the calendar before a planning run.
func (r *ClosingPeriodRepository) ListOverlapping(ctx context.Context, start, end time.Time) ([]models.ClosingPeriod, error) {
	const query = `SELECT id, label, start_date, end_date, created_at FROM closing_periods WHERE start_date < $2 AND end_date >= $1 ORDER BY start_date ASC`
	var periods []models.ClosingPeriod
	if err := r.db.SelectContext(ctx, &periods, query, start, end); err != nil {
		return nil, fmt.Errorf("list closing periods: %w", err)
	}
	return periods, nil
}

// ListAll returns every closing period.
func (r *ClosingPeriodRepository) ListAll(ctx context.Context) ([]models.ClosingPeriod, error) {
	const query = `SELECT id, label, start_date, end_date, created_at FROM closing_periods ORDER BY start_date ASC`
	var periods []models.ClosingPeriod
	if err := r.db.SelectContext(ctx, &periods, query); err != nil {
		return nil, fmt.Errorf("list all closing periods: %w", err)
	}
	return periods, nil
}

// Create inserts a new closing period.
func (r *ClosingPeriodRepository) Create(ctx context.Context, period *models.ClosingPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	if period.CreatedAt.IsZero() {
		period.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO closing_periods (id, label, start_date, end_date, created_at) VALUES (:id, :label, :start_date, :end_date, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create closing period: %w", err)
	}
	return nil
}

// Delete removes a closing period by id.
func (r *ClosingPeriodRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM closing_periods WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete closing period: %w", err)
	}
	return nil
}
