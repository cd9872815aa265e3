package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolforge/timetable-engine/internal/models"
)

// AllowedWeekRepository persists per-course week restrictions and quotas.
type AllowedWeekRepository struct {
	db *sqlx.DB
}

// NewAllowedWeekRepository constructs the repository.
func NewAllowedWeekRepository(db *sqlx.DB) *AllowedWeekRepository {
	return &AllowedWeekRepository{db: db}
}

// ListByCourse returns allowed-week entries for a course ordered by week.
func (r *AllowedWeekRepository) ListByCourse(ctx context.Context, courseID string) ([]models.AllowedWeek, error) {
	const query = `SELECT id, course_id, week_start, quota FROM allowed_weeks WHERE course_id = $1 ORDER BY week_start ASC`
	var weeks []models.AllowedWeek
	if err := r.db.SelectContext(ctx, &weeks, query, courseID); err != nil {
		return nil, fmt.Errorf("list allowed weeks: %w", err)
	}
	return weeks, nil
}

// ListForCourses returns allowed-week entries for many courses at once, used
// to build the planner's per-course quota index in one round trip.
func (r *AllowedWeekRepository) ListForCourses(ctx context.Context, courseIDs []string) ([]models.AllowedWeek, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, course_id, week_start, quota FROM allowed_weeks WHERE course_id IN (?) ORDER BY course_id, week_start ASC`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("build allowed weeks query: %w", err)
	}
	query = r.db.Rebind(query)
	var weeks []models.AllowedWeek
	if err := r.db.SelectContext(ctx, &weeks, query, args...); err != nil {
		return nil, fmt.Errorf("list allowed weeks for courses: %w", err)
	}
	return weeks, nil
}

// Create inserts a new allowed-week restriction.
func (r *AllowedWeekRepository) Create(ctx context.Context, week *models.AllowedWeek) error {
	if week.ID == "" {
		week.ID = uuid.NewString()
	}
	const query = `INSERT INTO allowed_weeks (id, course_id, week_start, quota) VALUES (:id, :course_id, :week_start, :quota)`
	if _, err := r.db.NamedExecContext(ctx, query, week); err != nil {
		return fmt.Errorf("create allowed week: %w", err)
	}
	return nil
}

// Delete removes an allowed-week restriction by id.
func (r *AllowedWeekRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM allowed_weeks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete allowed week: %w", err)
	}
	return nil
}
