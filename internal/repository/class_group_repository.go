package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolforge/timetable-engine/internal/models"
)

// ClassGroupRepository manages persistence for class-groups.
type ClassGroupRepository struct {
	db *sqlx.DB
}

// NewClassGroupRepository constructs a new class-group repository.
func NewClassGroupRepository(db *sqlx.DB) *ClassGroupRepository {
	return &ClassGroupRepository{db: db}
}

// List returns class-groups matching filter criteria.
func (r *ClassGroupRepository) List(ctx context.Context, filter models.ClassGroupFilter) ([]models.ClassGroup, int, error) {
	base := "FROM class_groups WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Grade != "" {
		conditions = append(conditions, fmt.Sprintf("grade = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.Track != "" {
		conditions = append(conditions, fmt.Sprintf("track = $%d", len(args)+1))
		args = append(args, filter.Track)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d)", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]bool{
		"name":       true,
		"grade":      true,
		"track":      true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, grade, track, size, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var groups []models.ClassGroup
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list class groups: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count class groups: %w", err)
	}
	return groups, total, nil
}

// ListAll returns every class-group, used to seed the availability index
// before a planning run.
func (r *ClassGroupRepository) ListAll(ctx context.Context) ([]models.ClassGroup, error) {
	const query = `SELECT id, name, grade, track, size, created_at, updated_at FROM class_groups ORDER BY name ASC`
	var groups []models.ClassGroup
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list all class groups: %w", err)
	}
	return groups, nil
}

// FindByID returns a class-group by ID.
func (r *ClassGroupRepository) FindByID(ctx context.Context, id string) (*models.ClassGroup, error) {
	const query = `SELECT id, name, grade, track, size, created_at, updated_at FROM class_groups WHERE id = $1`
	var group models.ClassGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ExistsByName checks if a class-group with the same name already exists.
func (r *ClassGroupRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM class_groups WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class group name: %w", err)
	}
	return true, nil
}

// Create persists a class-group record.
func (r *ClassGroupRepository) Create(ctx context.Context, group *models.ClassGroup) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now

	const query = `INSERT INTO class_groups (id, name, grade, track, size, created_at, updated_at) VALUES (:id, :name, :grade, :track, :size, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("create class group: %w", err)
	}
	return nil
}

// Update modifies a class-group record.
func (r *ClassGroupRepository) Update(ctx context.Context, group *models.ClassGroup) error {
	group.UpdatedAt = time.Now().UTC()
	const query = `UPDATE class_groups SET name = :name, grade = :grade, track = :track, size = :size, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, group); err != nil {
		return fmt.Errorf("update class group: %w", err)
	}
	return nil
}

// Delete removes a class-group record.
func (r *ClassGroupRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM class_groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class group: %w", err)
	}
	return nil
}

// CountCourseLinks returns how many course links are attached to a class-group.
func (r *ClassGroupRepository) CountCourseLinks(ctx context.Context, classGroupID string) (int, error) {
	const query = `SELECT COUNT(*) FROM course_class_links WHERE class_group_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classGroupID); err != nil {
		return 0, fmt.Errorf("count class group course links: %w", err)
	}
	return count, nil
}

// Unavailability returns one-off closures affecting a class-group (e.g. a field trip).
func (r *ClassGroupRepository) Unavailability(ctx context.Context, classGroupID string) ([]models.ClassGroupUnavailability, error) {
	const query = `SELECT id, class_group_id, start_date, end_date, reason, created_at FROM class_group_unavailability WHERE class_group_id = $1 ORDER BY start_date`
	var rows []models.ClassGroupUnavailability
	if err := r.db.SelectContext(ctx, &rows, query, classGroupID); err != nil {
		return nil, fmt.Errorf("list class group unavailability: %w", err)
	}
	return rows, nil
}
