package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolforge/timetable-engine/internal/models"
)

// CourseClassLinkRepository persists course-to-class-group links.
type CourseClassLinkRepository struct {
	db *sqlx.DB
}

// NewCourseClassLinkRepository constructs the repository.
func NewCourseClassLinkRepository(db *sqlx.DB) *CourseClassLinkRepository {
	return &CourseClassLinkRepository{db: db}
}

// ListByCourse returns links for a course with descriptive joins.
func (r *CourseClassLinkRepository) ListByCourse(ctx context.Context, courseID string) ([]models.CourseClassLinkDetail, error) {
	const query = `
SELECT l.id, l.course_id, l.class_group_id, l.group_count, l.teacher_a_id, l.teacher_b_id, l.subgroup_a, l.subgroup_b, l.created_at,
       c.name AS course_name, g.name AS class_group_name, ta.full_name AS teacher_a_name, tb.full_name AS teacher_b_name
FROM course_class_links l
JOIN courses c ON c.id = l.course_id
JOIN class_groups g ON g.id = l.class_group_id
JOIN teachers ta ON ta.id = l.teacher_a_id
LEFT JOIN teachers tb ON tb.id = l.teacher_b_id
WHERE l.course_id = $1
ORDER BY g.name ASC`
	var links []models.CourseClassLinkDetail
	if err := r.db.SelectContext(ctx, &links, query, courseID); err != nil {
		return nil, fmt.Errorf("list course class links: %w", err)
	}
	return links, nil
}

// ListByClassGroup returns links for a class-group with descriptive joins.
func (r *CourseClassLinkRepository) ListByClassGroup(ctx context.Context, classGroupID string) ([]models.CourseClassLinkDetail, error) {
	const query = `
SELECT l.id, l.course_id, l.class_group_id, l.group_count, l.teacher_a_id, l.teacher_b_id, l.subgroup_a, l.subgroup_b, l.created_at,
       c.name AS course_name, g.name AS class_group_name, ta.full_name AS teacher_a_name, tb.full_name AS teacher_b_name
FROM course_class_links l
JOIN courses c ON c.id = l.course_id
JOIN class_groups g ON g.id = l.class_group_id
JOIN teachers ta ON ta.id = l.teacher_a_id
LEFT JOIN teachers tb ON tb.id = l.teacher_b_id
WHERE l.class_group_id = $1
ORDER BY c.priority DESC, c.name ASC`
	var links []models.CourseClassLinkDetail
	if err := r.db.SelectContext(ctx, &links, query, classGroupID); err != nil {
		return nil, fmt.Errorf("list course class links by class group: %w", err)
	}
	return links, nil
}

// ListAllActive returns every link for courses active in [start, end), used
// to seed the session request builder for a generation run.
func (r *CourseClassLinkRepository) ListAllActive(ctx context.Context, start, end time.Time) ([]models.CourseClassLink, error) {
	const query = `
SELECT l.id, l.course_id, l.class_group_id, l.group_count, l.teacher_a_id, l.teacher_b_id, l.subgroup_a, l.subgroup_b, l.created_at
FROM course_class_links l
JOIN courses c ON c.id = l.course_id
WHERE c.window_start < $2 AND c.window_end >= $1`
	var links []models.CourseClassLink
	if err := r.db.SelectContext(ctx, &links, query, start, end); err != nil {
		return nil, fmt.Errorf("list active course class links: %w", err)
	}
	return links, nil
}

// Exists checks if the course-class-group tuple already has a link.
func (r *CourseClassLinkRepository) Exists(ctx context.Context, courseID, classGroupID string) (bool, error) {
	const query = `SELECT 1 FROM course_class_links WHERE course_id = $1 AND class_group_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, courseID, classGroupID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check course class link: %w", err)
	}
	return true, nil
}

// Create inserts a new link.
func (r *CourseClassLinkRepository) Create(ctx context.Context, link *models.CourseClassLink) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}
	const query = `INSERT INTO course_class_links (id, course_id, class_group_id, group_count, teacher_a_id, teacher_b_id, subgroup_a, subgroup_b, created_at)
		VALUES (:id, :course_id, :class_group_id, :group_count, :teacher_a_id, :teacher_b_id, :subgroup_a, :subgroup_b, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create course class link: %w", err)
	}
	return nil
}

// Delete removes a link verifying ownership by course.
func (r *CourseClassLinkRepository) Delete(ctx context.Context, courseID, linkID string) error {
	const query = `DELETE FROM course_class_links WHERE id = $1 AND course_id = $2`
	result, err := r.db.ExecContext(ctx, query, linkID, courseID)
	if err != nil {
		return fmt.Errorf("delete course class link: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted course class link rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
