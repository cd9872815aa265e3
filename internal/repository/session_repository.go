package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolforge/timetable-engine/internal/models"
)

const sessionColumns = "id, course_id, class_group_id, subgroup, teacher_id, secondary_teacher_id, room_id, type, start_time, end_time, created_at, updated_at"

// SessionRepository provides persistence for placed sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns sessions matching filters along with total count.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	base := "FROM sessions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.ClassGroupID != "" {
		conditions = append(conditions, fmt.Sprintf("class_group_id = $%d", len(args)+1))
		args = append(args, filter.ClassGroupID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("(teacher_id = $%d OR secondary_teacher_id = $%d)", len(args)+1, len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.WeekStart != nil {
		conditions = append(conditions, fmt.Sprintf("start_time >= $%d AND start_time < $%d", len(args)+1, len(args)+2))
		args = append(args, *filter.WeekStart, filter.WeekStart.AddDate(0, 0, 7))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "start_time"
	}
	allowedSorts := map[string]bool{"start_time": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "start_time"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", sessionColumns, base, sortBy, order, size, offset)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	return sessions, total, nil
}

// FindByID loads a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1`, sessionColumns)
	var s models.Session
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListInWindow returns every session starting on or after start and before
// end, ordered by start time. Used to seed the in-memory index before a
// planning run.
func (r *SessionRepository) ListInWindow(ctx context.Context, start, end time.Time) ([]models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE start_time >= $1 AND start_time < $2 ORDER BY start_time ASC`, sessionColumns)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, start, end); err != nil {
		return nil, fmt.Errorf("list sessions in window: %w", err)
	}
	return sessions, nil
}

// ListByClassGroup returns sessions for a class-group ordered by start time.
func (r *SessionRepository) ListByClassGroup(ctx context.Context, classGroupID string) ([]models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE class_group_id = $1 ORDER BY start_time ASC`, sessionColumns)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, classGroupID); err != nil {
		return nil, fmt.Errorf("list sessions by class group: %w", err)
	}
	return sessions, nil
}

// Attendees returns the class-groups sharing a CM session besides its
// primary class_group_id.
func (r *SessionRepository) Attendees(ctx context.Context, sessionID string) ([]models.SessionAttendance, error) {
	const query = `SELECT session_id, class_group_id FROM session_attendance WHERE session_id = $1`
	var rows []models.SessionAttendance
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session attendance: %w", err)
	}
	return rows, nil
}

// Create stores a new session and its extra CM attendees within a transaction.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session, extraAttendees []string) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create session: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO sessions (id, course_id, class_group_id, subgroup, teacher_id, secondary_teacher_id, room_id, type, start_time, end_time, created_at, updated_at)
		VALUES (:id, :course_id, :class_group_id, :subgroup, :teacher_id, :secondary_teacher_id, :room_id, :type, :start_time, :end_time, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insert, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	for _, classGroupID := range extraAttendees {
		if _, err = tx.ExecContext(ctx, `INSERT INTO session_attendance (session_id, class_group_id) VALUES ($1, $2)`, session.ID, classGroupID); err != nil {
			return fmt.Errorf("create session attendance: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create session: %w", err)
	}
	return nil
}

// BulkCreate inserts many sessions within a single transaction. It writes
// session rows only; attendance rows are not inserted.
func (r *SessionRepository) BulkCreate(ctx context.Context, sessions []models.Session) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk create sessions: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const insert = `INSERT INTO sessions (id, course_id, class_group_id, subgroup, teacher_id, secondary_teacher_id, room_id, type, start_time, end_time, created_at, updated_at)
		VALUES (:id, :course_id, :class_group_id, :subgroup, :teacher_id, :secondary_teacher_id, :room_id, :type, :start_time, :end_time, :created_at, :updated_at)`
	for i := range sessions {
		payload := sessions[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now
		if _, err = tx.NamedExecContext(ctx, insert, &payload); err != nil {
			return fmt.Errorf("bulk insert session: %w", err)
		}
		sessions[i] = payload
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk create sessions: %w", err)
	}
	return nil
}

// Delete removes a session by id.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteInWindow removes every session starting inside [start, end).
func (r *SessionRepository) DeleteInWindow(ctx context.Context, start, end time.Time) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE start_time >= $1 AND start_time < $2`, start, end); err != nil {
		return fmt.Errorf("delete sessions in window: %w", err)
	}
	return nil
}
