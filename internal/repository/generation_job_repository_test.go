package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolforge/timetable-engine/internal/models"
)

func newGenerationJobRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGenerationJobRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newGenerationJobRepoMock(t)
	defer cleanup()
	repo := NewGenerationJobRepository(db)

	mock.ExpectExec("INSERT INTO generation_jobs").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), models.GenerationStatusQueued, 0, nil, "user-1", sqlmock.AnyArg(), nil, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.GenerationJob{
		Params: models.GenerationParams{
			WindowStart: time.Now(),
			WindowEnd:   time.Now().Add(7 * 24 * time.Hour),
		},
		CreatedBy: "user-1",
	}
	err := repo.Create(context.Background(), job)
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.GenerationStatusQueued, job.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationJobRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newGenerationJobRepoMock(t)
	defer cleanup()
	repo := NewGenerationJobRepository(db)

	rows := sqlmock.NewRows([]string{"id", "params", "status", "progress", "schedule_log_id", "created_by", "created_at", "finished_at", "error_message"}).
		AddRow("job-1", []byte(`{"windowStart":"2026-08-03T00:00:00Z","windowEnd":"2026-08-10T00:00:00Z"}`), models.GenerationStatusProcessing, 42, nil, "user-1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, params, status, progress, schedule_log_id, created_by, created_at, finished_at, error_message")).
		WithArgs("job-1").
		WillReturnRows(rows)

	job, err := repo.FindByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.GenerationStatusProcessing, job.Status)
	assert.Equal(t, 42, job.Progress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationJobRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newGenerationJobRepoMock(t)
	defer cleanup()
	repo := NewGenerationJobRepository(db)

	status := models.GenerationStatusFinished
	progress := 100
	logID := "log-1"
	finishedAt := time.Now()

	mock.ExpectExec("UPDATE generation_jobs SET status = \\$1, progress = \\$2, schedule_log_id = \\$3, finished_at = \\$4 WHERE id = \\$5").
		WithArgs(status, progress, logID, sqlmock.AnyArg(), "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateGenerationJobParams{
		Status:        &status,
		Progress:      &progress,
		ScheduleLogID: &logID,
		FinishedAt:    &finishedAt,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerationJobRepositoryUpdateNoFields(t *testing.T) {
	db, _, cleanup := newGenerationJobRepoMock(t)
	defer cleanup()
	repo := NewGenerationJobRepository(db)

	err := repo.Update(context.Background(), "job-1", UpdateGenerationJobParams{})
	require.NoError(t, err)
}

func TestGenerationJobRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newGenerationJobRepoMock(t)
	defer cleanup()
	repo := NewGenerationJobRepository(db)

	rows := sqlmock.NewRows([]string{"id", "params", "status", "progress", "schedule_log_id", "created_by", "created_at", "finished_at", "error_message"}).
		AddRow("job-1", []byte(`{}`), models.GenerationStatusQueued, 0, nil, "user-1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, params, status, progress, schedule_log_id, created_by, created_at, finished_at, error_message")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
