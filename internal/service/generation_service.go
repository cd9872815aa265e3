package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/schoolforge/timetable-engine/internal/dto"
	"github.com/schoolforge/timetable-engine/internal/models"
	"github.com/schoolforge/timetable-engine/internal/repository"
	"github.com/schoolforge/timetable-engine/internal/scheduling"
	appErrors "github.com/schoolforge/timetable-engine/pkg/errors"
)

type teacherReader interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
	WeeklyAvailability(ctx context.Context, teacherID string) ([]models.TeacherWeeklyAvailability, error)
	Unavailability(ctx context.Context, teacherID string) ([]models.TeacherUnavailability, error)
}

type classGroupReader interface {
	ListAll(ctx context.Context) ([]models.ClassGroup, error)
	Unavailability(ctx context.Context, classGroupID string) ([]models.ClassGroupUnavailability, error)
}

type roomReader interface {
	ListAll(ctx context.Context) ([]models.Room, error)
	Equipment(ctx context.Context, roomID string) ([]models.RoomEquipment, error)
	Software(ctx context.Context, roomID string) ([]models.RoomSoftware, error)
}

type courseReader interface {
	ListActiveInWindow(ctx context.Context, start, end time.Time) ([]models.Course, error)
	EquipmentRequirements(ctx context.Context, courseID string) ([]models.CourseEquipmentRequirement, error)
	SoftwareRequirements(ctx context.Context, courseID string) ([]models.CourseSoftwareRequirement, error)
}

type courseClassLinkReader interface {
	ListAllActive(ctx context.Context, start, end time.Time) ([]models.CourseClassLink, error)
}

type closingPeriodReader interface {
	ListOverlapping(ctx context.Context, start, end time.Time) ([]models.ClosingPeriod, error)
}

type allowedWeekReader interface {
	ListForCourses(ctx context.Context, courseIDs []string) ([]models.AllowedWeek, error)
}

type sessionStore interface {
	ListInWindow(ctx context.Context, start, end time.Time) ([]models.Session, error)
	Attendees(ctx context.Context, sessionID string) ([]models.SessionAttendance, error)
	Create(ctx context.Context, session *models.Session, extraAttendees []string) error
}

type scheduleLogStore interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, log *models.ScheduleLog) error
	InsertFailures(ctx context.Context, exec sqlx.ExtContext, failures []models.ScheduleLogFailure) error
	FindByID(ctx context.Context, id string) (*models.ScheduleLog, error)
	ListFailures(ctx context.Context, scheduleLogID string) ([]models.ScheduleLogFailure, error)
}

type generationJobStore interface {
	Create(ctx context.Context, job *models.GenerationJob) error
	FindByID(ctx context.Context, id string) (*models.GenerationJob, error)
	Update(ctx context.Context, id string, params repository.UpdateGenerationJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.GenerationJob, error)
}

type generationTxProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// GenerationService orchestrates the end-to-end lifecycle of a timetable
// generation run: request validation, dataset loading, delegating to the
// scheduling engine, persisting the outcome, and exposing progress.
type GenerationService struct {
	teachers   teacherReader
	classes    classGroupReader
	rooms      roomReader
	courses    courseReader
	links      courseClassLinkReader
	closings   closingPeriodReader
	allowed    allowedWeekReader
	sessions   sessionStore
	logs       scheduleLogStore
	jobs       generationJobStore
	tx         generationTxProvider
	runner     *JobRunner
	logger     *zap.Logger
	cfg        GenerationServiceConfig
}

// GenerationServiceConfig governs run-time bounds for the engine.
type GenerationServiceConfig struct {
	// MaxDuration bounds wall-clock time per run; zero means no deadline.
	MaxDuration time.Duration
}

// NewGenerationService wires generation dependencies.
func NewGenerationService(
	teachers teacherReader,
	classes classGroupReader,
	rooms roomReader,
	courses courseReader,
	links courseClassLinkReader,
	closings closingPeriodReader,
	allowed allowedWeekReader,
	sessions sessionStore,
	logs scheduleLogStore,
	jobs generationJobStore,
	tx generationTxProvider,
	runner *JobRunner,
	logger *zap.Logger,
	cfg GenerationServiceConfig,
) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{
		teachers: teachers,
		classes:  classes,
		rooms:    rooms,
		courses:  courses,
		links:    links,
		closings: closings,
		allowed:  allowed,
		sessions: sessions,
		logs:     logs,
		jobs:     jobs,
		tx:       tx,
		runner:   runner,
		logger:   logger,
		cfg:      cfg,
	}
}

// OnJobUpdate persists job lifecycle transitions reported by the runner. Wire
// this as the JobRunner's onUpdate callback.
func (s *GenerationService) OnJobUpdate(jobID string, status models.GenerationStatus, progress int, scheduleLogID *string, errMsg *string) {
	params := repository.UpdateGenerationJobParams{Status: &status, Progress: &progress}
	if scheduleLogID != nil {
		params.ScheduleLogID = scheduleLogID
	}
	if errMsg != nil {
		params.ErrorMessage = errMsg
	}
	if status == models.GenerationStatusFinished || status == models.GenerationStatusFailed || status == models.GenerationStatusCancelled {
		now := time.Now().UTC()
		params.FinishedAt = &now
	}
	if err := s.jobs.Update(context.Background(), jobID, params); err != nil {
		s.logger.Sugar().Errorw("failed to persist generation job update", "job_id", jobID, "error", err)
	}
}

// Submit validates a generation request, records a queued job, and hands the
// run to the JobRunner.
func (s *GenerationService) Submit(ctx context.Context, req dto.GenerateRequest, actorID string) (*dto.GenerateResponse, error) {
	if !req.WindowEnd.After(req.WindowStart) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "windowEnd must be after windowStart")
	}

	job := &models.GenerationJob{
		Params: models.GenerationParams{
			WindowStart: req.WindowStart,
			WindowEnd:   req.WindowEnd,
			CourseIDs:   req.CourseIDs,
		},
		Status:    models.GenerationStatusQueued,
		CreatedBy: actorID,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create generation job")
	}

	if err := s.runner.Submit(job.ID, s.work(req.WindowStart, req.WindowEnd, req.CourseIDs)); err != nil {
		failed := models.GenerationStatusFailed
		msg := err.Error()
		now := time.Now().UTC()
		_ = s.jobs.Update(ctx, job.ID, repository.UpdateGenerationJobParams{Status: &failed, ErrorMessage: &msg, FinishedAt: &now})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit generation job")
	}

	return &dto.GenerateResponse{JobID: job.ID, Status: string(models.GenerationStatusQueued)}, nil
}

// Status reports the live progress of a run.
func (s *GenerationService) Status(ctx context.Context, jobID string) (*dto.GenerationStatusResponse, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation job")
	}
	return &dto.GenerationStatusResponse{
		JobID:         job.ID,
		Status:        string(job.Status),
		Progress:      job.Progress,
		ScheduleLogID: job.ScheduleLogID,
		ErrorMessage:  job.ErrorMessage,
		CreatedAt:     job.CreatedAt,
		FinishedAt:    job.FinishedAt,
	}, nil
}

// Cancel requests cancellation of a running or queued job.
func (s *GenerationService) Cancel(jobID string) bool {
	return s.runner.Cancel(jobID)
}

// Result returns the placements and failures of a finished run.
func (s *GenerationService) Result(ctx context.Context, jobID string) (*dto.GenerationResultResponse, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation job")
	}
	if job.Status != models.GenerationStatusFinished || job.ScheduleLogID == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "generation run has not finished")
	}

	log, err := s.logs.FindByID(ctx, *job.ScheduleLogID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule log")
	}

	placedRows, err := s.sessions.ListInWindow(ctx, log.WindowStart, log.WindowEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load placed sessions")
	}
	sessions := make([]dto.PlacedSessionView, 0, len(placedRows))
	for _, row := range placedRows {
		sessions = append(sessions, dto.PlacedSessionView{
			ID:                 row.ID,
			CourseID:           row.CourseID,
			ClassGroupID:       row.ClassGroupID,
			Subgroup:           row.Subgroup,
			TeacherID:          row.TeacherID,
			SecondaryTeacherID: row.SecondaryTeacherID,
			RoomID:             row.RoomID,
			Start:              row.Start,
			End:                row.End,
		})
	}

	failureRows, err := s.logs.ListFailures(ctx, log.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule log failures")
	}
	unplaced := make([]dto.UnplacedRequestView, 0, len(failureRows))
	for _, f := range failureRows {
		unplaced = append(unplaced, dto.UnplacedRequestView{
			CourseID:     f.CourseID,
			ClassGroupID: f.ClassGroupID,
			Subgroup:     f.Subgroup,
			Reason:       f.Reason,
			Attempts:     f.Attempts,
		})
	}

	return &dto.GenerationResultResponse{
		JobID:         job.ID,
		ScheduleLogID: log.ID,
		PlacedCount:   log.PlacedCount,
		FailedCount:   log.FailedCount,
		Sessions:      sessions,
		Unplaced:      unplaced,
	}, nil
}

// work closes over the requested window and returns the JobWork the runner
// invokes on its own goroutine.
func (s *GenerationService) work(windowStart, windowEnd time.Time, courseIDs []string) JobWork {
	return func(ctx context.Context, jobID string, report func(percent int)) (string, error) {
		return s.run(ctx, jobID, windowStart, windowEnd, courseIDs)
	}
}

func (s *GenerationService) run(ctx context.Context, jobID string, windowStart, windowEnd time.Time, courseIDs []string) (string, error) {
	courses, err := s.courses.ListActiveInWindow(ctx, windowStart, windowEnd)
	if err != nil {
		return "", fmt.Errorf("load courses: %w", err)
	}
	if len(courseIDs) > 0 {
		wanted := make(map[string]struct{}, len(courseIDs))
		for _, id := range courseIDs {
			wanted[id] = struct{}{}
		}
		filtered := courses[:0]
		for _, c := range courses {
			if _, ok := wanted[c.ID]; ok {
				filtered = append(filtered, c)
			}
		}
		courses = filtered
	}

	links, err := s.links.ListAllActive(ctx, windowStart, windowEnd)
	if err != nil {
		return "", fmt.Errorf("load course class links: %w", err)
	}

	teacherRows, err := s.teachers.ListActive(ctx)
	if err != nil {
		return "", fmt.Errorf("load teachers: %w", err)
	}
	weeklyByTeacher := make(map[string][]models.TeacherWeeklyAvailability, len(teacherRows))
	unavailByTeacher := make(map[string][]models.TeacherUnavailability, len(teacherRows))
	for _, t := range teacherRows {
		weekly, err := s.teachers.WeeklyAvailability(ctx, t.ID)
		if err != nil {
			return "", fmt.Errorf("load teacher availability for %s: %w", t.ID, err)
		}
		weeklyByTeacher[t.ID] = weekly
		unavail, err := s.teachers.Unavailability(ctx, t.ID)
		if err != nil {
			return "", fmt.Errorf("load teacher unavailability for %s: %w", t.ID, err)
		}
		unavailByTeacher[t.ID] = unavail
	}

	classRows, err := s.classes.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("load class groups: %w", err)
	}
	unavailByClass := make(map[string][]models.ClassGroupUnavailability, len(classRows))
	for _, c := range classRows {
		unavail, err := s.classes.Unavailability(ctx, c.ID)
		if err != nil {
			return "", fmt.Errorf("load class group unavailability for %s: %w", c.ID, err)
		}
		unavailByClass[c.ID] = unavail
	}

	roomRows, err := s.rooms.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("load rooms: %w", err)
	}
	equipmentByRoom := make(map[string][]models.RoomEquipment, len(roomRows))
	softwareByRoom := make(map[string][]models.RoomSoftware, len(roomRows))
	for _, r := range roomRows {
		eq, err := s.rooms.Equipment(ctx, r.ID)
		if err != nil {
			return "", fmt.Errorf("load room equipment for %s: %w", r.ID, err)
		}
		equipmentByRoom[r.ID] = eq
		sw, err := s.rooms.Software(ctx, r.ID)
		if err != nil {
			return "", fmt.Errorf("load room software for %s: %w", r.ID, err)
		}
		softwareByRoom[r.ID] = sw
	}

	equipmentByCourse := make(map[string][]models.CourseEquipmentRequirement, len(courses))
	softwareByCourse := make(map[string][]models.CourseSoftwareRequirement, len(courses))
	courseIDList := make([]string, 0, len(courses))
	for _, c := range courses {
		eq, err := s.courses.EquipmentRequirements(ctx, c.ID)
		if err != nil {
			return "", fmt.Errorf("load course equipment for %s: %w", c.ID, err)
		}
		equipmentByCourse[c.ID] = eq
		sw, err := s.courses.SoftwareRequirements(ctx, c.ID)
		if err != nil {
			return "", fmt.Errorf("load course software for %s: %w", c.ID, err)
		}
		softwareByCourse[c.ID] = sw
		courseIDList = append(courseIDList, c.ID)
	}

	closingRows, err := s.closings.ListOverlapping(ctx, windowStart, windowEnd)
	if err != nil {
		return "", fmt.Errorf("load closing periods: %w", err)
	}

	allowedRows, err := s.allowed.ListForCourses(ctx, courseIDList)
	if err != nil {
		return "", fmt.Errorf("load allowed weeks: %w", err)
	}

	existingRows, err := s.sessions.ListInWindow(ctx, windowStart, windowEnd)
	if err != nil {
		return "", fmt.Errorf("load existing sessions: %w", err)
	}
	attendanceBySession := make(map[string][]models.SessionAttendance)
	for _, row := range existingRows {
		if row.Type != models.CourseTypeCM {
			continue
		}
		attendees, err := s.sessions.Attendees(ctx, row.ID)
		if err != nil {
			return "", fmt.Errorf("load session attendance for %s: %w", row.ID, err)
		}
		attendanceBySession[row.ID] = attendees
	}

	schedulingCourses := buildCourses(courses, equipmentByCourse, softwareByCourse)
	schedulingLinks := buildLinks(links)
	if dataErr := scheduling.ValidateDataset(schedulingCourses, schedulingLinks); dataErr != nil {
		return "", mapSchedulingError(dataErr)
	}

	teachers := buildTeachers(teacherRows, weeklyByTeacher, unavailByTeacher)
	classGroups := buildClassGroups(classRows, unavailByClass)
	rooms := buildRooms(roomRows, equipmentByRoom, softwareByRoom)
	closings := buildClosings(closingRows)
	allowedWeeks := buildAllowedWeeks(allowedRows)
	existing := buildExistingSessions(existingRows, attendanceBySession)

	calendar := scheduling.NewCalendar(closings)
	index := scheduling.NewAvailabilityIndex(teachers, classGroups, rooms, existing)
	placement := scheduling.NewPlacementEngine(index, calendar, schedulingLinks, existing, func() string { return uuid.NewString() })
	relocation := scheduling.NewRelocationEngine(index, placement, schedulingCourses)

	requests := scheduling.BuildRequests(schedulingCourses, schedulingLinks, existing)
	sink := scheduling.NewProgressSink(len(requests))
	planner := scheduling.NewWeeklyPlanner(index, calendar, placement, relocation, sink, s.logger)

	cancel := func() bool { return ctx.Err() != nil }
	var deadline time.Time
	if s.cfg.MaxDuration > 0 {
		deadline = time.Now().Add(s.cfg.MaxDuration)
	}

	result := planner.Run(requests, allowedWeeks, scheduling.DateRange{Start: windowStart, End: windowEnd}, cancel, deadline)
	if result.Err != nil && len(result.Placed) == 0 {
		return "", mapSchedulingError(result.Err)
	}

	logID, err := s.persist(ctx, jobID, windowStart, windowEnd, courseIDList, result)
	if err != nil {
		return "", fmt.Errorf("persist generation result: %w", err)
	}
	if result.Err != nil {
		return logID, mapSchedulingError(result.Err)
	}
	return logID, nil
}

func (s *GenerationService) persist(ctx context.Context, jobID string, windowStart, windowEnd time.Time, courseIDs []string, result scheduling.PlanResult) (string, error) {
	for _, placed := range result.Placed {
		row, extras := toPersistedSession(placed)
		if err := s.sessions.Create(ctx, &row, extras); err != nil {
			return "", fmt.Errorf("persist placed session: %w", err)
		}
	}

	metaPayload := map[string]any{
		"courseIds":  courseIDs,
		"runAt":      time.Now().UTC(),
		"interrupted": result.Err != nil,
	}
	metaBytes, err := json.Marshal(metaPayload)
	if err != nil {
		return "", fmt.Errorf("encode schedule log meta: %w", err)
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin schedule log transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	log := &models.ScheduleLog{
		GenerationJobID: jobID,
		WindowStart:     windowStart,
		WindowEnd:       windowEnd,
		Status:          models.ScheduleLogStatusDraft,
		PlacedCount:     len(result.Placed),
		FailedCount:     len(result.Failures),
		Meta:            types.JSONText(metaBytes),
	}
	if err = s.logs.CreateVersioned(ctx, tx, log); err != nil {
		return "", fmt.Errorf("create schedule log: %w", err)
	}

	failures := make([]models.ScheduleLogFailure, 0, len(result.Failures))
	for _, req := range result.Failures {
		failures = append(failures, models.ScheduleLogFailure{
			ScheduleLogID: log.ID,
			CourseID:      req.Course.ID,
			ClassGroupID:  req.ClassGroupID,
			Subgroup:      emptyToNil(req.Subgroup),
			Reason:        string(req.LastRejectReason),
			Attempts:      req.PlacementAttempts,
		})
	}
	if len(failures) > 0 {
		if err = s.logs.InsertFailures(ctx, tx, failures); err != nil {
			return "", fmt.Errorf("insert schedule log failures: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit schedule log transaction: %w", err)
	}
	return log.ID, nil
}

// mapSchedulingError normalises the scheduling engine's typed errors into
// the API-facing error taxonomy.
func mapSchedulingError(err error) error {
	if err == nil {
		return nil
	}
	var dataErr *scheduling.DataInconsistencyError
	if errors.As(err, &dataErr) {
		return appErrors.Clone(appErrors.ErrDataInconsistent, dataErr.Error())
	}
	var windowErr *scheduling.WindowEmptyError
	if errors.As(err, &windowErr) {
		return appErrors.ErrWindowEmpty
	}
	var cancelErr *scheduling.CancelledError
	if errors.As(err, &cancelErr) {
		return appErrors.ErrGenerationCancelled
	}
	var timeoutErr *scheduling.TimeoutError
	if errors.As(err, &timeoutErr) {
		return appErrors.ErrGenerationTimeout
	}
	var placementErr *scheduling.PlacementFailureError
	if errors.As(err, &placementErr) {
		return appErrors.Clone(appErrors.ErrDataInconsistent, placementErr.Error())
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generation run failed")
}

// RecoverPendingJobs resubmits jobs left QUEUED or PROCESSING after a
// process restart, since in-memory JobRunner state does not survive one.
func (s *GenerationService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.jobs.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Sugar().Warnw("failed to recover queued generation jobs", "error", err)
		return
	}
	for _, job := range pending {
		if err := s.runner.Submit(job.ID, s.work(job.Params.WindowStart, job.Params.WindowEnd, job.Params.CourseIDs)); err != nil {
			s.logger.Sugar().Warnw("failed to resubmit generation job", "job_id", job.ID, "error", err)
		}
	}
}
