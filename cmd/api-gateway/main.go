package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/schoolforge/timetable-engine/api/swagger"
	"github.com/schoolforge/timetable-engine/internal/handler"
	"github.com/schoolforge/timetable-engine/internal/models"
	"github.com/schoolforge/timetable-engine/internal/repository"
	"github.com/schoolforge/timetable-engine/internal/service"
	"github.com/schoolforge/timetable-engine/pkg/config"
	"github.com/schoolforge/timetable-engine/pkg/database"
	"github.com/schoolforge/timetable-engine/pkg/logger"
	corsmiddleware "github.com/schoolforge/timetable-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/schoolforge/timetable-engine/pkg/middleware/requestid"
)

// @title Timetable Engine API
// @version 0.1.0
// @description Automatic school timetable generation engine
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	teacherRepo := repository.NewTeacherRepository(db)
	classGroupRepo := repository.NewClassGroupRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	linkRepo := repository.NewCourseClassLinkRepository(db)
	closingRepo := repository.NewClosingPeriodRepository(db)
	allowedWeekRepo := repository.NewAllowedWeekRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	scheduleLogRepo := repository.NewScheduleLogRepository(db)
	generationJobRepo := repository.NewGenerationJobRepository(db)

	generationCfg := service.GenerationServiceConfig{MaxDuration: cfg.Generation.MaxDuration}
	jobRunner := service.NewJobRunner(service.JobRunnerConfig{
		Workers:    cfg.Generation.Workers,
		BufferSize: cfg.Generation.BufferSize,
		Logger:     logr,
	}, func(jobID string, status models.GenerationStatus, progress int, scheduleLogID *string, errMsg *string) {
		params := repository.UpdateGenerationJobParams{Status: &status, Progress: &progress, ScheduleLogID: scheduleLogID, ErrorMessage: errMsg}
		if status == models.GenerationStatusFinished || status == models.GenerationStatusFailed || status == models.GenerationStatusCancelled {
			now := time.Now().UTC()
			params.FinishedAt = &now
		}
		if err := generationJobRepo.Update(context.Background(), jobID, params); err != nil {
			logr.Sugar().Errorw("failed to persist generation job update", "job_id", jobID, "error", err)
		}
	})

	generationSvc := service.NewGenerationService(
		teacherRepo,
		classGroupRepo,
		roomRepo,
		courseRepo,
		linkRepo,
		closingRepo,
		allowedWeekRepo,
		sessionRepo,
		scheduleLogRepo,
		generationJobRepo,
		db,
		jobRunner,
		logr,
		generationCfg,
	)

	bgCtx := context.Background()
	jobRunner.Start(bgCtx)
	defer jobRunner.Stop()
	if cfg.Generation.RecoverOnBoot {
		generationSvc.RecoverPendingJobs(bgCtx)
	}

	generationHandler := handler.NewGenerationHandler(generationSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/generate", generationHandler.Submit)
	api.GET("/generate/:id/status", generationHandler.Status)
	api.GET("/generate/:id/result", generationHandler.Result)
	api.DELETE("/generate/:id", generationHandler.Cancel)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
