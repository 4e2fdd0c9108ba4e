package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/formatrack/engagement-api/api/swagger"
	"github.com/formatrack/engagement-api/internal/handler"
	"github.com/formatrack/engagement-api/internal/middleware"
	"github.com/formatrack/engagement-api/internal/repository"
	"github.com/formatrack/engagement-api/internal/scoring"
	"github.com/formatrack/engagement-api/internal/service"
	"github.com/formatrack/engagement-api/pkg/cache"
	"github.com/formatrack/engagement-api/pkg/config"
	"github.com/formatrack/engagement-api/pkg/database"
	"github.com/formatrack/engagement-api/pkg/jobs"
	"github.com/formatrack/engagement-api/pkg/logger"
	corsmiddleware "github.com/formatrack/engagement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/formatrack/engagement-api/pkg/middleware/requestid"
)

// @title FormaTrack Engagement API
// @version 1.0.0
// @description Student engagement and dropout-risk scoring engine
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close()
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Cache.TTL, logr, true)
	}

	progressRepo := repository.NewProgressRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	alternanceRepo := repository.NewAlternanceRepository(db)
	traineeRepo := repository.NewTraineeRepository(db)

	policy := scoring.PolicyFromConfig(cfg.Scoring)

	assessmentService := service.NewAssessmentService(service.AssessmentServiceParams{
		Progress:   progressRepo,
		Attendance: attendanceRepo,
		Cache:      cacheService,
		Metrics:    metricsService,
		Policy:     policy,
		CacheTTL:   cfg.Cache.TTL,
		Logger:     logr,
	})

	attendanceService := service.NewAttendanceService(service.AttendanceServiceParams{
		Facts:     attendanceRepo,
		Sessions:  sessionRepo,
		Refresher: assessmentService,
		Policy:    policy,
		Logger:    logr,
	})

	progressService := service.NewProgressService(service.ProgressServiceParams{
		Repo:       progressRepo,
		Identities: traineeRepo,
		Refresher:  assessmentService,
		Logger:     logr,
	})

	alternanceService := service.NewAlternanceService(service.AlternanceServiceParams{
		Progress:   progressRepo,
		Alternance: alternanceRepo,
		Policy:     policy,
		Logger:     logr,
	})

	bulkParams := service.BulkServiceParams{
		Progress:   progressRepo,
		Attendance: attendanceRepo,
		Programs:   traineeRepo,
		Cache:      cacheService,
		Metrics:    metricsService,
		Policy:     policy,
		BatchSize:  cfg.Bulk.BatchSize,
		Logger:     logr,
	}
	bulkService := service.NewBulkService(bulkParams)

	bulkQueue := jobs.NewQueue("bulk-recompute", bulkService.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Bulk.Workers,
		BufferSize: cfg.Bulk.QueueSize,
		MaxRetries: cfg.Bulk.MaxRetries,
		RetryDelay: cfg.Bulk.RetryDelay,
		Logger:     logr,
	})
	bulkService.AttachQueue(bulkQueue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	bulkQueue.Start(ctx)
	defer bulkQueue.Stop()

	progressHandler := handler.NewProgressHandler(progressService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	assessmentHandler := handler.NewAssessmentHandler(assessmentService, bulkService)
	alternanceHandler := handler.NewAlternanceHandler(alternanceService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		trainee := api.Group("/trainees/:traineeId")
		{
			program := trainee.Group("/programs/:programId")
			{
				program.POST("/link", progressHandler.Link)
				program.GET("/progress", progressHandler.Get)
				program.PUT("/modules/:moduleId", progressHandler.UpdateModule)
				program.PUT("/chapters/:chapterId", progressHandler.UpdateChapter)
				program.POST("/activity", progressHandler.RecordActivity)
				program.GET("/attendance", attendanceHandler.Summary)
				program.GET("/assessment", assessmentHandler.Get)
				program.POST("/assessment/recompute", assessmentHandler.Recompute)
				program.POST("/alternance", alternanceHandler.Evaluate)
			}

			session := trainee.Group("/sessions/:sessionId")
			{
				session.POST("/present", attendanceHandler.MarkPresent)
				session.POST("/absent", attendanceHandler.MarkAbsent)
				session.POST("/late", attendanceHandler.MarkLate)
				session.POST("/partial", attendanceHandler.MarkPartial)
				session.POST("/arrival", attendanceHandler.RecordArrival)
				session.POST("/departure", attendanceHandler.RecordDeparture)
			}
		}

		api.POST("/programs/:programId/assessments/recompute", assessmentHandler.BulkRecompute)
		api.GET("/system/metrics", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
