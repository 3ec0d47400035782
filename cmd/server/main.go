package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/coaching-admin-api/api/swagger"
	"github.com/noah-isme/coaching-admin-api/internal/handler"
	internalmiddleware "github.com/noah-isme/coaching-admin-api/internal/middleware"
	"github.com/noah-isme/coaching-admin-api/internal/repository"
	"github.com/noah-isme/coaching-admin-api/internal/service"
	"github.com/noah-isme/coaching-admin-api/pkg/cache"
	"github.com/noah-isme/coaching-admin-api/pkg/config"
	"github.com/noah-isme/coaching-admin-api/pkg/database"
	"github.com/noah-isme/coaching-admin-api/pkg/jobs"
	"github.com/noah-isme/coaching-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/coaching-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coaching-admin-api/pkg/middleware/requestid"
	"github.com/noah-isme/coaching-admin-api/pkg/storage"
)

// @title Coaching Admin API
// @version 1.0.0
// @description Reporting and bookkeeping backend for the coaching-center admin dashboard
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	var redisClient redis.UniversalClient
	if cfg.Reports.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
		} else {
			redisClient = client
			defer client.Close()
		}
	}

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	validate := validator.New()
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), metricsSvc, cfg.Reports.CacheTTL, logr, redisClient != nil)

	attendanceRepo := repository.NewAttendanceRepository(db)
	collectionRepo := repository.NewCollectionRepository(db, cfg.Reports.Location)
	studentRepo := repository.NewStudentRepository(db)

	opts := service.ReportOptions{
		Cache:        cacheSvc,
		Metrics:      metricsSvc,
		Logger:       logr,
		QueryTimeout: cfg.QueryTimeout,
		CacheTTL:     cfg.Reports.CacheTTL,
	}
	attendanceReports := service.NewAttendanceReportService(attendanceRepo, opts)
	financeReports := service.NewFinanceReportService(collectionRepo, opts)
	studentReports := service.NewStudentReportService(studentRepo, opts)

	attendanceSvc := service.NewAttendanceService(attendanceRepo, cacheSvc, validate, logr)
	collectionSvc := service.NewCollectionService(collectionRepo, cacheSvc, validate, logr)

	var exportHandler *handler.ExportHandler
	if cfg.Exports.Enabled {
		reportSvc, queue, err := setupExports(ctx, cfg, db, attendanceReports, financeReports, studentReports, metricsSvc, logr)
		if err != nil {
			logr.Fatal("failed to initialise exports", zap.Error(err))
		}
		defer queue.Stop()
		exportHandler = handler.NewExportHandler(reportSvc)
	} else {
		exportHandler = handler.NewExportHandler(nil)
	}

	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	reportHandler := handler.NewReportHandler(attendanceReports, financeReports, studentReports)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	collectionHandler := handler.NewCollectionHandler(collectionSvc)

	api := r.Group(cfg.APIPrefix)
	{
		reports := api.Group("/reports")
		reports.GET("/attendance", reportHandler.Attendance)
		reports.GET("/finance", reportHandler.Finance)
		reports.GET("/students", reportHandler.Students)
		reports.POST("/export", exportHandler.Create)
		reports.GET("/export/:id", exportHandler.Status)

		api.GET("/export/:token", exportHandler.Download)

		api.POST("/attendance/students", attendanceHandler.MarkStudents)
		api.POST("/attendance/staff", attendanceHandler.MarkStaff)

		api.POST("/collections", collectionHandler.Create)
		api.POST("/collections/:id/approve", collectionHandler.Approve)

		api.GET("/system/metrics", metricsHandler.System)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func setupExports(
	ctx context.Context,
	cfg *config.Config,
	db *sqlx.DB,
	attendance *service.AttendanceReportService,
	finance *service.FinanceReportService,
	students *service.StudentReportService,
	metrics *service.MetricsService,
	logr *zap.Logger,
) (*service.ReportService, *jobs.Queue, error) {
	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SigningSecret, cfg.Exports.URLTTL)
	exporter := service.NewExportService(attendance, finance, students, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.URLTTL,
	}, logr)

	jobRepo := repository.NewReportJobRepository(db)
	worker := service.NewReportWorker(jobRepo, exporter, metrics, logr)
	queue := jobs.NewQueue("report-exports", worker.Handle, jobs.QueueConfig{
		Workers:     cfg.Exports.WorkerConcurrency,
		MaxRetries:  cfg.Exports.WorkerRetries,
		RetryDelay:  2 * time.Second,
		Logger:      logr,
		OnExhausted: worker.Fail,
	})
	metrics.SetQueueDepthFunc(queue.Pending)
	queue.Start(ctx)

	reportSvc := service.NewReportService(jobRepo, queue, exporter, metrics, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Exports.URLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	reportSvc.RecoverPendingJobs(ctx)
	reportSvc.StartCleanup(ctx)
	return reportSvc, queue, nil
}
