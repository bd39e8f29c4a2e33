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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/school-portal/api/swagger"
	"github.com/noah-isme/school-portal/internal/apiclient"
	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/handler"
	"github.com/noah-isme/school-portal/internal/middleware"
	"github.com/noah-isme/school-portal/internal/repository"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/internal/session"
	"github.com/noah-isme/school-portal/pkg/cache"
	"github.com/noah-isme/school-portal/pkg/config"
	"github.com/noah-isme/school-portal/pkg/database"
	"github.com/noah-isme/school-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-portal/pkg/middleware/requestid"
	"github.com/noah-isme/school-portal/pkg/storage"
)

// @title School Portal
// @version 1.0.0
// @description Session-backed portal in front of the school management REST API
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, durable sessions kept in memory", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	var auditStore service.AuditStore
	if cfg.Audit.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect database", "error", err)
		}
		defer db.Close() //nolint:errcheck
		if err := database.EnsureAuditSchema(ctx, db); err != nil {
			logr.Sugar().Fatalw("failed to prepare audit schema", "error", err)
		}
		auditStore = repository.NewAuditRepository(db)
	}

	metricsSvc := service.NewMetricsService()
	validator := form.NewValidator()

	client := apiclient.New(apiclient.Options{
		BaseURL:      cfg.Backend.BaseURL,
		Timeout:      cfg.Backend.Timeout,
		MaxBodyBytes: cfg.Backend.MaxResponseBytes,
		Logger:       logr,
		Metrics:      metricsSvc,
	})

	var durable session.Store = session.NewMemoryStore()
	var cacheSvc *service.CacheService
	if redisClient != nil {
		durable = repository.NewSessionRepository(redisClient, cfg.Session.DurableTTL)
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient), metricsSvc,
			cfg.Reference.CacheTTL, logr, cfg.Reference.CacheEnabled)
	}

	guard := session.NewGuard(session.Config{
		Secret:       cfg.Session.Secret,
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
		DurableTTL:   cfg.Session.DurableTTL,
	}, session.NewMemoryStore(), durable, logr)

	workspaces := service.NewWorkspaceRegistry(client, cacheSvc, validator, metricsSvc, logr)
	audit := service.NewAuditService(auditStore, logr).WithMetrics(metricsSvc)
	accounts := repository.NewAccountRepository(client)
	attendance := service.NewAttendanceService(validator, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare export storage", "dir", cfg.Reports.StorageDir, "error", err)
	}
	reports := service.NewReportService(attendance, validator, exportStore,
		storage.NewDownloadSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL),
		metricsSvc, logr, service.ReportConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			RetryDelay: 2 * time.Second,
			JobTimeout: time.Minute,
		})
	reports.Start(ctx)
	defer reports.Stop()
	go sweepExports(ctx, exportStore, cfg.Reports.SignedURLTTL, logr)

	handlers := &handler.Handlers{
		Auth:       handler.NewAuthHandler(service.NewAuthService(accounts, guard, workspaces, audit, validator, logr), guard),
		Admin:      handler.NewAdminHandler(service.NewAdminService(logr)),
		Notices:    handler.NewNoticeHandler(),
		Students:   handler.NewStudentHandler(service.NewStudentService(logr)),
		Teachers:   handler.NewTeacherHandler(service.NewTeacherService(logr)),
		Courses:    handler.NewCourseHandler(service.NewCourseService(validator, logr)),
		Exams:      handler.NewExamHandler(service.NewExamService(logr)),
		Fees:       handler.NewFeeHandler(service.NewFeeService(logr)),
		Library:    handler.NewLibraryHandler(service.NewLibraryService(logr)),
		Attendance: handler.NewAttendanceHandler(attendance),
		Scheduler:  handler.NewSchedulerHandler(service.NewSchedulerService(logr)),
		Parent:     handler.NewParentHandler(service.NewParentService(attendance, logr)),
		Reports:    handler.NewReportHandler(reports),
		Settings:   handler.NewSettingsHandler(service.NewSettingsService(audit, validator, logr)),
		Profile:    handler.NewProfileHandler(service.NewProfileService(accounts, guard, validator, logr)),
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
		r.GET("/metrics/summary", metricsHandler.Summary)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers.Register(r, guard, workspaces, audit)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// sweepExports removes rendered exports whose download links have expired.
func sweepExports(ctx context.Context, store *storage.LocalStorage, ttl time.Duration, logr *zap.Logger) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.CleanupOlderThan(ttl)
			if err != nil {
				logr.Sugar().Warnw("export cleanup failed", "error", err)
				continue
			}
			if len(removed) > 0 {
				logr.Sugar().Infow("expired exports removed", "count", len(removed))
			}
		}
	}
}
