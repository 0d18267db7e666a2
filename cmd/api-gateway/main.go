package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/lms-batch-api/api/swagger"
	"github.com/noah-isme/lms-batch-api/internal/demo"
	"github.com/noah-isme/lms-batch-api/internal/handler"
	"github.com/noah-isme/lms-batch-api/internal/middleware"
	"github.com/noah-isme/lms-batch-api/internal/models"
	"github.com/noah-isme/lms-batch-api/internal/repository"
	"github.com/noah-isme/lms-batch-api/internal/service"
	"github.com/noah-isme/lms-batch-api/internal/upstream"
	rediscache "github.com/noah-isme/lms-batch-api/pkg/cache"
	"github.com/noah-isme/lms-batch-api/pkg/config"
	"github.com/noah-isme/lms-batch-api/pkg/database"
	"github.com/noah-isme/lms-batch-api/pkg/jobs"
	"github.com/noah-isme/lms-batch-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lms-batch-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lms-batch-api/pkg/middleware/requestid"
)

// upstreamAPI is the full surface of the external batch/enrollment API, met
// by both the real HTTP client and the demo provider.
type upstreamAPI interface {
	FetchBatch(ctx context.Context, batchID string) (*models.Batch, error)
	FetchEnrollments(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentRecord, error)
	FetchAllStudents(ctx context.Context) ([]models.Student, error)
	UpdateBatchStatus(ctx context.Context, batchID string, status models.BatchStatus) error
	EnrollStudent(ctx context.Context, req upstream.EnrollRequest) (*models.EnrollmentRecord, error)
	RemoveStudent(ctx context.Context, batchID, studentID string) error
	UpdateEnrollmentRecord(ctx context.Context, enrollmentID string, status models.EnrollmentStatus) error
}

// @title LMS Batch API
// @version 0.1.0
// @description Batch lifecycle and enrollment management core
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
	sugar := logr.Sugar()

	var api upstreamAPI
	if cfg.Demo.Enabled {
		sugar.Warnw("demo mode enabled, serving seeded data", "seed", cfg.Demo.Seed)
		api = demo.New(cfg.Demo.Seed, logr)
	} else {
		api = upstream.New(cfg.Upstream, logr)
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if client, err := rediscache.NewRedis(cfg.Redis); err != nil {
		sugar.Warnw("redis unavailable, aggregate caching disabled", "error", err)
	} else {
		repo := repository.NewCacheRepository(client, logr)
		defer repo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(repo, metrics, cfg.Analytics.CacheTTL, logr, true)
	}

	var auditRepo *repository.AuditRepository
	var db *sqlx.DB
	if cfg.Audit.Enabled {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			sugar.Warnw("postgres unavailable, audit trail disabled", "error", err)
		} else {
			defer db.Close() //nolint:errcheck
			auditRepo = repository.NewAuditRepository(db)
		}
	}

	store := service.NewBatchStore()
	notifier := service.NewLogNotifier(logr)
	lifecycle := service.NewLifecycleService(api, store, notifier, metrics, logr)
	reconciler := service.NewReconcilerService(api, store, notifier, metrics, logr)
	analytics := service.NewAnalyticsService()
	exports := service.NewExportService()
	authSvc := service.NewAuthService(cfg.JWT)

	var dashboard *service.DashboardService
	reloadQueue := jobs.NewQueue("dashboard-reload", func(ctx context.Context, job jobs.Job) error {
		batchID, ok := job.Payload.(string)
		if !ok || batchID == "" {
			return fmt.Errorf("reload job %s has no batch id", job.ID)
		}
		_, err := dashboard.Load(ctx, batchID, true)
		return err
	}, jobs.QueueConfig{Workers: cfg.Dashboard.ReloadWorkers, Logger: logr})

	params := service.DashboardServiceParams{
		Loader:     api,
		Store:      store,
		Reconciler: reconciler,
		Lifecycle:  lifecycle,
		Analytics:  analytics,
		Cache:      cacheSvc,
		Reloads:    reloadQueue,
		Logger:     logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:    cfg.Dashboard.CacheTTL,
			ReloadDelay: cfg.Dashboard.ReloadDelay,
		},
	}
	if auditRepo != nil {
		params.Audits = auditRepo
	}
	dashboard = service.NewDashboardService(params)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloadQueue.Start(ctx)
	defer reloadQueue.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if db != nil {
			if err := db.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	batchHandler := handler.NewBatchHandler(dashboard)
	enrollmentHandler := handler.NewEnrollmentHandler(dashboard)
	analyticsHandler := handler.NewAnalyticsHandler(dashboard)
	exportHandler := handler.NewExportHandler(dashboard, exports)

	apiGroup := r.Group(cfg.APIPrefix)
	apiGroup.Use(middleware.OptionalJWT(authSvc))

	apiGroup.GET("/batches/:id/dashboard", batchHandler.Dashboard)
	apiGroup.GET("/batches/:id/analytics", analyticsHandler.Aggregates)
	apiGroup.GET("/batches/:id/export", exportHandler.Roster)
	apiGroup.GET("/analytics/instructor-workload", analyticsHandler.Workload)

	mutations := apiGroup.Group("")
	mutations.Use(middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor))
	mutations.POST("/batches/:id/refresh", batchHandler.Refresh)
	mutations.POST("/batches/:id/transition", batchHandler.Transition)
	mutations.DELETE("/batches/:id/dashboard", batchHandler.Evict)
	mutations.POST("/batches/:id/enrollments", enrollmentHandler.Enroll)
	mutations.DELETE("/batches/:id/enrollments/:studentId", enrollmentHandler.Unenroll)
	mutations.PUT("/batches/:id/enrollments/:studentId/status", enrollmentHandler.UpdateStatus)

	if auditRepo != nil {
		auditHandler := handler.NewAuditHandler(auditRepo)
		apiGroup.GET("/audits", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), auditHandler.List)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	sugar.Infow("server starting", "addr", addr, "env", cfg.Env, "demo", cfg.Demo.Enabled)
	if err := r.Run(addr); err != nil {
		sugar.Fatalw("server failed", "error", err)
	}
}
