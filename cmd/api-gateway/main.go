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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/canvas-gateway-api/api/swagger"
	"github.com/noah-isme/canvas-gateway-api/internal/canvas"
	"github.com/noah-isme/canvas-gateway-api/internal/handler"
	internalmiddleware "github.com/noah-isme/canvas-gateway-api/internal/middleware"
	"github.com/noah-isme/canvas-gateway-api/internal/repository"
	"github.com/noah-isme/canvas-gateway-api/internal/service"
	"github.com/noah-isme/canvas-gateway-api/pkg/cache"
	"github.com/noah-isme/canvas-gateway-api/pkg/config"
	"github.com/noah-isme/canvas-gateway-api/pkg/database"
	"github.com/noah-isme/canvas-gateway-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/canvas-gateway-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/canvas-gateway-api/pkg/middleware/requestid"
)

// @title Canvas Gateway API
// @version 1.0.0
// @description Aggregating, caching proxy in front of the Canvas LMS REST API.
// @BasePath /api/canvas
// @schemes http https

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

	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	var db *sqlx.DB
	if cfg.Database.Enabled {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect database", zap.Error(err))
		}
		defer db.Close()
		checks["database"] = db.PingContext
	}

	cacheRepo, closeCache := newCacheRepository(cfg, logr, checks)
	defer closeCache()

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.DefaultTTL, logr, cfg.Cache.Enabled).WithTTLs(cfg.Cache.TTL)

	factory := canvas.NewFactory(canvas.FactoryConfig{
		Timeout:        cfg.Canvas.HTTPTimeout,
		PerPage:        cfg.Canvas.PerPage,
		RateLimit:      cfg.Canvas.RateLimit,
		RateBurst:      cfg.Canvas.RateBurst,
		BreakerEnabled: cfg.Canvas.BreakerEnabled,
		CacheSize:      cfg.Canvas.ClientCacheSize,
		Recorder:       metrics,
		Logger:         logr,
	})

	var credentialSvc *service.CredentialService
	var nicknameSvc *service.CourseNicknameService
	validate := validator.New()
	if db != nil {
		credentialSvc = service.NewCredentialService(repository.NewCredentialRepository(db), cfg.Canvas.DefaultURL, cfg.Canvas.DefaultAPIKey, metrics, logr)
		nicknameSvc = service.NewCourseNicknameService(repository.NewCourseNicknameRepository(db), validate, metrics, logr)
	} else {
		credentialSvc = service.NewCredentialService(nil, cfg.Canvas.DefaultURL, cfg.Canvas.DefaultAPIKey, metrics, logr)
		nicknameSvc = service.NewCourseNicknameService(nil, validate, metrics, logr)
	}

	sessionSvc := service.NewSessionService(credentialSvc, factory, cacheSvc, logr)
	courseSvc := service.NewCourseService(cacheSvc, logr)
	announcementSvc := service.NewAnnouncementService(cacheSvc, logr)
	professorSvc := service.NewProfessorService(cacheSvc, announcementSvc, logr)
	assignmentSvc := service.NewAssignmentService(cacheSvc, logr)
	courseDataSvc := service.NewCourseDataService(service.CourseDataServiceParams{
		Cache:         cacheSvc,
		Professors:    professorSvc,
		Assignments:   assignmentSvc,
		Announcements: announcementSvc,
		Logger:        logr,
	})
	aggregationSvc := service.NewAggregationService(service.AggregationServiceParams{
		Courses:       courseSvc,
		Announcements: announcementSvc,
		Professors:    professorSvc,
		Metrics:       metrics,
		Logger:        logr,
		MaxWorkers:    cfg.Aggregation.MaxWorkers,
	})

	handlers := handler.Handlers{
		Users:       handler.NewUserHandler(service.NewUserService(logr), validate),
		Courses:     handler.NewCourseHandler(courseSvc, professorSvc),
		CourseData:  handler.NewCourseDataHandler(courseDataSvc),
		Assignments: handler.NewAssignmentHandler(assignmentSvc, service.NewExportService(assignmentSvc, logr, nil, nil)),
		Calendar:    handler.NewCalendarHandler(service.NewCalendarService(cfg.Calendar.DefaultDays, logr), validate),
		Aggregate:   handler.NewAggregateHandler(aggregationSvc),
		CourseNames: handler.NewCourseNameHandler(nicknameSvc),
		Cache:       handler.NewCacheHandler(cacheSvc),
	}
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, internalmiddleware.WithResponseMeta())
	handler.RegisterRoutes(api, handlers, internalmiddleware.CanvasSession(sessionSvc))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "cache_backend", cfg.Cache.Backend, "database", db != nil)
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

// newCacheRepository selects the configured backend and registers its readiness check.
func newCacheRepository(cfg *config.Config, logr *zap.Logger, checks map[string]handler.ReadinessCheck) (service.CacheRepository, func()) {
	if cfg.Cache.Backend == config.CacheBackendRedis {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		checks["cache"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		repo := repository.NewCacheRepository(client, logr)
		return repo, func() { _ = repo.Close() }
	}
	return repository.NewMemoryCacheRepository(cfg.Cache.MaxEntries, nil), func() {}
}
