package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/SAP-F-2025/gradequest-service/internal/cache"
	"github.com/SAP-F-2025/gradequest-service/internal/config"
	"github.com/SAP-F-2025/gradequest-service/internal/handlers"
	"github.com/SAP-F-2025/gradequest-service/internal/rewards"
	"github.com/SAP-F-2025/gradequest-service/internal/scoring"
	"github.com/SAP-F-2025/gradequest-service/internal/services"
	"github.com/SAP-F-2025/gradequest-service/internal/utils"
	"github.com/SAP-F-2025/gradequest-service/internal/validator"
	"github.com/SAP-F-2025/gradequest-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Scoring
	engine, err := cfg.Scoring.NewEngine()
	if err != nil {
		return err
	}
	policy := engine.Policy()
	if !cfg.Scoring.Explicit() {
		logger.Warn("SCORING_LADDER not set; using the default ladder. Two ladders exist, confirm which one the school uses",
			"ladder", policy.Name,
			"available", strings.Join(scoring.Presets(), ","))
	}
	logger.Info("Scoring policy loaded",
		"ladder", policy.Name,
		"breakpoints", policy.Breakpoints,
		"rank_floor_on_override", policy.RankFloorOnOverride,
		"suppress_rewards_on_override", policy.SuppressRewardsOnOverride)

	// Store
	repo, err := pkg.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repo.Close()

	// Metadata cache
	var metadataCache cache.CacheService
	if cfg.CacheEnabled {
		redisClient, err := pkg.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Warn("Redis unavailable, using in-process metadata cache", "error", err)
			metadataCache = cache.NewMemoryCache()
		} else {
			defer redisClient.Close()
			metadataCache = cache.NewRedisCache(redisClient, logger)
		}
	} else {
		metadataCache = cache.NewMemoryCache()
	}

	// Events
	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	// Services
	v := validator.New()
	serviceLogger := services.NewServiceLogger(logger, services.LogConfig{
		Service:     "gradequest-service",
		EnableDebug: !cfg.IsProduction(),
	})
	reconciler := rewards.NewReconciler(rewards.NewPolicy(engine), repo.Gradebook(), logger)
	gradebook := services.NewGradebookService(repo.Gradebook(), reconciler, publisher, v, serviceLogger)
	manager := services.NewServiceManager(
		gradebook,
		services.NewMetadataService(repo.Metadata(), metadataCache, cfg.MetadataCacheTTL, v, serviceLogger),
		services.NewExportService(gradebook, serviceLogger),
		services.NewAnalyticsService(gradebook, serviceLogger),
		services.NewAuthService(repo.Gradebook(), services.AuthConfig{
			TeacherSecret: cfg.TeacherSecret,
			SigningKey:    []byte(cfg.JWTSecret),
			TTL:           cfg.SessionTTL,
		}, v, serviceLogger),
	)

	router := handlers.NewHandlerManager(manager, utils.NewSlogLogger(logger)).NewRouter()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
