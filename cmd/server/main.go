// Package main is the entrypoint for the mediashelf API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/mediashelf/internal/api"
	"github.com/kiranshivaraju/mediashelf/internal/api/handler"
	mw "github.com/kiranshivaraju/mediashelf/internal/api/middleware"
	"github.com/kiranshivaraju/mediashelf/internal/api/response"
	"github.com/kiranshivaraju/mediashelf/internal/bridge"
	"github.com/kiranshivaraju/mediashelf/internal/cache"
	"github.com/kiranshivaraju/mediashelf/internal/config"
	"github.com/kiranshivaraju/mediashelf/internal/jobs"
	"github.com/kiranshivaraju/mediashelf/internal/metrics"
	"github.com/kiranshivaraju/mediashelf/internal/orchestrator"
	"github.com/kiranshivaraju/mediashelf/internal/store"
	"github.com/kiranshivaraju/mediashelf/internal/transfer"
	"github.com/kiranshivaraju/mediashelf/internal/transfer/objectstore"
	"github.com/kiranshivaraju/mediashelf/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid values
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"env", cfg.Server.Env,
		"bridge_configured", cfg.Bridge.URL != "",
		"bridge_content_types", cfg.Bridge.ContentTypes,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Object store and bridge
	objects, err := objectstore.New(
		objectstore.WithEndpoint(cfg.Storage.Endpoint),
		objectstore.WithBucket(cfg.Storage.Bucket),
		objectstore.WithAccessKey(cfg.Storage.AccessKey),
		objectstore.WithSecretKey(cfg.Storage.SecretKey),
		objectstore.WithSSL(cfg.Storage.UseSSL),
	)
	if err != nil {
		return fmt.Errorf("create object store: %w", err)
	}
	if err := objects.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	slog.Info("object store ready", "bucket", cfg.Storage.Bucket)

	pgStore := store.NewPostgresStore(pool)

	bridgeClient := bridge.NewHTTPClient(cfg.Bridge.URL, cfg.Bridge.Timeout)
	if !bridgeClient.Configured() {
		slog.Warn("BRIDGE_URL not set, bridge uploads will follow the failure policy",
			"policy", cfg.Bridge.FailurePolicy)
	}
	files := transfer.NewRouter(objects, transfer.NewBridgeAdapter(bridgeClient, pgStore, cfg.Bridge), cfg.Bridge)
	links := transfer.NewLinks(objects, redisCache, cfg.Bridge.Scheme, cfg.Bridge.ViewerURL, cfg.Storage.SignedURLTTL)

	// 6. Job tracker, reconciled from the last run
	tracker := jobs.NewTracker(jobs.NewCachePersister(redisCache))
	tracker.Subscribe(metrics.JobObserver())
	tracker.Subscribe(jobs.LogObserver(slog.Default()))
	if err := tracker.Load(ctx); err != nil {
		slog.Warn("loading job list failed, starting empty", "error", err)
	}

	janitor, err := jobs.NewJanitor(tracker, cfg.Jobs.CleanupSchedule, cfg.Jobs.Retention)
	if err != nil {
		return fmt.Errorf("create janitor: %w", err)
	}
	janitor.Start()
	defer func() { <-janitor.Stop().Done() }()

	orch := orchestrator.New(tracker, files, pgStore, bridgeClient)

	// 7. Build router with dependencies
	httpMetrics := metrics.NewMiddleware()
	httpMetrics.MustRegister(prometheus.DefaultRegisterer)

	router := api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(pgStore),
		RateLimit: mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMinute),
		Metrics:   httpMetrics,

		HealthHandler:  healthHandler(pgStore, redisCache),
		MetricsHandler: promhttp.Handler(),

		UploadHandler: handler.NewUploadHandler(orch, cfg.Server.MaxUploadBytes),
		EditHandler:   handler.NewEditHandler(orch, pgStore, cfg.Server.MaxUploadBytes),
		DeleteHandler: handler.NewDeleteHandler(orch, pgStore),
		LinkHandler:   handler.NewLinkHandler(pgStore, links),

		ListJobsHandler:  handler.NewListJobsHandler(orch),
		GetJobHandler:    handler.NewGetJobHandler(orch),
		CancelJobHandler: handler.NewCancelJobHandler(orch),
		ClearJobsHandler: handler.NewClearJobsHandler(orch),

		ListTaxonomyHandler:   handler.NewListTaxonomyHandler(orch),
		RenameTaxonomyHandler: handler.NewRenameTaxonomyHandler(orch),

		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore, 0),
		ListKeysHandler:  handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(pgStore),
	})

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// Jobs still running when the deadline passes are marked interrupted on the next start.
	if !waitForJobs(shutdownCtx, orch) {
		slog.Warn("shutdown deadline reached with jobs still running", "active", countActive(orch.Jobs()))
	}

	slog.Info("server stopped gracefully")
	return nil
}

// waitForJobs reports whether every job returned before ctx was done.
func waitForJobs(ctx context.Context, orch *orchestrator.Orchestrator) bool {
	done := make(chan struct{})
	go func() {
		orch.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

func countActive(records []models.JobRecord) int {
	n := 0
	for _, r := range records {
		if r.Status.IsActive() {
			n++
		}
	}
	return n
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, response.CodeDegraded,
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
