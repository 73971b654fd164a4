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

	"github.com/bryanwahyu/insight-pipeline/internal/application"
	apppipeline "github.com/bryanwahyu/insight-pipeline/internal/application/pipeline"
	"github.com/bryanwahyu/insight-pipeline/internal/config"
	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/ai/openai"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/ai/rawhttp"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/db"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/httpserver"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/identifier"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/notify"
	"github.com/bryanwahyu/insight-pipeline/internal/infra/storage"
	"github.com/bryanwahyu/insight-pipeline/internal/logging"
	"github.com/bryanwahyu/insight-pipeline/internal/middleware"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.Any("err", err))
		os.Exit(1)
	}
}

func run() error {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	logger := logging.New(os.Stdout, cfg.Log.Level)

	ctx := context.Background()

	// one pool for the whole process, closed on shutdown
	database, repo, err := db.Open(ctx, db.Options{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.DSN(),
	})
	if err != nil {
		return err
	}
	defer database.Close()

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	metrics := middleware.NewMetrics()
	svc := &apppipeline.Service{
		Identifiers:      identifier.NewClient(cfg.Identifier.URL, cfg.Identifier.Timeout),
		Analyzer:         analyzer,
		Repo:             repo,
		Notifier:         notify.NewLogNotifier(logger),
		Observer:         metrics,
		Clock:            application.SystemClock{},
		Logger:           logger,
		Iterations:       cfg.Pipeline.Iterations,
		DefaultRecipient: cfg.Notify.Recipient,
	}

	if cfg.ArchiveEnabled() {
		store, err := storage.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		svc.Archive = store
	}

	opts := httpserver.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     metrics,
		HealthCheckers: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: database},
		},
		Logger: logger,
	}
	if cfg.Server.RateLimit.Capacity > 0 {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillRate)
		defer limiter.Close()
		opts.RateLimiter = limiter
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:        addr,
		Handler:     httpserver.NewRouter(svc, opts),
		ReadTimeout: 15 * time.Second,
		// three sequential fetch+analysis calls can take ~45s
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", addr),
			slog.String("db", cfg.Database.Driver),
			slog.String("analysis", cfg.Analysis.Provider),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case <-stop:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("shutdown error", slog.Any("err", err))
	}
	return nil
}

func newAnalyzer(cfg *config.Config) (domain.Analyzer, error) {
	switch cfg.Analysis.Provider {
	case config.ProviderHTTP:
		if cfg.Analysis.Token == "" {
			return nil, fmt.Errorf("%s is required for the http analysis provider", cfg.Analysis.TokenEnv)
		}
		return rawhttp.NewClient(cfg.Analysis.Endpoint, cfg.Analysis.Token, cfg.Analysis.Model, cfg.Analysis.Timeout), nil
	default:
		if cfg.Analysis.APIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the sdk analysis provider")
		}
		return openai.NewClient(cfg.Analysis.APIKey, cfg.Analysis.Model, cfg.Analysis.Endpoint, cfg.Analysis.Timeout), nil
	}
}
