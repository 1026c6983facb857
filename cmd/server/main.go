package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentinel-sec/sentinel/internal/analysis"
	"github.com/sentinel-sec/sentinel/internal/config"
	"github.com/sentinel-sec/sentinel/internal/github"
	"github.com/sentinel-sec/sentinel/internal/pubsub"
	"github.com/sentinel-sec/sentinel/internal/server"
	"github.com/sentinel-sec/sentinel/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logLevel := new(slog.LevelVar)
	setLogLevel(cfg.LogLevel, logLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	if cfg.InsecureDevMode {
		slog.Warn("INSECURE_DEV_MODE is set: webhook signature verification is DISABLED")
	}
	slog.Info("starting",
		"http_addr", cfg.HTTPAddr,
		"workers", cfg.WorkerPoolSize,
		"queue_size", cfg.QueueSize,
		"rate_limit_max", cfg.RateLimitMax,
		"rate_limit_window", cfg.RateLimitWindow)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	slog.Info("database connected")

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return err
	}
	slog.Info("database migrations applied")

	st := store.NewPostgres(pool)
	analyzer := analysis.NewClient(cfg.AnalyzerURL, cfg.AnalyzerTimeout)
	diffs := github.NewClient(cfg.GithubToken)

	// Bounded queue channel shared by producer and worker pool.
	jobs := make(chan pubsub.Job, cfg.QueueSize)
	prod := pubsub.NewProducer(jobs)
	cons := pubsub.NewConsumer(st, analyzer, diffs, jobs, pubsub.Options{
		Workers:         cfg.WorkerPoolSize,
		MaxAttempts:     cfg.MaxAttempts,
		CallTimeout:     cfg.AnalyzerTimeout,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	})

	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		_ = cons.Run(ctx)
	}()
	slog.Info("worker pool started", "workers", cfg.WorkerPoolSize)

	srv := server.NewServer(st, prod, server.Options{
		Addr:            cfg.HTTPAddr,
		WebhookSecret:   cfg.WebhookSecret,
		InsecureDevMode: cfg.InsecureDevMode,
		MainBranchRef:   cfg.MainBranchRef,
	})
	go func() {
		slog.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http server shutdown", "err", err)
	} else {
		slog.Info("http server stopped")
	}

	close(jobs)
	select {
	case <-workersDone:
		slog.Info("worker pool stopped")
	case <-shutdownCtx.Done():
		slog.Warn("worker pool shutdown timed out")
	}
	if dead := cons.DeadLetters(); len(dead) > 0 {
		slog.Warn("dead-lettered jobs at shutdown", "count", len(dead))
	}
	return nil
}

func runMigrations(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
