// Package main is the entry point for the Lightbox server.
// Lightbox is a photo-sharing backend with JWT authentication, per-user
// galleries, likes, and pluggable photo storage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/lightbox/internal/auth"
	"github.com/prn-tf/lightbox/internal/cache/memory"
	"github.com/prn-tf/lightbox/internal/cache/redis"
	"github.com/prn-tf/lightbox/internal/config"
	"github.com/prn-tf/lightbox/internal/handler"
	"github.com/prn-tf/lightbox/internal/metrics"
	"github.com/prn-tf/lightbox/internal/repository"
	"github.com/prn-tf/lightbox/internal/repository/postgres"
	"github.com/prn-tf/lightbox/internal/repository/sqlite"
	"github.com/prn-tf/lightbox/internal/service"
	"github.com/prn-tf/lightbox/internal/storage"
	"github.com/prn-tf/lightbox/internal/storage/filesystem"
	"github.com/prn-tf/lightbox/internal/storage/s3"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := newLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting Lightbox server")

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	repos, db, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// Cache
	cache, closeCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	// Storage backend
	store, err := newStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// Auth
	tokens, err := auth.NewTokenService(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token service: %w", err)
	}

	// Services
	userSvc := service.NewUserService(repos.User, cache, cfg.Auth.BcryptCost, logger)
	photoSvc := service.NewPhotoService(repos.Photo, store, cfg.Server.PublicURL, logger)

	// Metrics
	var metricsMiddleware func(http.Handler) http.Handler
	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		m := metrics.New()
		metricsMiddleware = m.Middleware

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info().Int("port", cfg.Metrics.Port).Str("path", cfg.Metrics.Path).Msg("metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	// HTTP server
	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userSvc, tokens, logger),
		ProfileHandler: handler.NewProfileHandler(userSvc, logger),
		PhotoHandler:   handler.NewPhotoHandler(photoSvc, cfg.Server.MaxUploadSize, logger),
		RequireAuth:    auth.NewMiddleware(tokens, logger).RequireAuth,
		Metrics:        metricsMiddleware,
		DB:             db,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}

	logger.Info().Msg("server stopped")
	return nil
}

// newLogger builds the root logger from configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = cfg.TimeFormat

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	logger := zerolog.New(out)
	if cfg.Format == "console" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	return logger.Level(level).With().Timestamp().Logger()
}

// newRepositories opens the configured database, runs migrations, and
// returns the repository set.
func newRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Repositories, repository.DatabaseHealth, error) {
	if cfg.Database.IsEmbedded() {
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			JournalMode:     cfg.Database.JournalMode,
			BusyTimeout:     cfg.Database.BusyTimeout,
			CacheSize:       cfg.Database.CacheSize,
			SynchronousMode: cfg.Database.SynchronousMode,
		}, logger)
		if err != nil {
			return repository.Repositories{}, nil, fmt.Errorf("failed to open SQLite: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return repository.Repositories{}, nil, fmt.Errorf("failed to migrate SQLite: %w", err)
		}
		return repository.Repositories{
			User:  sqlite.NewUserRepository(db),
			Photo: sqlite.NewPhotoRepository(db),
		}, db, nil
	}

	db, err := postgres.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		return repository.Repositories{}, nil, fmt.Errorf("failed to open PostgreSQL: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return repository.Repositories{}, nil, fmt.Errorf("failed to migrate PostgreSQL: %w", err)
	}
	return repository.Repositories{
		User:  postgres.NewUserRepository(db),
		Photo: postgres.NewPhotoRepository(db),
	}, db, nil
}

// newCache picks Redis when enabled, in-memory otherwise.
func newCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Cache, func(), error) {
	if cfg.Redis.Enabled {
		c, err := redis.NewCache(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return c, func() { _ = c.Close() }, nil
	}

	c := memory.NewCache()
	return c, c.Stop, nil
}

// newStorage picks the configured photo storage backend.
func newStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.Backend, error) {
	switch cfg.Storage.Backend {
	case "s3":
		return s3.NewBackend(ctx, cfg.Storage.S3, logger)
	default:
		return filesystem.NewBackend(cfg.Storage.DataDir, logger)
	}
}
