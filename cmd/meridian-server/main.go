// Package main is the entry point for the Meridian back-office server.
// Meridian is a small-business inventory and order management system.
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

	"github.com/prn-tf/meridian-backoffice/internal/config"
	"github.com/prn-tf/meridian-backoffice/internal/handler"
	"github.com/prn-tf/meridian-backoffice/internal/imagestore"
	"github.com/prn-tf/meridian-backoffice/internal/metrics"
	"github.com/prn-tf/meridian-backoffice/internal/repository"
	"github.com/prn-tf/meridian-backoffice/internal/repository/postgres"
	"github.com/prn-tf/meridian-backoffice/internal/repository/sqlite"
	"github.com/prn-tf/meridian-backoffice/internal/service"
	"github.com/prn-tf/meridian-backoffice/internal/session"
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
		Msg("starting meridian server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited with error")
	}

	logger.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	db, repos, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	sessionStore, err := newSessionStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	defer sessionStore.Close()

	sessions := session.NewManager(sessionStore, cfg.Session.TTL, logger)

	images, err := newImageStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize image store: %w", err)
	}

	m := metrics.New()

	authService := service.NewAuthService(repos.User, repos.AuthLog, sessions, m, logger)
	productService := service.NewProductService(repos.Product, repos.Order, images, m, logger)
	orderService := service.NewOrderService(repos.Order, logger)
	twoFactorService := service.NewTwoFactorService(repos.User, cfg.TwoFactor.Issuer, logger)
	userAdminService := service.NewUserAdminService(repos.User, repos.AuthLog, logger)
	reportService := service.NewReportService(repos.Product, logger)

	router := handler.NewRouter(handler.RouterConfig{
		Auth:      handler.NewAuthHandler(authService, sessions, cfg.Session.CookieName, cfg.Session.CookieSecure, logger),
		Product:   handler.NewProductHandler(productService, images, logger),
		Order:     handler.NewOrderHandler(orderService, logger),
		TwoFactor: handler.NewTwoFactorHandler(twoFactorService, logger),
		Admin:     handler.NewAdminHandler(userAdminService, logger),
		Report:    handler.NewReportHandler(reportService, logger),

		Sessions:   sessions,
		CookieName: cfg.Session.CookieName,
		Metrics:    m,
		Health:     db,
		Logger:     logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info().Str("addr", metricsSrv.Addr).Str("path", cfg.Metrics.Path).Msg("metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
	}

	return nil
}

// openDatabase connects to the configured backend and runs pending
// migrations before handing out repositories.
func openDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.DatabaseHealth, *repository.Repositories, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate postgres schema: %w", err)
		}
		return db, postgres.NewRepositories(db), nil

	case "sqlite":
		sqlCfg := sqlite.DefaultConfig(cfg.Database.Path)
		if cfg.Database.JournalMode != "" {
			sqlCfg.JournalMode = cfg.Database.JournalMode
		}
		if cfg.Database.BusyTimeout > 0 {
			sqlCfg.BusyTimeout = cfg.Database.BusyTimeout
		}
		if cfg.Database.SynchronousMode != "" {
			sqlCfg.SynchronousMode = cfg.Database.SynchronousMode
		}
		db, err := sqlite.NewDB(ctx, sqlCfg, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		return db, sqlite.NewRepositories(db), nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
}

// newSessionStore builds the configured session backend.
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.Session.Store == "redis" {
		return session.NewRedisStore(ctx, cfg.Redis)
	}
	return session.NewMemoryStore(cfg.Session.JanitorInterval), nil
}

// newImageStore builds the configured image backend.
func newImageStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (imagestore.Store, error) {
	if cfg.Images.Backend == "s3" {
		return imagestore.NewS3Store(ctx, cfg.Images, logger)
	}
	return imagestore.NewFilesystemStore(cfg.Images.DataDir, cfg.Images.MaxSize, logger)
}

// newLogger builds the root logger from configuration.
func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = cfg.TimeFormat

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	logger := zerolog.New(out)
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}

	return logger.Level(level).With().Timestamp().Logger()
}
