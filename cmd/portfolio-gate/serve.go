package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendant/portfolio-gate/gate"
	"github.com/tendant/portfolio-gate/internal/config"
	"github.com/tendant/portfolio-gate/internal/migrations"
	"github.com/tendant/portfolio-gate/pkg/repository"
)

var (
	serveMigrate         bool
	sessionPurgeInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply pending migrations before serving (also AUTO_MIGRATE=true)")
	serveCmd.Flags().DurationVar(&sessionPurgeInterval, "session-purge-interval", time.Hour, "How often stale sessions are deleted; 0 disables")
}

// setup loads configuration, builds the logger and opens the database.
func setup() (*config.Config, *slog.Logger, *sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	db, err := repository.NewDB(repository.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("connected to database", "host", cfg.DBHost, "db", cfg.DBName)

	return cfg, logger, db, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, db, err := setup()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveMigrate || cfg.AutoMigrate {
		if err := migrations.Up(ctx, db); err != nil {
			logger.Error("failed to run migrations", "error", err)
			return err
		}
		logger.Info("migrations applied")
	}

	g, err := gate.New(gate.Config{DB: db, App: cfg, Logger: logger})
	if err != nil {
		logger.Error("failed to initialise", "error", err)
		return err
	}

	if sessionPurgeInterval > 0 {
		go g.RunSessionJanitor(ctx, sessionPurgeInterval, cfg.RefreshTokenTTL)
	}

	addr := cfg.Addr()
	server := &http.Server{
		Addr:         addr,
		Handler:      g.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr, "version", version)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error("server error", "error", err)
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}
