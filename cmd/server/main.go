// Package main runs the forum API server.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	app "github.com/questionforum/questionforum/internal/app"
	"github.com/questionforum/questionforum/internal/app/httpapi"
	"github.com/questionforum/questionforum/internal/app/storage/postgres"
	"github.com/questionforum/questionforum/internal/config"
	"github.com/questionforum/questionforum/internal/middleware"
	"github.com/questionforum/questionforum/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	// Best effort; a missing .env file is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}).
		WithField("component", "server")

	stores, closeDB, err := buildStores(cfg, log)
	if err != nil {
		log.WithError(err).Error("storage initialisation failed")
		os.Exit(1)
	}
	defer closeDB()

	application := app.New(stores, log)
	handler := httpapi.NewHandler(application, log)

	auth := middleware.NewAuthMiddleware([]byte(cfg.Auth.Secret), log, []string{"/healthz", "/metrics"})
	cors := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)

	// Auth runs before the rate limiter so authenticated callers are
	// limited per user rather than per source address.
	var wrapped http.Handler = handler
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
		stop := make(chan struct{})
		defer close(stop)
		limiter.StartCleanup(time.Minute, stop)
		wrapped = limiter.Handler(wrapped)
	}
	wrapped = auth.Handler(wrapped)
	wrapped = cors.Handler(wrapped)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("forum API listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Std())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown error")
	}
	log.Info("server stopped")
}

// buildStores selects Postgres when a database URL is configured and the
// in-memory store otherwise. The returned func closes whatever was opened.
func buildStores(cfg config.Config, log *logger.Logger) (app.Stores, func(), error) {
	if cfg.Database.URL == "" {
		log.Warn("no database configured, using in-memory store")
		return app.Stores{}, func() {}, nil
	}

	db, err := openDatabase(cfg.Database)
	if err != nil {
		return app.Stores{}, nil, err
	}

	if err := postgres.Migrate(db); err != nil {
		db.Close()
		return app.Stores{}, nil, fmt.Errorf("run migrations: %w", err)
	}

	store := postgres.New(db)
	return app.Stores{Questions: store, Answers: store, Tags: store}, func() { db.Close() }, nil
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
