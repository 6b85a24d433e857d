package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if cfg.DevBypassAuth {
		logger.Warn("authentication bypass enabled; do not use in production")
	}

	store, err := newStore(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to create store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	verifier := NewTokenVerifier(cfg)
	handler := NewMoviesHandler(store, logger)
	router := NewRouter(handler, verifier, cfg, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.ServerPort, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newStore selects the persistence backend from config.
func newStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.StoreBackend {
	case BackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	case BackendDynamo:
		return NewDynamoStore(ctx, cfg)
	default:
		return NewFileStore(cfg.MoviesFile), nil
	}
}
