package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"poster-backend/internal/bootstrap"
	"poster-backend/internal/shared/config"
	"poster-backend/internal/shared/server"
	"poster-backend/internal/shared/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger := telemetry.Init(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer app.Close()

	addr := server.Addr(cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	telemetry.Info("server.start", map[string]any{
		"addr":          addr,
		"env":           cfg.Env,
		"llm_provider":  cfg.LLMProvider,
		"llm_model":     cfg.LLMModel,
		"session_store": cfg.SessionStore,
	})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		telemetry.Error("server.error", map[string]any{"error": err})
		os.Exit(1)
	}
	telemetry.Info("server.stop", nil)
}
