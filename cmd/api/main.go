// Package main is the entry point for the trip planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/backpackor/planner/internal/config"
	"github.com/backpackor/planner/internal/gemini"
	"github.com/backpackor/planner/internal/handler"
	"github.com/backpackor/planner/internal/middleware"
	"github.com/backpackor/planner/internal/realtime"
	"github.com/backpackor/planner/internal/repo"
	"github.com/backpackor/planner/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// ctx is cancelled on SIGINT/SIGTERM and stops every background loop.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Repositories & services -----------------------------------------
	places := repo.NewPlaceRepo(pool)
	trips := repo.NewTripRepo(pool)
	details := repo.NewTripDetailRepo(pool)

	catalogSvc := service.NewCatalogService(places, repo.NewRegionRepo(pool))
	tripSvc := service.NewTripService(repo.NewPlanStore(pool), trips, details)

	gen, err := gemini.New(ctx, gemini.Config{
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.GeminiModel,
		Endpoint:          cfg.GeminiEndpoint,
		RequestsPerMinute: cfg.GeminiRatePerMin,
	}, logger)
	if err != nil {
		slog.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}
	generationSvc := service.NewGenerationService(places, gen, logger)

	editorSvc := service.NewEditorService(catalogSvc, tripSvc, cfg.SessionTTL, logger)
	go editorSvc.RunSweeper(ctx, time.Minute)

	// --- Realtime ---------------------------------------------------------
	// Rating changes reach both open editor sessions and SSE subscribers.
	hub := realtime.NewHub(logger, 25*time.Second)
	listener := realtime.NewListener(pool, logger, 5*time.Second, editorSvc, hub)
	go listener.Run(ctx)

	// --- Rate limiting ----------------------------------------------------
	generateLimiter := middleware.NewKeyedRateLimiter(cfg.GenerateRatePerMin, time.Minute, cfg.GenerateRatePerMin)
	go func() {
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if n := generateLimiter.Prune(now.Add(-10 * time.Minute)); n > 0 {
					slog.Debug("pruned rate limit entries", "count", n)
				}
			}
		}
	}()

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	server := handler.NewServer(handler.Deps{
		Catalog:       catalogSvc,
		Generation:    generationSvc,
		Trips:         tripSvc,
		Editor:        editorSvc,
		Stream:        hub,
		GenerateLimit: middleware.NewRateLimitHandler(generateLimiter, logger),
		DefaultOwner:  cfg.DefaultOwnerID,
		Logger:        logger,
	})
	r.Mount("/", server.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// Plan generation can take tens of seconds, hence the long WriteTimeout;
	// the SSE stream clears its own write deadline.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// Shutdown waits for active responses; open SSE streams would hold it
	// until the deadline.
	srv.RegisterOnShutdown(hub.Shutdown)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// Graceful shutdown: give in-flight requests up to 15 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
