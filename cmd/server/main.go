package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"mentorhub/internal/metrics"
	"mentorhub/internal/routers"
	"mentorhub/internal/session"
	"mentorhub/internal/store"
	"mentorhub/internal/utils"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := utils.NewLogger()
	defer logger.Sync()

	blockStore := store.New(envOr("REDIS_ADDR", "localhost:6379"))
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 5*time.Second)
	if err := blockStore.Seed(seedCtx); err != nil {
		logger.Warn("seeding code blocks in redis failed, serving in-memory defaults", "error", err.Error())
	}
	cancelSeed()

	coordinator := session.NewCoordinator(logger)
	defer coordinator.Reset()

	r := chi.NewRouter()
	// no global request timeout: the websocket read loops block indefinitely
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))
	r.Use(metrics.Middleware("mentorhub"))

	r.Mount("/", routers.New(logger, blockStore, coordinator))

	addr := ":" + envOr("PORT", "8000")
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("mentorhub listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("mentorhub shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err.Error())
	}
}
