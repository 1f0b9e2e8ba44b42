package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"practice-api/internal/cache"
	"practice-api/internal/config"
	"practice-api/internal/db"
	"practice-api/internal/http/router"
	"practice-api/internal/security"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config/app.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize cache
	c, err := cache.Open(ctx, cfg.CacheDriver, cfg.CacheURL)
	if err != nil {
		log.Fatalf("Failed to initialize %s cache: %v", cfg.CacheDriver, err)
	}
	defer c.Close()

	tokens := security.NewTokenIssuer(cfg.Secret, cfg.TokenTTL)
	hasher := security.NewHasher()

	// Setup router
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Setup(cfg, database, c, tokens, hasher),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s (%s, db=%s, cache=%s)", cfg.Port, cfg.Environment, cfg.DBDriver, cfg.CacheDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}
