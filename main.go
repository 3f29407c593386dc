package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhub/config"
	"taskhub/database"
	"taskhub/handlers"
	"taskhub/logging"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logging.Init(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	log := logging.Logger

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := database.Open(ctx, cfg)
	if err != nil {
		cancel()
		log.WithError(err).WithField("driver", cfg.DatabaseDriver).Fatal("Failed to initialize database")
	}
	if err := database.SeedOwner(ctx, store, cfg.SeedOwner); err != nil {
		cancel()
		log.WithError(err).Fatal("Failed to seed owner account")
	}
	cancel()

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handlers.NewRouter(cfg, store),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.ServerPort).WithField("driver", cfg.DatabaseDriver).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to close database")
	}
}
