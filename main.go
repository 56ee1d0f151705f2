package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"botFleet/config"
	"botFleet/internal/adapters/logger"
	"botFleet/internal/adapters/sqlite"
	"botFleet/internal/api"
	"botFleet/internal/app"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.New(cfg.LogLevel, os.Stdout)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 4. Initialize Application Service
	botService, err := app.NewBotService(appLogger, repo, repo)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize bot service")
		log.Fatalf("FATAL: Failed to initialize bot service: %v", err)
	}

	// 5. Provision seed bots, if configured
	if cfg.SeedFile != "" {
		docs, err := config.LoadBotSeeds(cfg.SeedFile)
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to load seed file")
			log.Fatalf("FATAL: Failed to load seed file: %v", err)
		}
		created, err := botService.Seed(context.Background(), docs)
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to provision seed bots")
			log.Fatalf("FATAL: Failed to provision seed bots: %v", err)
		}
		appLogger.Info(context.Background(), "Seed bots provisioned", map[string]interface{}{"created": created})
	}

	// 6. Serve the API until interrupted
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(appLogger, botService),
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		appLogger.Info(context.Background(), "HTTP server listening", map[string]interface{}{"addr": cfg.HTTPAddr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(context.Background(), err, "HTTP server failed")
			sigCh <- syscall.SIGTERM
		}
	}()

	sig := <-sigCh
	appLogger.Info(context.Background(), "Received shutdown signal", map[string]interface{}{"signal": sig.String()})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, err, "Graceful shutdown failed")
	}
	appLogger.Info(context.Background(), "Shutdown complete")
}
