package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	_ "github.com/wealthpulse/wealthpulse_service/docs"
	"github.com/wealthpulse/wealthpulse_service/internal/api/routes"
	"github.com/wealthpulse/wealthpulse_service/internal/infrastructure/config"
	"github.com/wealthpulse/wealthpulse_service/internal/infrastructure/di"
	"github.com/wealthpulse/wealthpulse_service/pkg/logger"
	"github.com/wealthpulse/wealthpulse_service/pkg/tracing"
	"github.com/wealthpulse/wealthpulse_service/pkg/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.Environment)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		ServiceName:  version.ServiceName,
		Environment:  cfg.Environment,
		Version:      version.Version,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRatio:  cfg.Tracing.SampleRatio,
	}, log.Zap())
	if err != nil {
		log.Fatal("Failed to initialize tracing", "error", err)
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Build dependency injection container
	container, err := di.NewContainer(cfg, log)
	if err != nil {
		log.Fatal("Failed to create DI container", "error", err)
	}
	defer container.Close()

	log.Infow("Collaborators",
		"analytics", cfg.Analytics.Configured(),
		"identity", cfg.Identity.Configured(),
		"llm", container.RelayService.Configured(),
		"videos", container.VideoClient.Configured(),
		"redis", container.Redis != nil)

	router := routes.SetupRoutes(container)

	go container.Limiter.RunSweeper(ctx, time.Minute)

	// WriteTimeout stays 0 by default so long streams are not cut off.
	server := &http.Server{
		Addr:           cfg.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeoutDuration(),
		WriteTimeout:   cfg.Server.WriteTimeoutDuration(),
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		log.Infow("Starting server", "addr", server.Addr, "environment", cfg.Environment, "version", version.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Infow("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warnw("Error flushing traces", "error", err)
	}

	log.Infow("Server exited")
}
