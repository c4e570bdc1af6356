// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hacks11/inventory-health/backend-go/internal/api"
	"github.com/hacks11/inventory-health/backend-go/internal/cache"
	"github.com/hacks11/inventory-health/backend-go/internal/config"
	"github.com/hacks11/inventory-health/backend-go/internal/model"
	"github.com/hacks11/inventory-health/backend-go/internal/repository"
	"github.com/hacks11/inventory-health/backend-go/internal/repository/postgres"
	"github.com/hacks11/inventory-health/backend-go/internal/service"
	"github.com/hacks11/inventory-health/backend-go/internal/storage"
	"github.com/hacks11/inventory-health/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Pull model artifacts from object storage before loading, if configured
	if cfg.Storage.SyncOnStart && cfg.Storage.Endpoint != "" && cfg.Model.Dir != "" {
		if err := syncModelArtifacts(cfg); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to sync model artifacts")
		}
	}

	// Load predictors; a missing model directory leaves the registry nil and
	// the service either falls back or reports unavailable per request
	var registry *model.Registry
	if cfg.Model.Dir != "" {
		var err error
		registry, err = model.LoadRegistry(cfg.Model.Dir, cfg.Model.Variant)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to load model registry")
		}
	} else {
		logger.Log.Warn().Bool("fallback", cfg.Model.FallbackEnabled).Msg("No model directory configured")
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Initialize cache
	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, continuing without it")
		forecastCache = cache.NewNoopForecastCache()
	}

	// Initialize services
	usageRepo := repository.NewUsageRepository(db.DB)
	forecastService := service.NewForecastService(usageRepo, registry, forecastCache, cfg.Model.HistoryWindowDays, cfg.Model.FallbackEnabled)

	// Initialize HTTP server
	router := api.NewRouter(forecastService, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("variant", cfg.Model.Variant).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// syncModelArtifacts downloads every object under the model prefix into the
// local model directory.
func syncModelArtifacts(cfg *config.Config) error {
	store, err := storage.NewMinioStorage(cfg.Storage)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	objects, err := store.ListObjects(ctx, cfg.Storage.ModelPrefix)
	if err != nil {
		return err
	}

	syncLog := logger.Component("artifact-sync")
	for _, obj := range objects {
		dest := filepath.Join(cfg.Model.Dir, path.Base(obj.Key))
		if err := store.DownloadObject(ctx, obj.Key, dest); err != nil {
			return err
		}
		syncLog.Info().Str("key", obj.Key).Str("dest", dest).Msg("Synced model artifact")
	}

	return nil
}
