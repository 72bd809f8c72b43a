// cmd/directory-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"nomad-directory/internal/api"
	"nomad-directory/internal/common/config"
	"nomad-directory/internal/common/logger"
	"nomad-directory/internal/common/observability"
	"nomad-directory/internal/common/validation"
	"nomad-directory/internal/datasource"
	"nomad-directory/internal/search/orchestrator"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting directory api...",
		zap.String("environment", cfg.App.Environment),
		zap.String("driver", cfg.DataSource.Driver),
	)

	obs, err := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
		Registerer:     prometheus.DefaultRegisterer,
	})
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Init data source with retry ---
	var source datasource.Source
	err = retryWithBackoff(func() error {
		if source != nil {
			source.Close()
		}
		var err error
		source, err = datasource.New(ctx, cfg, log)
		if err != nil {
			source = nil
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return source.Ping(pingCtx)
	}, 10, 2*time.Second, zapLog, "Data source connection")

	if err != nil {
		zapLog.Fatal("data source failed after retries", zap.Error(err))
	}
	zapLog.Info("Data source connected successfully", zap.String("source", source.Name()))

	validator, err := validation.NewSearchRequestValidator()
	if err != nil {
		zapLog.Fatal("search schema failed to compile", zap.Error(err))
	}

	searcher := orchestrator.NewHandler(
		orchestrator.LoadConfig(cfg.Search),
		source,
		log,
		orchestrator.WithTracer(obs.Tracer()),
		orchestrator.WithRecorder(obs),
	)

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	router := api.NewRouter(
		api.NewHandler(searcher, source, validator, log),
		api.RouterConfig{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			MetricsHandler: promhttp.Handler(),
		},
		log,
	)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if err := source.Close(); err != nil {
		zapLog.Error("Error closing data source", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down observability", zap.Error(err))
	}

	zapLog.Info("Directory api stopped gracefully")
}
