package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nats-io/nats.go"

	"github.com/jobbmapper/jobbmapper-api/internal/adapters/dataset"
	"github.com/jobbmapper/jobbmapper-api/internal/adapters/http"
	natsadapter "github.com/jobbmapper/jobbmapper-api/internal/adapters/nats"
	"github.com/jobbmapper/jobbmapper-api/internal/adapters/valkey"
	"github.com/jobbmapper/jobbmapper-api/internal/core/domain"
	"github.com/jobbmapper/jobbmapper-api/internal/core/ports"
	"github.com/jobbmapper/jobbmapper-api/internal/core/usecases"
	"github.com/jobbmapper/jobbmapper-api/internal/pkg/config"
	"github.com/jobbmapper/jobbmapper-api/internal/pkg/logging"
	"github.com/jobbmapper/jobbmapper-api/internal/pkg/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load("jobbmapper-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Municipality dataset, loaded once before serving. A failed load keeps
	// the server up with every query answered as dataset_unavailable.
	provider := dataset.NewCacheFirst(cfg.Dataset.CachePath, cfg.Dataset.URL,
		time.Duration(cfg.Dataset.FetchTimeout)*time.Second)
	ds, err := usecases.LoadDataset(ctx, provider)
	switch {
	case errors.Is(err, domain.ErrDownloadFailed):
		slog.Error("municipality dataset download failed", "url", cfg.Dataset.URL, "error", err)
	case errors.Is(err, domain.ErrSchemaMismatch):
		slog.Error("municipality dataset has an unexpected layout", "error", err)
	case err != nil:
		slog.Error("municipality dataset load failed", "error", err)
	}

	// Cache (optional)
	var cache *valkey.Cache
	var cacheSvc ports.CacheService
	if cfg.Valkey.Addr != "" {
		cache, err = valkey.New(cfg.Valkey.Addr, "jobbmapper:")
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer cache.Close()
			cacheSvc = cache
		}
	}

	// NATS (optional)
	var natsConn *nats.Conn
	var events ports.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			events = pub
			natsConn = pub.Conn()
		}
	}

	policy, err := usecases.PolicyByName(cfg.Search.RegionPolicy)
	if err != nil {
		log.Fatalf("search: %v", err)
	}

	searchSvc := usecases.NewSearchService(ds, usecases.SearchOptions{
		BaseURL:           cfg.Search.BaseURL,
		MaxMunicipalities: cfg.Search.MaxMunicipalities,
		Policy:            policy,
		PolicyName:        cfg.Search.RegionPolicy,
		CacheTTL:          cfg.Search.CacheTTL,
	}, cacheSvc, events)

	deps := &http.Dependencies{
		Search:      searchSvc,
		NATS:        natsConn,
		Cache:       cache,
		CORSOrigins: cfg.Server.CORSOrigins,
		Version:     version,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    256 * 1024,
		AppName:      "Jobb Mapper API",
	})
	app.Use(recover.New())

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "municipalities", ds.Len())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
