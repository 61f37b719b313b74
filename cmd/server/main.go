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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/decantbox/backend/config"
	httpDelivery "github.com/decantbox/backend/internal/delivery/http"
	"github.com/decantbox/backend/internal/domain"
	"github.com/decantbox/backend/internal/infrastructure/cache"
	"github.com/decantbox/backend/internal/infrastructure/catalog"
	"github.com/decantbox/backend/internal/logging"
	"github.com/decantbox/backend/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		boot := logging.Logger()
		boot.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

// run wires the service and blocks until a shutdown signal or a server failure.
// Errors are returned so deferred cleanup runs before the process exits.
func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log := logging.Component("main")

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("catalog", cfg.Catalog.Source).
		Str("cache", cfg.Cache.Type).
		Msg("Starting Decantbox Backend v1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)
	defer memoryCache.Close()

	products, notes, pool, err := openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return fmt.Errorf("failed to open %s catalog: %w", cfg.Catalog.Source, err)
	}
	if pool != nil {
		defer pool.Close()
	}

	// Initialize usecase layer
	translator := usecase.NewNoteTranslator(notes, memoryCache, usecase.NoteTranslatorConfig{
		CacheTTL: cfg.Translation.TTL,
	})

	bundleService := usecase.NewBundleService(products, translator, bundleServiceConfig(cfg))

	log.Info().
		Float64("exact_fit_tolerance", cfg.Bundle.ExactFitTolerance).
		Int("lottery_trials", cfg.Lottery.Trials).
		Int("lottery_size_ml", cfg.Lottery.Size).
		Int("dedup_distance", cfg.Dedup.MaxDistance).
		Msg("Bundle services configured")

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(
		bundleService,
		usecase.NewCatalogSearch(products, translator),
		usecase.NewRequestDeduplicator(cfg.Dedup.MaxDistance),
	)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case serveErr = <-errCh:
		if serveErr != nil {
			serveErr = fmt.Errorf("server failed: %w", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Server stopped")
	return serveErr
}

// bundleServiceConfig maps the loaded settings onto the bundle service.
func bundleServiceConfig(cfg *config.Config) usecase.BundleServiceConfig {
	return usecase.BundleServiceConfig{
		Selector: usecase.SelectorConfig{
			ExactFitTolerance:   decimal.NewFromFloat(cfg.Bundle.ExactFitTolerance),
			MaxRepairIterations: cfg.Bundle.MaxRepairIterations,
		},
		Lottery: usecase.LotteryConfig{
			Trials:    cfg.Lottery.Trials,
			Tolerance: decimal.NewFromFloat(cfg.Lottery.Tolerance),
			CloseFit:  decimal.NewFromFloat(cfg.Lottery.CloseFit),
		},
		LotteryMinBudget: decimal.NewFromFloat(cfg.Lottery.MinBudget),
		LotteryMaxBudget: decimal.NewFromFloat(cfg.Lottery.MaxBudget),
		LotterySize:      domain.Size(cfg.Lottery.Size),
	}
}

// openCatalog builds the product and note mapping sources for the configured backend.
// The returned pool is nil for the memory source.
func openCatalog(ctx context.Context, cfg config.CatalogConfig) (domain.CatalogRepository, domain.NoteMappingSource, *pgxpool.Pool, error) {
	switch cfg.Source {
	case "postgres":
		pool, err := catalog.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		repo := catalog.NewPostgresCatalog(pool)
		return repo, repo, pool, nil
	default:
		repo, err := catalog.LoadMemoryCatalog(cfg.SeedFile)
		if err != nil {
			return nil, nil, nil, err
		}
		return repo, catalog.StaticNoteMappings(usecase.DefaultNoteMappings()), nil, nil
	}
}
