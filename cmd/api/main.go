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

	"travel_backoffice/internal/adapters"
	"travel_backoffice/internal/catalog"
	"travel_backoffice/internal/events"
	apphttp "travel_backoffice/internal/http"
	"travel_backoffice/internal/http/router"
	"travel_backoffice/internal/pricing"
	"travel_backoffice/internal/quotes"
	"travel_backoffice/internal/quotes/editor"
	"travel_backoffice/internal/quotes/sequencer"
	"travel_backoffice/internal/scheduler"
	"travel_backoffice/internal/services"
	"travel_backoffice/platform/cache"
	"travel_backoffice/platform/config"
	"travel_backoffice/platform/db"
	"travel_backoffice/platform/logger"
	"travel_backoffice/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, pool)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	cls, err := sequencer.LoadClassifier(cfg.GetServiceTypesFile())
	if err != nil {
		log.Error("failed to load service type classification", "error", err, "path", cfg.GetServiceTypesFile())
		panic("failed to load service type classification: " + err.Error())
	}

	rdb, closeRedis := initCatalogCache(ctx, cfg, log)
	if closeRedis != nil {
		defer closeRedis()
	}

	// ========================================================================
	// Domain Modules
	// ========================================================================

	catalogModule := catalog.NewModule(pool, rdb, eventBus, val, cfg, log)
	servicesModule := services.NewModule(pool, eventBus, val, cfg, log)
	pricingModule := pricing.NewModule(pool, eventBus, val, log)

	inlineTotals := &adapters.InlineTotalRefresher{}
	refresher, closeScheduler := initTotalRefresher(cfg, log, inlineTotals)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	quotesModule := quotes.NewModule(pool, eventBus, val, cls, cfg, log, quotes.Deps{
		Directory: adapters.NewQuotesDirectory(servicesModule.Service()),
		Catalog:   adapters.NewQuotesCatalog(catalogModule.Service()),
		Refresher: refresher,
	})
	inlineTotals.Totals = quotesModule.Service()

	if err := quotesModule.Start(); err != nil {
		log.Error("failed to start quotation editors", "error", err)
		panic("failed to start quotation editors: " + err.Error())
	}
	defer quotesModule.Stop()

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			catalogModule,
			servicesModule,
			pricingModule,
			quotesModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initCatalogCache connects the catalog lookup cache. Lookups read the
// database directly when Redis is not configured.
func initCatalogCache(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (redis.Cmdable, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; catalog cache disabled")
		return nil, nil
	}

	client, err := cache.NewClient(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		log.Error("failed to initialize catalog cache", "error", err)
		return nil, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("catalog cache unreachable; lookups fall back to the database", "error", err)
	}

	return client, func() {
		_ = client.Close()
	}
}

// initTotalRefresher queues total recomputation on asynq when Redis is
// configured and recomputes inline otherwise.
func initTotalRefresher(cfg config.SchedulerConfig, log *logger.Logger, inline editor.TotalRefresher) (editor.TotalRefresher, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; quotation totals are refreshed inline")
		return inline, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize task client; refreshing totals inline", "error", err)
		return inline, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
