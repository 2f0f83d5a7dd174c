package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nobetci/eczane/internal/config"
	"github.com/nobetci/eczane/internal/database"
	"github.com/nobetci/eczane/internal/handlers"
	"github.com/nobetci/eczane/internal/logger"
	"github.com/nobetci/eczane/internal/metrics"
	"github.com/nobetci/eczane/internal/pharmacy"
	"github.com/nobetci/eczane/internal/ratelimit"
	"github.com/nobetci/eczane/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Parse command-line flags
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override debug mode if flag is set
	debugMode := cfg.ServerDebugMode || *debugFlag

	// Initialize logger
	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = zapLogger.Sync() // Sync fails on stderr in containers
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("api_prefix", cfg.APIPrefix),
		zap.Duration("rate_limit_window", cfg.RateLimit.Window),
		zap.Int("rate_limit_max_requests", cfg.RateLimit.MaxRequests),
		zap.String("pharmacy_source", cfg.PharmacySource),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize OpenTelemetry if enabled
	tracing := false
	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, telemetry.ServiceName, cfg.OTELEndpoint, cfg.OTELSampleRatio)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracing = true
			zapLogger.Info("otel_tracer_initialized",
				zap.String("endpoint", cfg.OTELEndpoint),
			)
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	m := metrics.New()
	checks := map[string]handlers.PingFunc{"database": nil, "redis": nil}

	// Connect to database when one is configured; it backs the postgres source and the rate limit policy
	var db *database.DB
	if cfg.DatabaseURL != "" {
		db, err = database.New(cfg.DatabaseURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
			}
		}()
		checks["database"] = db.PingContext
		zapLogger.Info("connected_to_database")
	}

	source, err := newSource(cfg, db)
	if err != nil {
		zapLogger.Fatal("failed_to_load_pharmacy_source", zap.Error(err))
	}

	// Redis caches pharmacy lookups only; limiter state stays in process
	if cfg.RedisURL != "" {
		rdb, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Warn("redis_unavailable_cache_disabled", zap.Error(err))
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
				}
			}()
			source = pharmacy.NewCachedSource(source, rdb, cfg.CacheTTL, zapLogger)
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
			zapLogger.Info("connected_to_redis", zap.Duration("cache_ttl", cfg.CacheTTL))
		}
	}

	limiter := ratelimit.New(cfg.RateLimit)

	// Evict expired windows and publish the tracked key count
	sweeper := ratelimit.NewSweeper(limiter, cfg.RateLimitSweep, zapLogger, m.SetTrackedKeys)
	go func() {
		if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("rate_limit_sweeper_stopped_with_error", zap.Error(err))
		}
	}()

	// Policy hot-reload from the database
	if db != nil {
		reloader := ratelimit.NewReloader(limiter, database.NewRateLimitPolicyRepository(db), cfg.RateLimit, cfg.RateLimitReload, zapLogger)
		reloader.Load(ctx)
		go reloader.Start(ctx)
		zapLogger.Info("rate_limit_policy_reload_enabled", zap.Duration("interval", cfg.RateLimitReload))
	}

	handler := newHandler(appDeps{
		service:        pharmacy.NewService(source),
		limiter:        limiter,
		metrics:        m,
		health:         handlers.NewHealthChecker(checks),
		logger:         zapLogger,
		baseURL:        cfg.BaseURL,
		apiPrefix:      cfg.APIPrefix,
		allowedOrigins: cfg.AllowedOrigins,
		enableHSTS:     cfg.EnableHSTS,
		requestTimeout: cfg.RequestTimeout,
		tracing:        tracing,
	})

	// Setup server
	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        handler,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	zapLogger.Info("server_shutting_down")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
		os.Exit(1)
	}

	zapLogger.Info("server_exited")
}

// newSource selects the pharmacy data source from configuration
func newSource(cfg *config.Config, db *database.DB) (pharmacy.Source, error) {
	if cfg.PharmacySource == config.PharmacySourcePostgres {
		return database.NewPharmacyRepository(db), nil
	}
	fs, err := pharmacy.NewFileSource(cfg.PharmacyDataPath)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
