package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"northline/internal/api"
	"northline/internal/config"
	"northline/internal/database"
	"northline/internal/domain"
	"northline/internal/events"
	"northline/internal/gate"
	"northline/internal/logging"
	"northline/internal/metrics"
	"northline/internal/repository"
	"northline/internal/service"
	"northline/internal/validator"
	"northline/internal/worker"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if cfg.Admin.UsesDefaultPasscode() {
		logger.Warn().Msg("admin passcode is the built-in default, set ADMIN_PASSCODE before exposing the service")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := initStore(ctx, cfg, &logger)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := initService(cfg, store, &logger)
	if err != nil {
		return err
	}

	httpServer := api.NewHTTPServer(cfg.API.HTTP, cfg.Admin, svc, &logger)

	startMetrics(ctx, cfg, &logger)

	return serve(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = config.DefaultPath
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, *logging.Component(baseLogger, "main"), closer, nil
}

// initStore opens the configured backend. The returned cleanup releases it.
func initStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (domain.Store, func(), error) {
	noop := func() {}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn().Msg("memory storage selected, bookings are lost on restart")
		return repository.NewMemoryStore(logger), noop, nil

	case config.DriverRedis:
		client := repository.NewRedisClient(cfg.Redis)
		err := worker.Retry(ctx, worker.DefaultPolicy, "redis ping", logger, func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return repository.Ping(pingCtx, client)
		})
		if err != nil {
			_ = repository.Close(client)
			return nil, noop, fmt.Errorf("connect redis %s: %w", cfg.Redis.Address, err)
		}
		logger.Info().Str("addr", cfg.Redis.Address).Str("key", cfg.Storage.RedisKey).Msg("redis storage connected")
		store := repository.NewRedisStore(client, cfg.Storage.RedisKey, logger)
		return store, func() { _ = repository.Close(client) }, nil

	case config.DriverSQLite:
		db, err := database.NewDB(cfg.Storage.Path, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite %s: %w", cfg.Storage.Path, err)
		}
		backups := database.NewBackupService(db, cfg.Backup, logger)
		go backups.Start(ctx)
		return db, func() { _ = db.Close() }, nil

	default:
		store, err := repository.NewFileStore(cfg.Storage.Path, logger)
		if err != nil {
			return nil, noop, fmt.Errorf("open file storage %s: %w", cfg.Storage.Path, err)
		}
		logger.Info().Str("path", cfg.Storage.Path).Msg("file storage ready")
		return store, noop, nil
	}
}

func initService(cfg *config.Config, store domain.Store, logger *zerolog.Logger) (*service.BookingService, error) {
	g, err := gate.New(cfg.Admin.Passcode)
	if err != nil {
		return nil, fmt.Errorf("init gate: %w", err)
	}

	loc, err := cfg.Booking.Location()
	if err != nil {
		return nil, fmt.Errorf("booking timezone: %w", err)
	}
	v := validator.New(validator.WithLocation(loc))

	eventBus := events.NewEventBus(logger)
	metrics.Register()
	metrics.Subscribe(eventBus)

	return service.NewBookingService(store, v, g, eventBus, logger), nil
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func serve(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	if !cfg.API.HTTP.Enabled {
		logger.Warn().Msg("HTTP API is disabled in config, nothing to serve")
		return nil
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start()
	}()

	logger.Info().Str("addr", httpServer.Addr()).Str("storage", cfg.Storage.Driver).Msg("booking service started")

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.API.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}

	logger.Info().Msg("booking service stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	logger.Info().Int("port", port).Msg("metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
