package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder"
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/application"
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/infrastructure"
	"github.com/mateusmacedo/go-busfinder/internal/config"
	pkgApp "github.com/mateusmacedo/go-busfinder/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-busfinder/pkg/domain"
	pkgInfra "github.com/mateusmacedo/go-busfinder/pkg/infrastructure"
	redisAdapter "github.com/mateusmacedo/go-busfinder/pkg/infrastructure/redis/adapter"
	watermillAdapter "github.com/mateusmacedo/go-busfinder/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/mateusmacedo/go-busfinder/pkg/infrastructure/zaplogger/adapter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuração inválida:", err)
		os.Exit(1)
	}

	appLogger, err := zapAdapter.NewZapAppLogger("busfinder", cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "erro ao criar logger:", err)
		os.Exit(1)
	}

	if err := run(cfg, appLogger); err != nil {
		pkgApp.LogError(context.Background(), appLogger, "Servidor encerrado com erro", err, nil)
		os.Exit(1)
	}
}

func run(cfg config.Config, appLogger pkgApp.AppLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var redisClient redis.UniversalClient
	if cfg.NeedsRedis() {
		client, err := redisAdapter.NewRedisClient(ctx, redisAdapter.ClientOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()
		redisClient = client
	}

	store, err := newStore(cfg, appLogger)
	if err != nil {
		return err
	}

	eventBus, closeBus, err := newEventBus(cfg, redisClient, appLogger)
	if err != nil {
		return err
	}
	defer closeBus.Close()

	newHistory := infrastructure.MemoryHistoryFactory()
	if cfg.History == config.HistoryRedis {
		newHistory = infrastructure.RedisHistoryFactory(redisClient)
	}

	sessions := infrastructure.NewSessionRegistry(newHistory, pkgInfra.GenerateUUID,
		infrastructure.WithIdleTTL(cfg.SessionIdleTTL),
		infrastructure.WithRegistryLogger(appLogger),
	)
	if cfg.SessionIdleTTL > 0 {
		go sessions.RunEvictor(ctx, sweepInterval(cfg.SessionIdleTTL))
	}

	slice := busfinder.NewBusFinderSlice(
		domain.DefaultCatalog(),
		store,
		eventBus,
		sessions,
		pkgInfra.GenerateUUID,
		appLogger,
		application.WithAlertWindow(cfg.AlertWindowDays),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	slice.RegisterRoutes(router)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		pkgApp.LogInfo(ctx, appLogger, "Servidor iniciado", map[string]interface{}{
			"address": cfg.Addr,
			"store":   cfg.Store,
			"history": cfg.History,
			"broker":  cfg.EventBroker,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}
	pkgApp.LogInfo(context.Background(), appLogger, "Encerrando servidor...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	pkgApp.LogInfo(context.Background(), appLogger, "Servidor encerrado", nil)
	return nil
}

func newStore(cfg config.Config, logger pkgApp.AppLogger) (domain.BookingStore, error) {
	if cfg.Store == config.StorePostgres {
		store, err := infrastructure.NewGormBookingStore(cfg.PostgresDSN, logger)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		return store, nil
	}
	return infrastructure.NewJSONFileStore(cfg.BookingsFile, logger), nil
}

// sweepInterval varre algumas vezes por TTL, sem passar de um minuto.
func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newEventBus(cfg config.Config, redisClient redis.UniversalClient, logger pkgApp.AppLogger) (application.BookingEventBus, io.Closer, error) {
	if cfg.EventBroker == config.BrokerMemory {
		return pkgInfra.NewSimpleEventBus[pkgDomain.Event[domain.Booking], domain.Booking](logger), nopCloser{}, nil
	}

	wmLogger := watermillAdapter.NewWatermillLoggerAdapter(logger)

	var (
		publisher message.Publisher
		err       error
	)
	switch cfg.EventBroker {
	case config.BrokerGoChannel:
		publisher = watermillAdapter.NewGoChannelPubSub(wmLogger)
	case config.BrokerRedis:
		publisher, err = watermillAdapter.NewRedisStreamPublisher(redisClient, wmLogger)
	case config.BrokerKafka:
		publisher, err = watermillAdapter.NewKafkaPublisher(cfg.KafkaBrokers, "busfinder", wmLogger)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s publisher: %w", cfg.EventBroker, err)
	}

	bus := watermillAdapter.NewWatermillEventBus[pkgDomain.Event[domain.Booking], domain.Booking](publisher, logger)
	return bus, bus, nil
}
