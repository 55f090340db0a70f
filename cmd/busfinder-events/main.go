// Comando busfinder-events consome os eventos de reserva publicados no Redis
// Streams ou no Kafka e os registra em log.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder/application"
	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	"github.com/mateusmacedo/go-busfinder/internal/config"
	pkgApp "github.com/mateusmacedo/go-busfinder/pkg/application"
	pkgDomain "github.com/mateusmacedo/go-busfinder/pkg/domain"
	redisAdapter "github.com/mateusmacedo/go-busfinder/pkg/infrastructure/redis/adapter"
	watermillAdapter "github.com/mateusmacedo/go-busfinder/pkg/infrastructure/watermill/adapter"
	zapAdapter "github.com/mateusmacedo/go-busfinder/pkg/infrastructure/zaplogger/adapter"
)

const consumerGroup = "busfinder_audit"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuração inválida:", err)
		os.Exit(1)
	}

	appLogger, err := zapAdapter.NewZapAppLogger("busfinder-events", cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "erro ao criar logger:", err)
		os.Exit(1)
	}

	if err := run(cfg, appLogger); err != nil {
		pkgApp.LogError(context.Background(), appLogger, "Consumidor encerrado com erro", err, nil)
		os.Exit(1)
	}
}

func run(cfg config.Config, appLogger pkgApp.AppLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wmLogger := watermillAdapter.NewWatermillLoggerAdapter(appLogger)

	var subscriber message.Subscriber
	switch cfg.EventBroker {
	case config.BrokerRedis:
		client, err := redisAdapter.NewRedisClient(ctx, redisAdapter.ClientOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()

		subscriber, err = watermillAdapter.NewRedisStreamSubscriber(client, consumerGroup, "busfinder-events", wmLogger)
		if err != nil {
			return fmt.Errorf("redis subscriber: %w", err)
		}
	case config.BrokerKafka:
		var err error
		subscriber, err = watermillAdapter.NewKafkaSubscriber(cfg.KafkaBrokers, consumerGroup, "busfinder-events", wmLogger)
		if err != nil {
			return fmt.Errorf("kafka subscriber: %w", err)
		}
	default:
		return fmt.Errorf("BUSFINDER_EVENT_BROKER=%s is in-process; use redis or kafka", cfg.EventBroker)
	}
	defer subscriber.Close()

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		return err
	}
	router.AddMiddleware(middleware.Recoverer)

	audit := application.NewBookingAuditHandler(appLogger)
	watermillAdapter.RegisterConsumers[domain.Booking](router, subscriber,
		[]string{application.BookingCreatedEventName, application.BookingCancelledEventName},
		func(ctx context.Context, eventName string, booking domain.Booking) error {
			return audit.Handle(ctx, rebuildEvent(eventName, booking))
		})

	pkgApp.LogInfo(ctx, appLogger, "Consumidor iniciado", map[string]interface{}{"broker": cfg.EventBroker})
	return router.Run(ctx)
}

func rebuildEvent(eventName string, booking domain.Booking) pkgDomain.Event[domain.Booking] {
	if eventName == application.BookingCancelledEventName {
		return application.NewBookingCancelledEvent(booking)
	}
	return application.NewBookingCreatedEvent(booking)
}
