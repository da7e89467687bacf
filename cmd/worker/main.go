package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doltservices/doltbook/config"
	"github.com/doltservices/doltbook/internal/app"
	"github.com/doltservices/doltbook/internal/cache"
	"github.com/doltservices/doltbook/internal/email"
	"github.com/doltservices/doltbook/internal/geo"
	"github.com/doltservices/doltbook/internal/kafka"
	"github.com/doltservices/doltbook/internal/repository"
	"github.com/doltservices/doltbook/internal/service/booking"
	"github.com/doltservices/doltbook/internal/service/catalog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env")

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CatalogCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	catalogService := catalog.NewCatalogService(serviceRepo, redisCache)

	bookingService := booking.NewBookingService(
		bookingRepo,
		catalogService,
		geo.NewStaticGeocoder(),
		producer,
		logger,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.PendingTTLMinutes)*time.Minute,
	)

	sender := email.NewSender(logger)
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger)
	defer consumer.Close()

	go func() {
		err := consumer.Consume(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
			if err := sender.Send(ctx, event); err != nil {
				logger.Error("send notification",
					zap.Error(err),
					zap.String("booking_id", event.BookingID))
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("consumer stopped", zap.Error(err))
			stop()
		}
	}()

	sweepInterval := time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	logger.Info("worker started",
		zap.String("notifications_topic", cfg.Kafka.NotificationsTopic),
		zap.Duration("sweep_interval", sweepInterval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutting down")
			return
		case <-ticker.C:
			expired, err := bookingService.ExpirePendingBookings(ctx)
			if err != nil {
				logger.Error("expire pending bookings", zap.Error(err))
				continue
			}
			if len(expired) > 0 {
				logger.Info("expired stale pending bookings", zap.Int("count", len(expired)))
			}
		}
	}
}
