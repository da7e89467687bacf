package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/doltservices/doltbook/api"
	"github.com/doltservices/doltbook/config"
	"github.com/doltservices/doltbook/internal/app"
	"github.com/doltservices/doltbook/internal/auth"
	"github.com/doltservices/doltbook/internal/bootstrap"
	"github.com/doltservices/doltbook/internal/cache"
	"github.com/doltservices/doltbook/internal/domain"
	"github.com/doltservices/doltbook/internal/gateway"
	"github.com/doltservices/doltbook/internal/geo"
	"github.com/doltservices/doltbook/internal/kafka"
	"github.com/doltservices/doltbook/internal/repository"
	"github.com/doltservices/doltbook/internal/service/booking"
	"github.com/doltservices/doltbook/internal/service/catalog"
	"github.com/doltservices/doltbook/internal/service/payment"
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

	if cfg.Database.MigrationsPath != "" {
		migrator, err := app.NewMigrator(pool, cfg.Database.MigrationsPath)
		if err != nil {
			logger.Fatal("init migrator", zap.Error(err))
		}
		if err := migrator.Run(ctx); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		migrator.Close()
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CatalogCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	providerRepo := repository.NewProviderRepository(pool)

	catalogService := catalog.NewCatalogService(serviceRepo, redisCache)

	bookingService := booking.NewBookingService(
		bookingRepo,
		catalogService,
		geo.NewStaticGeocoder(),
		producer,
		logger,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.PendingTTLMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	paypalClient := gateway.NewPayPalClient(cfg.Gateways.PayPal.BackendURL,
		time.Duration(cfg.Gateways.PayPal.TimeoutSeconds)*time.Second, logger)
	simulatedDelay := time.Duration(cfg.Gateways.Simulated.DelayMillis) * time.Millisecond
	registry := gateway.NewRegistry(
		gateway.NewStripeGateway(),
		gateway.NewMercadoPagoGateway(),
		gateway.NewPayPalGateway(paypalClient),
		gateway.NewSimulatedGateway(domain.GatewayRazorpay, simulatedDelay),
		gateway.NewSimulatedGateway(domain.GatewayGPay, simulatedDelay),
		gateway.NewSimulatedGateway(domain.GatewayCrypto, simulatedDelay),
	)

	paymentService := payment.NewPaymentService(
		paymentRepo,
		bookingService,
		registry,
		paypalClient,
		producer,
		logger,
		cfg.Kafka.BookingTopic,
	)

	authService := auth.NewService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	handlers := bootstrap.Handlers{
		Bookings:  api.NewBookingHandler(bookingService),
		Payments:  api.NewPaymentHandler(paymentService, bookingService),
		Webhooks:  api.NewWebhookHandler(paymentService, redisCache, cfg.Gateways, logger),
		Services:  api.NewServiceHandler(catalogService),
		Providers: api.NewProviderHandler(providerRepo),
	}

	if err := bootstrap.Run(ctx, cfg, authService, handlers); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
