package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string         `yaml:"environment"`
	HTTP        HTTPConfig     `yaml:"http"`
	Database    DatabaseConfig `yaml:"database"`
	Redis       RedisConfig    `yaml:"redis"`
	Kafka       KafkaConfig    `yaml:"kafka"`
	Auth        AuthConfig     `yaml:"auth"`
	Booking     BookingConfig  `yaml:"booking"`
	Gateways    GatewaysConfig `yaml:"gateways"`
	Worker      WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"ssl_mode"`
	MigrationsPath string `yaml:"migrations_path"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

type BookingConfig struct {
	PendingTTLMinutes      int `yaml:"pending_ttl_minutes"`
	CatalogCacheTTLSeconds int `yaml:"catalog_cache_ttl_seconds"`
}

type GatewaysConfig struct {
	Stripe      StripeConfig      `yaml:"stripe"`
	MercadoPago MercadoPagoConfig `yaml:"mercadopago"`
	PayPal      PayPalConfig      `yaml:"paypal"`
	Simulated   SimulatedConfig   `yaml:"simulated"`
}

type StripeConfig struct {
	WebhookSecret string `yaml:"webhook_secret"`
	// Maximum age of a signed webhook timestamp before the event is rejected.
	ToleranceSeconds int `yaml:"tolerance_seconds"`
}

type MercadoPagoConfig struct {
	WebhookSecret string `yaml:"webhook_secret"`
}

type PayPalConfig struct {
	BackendURL     string `yaml:"backend_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SimulatedConfig struct {
	DelayMillis int `yaml:"delay_millis"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.Auth.TokenTTLHours == 0 {
		cfg.Auth.TokenTTLHours = 24
	}
	if cfg.Booking.PendingTTLMinutes == 0 {
		cfg.Booking.PendingTTLMinutes = 24 * 60
	}
	if cfg.Booking.CatalogCacheTTLSeconds == 0 {
		cfg.Booking.CatalogCacheTTLSeconds = 300
	}
	if cfg.Worker.ExpirationSweepMinutes == 0 {
		cfg.Worker.ExpirationSweepMinutes = 5
	}
	if cfg.Gateways.Stripe.ToleranceSeconds == 0 {
		cfg.Gateways.Stripe.ToleranceSeconds = 300
	}
	if cfg.Gateways.PayPal.TimeoutSeconds == 0 {
		cfg.Gateways.PayPal.TimeoutSeconds = 15
	}

	return &cfg, nil
}
