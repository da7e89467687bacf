package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
environment: production
http:
  address: ":9090"
database:
  host: db
  port: 5432
  user: dolt
  password: secret
  name: doltbook
  ssl_mode: disable
kafka:
  brokers: ["kafka:9092"]
  booking_topic: booking_events
auth:
  jwt_secret: supersecret
  token_ttl_hours: 12
gateways:
  stripe:
    webhook_secret: whsec_abc
    tolerance_seconds: 600
`)

	cfg, err := LoadConfig(path)

	assert.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 12, cfg.Auth.TokenTTLHours)
	assert.Equal(t, 600, cfg.Gateways.Stripe.ToleranceSeconds)
	assert.Contains(t, cfg.Database.DSN(), "host=db")
	assert.Contains(t, cfg.Database.DSN(), "dbname=doltbook")
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  host: localhost
`)

	cfg, err := LoadConfig(path)

	assert.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
	assert.Equal(t, 24*60, cfg.Booking.PendingTTLMinutes)
	assert.Equal(t, 300, cfg.Booking.CatalogCacheTTLSeconds)
	assert.Equal(t, 300, cfg.Gateways.Stripe.ToleranceSeconds)
	assert.Equal(t, 15, cfg.Gateways.PayPal.TimeoutSeconds)
	assert.Equal(t, 5, cfg.Worker.ExpirationSweepMinutes)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))

	assert.Nil(t, cfg)
	assert.Error(t, err)
}
