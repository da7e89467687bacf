package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doltservices/doltbook/config"
	"github.com/doltservices/doltbook/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, catalogTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		catalogTTL: catalogTTL,
	}
}

func (c *RedisCache) GetServices(ctx context.Context) ([]domain.Service, error) {
	data, err := c.client.Get(ctx, catalogKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var services []domain.Service
	if err := json.Unmarshal(data, &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *RedisCache) SetServices(ctx context.Context, services []domain.Service) error {
	payload, err := json.Marshal(services)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey(), payload, c.catalogTTL).Err()
}

// MarkEventSeen records a gateway webhook event id and reports whether it was
// new. A repeat delivery returns false so handlers can skip reprocessing.
func (c *RedisCache) MarkEventSeen(ctx context.Context, gateway, eventID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, webhookEventKey(gateway, eventID), "seen", ttl).Result()
}

// ForgetEvent releases an event id claimed by MarkEventSeen so the gateway's
// next retry is treated as a first delivery again.
func (c *RedisCache) ForgetEvent(ctx context.Context, gateway, eventID string) error {
	return c.client.Del(ctx, webhookEventKey(gateway, eventID)).Err()
}

func catalogKey() string {
	return "cache:services"
}

func webhookEventKey(gateway, eventID string) string {
	return fmt.Sprintf("webhook:%s:%s", gateway, eventID)
}
