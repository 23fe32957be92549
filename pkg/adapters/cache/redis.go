package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qrtrack/go-qr-tracker/pkg/core/domain"
	"github.com/qrtrack/go-qr-tracker/pkg/ports"
)

// RedisCache is a lookup cache for the redirect hot path. Links are immutable
// after creation, so entries can never go stale; the TTL is memory hygiene.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{client: rdb, ttl: ttl}, nil
}

// Get returns (nil, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, code string) (*domain.Link, error) {
	data, err := c.client.Get(ctx, key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var link domain.Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *RedisCache) Set(ctx context.Context, link *domain.Link) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(link.ShortCode), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func key(code string) string { return "link:" + code }

var _ ports.LinkCache = (*RedisCache)(nil)
