// Package redis provides a short-TTL last-quote cache. The broadcaster
// writes every resolved quote; the REST quote endpoint reads through
// the cache before hitting upstream. The cache is strictly optional —
// a nil *Cache is a valid no-op cache.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"stockpulse/internal/model"
)

// CacheConfig configures the Redis quote cache.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // default 10s
}

// Cache stores the last observed quote per symbol with a TTL.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewCache connects to Redis and pings the server.
func NewCache(cfg CacheConfig) (*Cache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Cache{client: client, ttl: ttl}, nil
}

func key(symbol string) string { return "quote:" + symbol }

// Put stores a quote under its symbol. Best-effort: errors are
// returned for logging but never block the caller's pipeline.
func (c *Cache) Put(ctx context.Context, q model.Quote) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, key(q.Symbol), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Get returns the cached quote for a symbol, if still fresh.
func (c *Cache) Get(ctx context.Context, symbol string) (model.Quote, bool) {
	if c == nil {
		return model.Quote{}, false
	}
	data, err := c.client.Get(ctx, key(symbol)).Bytes()
	if err != nil {
		return model.Quote{}, false
	}
	var q model.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return model.Quote{}, false
	}
	return q, true
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
