package scope

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/aburizalp/ministry-management/internal"
	"github.com/aburizalp/ministry-management/internal/core/events"
)

const defaultScopeTTL = 5 * time.Minute

// RedisCache caches resolved scope contexts. A cache miss returns
// (nil, nil) so the resolver falls through to the store.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg internal.RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB >= 0 {
		opts.DB = cfg.DB
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.ScopeTTL
	if ttl <= 0 {
		ttl = defaultScopeTTL
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

func scopeKey(userID int64) string {
	return fmt.Sprintf("scope:ctx:%d", userID)
}

func (c *RedisCache) Get(ctx context.Context, userID int64) (*Context, error) {
	data, err := c.client.Get(ctx, scopeKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var sc Context
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		// Corrupt entries are dropped rather than served.
		c.client.Del(ctx, scopeKey(userID))
		return nil, fmt.Errorf("failed to unmarshal scope context: %w", err)
	}
	return &sc, nil
}

func (c *RedisCache) Set(ctx context.Context, sc *Context) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("failed to marshal scope context: %w", err)
	}
	return c.client.Set(ctx, scopeKey(sc.UserID), data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, scopeKey(userID)).Err()
}

// SubscribeInvalidation drops cached contexts when a scope assignment
// changes.
func (c *RedisCache) SubscribeInvalidation(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeScopeAssigned, func(ctx context.Context, event events.Event) error {
		if e, ok := event.(*events.ScopeAssignedEvent); ok {
			return c.Invalidate(ctx, e.UserID)
		}
		return nil
	})
}

// Client exposes the underlying connection for health checks.
func (c *RedisCache) Client() *redis.Client {
	return c.client
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
