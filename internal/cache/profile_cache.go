package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"vibechat-service/internal/models"
)

const profileKeyPrefix = "vibechat:profile:"

// ProfileCache keeps participant profiles shared across sessions.
// Misses and backend failures look the same to callers.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (models.Profile, bool)
	Set(ctx context.Context, profile models.Profile)
	Invalidate(ctx context.Context, userID string)
}

// Connect dials redis and verifies it answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisProfileCache stores profiles as JSON with a TTL.
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewRedisProfileCache(client *redis.Client, ttl time.Duration, log zerolog.Logger) *RedisProfileCache {
	return &RedisProfileCache{client: client, ttl: ttl, log: log}
}

func (c *RedisProfileCache) Get(ctx context.Context, userID string) (models.Profile, bool) {
	raw, err := c.client.Get(ctx, profileKeyPrefix+userID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache get failed")
		}
		return models.Profile{}, false
	}
	var p models.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache entry corrupt")
		return models.Profile{}, false
	}
	return p, true
}

func (c *RedisProfileCache) Set(ctx context.Context, profile models.Profile) {
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, profileKeyPrefix+profile.ID, raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", profile.ID).Msg("profile cache set failed")
	}
}

func (c *RedisProfileCache) Invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, profileKeyPrefix+userID).Err(); err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache invalidate failed")
	}
}

// NoopProfileCache never hits.
type NoopProfileCache struct{}

func (NoopProfileCache) Get(context.Context, string) (models.Profile, bool) {
	return models.Profile{}, false
}

func (NoopProfileCache) Set(context.Context, models.Profile) {}

func (NoopProfileCache) Invalidate(context.Context, string) {}
