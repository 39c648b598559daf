package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"vibechat-service/internal/models"
)

func TestNoopProfileCacheAlwaysMisses(t *testing.T) {
	var c ProfileCache = NoopProfileCache{}
	c.Set(context.Background(), models.Profile{ID: "u1"})
	_, ok := c.Get(context.Background(), "u1")
	assert.False(t, ok)
}

func TestRedisProfileCacheDegradesToMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewRedisProfileCache(client, time.Minute, zerolog.Nop())
	c.Set(context.Background(), models.Profile{ID: "u1"})
	_, ok := c.Get(context.Background(), "u1")
	assert.False(t, ok)
	c.Invalidate(context.Background(), "u1")
}

func TestConnectFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := Connect(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}
