package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/interview-engine/internal/domain"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisCache(rdb), mr
}

func TestRedisCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	_, ok, err := c.Get(ctx, "ai_cache:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "ai_cache:abc", `{"overall_score":70}`, time.Hour))
	v, ok, err := c.Get(ctx, "ai_cache:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"overall_score":70}`, v)
	assert.Equal(t, time.Hour, mr.TTL("ai_cache:abc"))

	mr.FastForward(time.Hour + time.Second)
	_, ok, err = c.Get(ctx, "ai_cache:abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_BackendError(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	mr.Close()

	_, ok, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(ctx, "k", "v", time.Minute))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = rdb.Close()

	_, err = NewRedisClient(context.Background(), "://bad")
	assert.Error(t, err)
}

func TestNoopCache(t *testing.T) {
	var c domain.Cache = NoopCache{}
	require.NoError(t, c.Set(context.Background(), "k", "v", time.Minute))
	_, ok, err := c.Get(context.Background(), "k")
	assert.NoError(t, err)
	assert.False(t, ok)
}
