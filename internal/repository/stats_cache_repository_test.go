package repository

import (
	"context"
	"quiz_backend/internal/model"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*StatsCacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewStatsCacheRepository(rdb, ttl), mr
}

func TestStatsCacheWithoutRedis(t *testing.T) {
	cache := NewStatsCacheRepository(nil, 0)
	assert.Equal(t, 5*time.Minute, cache.TTL)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, 1, &model.AttemptStats{AttemptID: 3, Answered: 2}))

	_, ok := cache.Get(ctx, 3)
	assert.False(t, ok)
	assert.NoError(t, cache.Invalidate(ctx, 3))
	assert.NoError(t, cache.InvalidateTopic(ctx, 1))
}

func TestStatsCacheSetGet(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	_, ok := cache.Get(ctx, 3)
	assert.False(t, ok)

	stats := &model.AttemptStats{AttemptID: 3, Answered: 2, Correct: 1, Incorrect: 1, Total: 4, CorrectRatio: 50}
	require.NoError(t, cache.Set(ctx, 7, stats))

	got, ok := cache.Get(ctx, 3)
	require.True(t, ok)
	assert.Equal(t, *stats, *got)

	members, err := mr.SMembers(topicStatsKey(7))
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, members)
	assert.Equal(t, time.Minute, mr.TTL(statsKey(3)))

	mr.FastForward(2 * time.Minute)
	_, ok = cache.Get(ctx, 3)
	assert.False(t, ok)
}

func TestStatsCacheInvalidate(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 7, &model.AttemptStats{AttemptID: 1}))
	require.NoError(t, cache.Set(ctx, 7, &model.AttemptStats{AttemptID: 2}))
	require.NoError(t, cache.Set(ctx, 8, &model.AttemptStats{AttemptID: 3}))

	require.NoError(t, cache.Invalidate(ctx, 1))
	_, ok := cache.Get(ctx, 1)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, 2)
	assert.True(t, ok)

	require.NoError(t, cache.InvalidateTopic(ctx, 7))
	_, ok = cache.Get(ctx, 2)
	assert.False(t, ok)
	assert.False(t, mr.Exists(topicStatsKey(7)))

	// other topics keep their entries
	_, ok = cache.Get(ctx, 3)
	assert.True(t, ok)

	require.NoError(t, cache.InvalidateTopic(ctx, 99))
}
