package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"quiz_backend/internal/model"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// StatsCacheRepository keeps computed attempt statistics in Redis. Entries are
// indexed per topic so that a change to the topic's links can drop all of
// them at once. A nil client turns every method into a no-op.
type StatsCacheRepository struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewStatsCacheRepository(rdb *redis.Client, ttl time.Duration) *StatsCacheRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StatsCacheRepository{Redis: rdb, TTL: ttl}
}

func statsKey(attemptID uint) string {
	return fmt.Sprintf("attempt:stats:%d", attemptID)
}

func topicStatsKey(topicID uint) string {
	return fmt.Sprintf("attempt:stats:topic:%d", topicID)
}

// Get returns the cached statistics of the attempt. ok is false on a miss or
// when the cache is unavailable.
func (r *StatsCacheRepository) Get(ctx context.Context, attemptID uint) (*model.AttemptStats, bool) {
	if r.Redis == nil {
		return nil, false
	}
	raw, err := r.Redis.Get(ctx, statsKey(attemptID)).Bytes()
	if err != nil {
		return nil, false
	}
	var stats model.AttemptStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, false
	}
	return &stats, true
}

func (r *StatsCacheRepository) Set(ctx context.Context, topicID uint, stats *model.AttemptStats) error {
	if r.Redis == nil {
		return nil
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	pipe := r.Redis.TxPipeline()
	pipe.Set(ctx, statsKey(stats.AttemptID), raw, r.TTL)
	pipe.SAdd(ctx, topicStatsKey(topicID), stats.AttemptID)
	pipe.Expire(ctx, topicStatsKey(topicID), r.TTL)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *StatsCacheRepository) Invalidate(ctx context.Context, attemptID uint) error {
	if r.Redis == nil {
		return nil
	}
	return r.Redis.Del(ctx, statsKey(attemptID)).Err()
}

// InvalidateTopic drops the cached statistics of every attempt on the topic.
func (r *StatsCacheRepository) InvalidateTopic(ctx context.Context, topicID uint) error {
	if r.Redis == nil {
		return nil
	}
	members, err := r.Redis.SMembers(ctx, topicStatsKey(topicID)).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(members)+1)
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, statsKey(uint(id)))
	}
	keys = append(keys, topicStatsKey(topicID))
	return r.Redis.Del(ctx, keys...).Err()
}
