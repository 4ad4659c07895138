package store

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/sabbivikas/mi-amore/internal/errors"
	redisclient "github.com/sabbivikas/mi-amore/internal/redis"
)

// Every key carries the {match} hash tag so the pipelined writes and the
// MGet in Recent stay in one cluster slot.
const (
	matchKeyPrefix = "{match}:"
	// RecentKey is the sorted set of match IDs scored by end time.
	RecentKey = "{match}:recent"

	// DefaultTTL is how long an individual result is kept.
	DefaultTTL = 30 * 24 * time.Hour

	errMatchIDEmpty = "match ID cannot be empty"
)

// RedisConfig configures the Redis recorder.
type RedisConfig struct {
	Client redisclient.Client
	// TTL applies to each result key; zero uses DefaultTTL.
	TTL time.Duration
	// Keep bounds the recent index; zero uses MaxRecentLimit.
	Keep int
}

// Validate validates the RedisConfig.
func (cfg *RedisConfig) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	if cfg.Client == nil {
		return errors.InvalidArgument("client cannot be nil")
	}
	return nil
}

type redisRecorder struct {
	client redisclient.Client
	ttl    time.Duration
	keep   int
}

// NewRedis stores each result as JSON under {match}:<id> and indexes it in a
// sorted set scored by end time.
func NewRedis(cfg *RedisConfig) (Recorder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	keep := cfg.Keep
	if keep <= 0 {
		keep = MaxRecentLimit
	}
	return &redisRecorder{client: cfg.Client, ttl: ttl, keep: keep}, nil
}

// MatchKey returns the Redis key for a match result.
func MatchKey(matchID string) string {
	return matchKeyPrefix + matchID
}

func (r *redisRecorder) Record(ctx context.Context, result Result) error {
	if result.MatchID == "" {
		return errors.InvalidArgument(errMatchIDEmpty)
	}

	data, err := json.Marshal(result)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal match %s", result.MatchID)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, MatchKey(result.MatchID), data, r.ttl)
	pipe.ZAdd(ctx, RecentKey, redis.Z{
		Score:  float64(result.EndedAt.UnixMilli()),
		Member: result.MatchID,
	})
	pipe.ZRemRangeByRank(ctx, RecentKey, 0, int64(-r.keep-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "failed to record match %s", result.MatchID)
	}
	return nil
}

func (r *redisRecorder) Recent(ctx context.Context, limit int) ([]Result, error) {
	limit = clampLimit(limit)
	ids, err := r.client.ZRevRange(ctx, RecentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list recent matches")
	}
	if len(ids) == 0 {
		return []Result{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = MatchKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load recent matches")
	}

	results := make([]Result, 0, len(values))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// Expired result still indexed.
			continue
		}
		var result Result
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal match %s", ids[i])
		}
		results = append(results, result)
	}
	return results, nil
}
