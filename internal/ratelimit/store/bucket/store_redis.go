package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pinguard/internal/ratelimit/models"
)

// slidingWindowScript keeps one sorted-set member per request, scored by the
// Redis server clock in milliseconds.
//
// KEYS[1] = bucket key
// ARGV[1] = limit, ARGV[2] = window ms, ARGV[3] = cost, ARGV[4] = member prefix
// Returns {allowed (1/0), count, reset_at_ms}
const slidingWindowScript = `
local key       = KEYS[1]
local limit     = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local cost      = tonumber(ARGV[3])
local member    = ARGV[4]

local t = redis.call('TIME')
local now_ms = (tonumber(t[1]) * 1000) + math.floor(tonumber(t[2]) / 1000)

redis.call('ZREMRANGEBYSCORE', key, '-inf', now_ms - window_ms)
local count = redis.call('ZCARD', key)

local allowed = 0
if count + cost <= limit then
  for i = 1, cost do
    redis.call('ZADD', key, now_ms, member .. ':' .. i)
  end
  count = count + cost
  allowed = 1
end

local reset_ms = now_ms + window_ms
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if oldest[2] then
  reset_ms = tonumber(oldest[2]) + window_ms
end

redis.call('PEXPIRE', key, window_ms)
return {allowed, count, reset_ms}
`

// RedisBucketStore is a sliding-window bucket store shared by all replicas.
type RedisBucketStore struct {
	client redis.Cmdable
	script *redis.Script
}

// NewRedisBucketStore creates a bucket store backed by client.
func NewRedisBucketStore(client redis.Cmdable) *RedisBucketStore {
	return &RedisBucketStore{
		client: client,
		script: redis.NewScript(slidingWindowScript),
	}
}

// Allow checks if a request is allowed and increments the counter.
func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	return s.AllowN(ctx, key, 1, limit, window)
}

// AllowN checks if a request consuming cost slots is allowed.
func (s *RedisBucketStore) AllowN(ctx context.Context, key string, cost int, limit int, window time.Duration) (*models.RateLimitResult, error) {
	res, err := s.script.Run(ctx, s.client, []string{key},
		strconv.Itoa(limit),
		strconv.FormatInt(window.Milliseconds(), 10),
		strconv.Itoa(cost),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("run sliding window script: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("sliding window script returned %d values", len(res))
	}

	allowed := res[0] == 1
	count := int(res[1])
	result := &models.RateLimitResult{
		Allowed: allowed,
		Limit:   limit,
		ResetAt: time.UnixMilli(res[2]),
	}
	if allowed {
		result.Remaining = limit - count
	} else {
		result.RetryAfter = result.RetryAfterSeconds(time.Now())
	}
	return result, nil
}

// Reset clears the counter for a key.
func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("reset bucket: %w", err)
	}
	return nil
}

// GetCurrentCount returns the number of requests recorded for key. Expired
// entries are pruned on the next Allow call, so the count can briefly
// include them.
func (s *RedisBucketStore) GetCurrentCount(ctx context.Context, key string) (int, error) {
	n, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("count bucket: %w", err)
	}
	return int(n), nil
}
