package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"confutils-worker/services/errs"
)

// 窗口用有序集合保存，score 为毫秒时间戳
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= max then
  return 0
end
redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return 1
`)

// RedisStore 基于 redis 的滑动窗口，适合多个 worker 共享限额
type RedisStore struct {
	rdb    redis.Scripter
	prefix string
	now    func() time.Time
}

type RedisOption func(*RedisStore)

func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

func WithRedisClock(now func() time.Time) RedisOption {
	return func(s *RedisStore) { s.now = now }
}

func NewRedisStore(rdb redis.Scripter, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "confutils:ratelimit:",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) Check(ctx context.Context, key string, maxRequests int, window time.Duration) error {
	now := s.now().UnixMilli()
	allowed, err := slidingWindow.Run(ctx, s.rdb,
		[]string{s.prefix + key},
		now, window.Milliseconds(), maxRequests, fmt.Sprintf("%d-%s", now, uuid.NewString()),
	).Int()
	if err != nil {
		return errs.Wrap(errs.Generic, err, "rate limit check failed")
	}
	if allowed == 0 {
		return exceeded(maxRequests, window)
	}
	return nil
}
