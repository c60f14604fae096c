// Package ratelimit 按键的滑动窗口限流。
//
// Store 负责窗口存储（内存或 redis），Service 负责是否启用，
// 关闭时所有检查直接放行。
package ratelimit

import (
	"context"
	"time"

	"confutils-worker/services/errs"
)

// Limiter 记录并检查某个键在窗口内的请求次数
type Limiter interface {
	Check(ctx context.Context, key string, maxRequests int, window time.Duration) error
}

// Service 可配置启用的限流服务
type Service struct {
	Store   Limiter
	Enabled bool
}

// Check 未启用或没有存储时直接放行
func (s Service) Check(ctx context.Context, key string, maxRequests int, window time.Duration) error {
	if !s.Enabled || s.Store == nil {
		return nil
	}
	if maxRequests <= 0 || window <= 0 {
		return nil
	}
	return s.Store.Check(ctx, key, maxRequests, window)
}

func exceeded(maxRequests int, window time.Duration) error {
	return errs.New(errs.RateLimitExceeded, "rate limit exceeded: at most %d requests per %s", maxRequests, window)
}
