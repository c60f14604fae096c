package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore 进程内滑动窗口，每个键保存窗口内的时间戳
type MemoryStore struct {
	mu           sync.Mutex
	windows      map[string][]time.Time
	now          func() time.Time
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type MemoryOption func(*MemoryStore)

// WithClock 替换时钟，用于测试
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func WithIdleTTL(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.cleanupEvery = d }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		windows:      make(map[string][]time.Time),
		now:          time.Now,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check 淘汰过期时间戳；已满时拒绝且不记录本次请求
func (s *MemoryStore) Check(_ context.Context, key string, maxRequests int, window time.Duration) error {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	stamps := evict(s.windows[key], now, window)
	if len(stamps) >= maxRequests {
		s.windows[key] = stamps
		return exceeded(maxRequests, window)
	}
	s.windows[key] = append(stamps, now)
	return nil
}

// Len 当前键保留的时间戳数量
func (s *MemoryStore) Len(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows[key])
}

func evict(stamps []time.Time, now time.Time, window time.Duration) []time.Time {
	i := 0
	for i < len(stamps) && now.Sub(stamps[i]) >= window {
		i++
	}
	if i == 0 {
		return stamps
	}
	return append(stamps[:0], stamps[i:]...)
}

// Cleanup 删除最近一次请求早于 idleTTL 的键
func (s *MemoryStore) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, stamps := range s.windows {
		if len(stamps) == 0 || stamps[len(stamps)-1].Before(cutoff) {
			delete(s.windows, k)
		}
	}
}

// StartJanitor 定期清理空闲键，取消 ctx 停止
func (s *MemoryStore) StartJanitor(ctx context.Context) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
