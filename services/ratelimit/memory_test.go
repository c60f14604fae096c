package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confutils-worker/services/errs"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemoryStore_FourthCallWithinWindowFails(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s := NewMemoryStore(WithClock(clock.Now))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Check(ctx, "powershell_command", 3, 60*time.Second))
		clock.Advance(10 * time.Second)
	}

	err := s.Check(ctx, "powershell_command", 3, 60*time.Second)
	assert.True(t, errs.Is(err, errs.RateLimitExceeded))
	assert.Equal(t, 3, s.Len("powershell_command"), "rejected call is not recorded")

	clock.Advance(60 * time.Second)
	assert.NoError(t, s.Check(ctx, "powershell_command", 3, 60*time.Second))
	assert.Equal(t, 1, s.Len("powershell_command"))
}

func TestMemoryStore_KeysAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Check(ctx, "a", 1, time.Minute))
	assert.Error(t, s.Check(ctx, "a", 1, time.Minute))
	assert.NoError(t, s.Check(ctx, "b", 1, time.Minute))
}

func TestMemoryStore_SlidingEviction(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewMemoryStore(WithClock(clock.Now))
	ctx := context.Background()

	require.NoError(t, s.Check(ctx, "k", 2, 10*time.Second))
	clock.Advance(6 * time.Second)
	require.NoError(t, s.Check(ctx, "k", 2, 10*time.Second))
	clock.Advance(4 * time.Second)

	// 第一个时间戳刚好离开窗口
	require.NoError(t, s.Check(ctx, "k", 2, 10*time.Second))
	assert.Error(t, s.Check(ctx, "k", 2, 10*time.Second))
}

func TestMemoryStore_ConcurrentCallersNeverExceedMax(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.Check(ctx, "k", 10, time.Minute) == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
	assert.Equal(t, 10, s.Len("k"))
}

func TestMemoryStore_CleanupRemovesIdleKeys(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	s := NewMemoryStore(WithClock(clock.Now), WithIdleTTL(time.Minute), WithCleanupEvery(0))

	require.NoError(t, s.Check(context.Background(), "k", 5, time.Hour))
	clock.Advance(2 * time.Minute)
	s.Cleanup()

	assert.Equal(t, 0, s.Len("k"))
}

type countingLimiter struct{ calls int }

func (c *countingLimiter) Check(context.Context, string, int, time.Duration) error {
	c.calls++
	return errs.New(errs.RateLimitExceeded, "limited")
}

func TestService_DisabledAlwaysAllows(t *testing.T) {
	store := &countingLimiter{}
	svc := Service{Store: store}

	assert.NoError(t, svc.Check(context.Background(), "k", 1, time.Minute))
	assert.Equal(t, 0, store.calls)

	assert.NoError(t, Service{Enabled: true}.Check(context.Background(), "k", 1, time.Minute))
}

func TestService_EnabledDelegates(t *testing.T) {
	store := &countingLimiter{}
	svc := Service{Store: store, Enabled: true}

	err := svc.Check(context.Background(), "k", 1, time.Minute)
	assert.True(t, errs.Is(err, errs.RateLimitExceeded))
	assert.Equal(t, 1, store.calls)
}
