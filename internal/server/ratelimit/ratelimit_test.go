package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

// newTestLimiter returns a limiter on a frozen clock with no background sweep.
func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *fakeClock) {
	t.Helper()
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	clock := &fakeClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	l.now = clock.Now
	t.Cleanup(l.Stop)
	return l, clock
}

func TestBucket_TakeAndRefill(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBucket(Tier{Limit: 60, Window: time.Minute, Burst: 2}, now)

	assert.True(t, b.take(now))
	assert.True(t, b.take(now))
	assert.False(t, b.take(now), "burst exhausted")
	assert.Equal(t, time.Second, b.untilNext())

	now = now.Add(time.Second)
	assert.True(t, b.take(now), "one token refilled after a second")
	assert.False(t, b.take(now))
}

func TestBucket_RefillCapsAtCapacity(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b := newBucket(Tier{Limit: 10, Window: time.Second, Burst: 3}, now)

	b.refill(now.Add(time.Hour))
	assert.Equal(t, 3.0, b.tokens)
	assert.Equal(t, now.Add(time.Hour), b.fullAt(now.Add(time.Hour)))
}

func TestBucket_BurstDefaultsToLimit(t *testing.T) {
	b := newBucket(Tier{Limit: 5, Window: time.Minute}, time.Now())
	assert.Equal(t, 5.0, b.capacity)
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled: true,
		Default: Tier{Limit: 3, Window: time.Minute},
	})

	for i := range 3 {
		allowed, info := l.Allow("10.0.0.1", "/feedback", "GET")
		require.True(t, allowed, "request %d", i)
		assert.Equal(t, TierDefault, info.Tier)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := l.Allow("10.0.0.1", "/feedback", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Equal(t, 20*time.Second, info.RetryAfter)

	allowed, _ = l.Allow("10.0.0.2", "/feedback", "GET")
	assert.True(t, allowed, "clients have separate buckets")
}

func TestLimiter_LiveFragmentsShareTierBucket(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tiers[TierLiveFragment] = Tier{Limit: 2, Window: time.Minute, Burst: 2}
	l, _ := newTestLimiter(t, cfg)

	allowed, info := l.Allow("c", "/live/one/fragments", "POST")
	require.True(t, allowed)
	assert.Equal(t, TierLiveFragment, info.Tier)

	allowed, _ = l.Allow("c", "/live/two/fragments", "POST")
	require.True(t, allowed)

	allowed, _ = l.Allow("c", "/live/three/fragments", "POST")
	assert.False(t, allowed, "opening new sessions must not reset the fragment budget")

	allowed, info = l.Allow("c", "/live", "POST")
	assert.True(t, allowed)
	assert.Equal(t, TierLiveSession, info.Tier)
}

func TestLimiter_RecoversAfterWindow(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{
		Enabled: true,
		Default: Tier{Limit: 1, Window: time.Minute},
	})

	allowed, _ := l.Allow("c", "/feedback", "GET")
	require.True(t, allowed)
	allowed, info := l.Allow("c", "/feedback", "GET")
	require.False(t, allowed)
	assert.Equal(t, time.Minute, info.RetryAfter)

	clock.Advance(time.Minute + time.Second)
	allowed, _ = l.Allow("c", "/feedback", "GET")
	assert.True(t, allowed)
}

func TestLimiter_AllowAndDenyLists(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:   true,
		Default:   Tier{Limit: 1, Window: time.Hour},
		Allowlist: map[string]bool{"trusted": true},
		Denylist:  map[string]bool{"blocked": true},
	})

	for range 5 {
		allowed, info := l.Allow("trusted", "/feedback", "GET")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}

	allowed, info := l.Allow("blocked", "/health", "GET")
	assert.False(t, allowed)
	assert.Zero(t, info.RetryAfter)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: false, Default: Tier{Limit: 1}})

	for range 10 {
		allowed, info := l.Allow("c", "/score", "POST")
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
	assert.Empty(t, l.buckets)
}

func TestLimiter_UnlimitedPaths(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, Default: Tier{Limit: 1, Window: time.Hour}})

	for range 5 {
		allowed, info := l.Allow("c", "/health", "GET")
		require.True(t, allowed)
		assert.Equal(t, TierUnlimited, info.Tier)

		allowed, _ = l.Allow("c", "/metrics", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled: true,
		Default: Tier{Limit: 50, Window: time.Hour, Burst: 50},
	})

	var allowedCount atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				if ok, _ := l.Allow("c", "/feedback", "GET"); ok {
					allowedCount.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), allowedCount.Load(), "exactly the burst is admitted on a frozen clock")
}

func TestLimiter_SweepDropsIdleBuckets(t *testing.T) {
	l, clock := newTestLimiter(t, &Config{
		Enabled: true,
		Default: Tier{Limit: 10, Window: time.Minute},
		IdleTTL: 10 * time.Minute,
	})

	l.Allow("old", "/feedback", "GET")
	clock.Advance(15 * time.Minute)
	l.Allow("fresh", "/feedback", "GET")

	removed := l.sweep(clock.Now())
	assert.Equal(t, 1, removed)
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "fresh|"+TierDefault)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, CleanupInterval: time.Millisecond})
	assert.NotPanics(t, func() {
		l.Stop()
		l.Stop()
	})
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	require.NotNil(t, l.cfg)
	assert.True(t, l.cfg.Enabled)
	assert.Equal(t, 1000, l.cfg.Default.Limit)
	assert.Contains(t, l.cfg.Tiers, TierBatch)
}
