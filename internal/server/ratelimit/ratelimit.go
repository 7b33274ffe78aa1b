// Package ratelimit throttles API clients with token buckets. Endpoints are
// grouped into tiers and each client gets one bucket per tier, so every
// fragment posted to any live session by one client draws from the same bucket.
package ratelimit

import (
	"sync"
	"time"
)

// bucket is a token bucket. It is guarded by the owning Limiter's mutex.
type bucket struct {
	tokens   float64
	capacity float64
	rate     float64 // tokens per second
	updated  time.Time
	lastSeen time.Time
}

func newBucket(t Tier, now time.Time) *bucket {
	capacity := t.Burst
	if capacity <= 0 {
		capacity = t.Limit
	}
	return &bucket{
		tokens:   float64(capacity),
		capacity: float64(capacity),
		rate:     float64(t.Limit) / t.window().Seconds(),
		updated:  now,
		lastSeen: now,
	}
}

func (b *bucket) refill(now time.Time) {
	if elapsed := now.Sub(b.updated).Seconds(); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.rate)
	}
	b.updated = now
}

// take consumes one token if one is available.
func (b *bucket) take(now time.Time) bool {
	b.refill(now)
	b.lastSeen = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// fullAt is when the bucket will be back at capacity.
func (b *bucket) fullAt(now time.Time) time.Time {
	missing := b.capacity - b.tokens
	if missing <= 0 {
		return now
	}
	return now.Add(seconds(missing / b.rate))
}

// untilNext is how long until one token is available.
func (b *bucket) untilNext() time.Duration {
	if b.tokens >= 1 {
		return 0
	}
	return seconds((1 - b.tokens) / b.rate)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Info describes the outcome of one Allow call.
type Info struct {
	Allowed    bool
	Tier       string
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Limiter tracks one bucket per client and tier.
type Limiter struct {
	cfg *Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a limiter. A nil config enables limiting with the
// default tiers. When enabled, idle buckets are swept in the background until
// Stop is called.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Limiter{
		cfg:     cfg,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}

	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go l.sweepLoop(cfg.CleanupInterval)
	}
	return l
}

// Allow consumes a token for a request from clientID to method and path.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.cfg.Enabled || l.cfg.Allowlist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.cfg.Denylist[clientID] {
		return false, Info{}
	}

	name, tier := l.cfg.Resolve(method, path)
	if tier.Limit <= 0 {
		return true, Info{Allowed: true, Tier: name}
	}

	now := l.now()
	key := clientID + "|" + name

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(tier, now)
		l.buckets[key] = b
	}

	allowed := b.take(now)
	info := Info{
		Allowed:   allowed,
		Tier:      name,
		Limit:     tier.Limit,
		Remaining: int(b.tokens),
		ResetTime: b.fullAt(now),
	}
	if !allowed {
		info.RetryAfter = b.untilNext()
	}
	return allowed, info
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep(l.now())
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets not used within the idle TTL.
func (l *Limiter) sweep(now time.Time) int {
	cutoff := now.Add(-l.cfg.idleTTL())

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// Stop ends the background sweep. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
