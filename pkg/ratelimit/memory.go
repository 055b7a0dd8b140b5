package ratelimit

import (
	"sync"
	"sync/atomic"
	"time"
)

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// MemoryRateLimiter implements RateLimiter with in-process token
// buckets, one per client+endpoint pair. Suitable for a single server
// instance; use the Redis limiter when running more than one.
type MemoryRateLimiter struct {
	config  *Config
	buckets map[string]*bucket
	mu      sync.Mutex
	stats   Stats
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	limiter := &MemoryRateLimiter{
		config:  config,
		buckets: make(map[string]*bucket),
	}

	go limiter.cleanupLoop()

	return limiter
}

func (l *MemoryRateLimiter) Allow(clientID, endpoint string) (bool, time.Duration, error) {
	if !l.config.Enabled {
		return true, 0, nil
	}

	atomic.AddInt64(&l.stats.TotalRequests, 1)

	limit := l.config.LimitFor(endpoint)
	key := clientID + ":" + endpoint
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(limit.BurstSize), lastRefill: now}
		l.buckets[key] = b
	}

	refill := now.Sub(b.lastRefill).Minutes() * float64(limit.RequestsPerMinute)
	b.tokens += refill
	if b.tokens > float64(limit.BurstSize) {
		b.tokens = float64(limit.BurstSize)
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0, nil
	}

	atomic.AddInt64(&l.stats.BlockedRequests, 1)
	retryAfter := time.Duration((1 - b.tokens) / float64(limit.RequestsPerMinute) * float64(time.Minute))
	return false, retryAfter, nil
}

func (l *MemoryRateLimiter) Stats() Stats {
	return Stats{
		TotalRequests:   atomic.LoadInt64(&l.stats.TotalRequests),
		BlockedRequests: atomic.LoadInt64(&l.stats.BlockedRequests),
	}
}

// cleanupLoop drops buckets idle long enough to be full again.
func (l *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		l.mu.Lock()
		for key, b := range l.buckets {
			if b.lastRefill.Before(cutoff) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}
