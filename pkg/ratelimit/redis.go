package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter implements RateLimiter with a fixed window counter
// per client+endpoint, shared across server instances.
type RedisRateLimiter struct {
	client *redis.Client
	config *Config
	prefix string
	stats  Stats
}

func NewRedisRateLimiter(client *redis.Client, config *Config) *RedisRateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	return &RedisRateLimiter{
		client: client,
		config: config,
		prefix: "ratelimit:",
	}
}

func (l *RedisRateLimiter) Allow(clientID, endpoint string) (bool, time.Duration, error) {
	if !l.config.Enabled {
		return true, 0, nil
	}

	atomic.AddInt64(&l.stats.TotalRequests, 1)

	limit := l.config.LimitFor(endpoint)
	window := time.Now().Truncate(limit.WindowSize)
	key := fmt.Sprintf("%s%s:%s:%d", l.prefix, clientID, endpoint, window.Unix())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, limit.WindowSize)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	budget := int64(limit.RequestsPerMinute) * int64(limit.WindowSize/time.Minute)
	if budget == 0 {
		budget = int64(limit.RequestsPerMinute)
	}

	if count.Val() <= budget {
		return true, 0, nil
	}

	atomic.AddInt64(&l.stats.BlockedRequests, 1)
	retryAfter := time.Until(window.Add(limit.WindowSize))
	return false, retryAfter, nil
}

func (l *RedisRateLimiter) Stats() Stats {
	return Stats{
		TotalRequests:   atomic.LoadInt64(&l.stats.TotalRequests),
		BlockedRequests: atomic.LoadInt64(&l.stats.BlockedRequests),
	}
}
