package ratelimit

import "time"

// RateLimiter answers whether a client may hit an endpoint right now.
// When denied, retryAfter says how long until the next request would be
// accepted.
type RateLimiter interface {
	Allow(clientID, endpoint string) (allowed bool, retryAfter time.Duration, err error)
	Stats() Stats
}

// Limit is the per-endpoint budget.
type Limit struct {
	RequestsPerMinute int           `json:"requestsPerMinute"`
	BurstSize         int           `json:"burstSize"`
	WindowSize        time.Duration `json:"windowSize"`
}

// Stats counts traffic through a limiter.
type Stats struct {
	TotalRequests   int64 `json:"totalRequests"`
	BlockedRequests int64 `json:"blockedRequests"`
}

// Config maps endpoint categories to limits.
type Config struct {
	Limits  map[string]Limit `json:"limits"`
	Enabled bool             `json:"enabled"`
}

// DefaultConfig keeps auth endpoints tight and read traffic loose.
func DefaultConfig() *Config {
	return &Config{
		Limits: map[string]Limit{
			"auth_login":    {RequestsPerMinute: 5, BurstSize: 3, WindowSize: time.Minute},
			"auth_register": {RequestsPerMinute: 5, BurstSize: 3, WindowSize: time.Minute},
			"trips_create":  {RequestsPerMinute: 30, BurstSize: 10, WindowSize: time.Minute},
			"default":       {RequestsPerMinute: 120, BurstSize: 30, WindowSize: time.Minute},
		},
		Enabled: true,
	}
}

// LimitFor resolves the limit for an endpoint category.
func (c *Config) LimitFor(endpoint string) Limit {
	if limit, ok := c.Limits[endpoint]; ok {
		return limit
	}
	if limit, ok := c.Limits["default"]; ok {
		return limit
	}
	return Limit{RequestsPerMinute: 60, BurstSize: 15, WindowSize: time.Minute}
}
