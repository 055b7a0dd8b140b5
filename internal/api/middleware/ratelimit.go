package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"fleet-management/pkg/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware throttles requests per client. The endpoint
// category is derived from the route; authenticated callers are keyed
// by user id, anonymous ones by IP.
func RateLimitMiddleware(limiter ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := getClientID(c)
		endpoint := getEndpointCategory(c)

		allowed, retryAfter, err := limiter.Allow(clientID, endpoint)
		if err != nil {
			// Never block traffic on a limiter failure
			c.Header("X-RateLimit-Error", "Rate limiter unavailable")
			c.Next()
			return
		}

		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":      "Rate limit exceeded",
				"retryAfter": int(retryAfter.Seconds()) + 1,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getClientID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if uid, ok := userID.(string); ok && uid != "" {
			return "user:" + uid
		}
	}
	return "ip:" + c.ClientIP()
}

func getEndpointCategory(c *gin.Context) string {
	path := c.Request.URL.Path

	switch {
	case strings.HasSuffix(path, "/auth/login"):
		return "auth_login"
	case strings.HasSuffix(path, "/auth/register"):
		return "auth_register"
	case strings.Contains(path, "/trips") && c.Request.Method == http.MethodPost:
		return "trips_create"
	default:
		return "default"
	}
}
