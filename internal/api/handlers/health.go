package handlers

import (
	"net/http"

	"fleet-management/pkg/database"
	redispkg "fleet-management/pkg/redis"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

type HealthHandler struct {
	db    *mongo.Database
	redis *redispkg.Client
}

func NewHealthHandler(db *mongo.Database, redis *redispkg.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health reports liveness of the API and its backing stores. The API
// stays up when Redis is down; the cache degrades to pass-through.
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	mongoStatus := "connected"

	if err := database.Health(h.db); err != nil {
		mongoStatus = "disconnected"
		status = http.StatusServiceUnavailable
	}

	redisStatus := "disabled"
	if h.redis != nil {
		if h.redis.HealthCheck().IsConnected {
			redisStatus = "connected"
		} else {
			redisStatus = "disconnected"
		}
	}

	c.JSON(status, gin.H{
		"status":  statusWord(status),
		"mongodb": mongoStatus,
		"redis":   redisStatus,
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "healthy"
	}
	return "unhealthy"
}
