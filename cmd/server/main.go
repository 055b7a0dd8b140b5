package main

import (
	"log"

	"fleet-management/internal/api/routes"
	"fleet-management/internal/config"
	"fleet-management/internal/websocket"
	"fleet-management/pkg/cache"
	"fleet-management/pkg/database"
	"fleet-management/pkg/email"
	"fleet-management/pkg/jwt"
	"fleet-management/pkg/ratelimit"
	redispkg "fleet-management/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to MongoDB
	db, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer database.Disconnect(db.Client())

	// Initialize Redis client
	redisClient := redispkg.NewClient(cfg.Redis)
	defer redisClient.Close()

	healthStatus := redisClient.HealthCheck()
	if healthStatus.IsConnected {
		log.Printf("Redis connected successfully at %s", healthStatus.ConnectionInfo)
	} else {
		log.Printf("Redis connection failed: %s (will retry automatically)", healthStatus.Error)
	}

	cacheManager := cache.NewRedisCacheManager(redisClient, cache.DefaultCacheConfig())

	// Rate limiter: Redis-backed when connected so limits hold across
	// instances, in-memory otherwise
	var limiter ratelimit.RateLimiter
	if healthStatus.IsConnected {
		limiter = ratelimit.NewRedisRateLimiter(redisClient.GetClient(), ratelimit.DefaultConfig())
	} else {
		limiter = ratelimit.NewMemoryRateLimiter(ratelimit.DefaultConfig())
	}

	// WebSocket hub for trip and alert notifications
	hub := websocket.NewHub()
	hub.Start()
	defer hub.Stop()

	var mailer *email.EmailService
	if cfg.SMTP.Host != "" {
		mailer = email.NewEmailService(
			cfg.SMTP.Host, cfg.SMTP.Port,
			cfg.SMTP.Username, cfg.SMTP.Password,
			cfg.SMTP.FromEmail, cfg.SMTP.FromName,
		)
	} else {
		log.Println("SMTP not configured, alert emails disabled")
	}

	// Setup Gin router
	router := gin.Default()

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Upgrade", "Connection", "Sec-WebSocket-Key", "Sec-WebSocket-Version", "Sec-WebSocket-Protocol"},
		ExposeHeaders: []string{"Content-Length"},
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	alertService := routes.SetupRoutes(router, routes.Dependencies{
		DB:      db,
		Redis:   redisClient,
		Cache:   cacheManager,
		Hub:     hub,
		JWTUtil: jwt.NewJWTUtil(),
		Limiter: limiter,
		Mailer:  mailer,
		Config:  cfg,
	})

	go alertService.Start()
	defer alertService.Stop()

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(router.Run(":" + cfg.Port))
}
