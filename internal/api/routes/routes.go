package routes

import (
	"fleet-management/internal/api/handlers"
	"fleet-management/internal/api/middleware"
	"fleet-management/internal/config"
	"fleet-management/internal/models"
	"fleet-management/internal/repository"
	"fleet-management/internal/services"
	"fleet-management/internal/websocket"
	"fleet-management/pkg/cache"
	"fleet-management/pkg/email"
	"fleet-management/pkg/jwt"
	"fleet-management/pkg/ratelimit"
	redispkg "fleet-management/pkg/redis"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies carries the shared infrastructure the route tree needs.
type Dependencies struct {
	DB      *mongo.Database
	Redis   *redispkg.Client
	Cache   cache.CacheManager
	Hub     *websocket.Hub
	JWTUtil *jwt.JWTUtil
	Limiter ratelimit.RateLimiter
	Mailer  *email.EmailService
	Config  *config.Config
}

// SetupRoutes wires repositories, services and handlers onto the
// router. The returned alert service is started by the caller.
func SetupRoutes(router *gin.Engine, deps Dependencies) *services.AlertService {
	userRepo := repository.NewUserRepository(deps.DB)
	vehicleRepo := repository.NewVehicleRepository(deps.DB)
	tripRepo := repository.NewTripRepository(deps.DB)

	authService := services.NewAuthService(userRepo, deps.JWTUtil)
	userService := services.NewUserService(userRepo)
	vehicleService := services.NewVehicleService(vehicleRepo, tripRepo, userRepo)
	tripService := services.NewTripService(tripRepo, vehicleRepo, userRepo)
	alertService := services.NewAlertService(tripRepo, vehicleRepo, userRepo, deps.Config.AlertCheckInterval)

	if deps.Cache != nil {
		vehicleService.SetCacheManager(deps.Cache)
		tripService.SetVehicleCache(deps.Cache)
	}
	if deps.Hub != nil {
		tripService.SetEventEmitter(deps.Hub)
		alertService.SetEventEmitter(deps.Hub)
	}
	if deps.Mailer != nil {
		alertService.SetMailer(deps.Mailer)
	}

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	tripHandler := handlers.NewTripHandler(tripService)
	alertHandler := handlers.NewAlertHandler(alertService)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Redis)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.JWTUtil)

	api := router.Group("/api")
	if deps.Limiter != nil {
		api.Use(middleware.RateLimitMiddleware(deps.Limiter))
	}

	api.GET("/health", healthHandler.Health)
	api.GET("/ws", wsHandler.Connect)

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.JWTUtil))
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.GET("/ws/stats",
			middleware.RequireRoles(models.RoleFleetManager, models.RoleAdmin), wsHandler.Stats)

		manage := middleware.RequireRoles(models.RoleFleetManager, models.RoleAdmin)
		operate := middleware.RequireRoles(models.RoleDriver, models.RoleFleetManager, models.RoleAdmin)

		trips := protected.Group("/trips")
		{
			trips.GET("", tripHandler.GetTrips)
			trips.POST("", manage, tripHandler.CreateTrip)
			trips.GET("/:id", tripHandler.GetTrip)
			trips.PUT("/:id", manage, tripHandler.UpdateTrip)
			trips.DELETE("/:id", manage, tripHandler.DeleteTrip)
			trips.PATCH("/:id/start", operate, tripHandler.StartTrip)
			trips.PATCH("/:id/complete", operate, tripHandler.CompleteTrip)
			trips.PATCH("/:id/cancel", manage, tripHandler.CancelTrip)
			trips.GET("/driver/:id", tripHandler.GetTripsByDriver)
			trips.GET("/vehicle/:id", tripHandler.GetTripsByVehicle)
		}

		vehicles := protected.Group("/vehicles")
		{
			vehicles.GET("", vehicleHandler.GetVehicles)
			vehicles.GET("/available", vehicleHandler.GetAvailableVehicles)
			vehicles.GET("/status/:status", vehicleHandler.GetVehiclesByStatus)
			vehicles.POST("", manage, vehicleHandler.CreateVehicle)
			vehicles.GET("/:id", vehicleHandler.GetVehicle)
			vehicles.PUT("/:id", manage, vehicleHandler.UpdateVehicle)
			vehicles.POST("/:id/assign", manage, vehicleHandler.AssignDriver)
			vehicles.POST("/:id/unassign", manage, vehicleHandler.UnassignDriver)
			vehicles.DELETE("/:id",
				middleware.RequireRoles(models.RoleAdmin), vehicleHandler.DeleteVehicle)
		}

		users := protected.Group("/users")
		{
			users.GET("/role/:role", manage, userHandler.GetUsersByRole)

			admin := middleware.RequireRoles(models.RoleAdmin)
			users.GET("", admin, userHandler.GetUsers)
			users.POST("", admin, userHandler.CreateUser)
			users.GET("/:id", admin, userHandler.GetUser)
			users.PUT("/:id", admin, userHandler.UpdateUser)
			users.DELETE("/:id", admin, userHandler.DeleteUser)
		}

		alerts := protected.Group("/alerts")
		alerts.Use(manage)
		{
			alerts.GET("/overdue-trips", alertHandler.GetOverdueTrips)
			alerts.GET("/maintenance", alertHandler.GetMaintenanceDue)
			alerts.POST("/maintenance", alertHandler.TriggerMaintenanceScan)
		}
	}

	return alertService
}
