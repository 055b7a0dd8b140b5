package cache

import (
	"time"

	"fleet-management/internal/models"
)

// CacheManager defines the interface for caching operations
type CacheManager interface {
	// Vehicle operations
	GetVehicle(vehicleID string) (*models.Vehicle, error)
	SetVehicle(vehicleID string, vehicle *models.Vehicle, ttl time.Duration) error
	InvalidateVehicle(vehicleID string) error

	// Vehicle list operations
	GetVehicleList(key string) ([]*models.Vehicle, error)
	SetVehicleList(key string, vehicles []*models.Vehicle, ttl time.Duration) error
	InvalidateVehicleLists() error

	// Generic operations
	Get(key string, dest interface{}) error
	Set(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error

	// Health
	HealthCheck() error
	Close() error
}
