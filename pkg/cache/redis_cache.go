package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fleet-management/internal/models"
	"fleet-management/pkg/redis"

	redisClient "github.com/redis/go-redis/v9"
)

// RedisCacheManager implements CacheManager using Redis
type RedisCacheManager struct {
	client *redis.Client
	config CacheConfig
	ctx    context.Context
}

// NewRedisCacheManager creates a new Redis-backed cache manager
func NewRedisCacheManager(client *redis.Client, config CacheConfig) *RedisCacheManager {
	return &RedisCacheManager{
		client: client,
		config: config,
		ctx:    context.Background(),
	}
}

// GetVehicle retrieves a vehicle from cache. A miss returns (nil, nil).
func (r *RedisCacheManager) GetVehicle(vehicleID string) (*models.Vehicle, error) {
	key := r.buildKey("vehicle", vehicleID)

	data, err := r.client.GetClient().Get(r.ctx, key).Result()
	if err != nil {
		if err == redisClient.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vehicle from cache: %w", err)
	}

	var vehicle models.Vehicle
	if err := json.Unmarshal([]byte(data), &vehicle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vehicle data: %w", err)
	}

	return &vehicle, nil
}

// SetVehicle stores a vehicle in cache with TTL
func (r *RedisCacheManager) SetVehicle(vehicleID string, vehicle *models.Vehicle, ttl time.Duration) error {
	key := r.buildKey("vehicle", vehicleID)

	data, err := json.Marshal(vehicle)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle data: %w", err)
	}

	if err := r.client.GetClient().Set(r.ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set vehicle in cache: %w", err)
	}

	return nil
}

// InvalidateVehicle removes a specific vehicle from cache
func (r *RedisCacheManager) InvalidateVehicle(vehicleID string) error {
	return r.Delete(r.buildKey("vehicle", vehicleID))
}

// GetVehicleList retrieves a list of vehicles from cache. A miss
// returns (nil, nil).
func (r *RedisCacheManager) GetVehicleList(key string) ([]*models.Vehicle, error) {
	cacheKey := r.buildKey("vehicle_list", key)

	data, err := r.client.GetClient().Get(r.ctx, cacheKey).Result()
	if err != nil {
		if err == redisClient.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vehicle list from cache: %w", err)
	}

	var vehicles []*models.Vehicle
	if err := json.Unmarshal([]byte(data), &vehicles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vehicle list data: %w", err)
	}

	return vehicles, nil
}

// SetVehicleList stores a list of vehicles in cache
func (r *RedisCacheManager) SetVehicleList(key string, vehicles []*models.Vehicle, ttl time.Duration) error {
	cacheKey := r.buildKey("vehicle_list", key)

	data, err := json.Marshal(vehicles)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle list data: %w", err)
	}

	if err := r.client.GetClient().Set(r.ctx, cacheKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set vehicle list in cache: %w", err)
	}

	return nil
}

// InvalidateVehicleLists drops every cached vehicle list. Lists are
// keyed by filter, so any vehicle mutation can touch any of them.
func (r *RedisCacheManager) InvalidateVehicleLists() error {
	pattern := r.buildKey("vehicle_list", "*")

	iter := r.client.GetClient().Scan(r.ctx, 0, pattern, 100).Iterator()
	for iter.Next(r.ctx) {
		if err := r.client.GetClient().Del(r.ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete cache key %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan vehicle list keys: %w", err)
	}

	return nil
}

// Get retrieves a generic value from cache into dest
func (r *RedisCacheManager) Get(key string, dest interface{}) error {
	data, err := r.client.GetClient().Get(r.ctx, r.config.KeyPrefix+key).Result()
	if err != nil {
		if err == redisClient.Nil {
			return nil
		}
		return fmt.Errorf("failed to get key %s from cache: %w", key, err)
	}

	return json.Unmarshal([]byte(data), dest)
}

// Set stores a generic value in cache
func (r *RedisCacheManager) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	return r.client.GetClient().Set(r.ctx, r.config.KeyPrefix+key, data, ttl).Err()
}

// Delete removes a key from cache
func (r *RedisCacheManager) Delete(key string) error {
	return r.client.GetClient().Del(r.ctx, key).Err()
}

// HealthCheck verifies the cache backend is reachable
func (r *RedisCacheManager) HealthCheck() error {
	ctx, cancel := context.WithTimeout(r.ctx, 3*time.Second)
	defer cancel()

	return r.client.GetClient().Ping(ctx).Err()
}

// Close releases the underlying client
func (r *RedisCacheManager) Close() error {
	return r.client.Close()
}

func (r *RedisCacheManager) buildKey(dataType, id string) string {
	return fmt.Sprintf("%s%s:%s", r.config.KeyPrefix, dataType, id)
}
