package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"fleet-management/internal/models"
	"fleet-management/internal/repository"
	"fleet-management/pkg/cache"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type vehicleActiveTripStore interface {
	FindActiveByVehicle(ctx context.Context, vehicleID primitive.ObjectID, excludeID *primitive.ObjectID) ([]*models.Trip, error)
}

// VehicleService owns vehicle CRUD, the uniqueness checks on
// vehicle number, plate and VIN, and manual status changes. Automatic
// available/assigned flips belong to the trip service.
type VehicleService struct {
	vehicleRepo  *repository.VehicleRepository
	tripStore    vehicleActiveTripStore
	users        tripUserStore
	cacheManager cache.CacheManager
	cacheConfig  cache.CacheConfig
}

func NewVehicleService(vehicleRepo *repository.VehicleRepository, tripStore vehicleActiveTripStore, users tripUserStore) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		tripStore:   tripStore,
		users:       users,
		cacheConfig: cache.DefaultCacheConfig(),
	}
}

// SetCacheManager allows setting the cache manager for caching operations
func (s *VehicleService) SetCacheManager(cacheManager cache.CacheManager) {
	s.cacheManager = cacheManager
}

// SetCacheConfig allows setting custom cache configuration
func (s *VehicleService) SetCacheConfig(config cache.CacheConfig) {
	s.cacheConfig = config
}

type CreateVehicleRequest struct {
	VehicleNumber      string     `json:"vehicleNumber" validate:"required,min=1,max=20"`
	Type               string     `json:"type" validate:"required,oneof=sedan suv truck van bus motorcycle"`
	Make               string     `json:"make" validate:"required"`
	Model              string     `json:"model" validate:"required"`
	Year               int        `json:"year" validate:"required,min=1900,max=2100"`
	Color              string     `json:"color" validate:"required"`
	LicensePlate       string     `json:"licensePlate" validate:"required"`
	VIN                string     `json:"vin" validate:"required,len=17"`
	FuelType           string     `json:"fuelType,omitempty" validate:"omitempty,oneof=gasoline diesel electric hybrid lpg"`
	FuelCapacity       float64    `json:"fuelCapacity,omitempty" validate:"omitempty,min=0"`
	Mileage            float64    `json:"mileage,omitempty" validate:"omitempty,min=0"`
	LastServiceDate    *time.Time `json:"lastServiceDate,omitempty"`
	NextServiceDue     *time.Time `json:"nextServiceDue,omitempty"`
	InsuranceExpiry    *time.Time `json:"insuranceExpiry,omitempty"`
	RegistrationExpiry *time.Time `json:"registrationExpiry,omitempty"`
	Notes              string     `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateVehicleRequest struct {
	Type               string     `json:"type,omitempty" validate:"omitempty,oneof=sedan suv truck van bus motorcycle"`
	Make               string     `json:"make,omitempty"`
	Model              string     `json:"model,omitempty"`
	Year               int        `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
	Color              string     `json:"color,omitempty"`
	Status             string     `json:"status,omitempty" validate:"omitempty,oneof=available assigned maintenance out_of_service"`
	FuelType           string     `json:"fuelType,omitempty" validate:"omitempty,oneof=gasoline diesel electric hybrid lpg"`
	FuelCapacity       float64    `json:"fuelCapacity,omitempty" validate:"omitempty,min=0"`
	Mileage            float64    `json:"mileage,omitempty" validate:"omitempty,min=0"`
	LastServiceDate    *time.Time `json:"lastServiceDate,omitempty"`
	NextServiceDue     *time.Time `json:"nextServiceDue,omitempty"`
	InsuranceExpiry    *time.Time `json:"insuranceExpiry,omitempty"`
	RegistrationExpiry *time.Time `json:"registrationExpiry,omitempty"`
	Notes              *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (s *VehicleService) GetAllVehicles() ([]*models.Vehicle, error) {
	if s.cacheManager != nil {
		cached, err := s.cacheManager.GetVehicleList("all_vehicles")
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			log.Printf("Cache error for GetAllVehicles: %v", err)
		}
	}

	vehicles, err := s.vehicleRepo.FindAll()
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		ttl := s.cacheConfig.GetTTLForDataType("vehicle_list")
		if cacheErr := s.cacheManager.SetVehicleList("all_vehicles", vehicles, ttl); cacheErr != nil {
			log.Printf("Failed to cache all vehicles: %v", cacheErr)
		}
	}

	return vehicles, nil
}

func (s *VehicleService) GetVehiclesByStatus(status string) ([]*models.Vehicle, error) {
	if s.cacheManager != nil {
		cacheKey := fmt.Sprintf("vehicles_by_status_%s", status)
		cached, err := s.cacheManager.GetVehicleList(cacheKey)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			log.Printf("Cache error for GetVehiclesByStatus(%s): %v", status, err)
		}
	}

	vehicles, err := s.vehicleRepo.FindByStatus(status)
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		cacheKey := fmt.Sprintf("vehicles_by_status_%s", status)
		ttl := s.cacheConfig.GetTTLForDataType("vehicle_list")
		if cacheErr := s.cacheManager.SetVehicleList(cacheKey, vehicles, ttl); cacheErr != nil {
			log.Printf("Failed to cache vehicles by status %s: %v", status, cacheErr)
		}
	}

	return vehicles, nil
}

func (s *VehicleService) GetVehicleByID(id string) (*models.Vehicle, error) {
	if s.cacheManager != nil {
		cached, err := s.cacheManager.GetVehicle(id)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil {
			log.Printf("Cache error for GetVehicleByID(%s): %v", id, err)
		}
	}

	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if s.cacheManager != nil {
		ttl := s.cacheConfig.GetTTLForDataType("vehicle")
		if cacheErr := s.cacheManager.SetVehicle(id, vehicle, ttl); cacheErr != nil {
			log.Printf("Failed to cache vehicle %s: %v", id, cacheErr)
		}
	}

	return vehicle, nil
}

func (s *VehicleService) CreateVehicle(req *CreateVehicleRequest, createdBy string) (*models.Vehicle, error) {
	// Unique fields are stored uppercased so lookups are case-insensitive
	req.VehicleNumber = strings.ToUpper(req.VehicleNumber)
	req.LicensePlate = strings.ToUpper(req.LicensePlate)
	req.VIN = strings.ToUpper(req.VIN)

	if err := s.checkUniqueFields(req.VehicleNumber, req.LicensePlate, req.VIN, ""); err != nil {
		return nil, err
	}

	creatorID, err := primitive.ObjectIDFromHex(createdBy)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	fuelType := req.FuelType
	if fuelType == "" {
		fuelType = "gasoline"
	}

	vehicle := &models.Vehicle{
		VehicleNumber:      req.VehicleNumber,
		Type:               req.Type,
		Make:               req.Make,
		Model:              req.Model,
		Year:               req.Year,
		Color:              req.Color,
		LicensePlate:       req.LicensePlate,
		VIN:                req.VIN,
		Status:             models.VehicleStatusAvailable,
		FuelType:           fuelType,
		FuelCapacity:       req.FuelCapacity,
		Mileage:            req.Mileage,
		LastServiceDate:    req.LastServiceDate,
		NextServiceDue:     req.NextServiceDue,
		InsuranceExpiry:    req.InsuranceExpiry,
		RegistrationExpiry: req.RegistrationExpiry,
		Notes:              req.Notes,
		CreatedBy:          creatorID,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}

	created, err := s.vehicleRepo.Create(vehicle)
	if err != nil {
		return nil, err
	}

	s.invalidateVehicleCaches(created.ID.Hex())

	return created, nil
}

func (s *VehicleService) UpdateVehicle(id string, req *UpdateVehicleRequest) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	if req.Type != "" {
		vehicle.Type = req.Type
	}
	if req.Make != "" {
		vehicle.Make = req.Make
	}
	if req.Model != "" {
		vehicle.Model = req.Model
	}
	if req.Year > 0 {
		vehicle.Year = req.Year
	}
	if req.Color != "" {
		vehicle.Color = req.Color
	}
	if req.Status != "" {
		if !models.ValidVehicleStatus(req.Status) {
			return nil, ErrInvalidVehicleStatus
		}
		vehicle.Status = req.Status
		if req.Status == models.VehicleStatusAvailable {
			vehicle.AssignedDriver = nil
		}
	}
	if req.FuelType != "" {
		vehicle.FuelType = req.FuelType
	}
	if req.FuelCapacity > 0 {
		vehicle.FuelCapacity = req.FuelCapacity
	}
	if req.Mileage > 0 {
		vehicle.Mileage = req.Mileage
	}
	if req.LastServiceDate != nil {
		vehicle.LastServiceDate = req.LastServiceDate
	}
	if req.NextServiceDue != nil {
		vehicle.NextServiceDue = req.NextServiceDue
	}
	if req.InsuranceExpiry != nil {
		vehicle.InsuranceExpiry = req.InsuranceExpiry
	}
	if req.RegistrationExpiry != nil {
		vehicle.RegistrationExpiry = req.RegistrationExpiry
	}
	if req.Notes != nil {
		vehicle.Notes = *req.Notes
	}

	updated, err := s.vehicleRepo.Update(id, vehicle)
	if err != nil {
		return nil, err
	}

	s.invalidateVehicleCaches(id)

	return updated, nil
}

// AssignDriver manually binds a driver to an available vehicle.
func (s *VehicleService) AssignDriver(vehicleID, driverID string) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != models.VehicleStatusAvailable {
		return nil, ErrVehicleUnavailable
	}

	driver, err := s.users.FindByID(driverID)
	if err != nil {
		return nil, err
	}
	if driver.Role != models.RoleDriver {
		return nil, ErrNotADriver
	}

	if err := s.vehicleRepo.SetAssignment(vehicle.ID, driver.ID); err != nil {
		return nil, err
	}

	s.invalidateVehicleCaches(vehicleID)

	return s.vehicleRepo.FindByID(vehicleID)
}

// UnassignDriver manually releases a vehicle. Rejected while active
// trips still hold the vehicle; those release it through their own
// lifecycle.
func (s *VehicleService) UnassignDriver(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(vehicleID)
	if err != nil {
		return nil, err
	}

	active, err := s.tripStore.FindActiveByVehicle(ctx, vehicle.ID, nil)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, ErrVehicleHasActiveTrips
	}

	if err := s.vehicleRepo.ClearAssignment(vehicle.ID); err != nil {
		return nil, err
	}

	s.invalidateVehicleCaches(vehicleID)

	return s.vehicleRepo.FindByID(vehicleID)
}

// DeleteVehicle removes a vehicle. Rejected while the vehicle still has
// active trips so trip records never dangle.
func (s *VehicleService) DeleteVehicle(ctx context.Context, id string) error {
	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		return err
	}

	active, err := s.tripStore.FindActiveByVehicle(ctx, vehicle.ID, nil)
	if err != nil {
		return err
	}
	if len(active) > 0 {
		return ErrVehicleHasActiveTrips
	}

	if err := s.vehicleRepo.Delete(id); err != nil {
		return err
	}

	s.invalidateVehicleCaches(id)

	return nil
}

func (s *VehicleService) checkUniqueFields(vehicleNumber, licensePlate, vin, excludeID string) error {
	checks := []struct {
		field string
		value string
		err   error
	}{
		{"vehicle_number", vehicleNumber, ErrDuplicateVehicleNumber},
		{"license_plate", licensePlate, ErrDuplicateLicensePlate},
		{"vin", vin, ErrDuplicateVIN},
	}

	for _, check := range checks {
		if check.value == "" {
			continue
		}
		existing, err := s.vehicleRepo.FindByUniqueField(check.field, check.value)
		if err != nil {
			if err == repository.ErrVehicleNotFound {
				continue
			}
			return err
		}
		if existing.ID.Hex() != excludeID {
			return check.err
		}
	}

	return nil
}

func (s *VehicleService) invalidateVehicleCaches(id string) {
	if s.cacheManager == nil {
		return
	}

	if err := s.cacheManager.InvalidateVehicle(id); err != nil {
		log.Printf("Failed to invalidate vehicle cache for %s: %v", id, err)
	}
	if err := s.cacheManager.InvalidateVehicleLists(); err != nil {
		log.Printf("Failed to invalidate vehicle list caches: %v", err)
	}
}
