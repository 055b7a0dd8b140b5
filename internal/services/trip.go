package services

import (
	"context"
	"log"
	"time"

	"fleet-management/internal/models"
	"fleet-management/internal/repository"
	"fleet-management/internal/websocket"
	"fleet-management/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// tripStore is the slice of the trip repository the service needs.
type tripStore interface {
	Insert(ctx context.Context, trip *models.Trip) error
	FindByID(ctx context.Context, id string) (*models.Trip, error)
	FindActiveByVehicle(ctx context.Context, vehicleID primitive.ObjectID, excludeID *primitive.ObjectID) ([]*models.Trip, error)
	UpdateFields(ctx context.Context, id string, set bson.M, unset bson.M) (*models.Trip, error)
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, filter repository.TripFilter, skip, limit int) ([]*models.PopulatedTrip, error)
	FindByIDPopulated(ctx context.Context, id string) (*models.PopulatedTrip, error)
	Count(ctx context.Context, filter repository.TripFilter) (int64, error)
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type tripVehicleStore interface {
	FindByID(id string) (*models.Vehicle, error)
	SetAssignment(id primitive.ObjectID, driverID primitive.ObjectID) error
	ClearAssignment(id primitive.ObjectID) error
}

type tripUserStore interface {
	FindByID(id string) (*models.User, error)
}

// tripVehicleCache is the slice of the cache manager the synchronizer
// needs: assignment writes must drop the cached vehicle so reads do
// not serve a stale status.
type tripVehicleCache interface {
	InvalidateVehicle(vehicleID string) error
	InvalidateVehicleLists() error
}

// TripService owns the trip lifecycle: legal status transitions, the
// double-booking check on creation, and keeping the vehicle's
// assignment status in step with its active trips.
type TripService struct {
	trips        tripStore
	vehicles     tripVehicleStore
	users        tripUserStore
	emitter      websocket.EventEmitter
	vehicleCache tripVehicleCache
	now          func() time.Time
}

func NewTripService(trips tripStore, vehicles tripVehicleStore, users tripUserStore) *TripService {
	return &TripService{
		trips:    trips,
		vehicles: vehicles,
		users:    users,
		now:      time.Now,
	}
}

// SetEventEmitter allows setting the WebSocket emitter for real-time updates
func (s *TripService) SetEventEmitter(emitter websocket.EventEmitter) {
	s.emitter = emitter
}

// SetVehicleCache allows setting the cache manager so assignment
// changes made by the synchronizer invalidate cached vehicles
func (s *TripService) SetVehicleCache(cache tripVehicleCache) {
	s.vehicleCache = cache
}

type CreateTripRequest struct {
	VehicleID    string     `json:"vehicleId" validate:"required"`
	DriverID     string     `json:"driverId" validate:"required"`
	Origin       string     `json:"origin" validate:"required,min=1,max=200"`
	Destination  string     `json:"destination" validate:"required,min=1,max=200"`
	StartTime    time.Time  `json:"startTime" validate:"required"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Distance     float64    `json:"distance,omitempty" validate:"omitempty,min=0"`
	FuelConsumed float64    `json:"fuelConsumed,omitempty" validate:"omitempty,min=0"`
	Notes        string     `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type CompleteTripRequest struct {
	EndTime      *time.Time `json:"endTime,omitempty"`
	Distance     *float64   `json:"distance,omitempty" validate:"omitempty,min=0"`
	FuelConsumed *float64   `json:"fuelConsumed,omitempty" validate:"omitempty,min=0"`
	Notes        *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateTripRequest struct {
	Origin       *string    `json:"origin,omitempty" validate:"omitempty,min=1,max=200"`
	Destination  *string    `json:"destination,omitempty" validate:"omitempty,min=1,max=200"`
	StartTime    *time.Time `json:"startTime,omitempty"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	Distance     *float64   `json:"distance,omitempty" validate:"omitempty,min=0"`
	FuelConsumed *float64   `json:"fuelConsumed,omitempty" validate:"omitempty,min=0"`
	Notes        *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// CreateTrip validates the create guards, then runs the overlap check
// and the insert inside a single transaction so two concurrent creates
// for the same vehicle cannot both pass the check before either write
// commits. Vehicle reconciliation runs after the commit and is not
// rolled back with it.
func (s *TripService) CreateTrip(ctx context.Context, req *CreateTripRequest, createdBy string) (*models.PopulatedTrip, error) {
	vehicle, err := s.vehicles.FindByID(req.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status == models.VehicleStatusMaintenance || vehicle.Status == models.VehicleStatusOutOfService {
		return nil, ErrVehicleUnavailable
	}

	driver, err := s.users.FindByID(req.DriverID)
	if err != nil {
		return nil, err
	}
	if driver.Role != models.RoleDriver {
		return nil, ErrNotADriver
	}

	now := s.now()
	if !req.StartTime.After(now) {
		return nil, ErrStartTimeInPast
	}
	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return nil, ErrEndBeforeStart
	}

	creatorID, err := primitive.ObjectIDFromHex(createdBy)
	if err != nil {
		return nil, repository.ErrInvalidID
	}

	trip := &models.Trip{
		VehicleID:    vehicle.ID,
		DriverID:     driver.ID,
		Origin:       req.Origin,
		Destination:  req.Destination,
		Status:       models.TripStatusScheduled,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Distance:     req.Distance,
		FuelConsumed: req.FuelConsumed,
		Notes:        req.Notes,
		CreatedBy:    creatorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	candStart, candEnd := candidateWindow(req.StartTime, req.EndTime)
	err = s.trips.WithTransaction(ctx, func(txCtx context.Context) error {
		active, err := s.trips.FindActiveByVehicle(txCtx, vehicle.ID, nil)
		if err != nil {
			return err
		}
		if conflict := findConflict(active, candStart, candEnd); conflict != nil {
			return ErrTripOverlap
		}
		return s.trips.Insert(txCtx, trip)
	})
	if err != nil {
		return nil, err
	}

	s.reconcileOnActivate(vehicle, driver.ID)
	s.emitStatusChange(trip, models.TripStatusScheduled)

	return s.trips.FindByIDPopulated(ctx, trip.ID.Hex())
}

// StartTrip moves a scheduled trip to in_progress. The stored start
// time is overwritten with the actual start instant and any projected
// end time is cleared.
func (s *TripService) StartTrip(ctx context.Context, id string) (*models.PopulatedTrip, error) {
	trip, err := s.trips.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripStatusScheduled {
		return nil, ErrTripNotScheduled
	}

	updated, err := s.trips.UpdateFields(ctx, id,
		bson.M{"status": models.TripStatusInProgress, "start_time": s.now()},
		bson.M{"end_time": ""},
	)
	if err != nil {
		return nil, err
	}

	s.emitStatusChange(updated, models.TripStatusInProgress)

	return s.trips.FindByIDPopulated(ctx, id)
}

// CompleteTrip moves an in_progress trip to completed, stamping the end
// time with now when the caller does not supply one, then releases the
// vehicle if no other active trip holds it.
func (s *TripService) CompleteTrip(ctx context.Context, id string, req *CompleteTripRequest) (*models.PopulatedTrip, error) {
	trip, err := s.trips.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != models.TripStatusInProgress {
		return nil, ErrTripNotInProgress
	}

	endTime := s.now()
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	if !endTime.After(trip.StartTime) {
		return nil, ErrEndBeforeStart
	}

	set := bson.M{
		"status":   models.TripStatusCompleted,
		"end_time": endTime,
	}
	if req.Distance != nil {
		set["distance"] = *req.Distance
	}
	if req.FuelConsumed != nil {
		set["fuel_consumed"] = *req.FuelConsumed
	}
	if req.Notes != nil {
		set["notes"] = *req.Notes
	}

	updated, err := s.trips.UpdateFields(ctx, id, set, nil)
	if err != nil {
		return nil, err
	}

	s.reconcileOnDeactivate(ctx, trip.VehicleID)
	s.emitStatusChange(updated, models.TripStatusCompleted)

	return s.trips.FindByIDPopulated(ctx, id)
}

// CancelTrip cancels any trip that has not completed, then releases the
// vehicle if no other active trip holds it.
func (s *TripService) CancelTrip(ctx context.Context, id string) (*models.PopulatedTrip, error) {
	trip, err := s.trips.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status == models.TripStatusCompleted {
		return nil, ErrTripCompleted
	}

	updated, err := s.trips.UpdateFields(ctx, id,
		bson.M{"status": models.TripStatusCancelled},
		nil,
	)
	if err != nil {
		return nil, err
	}

	if trip.IsActive() {
		s.reconcileOnDeactivate(ctx, trip.VehicleID)
	}
	s.emitStatusChange(updated, models.TripStatusCancelled)

	return s.trips.FindByIDPopulated(ctx, id)
}

// DeleteTrip removes a scheduled trip, then releases the vehicle if no
// other active trip holds it.
func (s *TripService) DeleteTrip(ctx context.Context, id string) error {
	trip, err := s.trips.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if trip.Status != models.TripStatusScheduled {
		return ErrTripNotScheduled
	}

	if err := s.trips.Delete(ctx, id); err != nil {
		return err
	}

	s.reconcileOnDeactivate(ctx, trip.VehicleID)
	return nil
}

// UpdateTrip applies a partial update of mutable fields. Status is not
// touched here; transitions go through the dedicated operations.
func (s *TripService) UpdateTrip(ctx context.Context, id string, req *UpdateTripRequest) (*models.PopulatedTrip, error) {
	trip, err := s.trips.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.IsTerminal() {
		return nil, ErrTripTerminal
	}

	effectiveStart := trip.StartTime
	if req.StartTime != nil {
		effectiveStart = *req.StartTime
	}
	effectiveEnd := trip.EndTime
	if req.EndTime != nil {
		effectiveEnd = req.EndTime
	}
	if effectiveEnd != nil && !effectiveEnd.After(effectiveStart) {
		return nil, ErrEndBeforeStart
	}

	set := bson.M{}
	if req.Origin != nil {
		set["origin"] = *req.Origin
	}
	if req.Destination != nil {
		set["destination"] = *req.Destination
	}
	if req.StartTime != nil {
		set["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		set["end_time"] = *req.EndTime
	}
	if req.Distance != nil {
		set["distance"] = *req.Distance
	}
	if req.FuelConsumed != nil {
		set["fuel_consumed"] = *req.FuelConsumed
	}
	if req.Notes != nil {
		set["notes"] = *req.Notes
	}

	if _, err := s.trips.UpdateFields(ctx, id, set, nil); err != nil {
		return nil, err
	}

	return s.trips.FindByIDPopulated(ctx, id)
}

// GetTrip returns one trip with its references resolved.
func (s *TripService) GetTrip(ctx context.Context, id string) (*models.PopulatedTrip, error) {
	return s.trips.FindByIDPopulated(ctx, id)
}

// ListTrips returns a page of trips matching the filter, newest start
// time first.
func (s *TripService) ListTrips(ctx context.Context, filter repository.TripFilter, params utils.PageParams) ([]*models.PopulatedTrip, utils.Pagination, error) {
	total, err := s.trips.Count(ctx, filter)
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	trips, err := s.trips.Find(ctx, filter, params.Skip, params.Limit)
	if err != nil {
		return nil, utils.Pagination{}, err
	}

	return trips, utils.NewPagination(params, total), nil
}

// ListTripsByDriver returns a page of the driver's trips.
func (s *TripService) ListTripsByDriver(ctx context.Context, driverID string, status string, params utils.PageParams) ([]*models.PopulatedTrip, utils.Pagination, error) {
	objectID, err := primitive.ObjectIDFromHex(driverID)
	if err != nil {
		return nil, utils.Pagination{}, repository.ErrInvalidID
	}

	return s.ListTrips(ctx, repository.TripFilter{Status: status, DriverID: &objectID}, params)
}

// ListTripsByVehicle returns a page of the vehicle's trips.
func (s *TripService) ListTripsByVehicle(ctx context.Context, vehicleID string, status string, params utils.PageParams) ([]*models.PopulatedTrip, utils.Pagination, error) {
	objectID, err := primitive.ObjectIDFromHex(vehicleID)
	if err != nil {
		return nil, utils.Pagination{}, repository.ErrInvalidID
	}

	return s.ListTrips(ctx, repository.TripFilter{Status: status, VehicleID: &objectID}, params)
}

// reconcileOnActivate marks the vehicle assigned when a trip enters the
// active set. A vehicle already assigned keeps its current driver;
// maintenance and out_of_service are never overwritten.
func (s *TripService) reconcileOnActivate(vehicle *models.Vehicle, driverID primitive.ObjectID) {
	if vehicle.Status != models.VehicleStatusAvailable {
		return
	}

	if err := s.vehicles.SetAssignment(vehicle.ID, driverID); err != nil {
		log.Printf("Failed to mark vehicle %s assigned: %v", vehicle.ID.Hex(), err)
		return
	}

	s.invalidateVehicle(vehicle.ID)
}

// reconcileOnDeactivate releases the vehicle when its last active trip
// concludes. When another active trip remains the assignment is left
// untouched, even if that trip names a different driver.
func (s *TripService) reconcileOnDeactivate(ctx context.Context, vehicleID primitive.ObjectID) {
	active, err := s.trips.FindActiveByVehicle(ctx, vehicleID, nil)
	if err != nil {
		log.Printf("Failed to query active trips for vehicle %s: %v", vehicleID.Hex(), err)
		return
	}
	if len(active) > 0 {
		return
	}

	if err := s.vehicles.ClearAssignment(vehicleID); err != nil {
		log.Printf("Failed to release vehicle %s: %v", vehicleID.Hex(), err)
		return
	}

	s.invalidateVehicle(vehicleID)
}

func (s *TripService) invalidateVehicle(vehicleID primitive.ObjectID) {
	if s.vehicleCache == nil {
		return
	}

	if err := s.vehicleCache.InvalidateVehicle(vehicleID.Hex()); err != nil {
		log.Printf("Failed to invalidate vehicle cache for %s: %v", vehicleID.Hex(), err)
	}
	if err := s.vehicleCache.InvalidateVehicleLists(); err != nil {
		log.Printf("Failed to invalidate vehicle list caches: %v", err)
	}
}

func (s *TripService) emitStatusChange(trip *models.Trip, status string) {
	if s.emitter == nil {
		return
	}

	event := websocket.NewEvent(websocket.EventTripStatusChanged, map[string]interface{}{
		"tripId":    trip.ID.Hex(),
		"vehicleId": trip.VehicleID.Hex(),
		"driverId":  trip.DriverID.Hex(),
		"status":    status,
	})

	s.emitter.EmitToRole(models.RoleFleetManager, event)
	s.emitter.EmitToRole(models.RoleAdmin, event)
	s.emitter.EmitToUser(trip.DriverID.Hex(), event)
}
