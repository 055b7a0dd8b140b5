package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"fleet-management/internal/models"
	"fleet-management/internal/repository"
	"fleet-management/internal/websocket"
	"fleet-management/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testBase = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeTripStore struct {
	mu    sync.Mutex
	trips map[primitive.ObjectID]*models.Trip
}

func newFakeTripStore() *fakeTripStore {
	return &fakeTripStore{trips: make(map[primitive.ObjectID]*models.Trip)}
}

func (f *fakeTripStore) Insert(_ context.Context, trip *models.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if trip.ID.IsZero() {
		trip.ID = primitive.NewObjectID()
	}
	stored := *trip
	f.trips[trip.ID] = &stored
	return nil
}

func (f *fakeTripStore) FindByID(_ context.Context, id string) (*models.Trip, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[objectID]
	if !ok {
		return nil, repository.ErrTripNotFound
	}
	copied := *trip
	return &copied, nil
}

func (f *fakeTripStore) FindActiveByVehicle(_ context.Context, vehicleID primitive.ObjectID, excludeID *primitive.ObjectID) ([]*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var active []*models.Trip
	for _, trip := range f.trips {
		if trip.VehicleID != vehicleID || !trip.IsActive() {
			continue
		}
		if excludeID != nil && trip.ID == *excludeID {
			continue
		}
		copied := *trip
		active = append(active, &copied)
	}
	return active, nil
}

func (f *fakeTripStore) UpdateFields(_ context.Context, id string, set bson.M, unset bson.M) (*models.Trip, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[objectID]
	if !ok {
		return nil, repository.ErrTripNotFound
	}
	for key, value := range set {
		switch key {
		case "status":
			trip.Status = value.(string)
		case "origin":
			trip.Origin = value.(string)
		case "destination":
			trip.Destination = value.(string)
		case "start_time":
			trip.StartTime = value.(time.Time)
		case "end_time":
			end := value.(time.Time)
			trip.EndTime = &end
		case "distance":
			trip.Distance = value.(float64)
		case "fuel_consumed":
			trip.FuelConsumed = value.(float64)
		case "notes":
			trip.Notes = value.(string)
		case "updated_at":
			trip.UpdatedAt = value.(time.Time)
		}
	}
	for key := range unset {
		if key == "end_time" {
			trip.EndTime = nil
		}
	}
	copied := *trip
	return &copied, nil
}

func (f *fakeTripStore) Delete(_ context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrInvalidID
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.trips[objectID]; !ok {
		return repository.ErrTripNotFound
	}
	delete(f.trips, objectID)
	return nil
}

func (f *fakeTripStore) Find(_ context.Context, filter repository.TripFilter, skip, limit int) ([]*models.PopulatedTrip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.PopulatedTrip
	for _, trip := range f.trips {
		if filter.Status != "" && trip.Status != filter.Status {
			continue
		}
		if filter.DriverID != nil && trip.DriverID != *filter.DriverID {
			continue
		}
		if filter.VehicleID != nil && trip.VehicleID != *filter.VehicleID {
			continue
		}
		result = append(result, populate(trip))
	}
	if skip >= len(result) {
		return nil, nil
	}
	result = result[skip:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeTripStore) FindByIDPopulated(ctx context.Context, id string) (*models.PopulatedTrip, error) {
	trip, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return populate(trip), nil
}

func (f *fakeTripStore) Count(_ context.Context, filter repository.TripFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, trip := range f.trips {
		if filter.Status != "" && trip.Status != filter.Status {
			continue
		}
		if filter.DriverID != nil && trip.DriverID != *filter.DriverID {
			continue
		}
		if filter.VehicleID != nil && trip.VehicleID != *filter.VehicleID {
			continue
		}
		count++
	}
	return count, nil
}

func (f *fakeTripStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func populate(trip *models.Trip) *models.PopulatedTrip {
	return &models.PopulatedTrip{
		ID:           trip.ID,
		Origin:       trip.Origin,
		Destination:  trip.Destination,
		Status:       trip.Status,
		StartTime:    trip.StartTime,
		EndTime:      trip.EndTime,
		Distance:     trip.Distance,
		FuelConsumed: trip.FuelConsumed,
		Notes:        trip.Notes,
		CreatedAt:    trip.CreatedAt,
		UpdatedAt:    trip.UpdatedAt,
	}
}

type fakeVehicleStore struct {
	mu       sync.Mutex
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func newFakeVehicleStore() *fakeVehicleStore {
	return &fakeVehicleStore{vehicles: make(map[primitive.ObjectID]*models.Vehicle)}
}

func (f *fakeVehicleStore) FindByID(id string) (*models.Vehicle, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	vehicle, ok := f.vehicles[objectID]
	if !ok {
		return nil, repository.ErrVehicleNotFound
	}
	copied := *vehicle
	return &copied, nil
}

func (f *fakeVehicleStore) SetAssignment(id primitive.ObjectID, driverID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vehicle, ok := f.vehicles[id]
	if !ok {
		return repository.ErrVehicleNotFound
	}
	vehicle.Status = models.VehicleStatusAssigned
	vehicle.AssignedDriver = &driverID
	return nil
}

func (f *fakeVehicleStore) ClearAssignment(id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	vehicle, ok := f.vehicles[id]
	if !ok {
		return repository.ErrVehicleNotFound
	}
	vehicle.Status = models.VehicleStatusAvailable
	vehicle.AssignedDriver = nil
	return nil
}

func (f *fakeVehicleStore) get(id primitive.ObjectID) *models.Vehicle {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *f.vehicles[id]
	return &copied
}

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func (f *fakeUserStore) FindByID(id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	user, ok := f.users[objectID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []websocket.Event
	roles  []string
}

func (f *fakeEmitter) EmitToRole(role string, event websocket.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles = append(f.roles, role)
	f.events = append(f.events, event)
}

func (f *fakeEmitter) EmitToUser(_ string, event websocket.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeEmitter) EmitToAll(event websocket.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

type fakeVehicleCache struct {
	mu          sync.Mutex
	invalidated []string
	listDrops   int
}

func (f *fakeVehicleCache) InvalidateVehicle(vehicleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, vehicleID)
	return nil
}

func (f *fakeVehicleCache) InvalidateVehicleLists() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listDrops++
	return nil
}

type tripFixture struct {
	service  *TripService
	trips    *fakeTripStore
	vehicles *fakeVehicleStore
	vehicle  *models.Vehicle
	driver   *models.User
	manager  *models.User
}

func newTripFixture(t *testing.T) *tripFixture {
	t.Helper()

	vehicle := &models.Vehicle{
		ID:            primitive.NewObjectID(),
		VehicleNumber: "FL-001",
		Status:        models.VehicleStatusAvailable,
	}
	driver := &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Dana Driver",
		Email: "dana@example.com",
		Role:  models.RoleDriver,
	}
	manager := &models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Morgan Manager",
		Email: "morgan@example.com",
		Role:  models.RoleFleetManager,
	}

	trips := newFakeTripStore()
	vehicles := newFakeVehicleStore()
	vehicles.vehicles[vehicle.ID] = vehicle
	users := &fakeUserStore{users: map[primitive.ObjectID]*models.User{
		driver.ID:  driver,
		manager.ID: manager,
	}}

	service := NewTripService(trips, vehicles, users)
	service.now = func() time.Time { return testBase }

	return &tripFixture{
		service:  service,
		trips:    trips,
		vehicles: vehicles,
		vehicle:  vehicle,
		driver:   driver,
		manager:  manager,
	}
}

func (fx *tripFixture) createRequest(start time.Time, end *time.Time) *CreateTripRequest {
	return &CreateTripRequest{
		VehicleID:   fx.vehicle.ID.Hex(),
		DriverID:    fx.driver.ID.Hex(),
		Origin:      "Depot",
		Destination: "Warehouse 7",
		StartTime:   start,
		EndTime:     end,
	}
}

func (fx *tripFixture) seedTrip(t *testing.T, status string, start time.Time, end *time.Time) *models.Trip {
	t.Helper()
	trip := &models.Trip{
		ID:          primitive.NewObjectID(),
		VehicleID:   fx.vehicle.ID,
		DriverID:    fx.driver.ID,
		Origin:      "Depot",
		Destination: "Warehouse 7",
		Status:      status,
		StartTime:   start,
		EndTime:     end,
		CreatedBy:   fx.manager.ID,
	}
	require.NoError(t, fx.trips.Insert(context.Background(), trip))
	return trip
}

func timePtr(t time.Time) *time.Time { return &t }

func pageParams(page, limit int) utils.PageParams {
	return utils.PageParams{Page: page, Limit: limit, Skip: (page - 1) * limit}
}

func TestCreateTripSchedulesAndAssignsVehicle(t *testing.T) {
	fx := newTripFixture(t)

	req := fx.createRequest(testBase.Add(time.Hour), timePtr(testBase.Add(3*time.Hour)))
	trip, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, models.TripStatusScheduled, trip.Status)

	vehicle := fx.vehicles.get(fx.vehicle.ID)
	assert.Equal(t, models.VehicleStatusAssigned, vehicle.Status)
	require.NotNil(t, vehicle.AssignedDriver)
	assert.Equal(t, fx.driver.ID, *vehicle.AssignedDriver)
}

func TestCreateTripRejectsOverlap(t *testing.T) {
	fx := newTripFixture(t)
	fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(time.Hour), timePtr(testBase.Add(3*time.Hour)))

	req := fx.createRequest(testBase.Add(2*time.Hour), nil)
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	assert.ErrorIs(t, err, ErrTripOverlap)
}

func TestCreateTripRejectsTouchingWindows(t *testing.T) {
	fx := newTripFixture(t)
	fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(time.Hour), timePtr(testBase.Add(3*time.Hour)))

	// New window starts exactly where the existing one ends
	req := fx.createRequest(testBase.Add(3*time.Hour), timePtr(testBase.Add(4*time.Hour)))
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	assert.ErrorIs(t, err, ErrTripOverlap)
}

func TestCreateTripAllowsDisjointWindows(t *testing.T) {
	fx := newTripFixture(t)
	fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(time.Hour), timePtr(testBase.Add(3*time.Hour)))

	req := fx.createRequest(testBase.Add(4*time.Hour), timePtr(testBase.Add(5*time.Hour)))
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	assert.NoError(t, err)
}

func TestCreateTripIgnoresTerminalTrips(t *testing.T) {
	fx := newTripFixture(t)
	fx.seedTrip(t, models.TripStatusCompleted, testBase.Add(time.Hour), timePtr(testBase.Add(3*time.Hour)))
	fx.seedTrip(t, models.TripStatusCancelled, testBase.Add(time.Hour), timePtr(testBase.Add(3*time.Hour)))

	req := fx.createRequest(testBase.Add(2*time.Hour), nil)
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	assert.NoError(t, err)
}

func TestCreateTripRejectsVehicleInMaintenance(t *testing.T) {
	fx := newTripFixture(t)
	fx.vehicles.vehicles[fx.vehicle.ID].Status = models.VehicleStatusMaintenance

	req := fx.createRequest(testBase.Add(time.Hour), nil)
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	assert.ErrorIs(t, err, ErrVehicleUnavailable)
}

func TestCreateTripRejectsNonDriver(t *testing.T) {
	fx := newTripFixture(t)

	req := fx.createRequest(testBase.Add(time.Hour), nil)
	req.DriverID = fx.manager.ID.Hex()
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	assert.ErrorIs(t, err, ErrNotADriver)
}

func TestCreateTripRejectsPastStartTime(t *testing.T) {
	fx := newTripFixture(t)

	req := fx.createRequest(testBase.Add(-time.Hour), nil)
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	assert.ErrorIs(t, err, ErrStartTimeInPast)
}

func TestCreateTripRejectsEndBeforeStart(t *testing.T) {
	fx := newTripFixture(t)

	req := fx.createRequest(testBase.Add(2*time.Hour), timePtr(testBase.Add(time.Hour)))
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	assert.ErrorIs(t, err, ErrEndBeforeStart)
}

func TestCreateTripRejectsUnknownVehicle(t *testing.T) {
	fx := newTripFixture(t)

	req := fx.createRequest(testBase.Add(time.Hour), nil)
	req.VehicleID = primitive.NewObjectID().Hex()
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	assert.ErrorIs(t, err, repository.ErrVehicleNotFound)
}

func TestCreateTripKeepsAssignmentWhenVehicleAlreadyAssigned(t *testing.T) {
	fx := newTripFixture(t)
	other := primitive.NewObjectID()
	fx.vehicles.vehicles[fx.vehicle.ID].Status = models.VehicleStatusAssigned
	fx.vehicles.vehicles[fx.vehicle.ID].AssignedDriver = &other

	req := fx.createRequest(testBase.Add(time.Hour), nil)
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	require.NoError(t, err)

	vehicle := fx.vehicles.get(fx.vehicle.ID)
	require.NotNil(t, vehicle.AssignedDriver)
	assert.Equal(t, other, *vehicle.AssignedDriver)
}

func TestStartTripOverwritesStartTimeAndClearsEnd(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(time.Hour), timePtr(testBase.Add(3*time.Hour)))

	started, err := fx.service.StartTrip(context.Background(), trip.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, models.TripStatusInProgress, started.Status)
	assert.True(t, started.StartTime.Equal(testBase))
	assert.Nil(t, started.EndTime)
}

func TestStartTripRejectsNonScheduled(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusInProgress, testBase.Add(-time.Hour), nil)

	_, err := fx.service.StartTrip(context.Background(), trip.ID.Hex())
	assert.ErrorIs(t, err, ErrTripNotScheduled)
}

func TestCompleteTripStampsEndTimeAndReleasesVehicle(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusInProgress, testBase.Add(-time.Hour), nil)
	require.NoError(t, fx.vehicles.SetAssignment(fx.vehicle.ID, fx.driver.ID))

	completed, err := fx.service.CompleteTrip(context.Background(), trip.ID.Hex(), &CompleteTripRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.TripStatusCompleted, completed.Status)
	require.NotNil(t, completed.EndTime)
	assert.True(t, completed.EndTime.Equal(testBase))

	vehicle := fx.vehicles.get(fx.vehicle.ID)
	assert.Equal(t, models.VehicleStatusAvailable, vehicle.Status)
	assert.Nil(t, vehicle.AssignedDriver)
}

func TestCreateTripInvalidatesVehicleCacheOnAssignment(t *testing.T) {
	fx := newTripFixture(t)
	vehicleCache := &fakeVehicleCache{}
	fx.service.SetVehicleCache(vehicleCache)

	req := fx.createRequest(testBase.Add(time.Hour), timePtr(testBase.Add(3*time.Hour)))
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, []string{fx.vehicle.ID.Hex()}, vehicleCache.invalidated)
	assert.Equal(t, 1, vehicleCache.listDrops)
}

func TestCompleteTripInvalidatesVehicleCacheOnRelease(t *testing.T) {
	fx := newTripFixture(t)
	vehicleCache := &fakeVehicleCache{}
	fx.service.SetVehicleCache(vehicleCache)

	trip := fx.seedTrip(t, models.TripStatusInProgress, testBase.Add(-time.Hour), nil)
	require.NoError(t, fx.vehicles.SetAssignment(fx.vehicle.ID, fx.driver.ID))

	_, err := fx.service.CompleteTrip(context.Background(), trip.ID.Hex(), &CompleteTripRequest{})
	require.NoError(t, err)

	assert.Equal(t, []string{fx.vehicle.ID.Hex()}, vehicleCache.invalidated)
	assert.Equal(t, 1, vehicleCache.listDrops)
}

func TestCompleteTripHonorsSuppliedFields(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusInProgress, testBase.Add(-2*time.Hour), nil)

	end := testBase.Add(-time.Hour)
	distance := 120.5
	fuel := 14.2
	notes := "smooth run"
	completed, err := fx.service.CompleteTrip(context.Background(), trip.ID.Hex(), &CompleteTripRequest{
		EndTime:      &end,
		Distance:     &distance,
		FuelConsumed: &fuel,
		Notes:        &notes,
	})
	require.NoError(t, err)

	require.NotNil(t, completed.EndTime)
	assert.True(t, completed.EndTime.Equal(end))
	assert.Equal(t, distance, completed.Distance)
	assert.Equal(t, fuel, completed.FuelConsumed)
	assert.Equal(t, notes, completed.Notes)
}

func TestCompleteTripRejectsNotInProgress(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(time.Hour), nil)

	_, err := fx.service.CompleteTrip(context.Background(), trip.ID.Hex(), &CompleteTripRequest{})
	assert.ErrorIs(t, err, ErrTripNotInProgress)
}

func TestCompleteTripRejectsEndBeforeStart(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusInProgress, testBase.Add(-time.Hour), nil)

	end := testBase.Add(-2 * time.Hour)
	_, err := fx.service.CompleteTrip(context.Background(), trip.ID.Hex(), &CompleteTripRequest{EndTime: &end})
	assert.ErrorIs(t, err, ErrEndBeforeStart)
}

func TestCompleteTripKeepsAssignmentWithRemainingActiveTrip(t *testing.T) {
	fx := newTripFixture(t)
	current := fx.seedTrip(t, models.TripStatusInProgress, testBase.Add(-time.Hour), nil)
	fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(4*time.Hour), timePtr(testBase.Add(5*time.Hour)))
	require.NoError(t, fx.vehicles.SetAssignment(fx.vehicle.ID, fx.driver.ID))

	_, err := fx.service.CompleteTrip(context.Background(), current.ID.Hex(), &CompleteTripRequest{})
	require.NoError(t, err)

	// The future booking still occupies the vehicle
	vehicle := fx.vehicles.get(fx.vehicle.ID)
	assert.Equal(t, models.VehicleStatusAssigned, vehicle.Status)
	require.NotNil(t, vehicle.AssignedDriver)
	assert.Equal(t, fx.driver.ID, *vehicle.AssignedDriver)
}

func TestCancelTripReleasesVehicle(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(time.Hour), nil)
	require.NoError(t, fx.vehicles.SetAssignment(fx.vehicle.ID, fx.driver.ID))

	cancelled, err := fx.service.CancelTrip(context.Background(), trip.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, models.TripStatusCancelled, cancelled.Status)
	assert.Equal(t, models.VehicleStatusAvailable, fx.vehicles.get(fx.vehicle.ID).Status)
}

func TestCancelTripRejectsCompleted(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusCompleted, testBase.Add(-2*time.Hour), timePtr(testBase.Add(-time.Hour)))

	_, err := fx.service.CancelTrip(context.Background(), trip.ID.Hex())
	assert.ErrorIs(t, err, ErrTripCompleted)
}

func TestDeleteTripOnlyScheduled(t *testing.T) {
	fx := newTripFixture(t)
	inProgress := fx.seedTrip(t, models.TripStatusInProgress, testBase.Add(-time.Hour), nil)
	scheduled := fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(4*time.Hour), nil)

	err := fx.service.DeleteTrip(context.Background(), inProgress.ID.Hex())
	assert.ErrorIs(t, err, ErrTripNotScheduled)

	err = fx.service.DeleteTrip(context.Background(), scheduled.ID.Hex())
	require.NoError(t, err)

	_, err = fx.trips.FindByID(context.Background(), scheduled.ID.Hex())
	assert.ErrorIs(t, err, repository.ErrTripNotFound)
}

func TestDeleteLastScheduledTripReleasesVehicle(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(time.Hour), nil)
	require.NoError(t, fx.vehicles.SetAssignment(fx.vehicle.ID, fx.driver.ID))

	require.NoError(t, fx.service.DeleteTrip(context.Background(), trip.ID.Hex()))

	vehicle := fx.vehicles.get(fx.vehicle.ID)
	assert.Equal(t, models.VehicleStatusAvailable, vehicle.Status)
	assert.Nil(t, vehicle.AssignedDriver)
}

func TestUpdateTripRejectsTerminal(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusCancelled, testBase.Add(time.Hour), nil)

	origin := "New Depot"
	_, err := fx.service.UpdateTrip(context.Background(), trip.ID.Hex(), &UpdateTripRequest{Origin: &origin})
	assert.ErrorIs(t, err, ErrTripTerminal)
}

func TestUpdateTripValidatesWindow(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(2*time.Hour), nil)

	end := testBase.Add(time.Hour)
	_, err := fx.service.UpdateTrip(context.Background(), trip.ID.Hex(), &UpdateTripRequest{EndTime: &end})
	assert.ErrorIs(t, err, ErrEndBeforeStart)
}

func TestUpdateTripAppliesFields(t *testing.T) {
	fx := newTripFixture(t)
	trip := fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(time.Hour), nil)

	destination := "Harbor Terminal"
	notes := "priority cargo"
	updated, err := fx.service.UpdateTrip(context.Background(), trip.ID.Hex(), &UpdateTripRequest{
		Destination: &destination,
		Notes:       &notes,
	})
	require.NoError(t, err)

	assert.Equal(t, destination, updated.Destination)
	assert.Equal(t, notes, updated.Notes)
}

func TestTripEventsReachManagersAndDriver(t *testing.T) {
	fx := newTripFixture(t)
	emitter := &fakeEmitter{}
	fx.service.SetEventEmitter(emitter)

	req := fx.createRequest(testBase.Add(time.Hour), nil)
	_, err := fx.service.CreateTrip(context.Background(), req, fx.manager.ID.Hex())
	require.NoError(t, err)

	emitter.mu.Lock()
	defer emitter.mu.Unlock()
	require.NotEmpty(t, emitter.events)
	assert.Equal(t, websocket.EventTripStatusChanged, emitter.events[0].Type)
	assert.Contains(t, emitter.roles, models.RoleFleetManager)
	assert.Contains(t, emitter.roles, models.RoleAdmin)
}

func TestListTripsPaginates(t *testing.T) {
	fx := newTripFixture(t)
	for i := 0; i < 5; i++ {
		fx.seedTrip(t, models.TripStatusScheduled, testBase.Add(time.Duration(i+1)*24*time.Hour), nil)
	}

	trips, pagination, err := fx.service.ListTrips(context.Background(), repository.TripFilter{}, pageParams(1, 2))
	require.NoError(t, err)

	assert.Len(t, trips, 2)
	assert.Equal(t, int64(5), pagination.Total)
	assert.Equal(t, 3, pagination.TotalPages)
}
