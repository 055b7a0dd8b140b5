package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleet-management/internal/models"
	"fleet-management/internal/repository"
	"fleet-management/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// tripListRecorder satisfies the trip service's store and captures the
// filter that reaches it so query parsing can be checked end to end.
type tripListRecorder struct {
	filter repository.TripFilter
}

func (r *tripListRecorder) Insert(context.Context, *models.Trip) error { return nil }

func (r *tripListRecorder) FindByID(context.Context, string) (*models.Trip, error) {
	return nil, repository.ErrTripNotFound
}

func (r *tripListRecorder) FindActiveByVehicle(context.Context, primitive.ObjectID, *primitive.ObjectID) ([]*models.Trip, error) {
	return nil, nil
}

func (r *tripListRecorder) UpdateFields(context.Context, string, bson.M, bson.M) (*models.Trip, error) {
	return nil, repository.ErrTripNotFound
}

func (r *tripListRecorder) Delete(context.Context, string) error { return nil }

func (r *tripListRecorder) Find(_ context.Context, filter repository.TripFilter, _, _ int) ([]*models.PopulatedTrip, error) {
	r.filter = filter
	return []*models.PopulatedTrip{}, nil
}

func (r *tripListRecorder) FindByIDPopulated(context.Context, string) (*models.PopulatedTrip, error) {
	return nil, repository.ErrTripNotFound
}

func (r *tripListRecorder) Count(context.Context, repository.TripFilter) (int64, error) {
	return 0, nil
}

func (r *tripListRecorder) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func tripListRouter(recorder *tripListRecorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewTripHandler(services.NewTripService(recorder, nil, nil))
	router := gin.New()
	router.GET("/trips", handler.GetTrips)
	return router
}

func TestGetTripsFiltersByDriver(t *testing.T) {
	recorder := &tripListRecorder{}
	router := tripListRouter(recorder)

	driverID := primitive.NewObjectID()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/trips?driverId="+driverID.Hex(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, recorder.filter.DriverID)
	assert.Equal(t, driverID, *recorder.filter.DriverID)
	assert.Nil(t, recorder.filter.VehicleID)
}

func TestGetTripsFiltersByVehicleAndStatus(t *testing.T) {
	recorder := &tripListRecorder{}
	router := tripListRouter(recorder)

	vehicleID := primitive.NewObjectID()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/trips?vehicleId="+vehicleID.Hex()+"&status=scheduled", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, recorder.filter.VehicleID)
	assert.Equal(t, vehicleID, *recorder.filter.VehicleID)
	assert.Equal(t, "scheduled", recorder.filter.Status)
}

func TestGetTripsRejectsMalformedDriverID(t *testing.T) {
	recorder := &tripListRecorder{}
	router := tripListRouter(recorder)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/trips?driverId=not-an-id", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
