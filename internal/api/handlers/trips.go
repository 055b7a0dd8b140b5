package handlers

import (
	"net/http"

	"fleet-management/internal/repository"
	"fleet-management/internal/services"
	"fleet-management/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TripHandler struct {
	tripService *services.TripService
	validator   *validator.Validate
}

func NewTripHandler(tripService *services.TripService) *TripHandler {
	return &TripHandler{
		tripService: tripService,
		validator:   validator.New(),
	}
}

// CreateTrip schedules a new trip
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req services.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	createdBy := c.GetString("user_id")

	trip, err := h.tripService.CreateTrip(c.Request.Context(), &req, createdBy)
	if err != nil {
		respondServiceError(c, err, "Failed to create trip")
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Trip created successfully", trip)
}

// GetTrips retrieves a page of trips, optionally filtered by status,
// vehicle or driver
func (h *TripHandler) GetTrips(c *gin.Context) {
	params := utils.ParsePageParams(c)
	filter := repository.TripFilter{Status: c.Query("status")}

	if vehicleID := c.Query("vehicleId"); vehicleID != "" {
		objectID, err := primitive.ObjectIDFromHex(vehicleID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid vehicle ID", err)
			return
		}
		filter.VehicleID = &objectID
	}

	if driverID := c.Query("driverId"); driverID != "" {
		objectID, err := primitive.ObjectIDFromHex(driverID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid driver ID", err)
			return
		}
		filter.DriverID = &objectID
	}

	trips, pagination, err := h.tripService.ListTrips(c.Request.Context(), filter, params)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve trips")
		return
	}

	utils.PaginatedResponse(c, http.StatusOK, "Trips retrieved successfully", trips, pagination)
}

// GetTrip retrieves a specific trip by ID
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve trip")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip retrieved successfully", trip)
}

// GetTripsByDriver retrieves a page of one driver's trips
func (h *TripHandler) GetTripsByDriver(c *gin.Context) {
	params := utils.ParsePageParams(c)

	trips, pagination, err := h.tripService.ListTripsByDriver(c.Request.Context(), c.Param("id"), c.Query("status"), params)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve trips")
		return
	}

	utils.PaginatedResponse(c, http.StatusOK, "Trips retrieved successfully", trips, pagination)
}

// GetTripsByVehicle retrieves a page of one vehicle's trips
func (h *TripHandler) GetTripsByVehicle(c *gin.Context) {
	params := utils.ParsePageParams(c)

	trips, pagination, err := h.tripService.ListTripsByVehicle(c.Request.Context(), c.Param("id"), c.Query("status"), params)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve trips")
		return
	}

	utils.PaginatedResponse(c, http.StatusOK, "Trips retrieved successfully", trips, pagination)
}

// StartTrip moves a scheduled trip to in_progress
func (h *TripHandler) StartTrip(c *gin.Context) {
	trip, err := h.tripService.StartTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to start trip")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip started successfully", trip)
}

// CompleteTrip moves an in_progress trip to completed
func (h *TripHandler) CompleteTrip(c *gin.Context) {
	var req services.CompleteTripRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
			return
		}
		if err := h.validator.Struct(&req); err != nil {
			utils.ValidationErrorResponse(c, err)
			return
		}
	}

	trip, err := h.tripService.CompleteTrip(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to complete trip")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip completed successfully", trip)
}

// CancelTrip cancels a trip that has not completed
func (h *TripHandler) CancelTrip(c *gin.Context) {
	trip, err := h.tripService.CancelTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to cancel trip")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip cancelled successfully", trip)
}

// UpdateTrip applies a partial update of mutable trip fields
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	var req services.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	trip, err := h.tripService.UpdateTrip(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to update trip")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip updated successfully", trip)
}

// DeleteTrip removes a scheduled trip
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	if err := h.tripService.DeleteTrip(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "Failed to delete trip")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Trip deleted successfully", nil)
}
