package handlers

import (
	"net/http"

	"fleet-management/internal/models"
	"fleet-management/internal/services"
	"fleet-management/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type VehicleHandler struct {
	vehicleService *services.VehicleService
	validator      *validator.Validate
}

func NewVehicleHandler(vehicleService *services.VehicleService) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		validator:      validator.New(),
	}
}

// GetVehicles retrieves all vehicles, optionally filtered by status
func (h *VehicleHandler) GetVehicles(c *gin.Context) {
	status := c.Query("status")

	var (
		vehicles []*models.Vehicle
		err      error
	)
	if status != "" {
		if !models.ValidVehicleStatus(status) {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid vehicle status", nil)
			return
		}
		vehicles, err = h.vehicleService.GetVehiclesByStatus(status)
	} else {
		vehicles, err = h.vehicleService.GetAllVehicles()
	}
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve vehicles")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", vehicles)
}

// GetAvailableVehicles retrieves vehicles currently free for booking
func (h *VehicleHandler) GetAvailableVehicles(c *gin.Context) {
	vehicles, err := h.vehicleService.GetVehiclesByStatus(models.VehicleStatusAvailable)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve available vehicles")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Available vehicles retrieved successfully", vehicles)
}

// GetVehiclesByStatus retrieves vehicles in a given status
func (h *VehicleHandler) GetVehiclesByStatus(c *gin.Context) {
	status := c.Param("status")
	if !models.ValidVehicleStatus(status) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid vehicle status", nil)
		return
	}

	vehicles, err := h.vehicleService.GetVehiclesByStatus(status)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve vehicles")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicles retrieved successfully", vehicles)
}

// GetVehicle retrieves a specific vehicle by ID
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicleByID(c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve vehicle")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle retrieved successfully", vehicle)
}

// CreateVehicle creates a new vehicle
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req services.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	createdBy := c.GetString("user_id")

	vehicle, err := h.vehicleService.CreateVehicle(&req, createdBy)
	if err != nil {
		respondServiceError(c, err, "Failed to create vehicle")
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Vehicle created successfully", vehicle)
}

// UpdateVehicle updates an existing vehicle
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	var req services.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Param("id"), &req)
	if err != nil {
		respondServiceError(c, err, "Failed to update vehicle")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle updated successfully", vehicle)
}

type assignDriverRequest struct {
	DriverID string `json:"driverId" validate:"required"`
}

// AssignDriver manually assigns a driver to an available vehicle
func (h *VehicleHandler) AssignDriver(c *gin.Context) {
	var req assignDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	vehicle, err := h.vehicleService.AssignDriver(c.Param("id"), req.DriverID)
	if err != nil {
		respondServiceError(c, err, "Failed to assign driver")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver assigned successfully", vehicle)
}

// UnassignDriver releases a vehicle with no active trips
func (h *VehicleHandler) UnassignDriver(c *gin.Context) {
	vehicle, err := h.vehicleService.UnassignDriver(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "Failed to unassign driver")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Driver unassigned successfully", vehicle)
}

// DeleteVehicle deletes a vehicle without active trips
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "Failed to delete vehicle")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Vehicle deleted successfully", nil)
}
