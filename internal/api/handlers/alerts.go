package handlers

import (
	"net/http"

	"fleet-management/internal/services"
	"fleet-management/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	alertService *services.AlertService
}

func NewAlertHandler(alertService *services.AlertService) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// GetOverdueTrips lists scheduled trips past their start time
func (h *AlertHandler) GetOverdueTrips(c *gin.Context) {
	trips, err := h.alertService.ListOverdueTrips(c.Request.Context())
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to retrieve overdue trips")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Overdue trips retrieved successfully", trips)
}

// GetMaintenanceDue lists vehicles with expired service, insurance or
// registration dates
func (h *AlertHandler) GetMaintenanceDue(c *gin.Context) {
	findings, err := h.alertService.ListMaintenanceDue()
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to retrieve maintenance alerts")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Maintenance alerts retrieved successfully", findings)
}

// TriggerMaintenanceScan runs the maintenance scan immediately instead
// of waiting for the next tick, pushing events and mails for any
// findings
func (h *AlertHandler) TriggerMaintenanceScan(c *gin.Context) {
	h.alertService.CheckMaintenanceAlerts()

	findings, err := h.alertService.ListMaintenanceDue()
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to retrieve maintenance alerts")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Maintenance scan completed", findings)
}
