package handlers

import (
	"errors"
	"net/http"

	"fleet-management/internal/repository"
	"fleet-management/internal/services"
	"fleet-management/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError translates service and repository errors into the
// caller-visible taxonomy: unresolvable ids map to 404, guard and
// conflict rejections to 400, everything else to a generic 500.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrInvalidID),
		errors.Is(err, repository.ErrTripNotFound),
		errors.Is(err, repository.ErrVehicleNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, notFoundMessage(err), err)

	case services.IsGuardError(err),
		errors.Is(err, services.ErrDuplicateVehicleNumber),
		errors.Is(err, services.ErrDuplicateLicensePlate),
		errors.Is(err, services.ErrDuplicateVIN),
		errors.Is(err, services.ErrVehicleHasActiveTrips),
		errors.Is(err, services.ErrInvalidVehicleStatus),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInvalidRole):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error(), err)

	default:
		utils.InternalErrorResponse(c, fallback)
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrTripNotFound):
		return "Trip not found"
	case errors.Is(err, repository.ErrVehicleNotFound):
		return "Vehicle not found"
	case errors.Is(err, repository.ErrUserNotFound):
		return "User not found"
	default:
		return "Resource not found"
	}
}
