package services

import "errors"

// Guard failures surfaced to handlers. Each maps to a distinct
// caller-visible rejection; none are retried.
var (
	ErrVehicleUnavailable = errors.New("vehicle is not available for trips")
	ErrNotADriver         = errors.New("assigned user does not have the driver role")
	ErrTripOverlap        = errors.New("vehicle already has a trip scheduled for this time window")
	ErrStartTimeInPast    = errors.New("start time must be in the future")
	ErrEndBeforeStart     = errors.New("end time must be after start time")
	ErrTripNotScheduled   = errors.New("trip is not in scheduled status")
	ErrTripNotInProgress  = errors.New("trip is not in progress")
	ErrTripCompleted      = errors.New("trip is already completed")
	ErrTripTerminal       = errors.New("trip is completed or cancelled and can no longer be modified")

	ErrDuplicateVehicleNumber = errors.New("vehicle number already exists")
	ErrDuplicateLicensePlate  = errors.New("license plate already exists")
	ErrDuplicateVIN           = errors.New("vin already exists")
	ErrVehicleHasActiveTrips  = errors.New("vehicle has active trips")
	ErrInvalidVehicleStatus   = errors.New("invalid vehicle status")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
)

// IsGuardError reports whether err is one of the state machine guard
// rejections, as opposed to a not-found or internal failure.
func IsGuardError(err error) bool {
	for _, guard := range []error{
		ErrVehicleUnavailable, ErrNotADriver, ErrTripOverlap,
		ErrStartTimeInPast, ErrEndBeforeStart,
		ErrTripNotScheduled, ErrTripNotInProgress, ErrTripCompleted, ErrTripTerminal,
	} {
		if errors.Is(err, guard) {
			return true
		}
	}
	return false
}
