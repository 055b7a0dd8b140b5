package repository

import "errors"

// Sentinel errors surfaced by the repositories. Services translate
// these into caller-visible rejections; anything else is an internal
// store failure.
var (
	ErrInvalidID       = errors.New("invalid object id")
	ErrUserNotFound    = errors.New("user not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrTripNotFound    = errors.New("trip not found")
)
