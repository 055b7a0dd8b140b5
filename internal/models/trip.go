package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trip statuses. A trip is "active" while scheduled or in_progress; in
// either state it occupies its vehicle. Completed and cancelled are
// terminal.
const (
	TripStatusScheduled  = "scheduled"
	TripStatusInProgress = "in_progress"
	TripStatusCompleted  = "completed"
	TripStatusCancelled  = "cancelled"
)

// ActiveTripStatuses is the set of statuses that occupy a vehicle.
var ActiveTripStatuses = []string{TripStatusScheduled, TripStatusInProgress}

type Trip struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID    primitive.ObjectID `bson:"vehicle_id" json:"vehicleId"`
	DriverID     primitive.ObjectID `bson:"driver_id" json:"driverId"`
	Origin       string             `bson:"origin" json:"origin"`
	Destination  string             `bson:"destination" json:"destination"`
	Status       string             `bson:"status" json:"status"`
	StartTime    time.Time          `bson:"start_time" json:"startTime"`
	EndTime      *time.Time         `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Distance     float64            `bson:"distance,omitempty" json:"distance,omitempty"`
	FuelConsumed float64            `bson:"fuel_consumed,omitempty" json:"fuelConsumed,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy    primitive.ObjectID `bson:"created_by" json:"createdBy"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// PopulatedTrip is a trip with its vehicle, driver and creator
// references resolved, as returned by read endpoints.
type PopulatedTrip struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Vehicle      *VehicleRef        `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
	Driver       *UserRef           `bson:"driver,omitempty" json:"driver,omitempty"`
	Origin       string             `bson:"origin" json:"origin"`
	Destination  string             `bson:"destination" json:"destination"`
	Status       string             `bson:"status" json:"status"`
	StartTime    time.Time          `bson:"start_time" json:"startTime"`
	EndTime      *time.Time         `bson:"end_time,omitempty" json:"endTime,omitempty"`
	Distance     float64            `bson:"distance,omitempty" json:"distance,omitempty"`
	FuelConsumed float64            `bson:"fuel_consumed,omitempty" json:"fuelConsumed,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy    *UserRef           `bson:"created_by_user,omitempty" json:"createdBy,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the trip currently occupies its vehicle.
func (t *Trip) IsActive() bool {
	return t.Status == TripStatusScheduled || t.Status == TripStatusInProgress
}

// IsTerminal reports whether the trip has reached a state from which no
// further status transition is permitted.
func (t *Trip) IsTerminal() bool {
	return t.Status == TripStatusCompleted || t.Status == TripStatusCancelled
}

// Window returns the closed interval the trip occupies. A trip without
// an end time occupies the zero-width instant at its start.
func (t *Trip) Window() (start, end time.Time) {
	if t.EndTime != nil {
		return t.StartTime, *t.EndTime
	}
	return t.StartTime, t.StartTime
}

func ValidTripStatus(status string) bool {
	switch status {
	case TripStatusScheduled, TripStatusInProgress, TripStatusCompleted, TripStatusCancelled:
		return true
	}
	return false
}
