package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle statuses. Available and assigned are managed by the trip
// synchronizer; maintenance and out_of_service are set manually and the
// synchronizer never touches them.
const (
	VehicleStatusAvailable    = "available"
	VehicleStatusAssigned     = "assigned"
	VehicleStatusMaintenance  = "maintenance"
	VehicleStatusOutOfService = "out_of_service"
)

type Vehicle struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	VehicleNumber      string              `bson:"vehicle_number" json:"vehicleNumber" validate:"required,min=1,max=20"`
	Type               string              `bson:"type" json:"type" validate:"required,oneof=sedan suv truck van bus motorcycle"`
	Make               string              `bson:"make" json:"make" validate:"required"`
	Model              string              `bson:"model" json:"model" validate:"required"`
	Year               int                 `bson:"year" json:"year" validate:"required,min=1900,max=2100"`
	Color              string              `bson:"color" json:"color" validate:"required"`
	LicensePlate       string              `bson:"license_plate" json:"licensePlate" validate:"required"`
	VIN                string              `bson:"vin" json:"vin" validate:"required,len=17"`
	Status             string              `bson:"status" json:"status"`
	AssignedDriver     *primitive.ObjectID `bson:"assigned_driver,omitempty" json:"assignedDriver,omitempty"`
	FuelType           string              `bson:"fuel_type" json:"fuelType"`
	FuelCapacity       float64             `bson:"fuel_capacity,omitempty" json:"fuelCapacity,omitempty"`
	Mileage            float64             `bson:"mileage" json:"mileage"`
	LastServiceDate    *time.Time          `bson:"last_service_date,omitempty" json:"lastServiceDate,omitempty"`
	NextServiceDue     *time.Time          `bson:"next_service_due,omitempty" json:"nextServiceDue,omitempty"`
	InsuranceExpiry    *time.Time          `bson:"insurance_expiry,omitempty" json:"insuranceExpiry,omitempty"`
	RegistrationExpiry *time.Time          `bson:"registration_expiry,omitempty" json:"registrationExpiry,omitempty"`
	Notes              string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy          primitive.ObjectID  `bson:"created_by" json:"createdBy"`
	CreatedAt          time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time           `bson:"updated_at" json:"updatedAt"`
}

// VehicleRef is the projection of a vehicle embedded in populated trip
// responses.
type VehicleRef struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	VehicleNumber string             `bson:"vehicle_number" json:"vehicleNumber"`
	Type          string             `bson:"type" json:"type"`
	Status        string             `bson:"status" json:"status"`
}

func ValidVehicleStatus(status string) bool {
	switch status {
	case VehicleStatusAvailable, VehicleStatusAssigned, VehicleStatusMaintenance, VehicleStatusOutOfService:
		return true
	}
	return false
}
