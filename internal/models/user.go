package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles understood by the authorization layer. Drivers are plain users
// with RoleDriver; they are the only users assignable to trips.
const (
	RoleAdmin        = "admin"
	RoleFleetManager = "fleet_manager"
	RoleDriver       = "driver"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name" validate:"required,min=1,max=100"`
	Email     string             `bson:"email" json:"email" validate:"required,email"`
	Password  string             `bson:"password" json:"-"`
	Role      string             `bson:"role" json:"role" validate:"required,oneof=admin fleet_manager driver"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// AuthUser is the identity attached to an authenticated request and
// returned from login/profile endpoints. Never carries credentials.
type AuthUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UserRef is the projection of a user embedded in populated trip and
// vehicle responses.
type UserRef struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Role  string             `bson:"role" json:"role"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleFleetManager, RoleDriver:
		return true
	}
	return false
}
