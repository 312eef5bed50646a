package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminRole string

// RoleAdmin may review IB requests and withdrawals.
const RoleAdmin AdminRole = "admin"

// AdminAccount is a back-office login. Disabled accounts keep their audit
// history but can no longer sign in.
type AdminAccount struct {
	ID        primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Username  string             `json:"username" bson:"username"`
	Password  string             `json:"-" bson:"password"`
	Role      AdminRole          `json:"role" bson:"role"`
	Disabled  bool               `json:"disabled" bson:"disabled"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
