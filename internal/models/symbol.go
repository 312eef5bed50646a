package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Symbol struct {
	ID           primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Symbol       string             `json:"symbol" bson:"symbol"`
	Category     string             `json:"category" bson:"category"`
	PipValue     float64            `json:"pip_value" bson:"pip_value"`
	PipPosition  int                `json:"pip_position" bson:"pip_position"`
	ContractSize float64            `json:"contract_size" bson:"contract_size"`
	Digits       int                `json:"digits" bson:"digits"`
	IsActive     bool               `json:"is_active" bson:"is_active"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

type SymbolCategory struct {
	Category string    `json:"category"`
	Symbols  []*Symbol `json:"symbols"`
}
