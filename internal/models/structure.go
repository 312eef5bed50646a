package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommissionStructure struct {
	ID                    primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	GroupID               string             `json:"group_id" bson:"group_id"`
	StructureName         string             `json:"structure_name" bson:"structure_name"`
	USDPerLot             float64            `json:"usd_per_lot" bson:"usd_per_lot"`
	SpreadSharePercentage float64            `json:"spread_share_percentage" bson:"spread_share_percentage"`
	MinDeposit            float64            `json:"min_deposit" bson:"min_deposit"`
	MinTradingVolume      float64            `json:"min_trading_volume" bson:"min_trading_volume"`
	MinActiveClients      int                `json:"min_active_clients" bson:"min_active_clients"`
	LevelOrder            int                `json:"level_order" bson:"level_order"`
	IsActive              bool               `json:"is_active" bson:"is_active"`
	CreatedAt             time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at" bson:"updated_at"`
}

type StructureSet struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Structures  []StructureSetItem `json:"structures" bson:"structures"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

type StructureSetItem struct {
	GroupID     string `json:"group_id" bson:"group_id"`
	GroupName   string `json:"group_name" bson:"group_name"`
	StructureID string `json:"structure_id" bson:"structure_id"`
}
