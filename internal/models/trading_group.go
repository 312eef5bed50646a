package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TradingGroup struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	GroupID       string             `json:"group_id" bson:"group_id"`
	Name          string             `json:"name" bson:"name"`
	Server        string             `json:"server" bson:"server"`
	Currency      string             `json:"currency" bson:"currency"`
	MarginCall    float64            `json:"margin_call" bson:"margin_call"`
	MarginStopOut float64            `json:"margin_stop_out" bson:"margin_stop_out"`
	Leverage      int                `json:"leverage" bson:"leverage"`
	IsActive      bool               `json:"is_active" bson:"is_active"`
	SyncedAt      time.Time          `json:"synced_at" bson:"synced_at"`
}

type TradingAccount struct {
	ID                    primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	AccountID             string             `json:"account_id" bson:"account_id"`
	IBRequestID           string             `json:"ib_request_id" bson:"ib_request_id"`
	Group                 string             `json:"group" bson:"group"`
	USDPerLot             *float64           `json:"usd_per_lot,omitempty" bson:"usd_per_lot,omitempty"`
	SpreadSharePercentage *float64           `json:"spread_share_percentage,omitempty" bson:"spread_share_percentage,omitempty"`
	UpdatedAt             time.Time          `json:"updated_at" bson:"updated_at"`
}
