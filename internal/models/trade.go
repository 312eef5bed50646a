package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trade is a closed MT5 deal fed by the bridge.
type Trade struct {
	ID               primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	DealID           string             `json:"deal_id" bson:"deal_id"`
	AccountID        string             `json:"account_id" bson:"account_id"`
	IBRequestID      string             `json:"ib_request_id,omitempty" bson:"ib_request_id,omitempty"`
	Symbol           string             `json:"symbol" bson:"symbol"`
	Volume           float64            `json:"volume" bson:"volume"`
	Profit           float64            `json:"profit" bson:"profit"`
	Group            string             `json:"group,omitempty" bson:"group,omitempty"`
	SpreadCommission *float64           `json:"spread_commission,omitempty" bson:"spread_commission,omitempty"`
	CloseTime        time.Time          `json:"close_time" bson:"close_time"`
}

// TradeWithCommission is a trade row as shown in the history view.
type TradeWithCommission struct {
	*Trade
	USDPerLot             float64 `json:"usd_per_lot"`
	SpreadSharePercentage float64 `json:"spread_share_percentage"`
	RateSource            string  `json:"rate_source"`
	SpreadRateSource      string  `json:"spread_rate_source"`
	FixedCommission       float64 `json:"fixed_commission"`
	SpreadCommissionValue float64 `json:"spread_commission_value"`
	TotalIBCommission     float64 `json:"total_ib_commission"`
}
