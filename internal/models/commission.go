package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommissionSnapshot is the stored result of the last commission sync.
type CommissionSnapshot struct {
	ID               primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	IBRequestID      string             `json:"ib_request_id" bson:"ib_request_id"`
	Trades           int                `json:"trades" bson:"trades"`
	Lots             float64            `json:"lots" bson:"lots"`
	FixedCommission  float64            `json:"fixed_commission" bson:"fixed_commission"`
	SpreadCommission float64            `json:"spread_commission" bson:"spread_commission"`
	TotalCommission  float64            `json:"total_commission" bson:"total_commission"`
	Withdrawn        float64            `json:"withdrawn" bson:"withdrawn"`
	Available        float64            `json:"available" bson:"available"`
	BySymbol         []SymbolCommission `json:"by_symbol" bson:"by_symbol"`
	SyncedAt         time.Time          `json:"synced_at" bson:"synced_at"`
}

type SymbolCommission struct {
	Symbol string  `json:"symbol" bson:"symbol"`
	Trades int     `json:"trades" bson:"trades"`
	Lots   float64 `json:"lots" bson:"lots"`
	Total  float64 `json:"total" bson:"total"`
}

type Dashboard struct {
	IBRequestsByStatus map[IBStatus]int64 `json:"ib_requests_by_status"`
	PendingWithdrawals int64              `json:"pending_withdrawals"`
	PendingAmount      float64            `json:"pending_withdrawal_amount"`
	TotalCommission    float64            `json:"total_commission"`
	TradingGroups      int                `json:"trading_groups"`
	TopIBs             []IBCommissionRank `json:"top_ibs"`
}

type IBCommissionRank struct {
	IBRequestID     string  `json:"ib_request_id"`
	FullName        string  `json:"full_name"`
	TotalCommission float64 `json:"total_commission"`
}
