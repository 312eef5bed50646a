package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusApproved  WithdrawalStatus = "approved"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
)

func (s WithdrawalStatus) CanTransition(next WithdrawalStatus) bool {
	switch s {
	case WithdrawalStatusPending:
		return next == WithdrawalStatusApproved || next == WithdrawalStatusRejected
	case WithdrawalStatusApproved:
		return next == WithdrawalStatusCompleted || next == WithdrawalStatusRejected
	}
	return false
}

type Withdrawal struct {
	ID             primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	IBRequestID    string             `json:"ib_request_id" bson:"ib_request_id"`
	Amount         float64            `json:"amount" bson:"amount"`
	Method         string             `json:"method" bson:"method"`
	AccountDetails string             `json:"account_details,omitempty" bson:"account_details,omitempty"`
	Status         WithdrawalStatus   `json:"status" bson:"status"`
	TransactionID  string             `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	AdminComment   string             `json:"admin_comment,omitempty" bson:"admin_comment,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	ProcessedAt    *time.Time         `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
}
