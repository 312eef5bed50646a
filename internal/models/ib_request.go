package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IBStatus string

const (
	IBStatusPending  IBStatus = "pending"
	IBStatusApproved IBStatus = "approved"
	IBStatusRejected IBStatus = "rejected"
	IBStatusBanned   IBStatus = "banned"
)

// CanTransition reports whether an admin may move a request from s to next.
func (s IBStatus) CanTransition(next IBStatus) bool {
	switch s {
	case IBStatusPending:
		return next == IBStatusApproved || next == IBStatusRejected || next == IBStatusBanned
	case IBStatusApproved:
		return next == IBStatusBanned
	case IBStatusBanned:
		return next == IBStatusApproved
	}
	return false
}

func (s IBStatus) Valid() bool {
	switch s {
	case IBStatusPending, IBStatusApproved, IBStatusRejected, IBStatusBanned:
		return true
	}
	return false
}

type IBRequest struct {
	ID                    primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	UserID                string             `json:"user_id" bson:"user_id"`
	FullName              string             `json:"full_name" bson:"full_name"`
	Email                 string             `json:"email" bson:"email"`
	Phone                 string             `json:"phone,omitempty" bson:"phone,omitempty"`
	IBType                string             `json:"ib_type" bson:"ib_type"`
	Status                IBStatus           `json:"status" bson:"status"`
	ReferralCode          string             `json:"referral_code,omitempty" bson:"referral_code,omitempty"`
	ReferredBy            string             `json:"referred_by,omitempty" bson:"referred_by,omitempty"`
	USDPerLot             float64            `json:"usd_per_lot" bson:"usd_per_lot"`
	SpreadSharePercentage float64            `json:"spread_share_percentage" bson:"spread_share_percentage"`
	StructureSetID        string             `json:"structure_set_id,omitempty" bson:"structure_set_id,omitempty"`
	GroupAssignments      []GroupAssignment  `json:"group_assignments" bson:"group_assignments"`
	AdminComment          string             `json:"admin_comment,omitempty" bson:"admin_comment,omitempty"`
	CreatedAt             time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at" bson:"updated_at"`
	ApprovedAt            *time.Time         `json:"approved_at,omitempty" bson:"approved_at,omitempty"`
}

type GroupAssignment struct {
	GroupID               string  `json:"group_id" bson:"group_id"`
	GroupName             string  `json:"group_name" bson:"group_name"`
	StructureID           string  `json:"structure_id,omitempty" bson:"structure_id,omitempty"`
	StructureName         string  `json:"structure_name,omitempty" bson:"structure_name,omitempty"`
	USDPerLot             float64 `json:"usd_per_lot" bson:"usd_per_lot"`
	SpreadSharePercentage float64 `json:"spread_share_percentage" bson:"spread_share_percentage"`
}

type IBRequestFilter struct {
	Status IBStatus
	Search string
	Page   int64
	Limit  int64
}
