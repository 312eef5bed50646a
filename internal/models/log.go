package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditAction names an admin-visible change recorded in the audit trail.
type AuditAction string

const (
	ActionAdminLogin                AuditAction = "AdminLogin"
	ActionUpdateIBRequestStatus     AuditAction = "UpdateIBRequestStatus"
	ActionCreateCommissionStructure AuditAction = "CreateCommissionStructure"
	ActionUpdateCommissionStructure AuditAction = "UpdateCommissionStructure"
	ActionDeleteCommissionStructure AuditAction = "DeleteCommissionStructure"
	ActionCreateStructureSet        AuditAction = "CreateStructureSet"
	ActionSyncTradingGroups         AuditAction = "SyncTradingGroups"
	ActionUpdateSymbolPip           AuditAction = "UpdateSymbolPip"
	ActionCreateWithdrawal          AuditAction = "CreateWithdrawal"
	ActionReviewWithdrawal          AuditAction = "ReviewWithdrawal"
	ActionSyncTradeHistory          AuditAction = "SyncTradeHistory"
	ActionSyncCommission            AuditAction = "SyncCommission"
)

func (a AuditAction) Valid() bool {
	switch a {
	case ActionAdminLogin, ActionUpdateIBRequestStatus,
		ActionCreateCommissionStructure, ActionUpdateCommissionStructure, ActionDeleteCommissionStructure,
		ActionCreateStructureSet, ActionSyncTradingGroups, ActionUpdateSymbolPip,
		ActionCreateWithdrawal, ActionReviewWithdrawal, ActionSyncTradeHistory, ActionSyncCommission:
		return true
	}
	return false
}

// LogEntry is one audit record. IBRequestID is set when the change concerns
// a single IB profile so its history can be pulled without scanning metadata.
type LogEntry struct {
	ID          primitive.ObjectID     `json:"_id,omitempty" bson:"_id,omitempty"`
	AdminID     string                 `json:"admin_id,omitempty" bson:"admin_id,omitempty"`
	Action      AuditAction            `json:"action" bson:"action"`
	IBRequestID string                 `json:"ib_request_id,omitempty" bson:"ib_request_id,omitempty"`
	Description string                 `json:"description" bson:"description"`
	IPAddress   string                 `json:"ip_address,omitempty" bson:"ip_address,omitempty"`
	Timestamp   time.Time              `json:"timestamp" bson:"timestamp"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

type LogFilter struct {
	Action      AuditAction
	AdminID     string
	IBRequestID string
	Page        int64
	Limit       int64
}
