package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const opTimeout = 5 * time.Second

const (
	CollectionAdmins          = "admins"
	CollectionIBRequests      = "ib_requests"
	CollectionStructures      = "commission_structures"
	CollectionStructureSets   = "structure_sets"
	CollectionTradingGroups   = "trading_groups"
	CollectionTradingAccounts = "trading_accounts"
	CollectionSymbols         = "symbols"
	CollectionTrades          = "mt5_trades"
	CollectionWithdrawals     = "withdrawals"
	CollectionCommissions     = "commission_snapshots"
	CollectionLogs            = "logs"
)

// EnsureIndexes creates the unique keys the repositories rely on for upserts.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		CollectionAdmins:          {{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}},
		CollectionTrades:          {{Keys: bson.D{{Key: "deal_id", Value: 1}}, Options: unique}, {Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "close_time", Value: -1}}}},
		CollectionTradingAccounts: {{Keys: bson.D{{Key: "account_id", Value: 1}}, Options: unique}},
		CollectionTradingGroups:   {{Keys: bson.D{{Key: "group_id", Value: 1}}, Options: unique}},
		CollectionCommissions:     {{Keys: bson.D{{Key: "ib_request_id", Value: 1}}, Options: unique}},
		CollectionIBRequests:      {{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}}, {Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}}},
		CollectionSymbols:         {{Keys: bson.D{{Key: "symbol", Value: 1}}, Options: unique}},
		CollectionWithdrawals:     {{Keys: bson.D{{Key: "ib_request_id", Value: 1}}}},
		CollectionLogs:            {{Keys: bson.D{{Key: "timestamp", Value: -1}}}, {Keys: bson.D{{Key: "ib_request_id", Value: 1}, {Key: "timestamp", Value: -1}}}},
	}
	for name, idx := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return err
		}
	}
	return nil
}

func paginate(page, limit int64) *options.FindOptions {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return options.Find().SetSkip((page - 1) * limit).SetLimit(limit)
}
