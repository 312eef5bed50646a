package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mehrbod2002/ibadmin/internal/models"
)

type TradeRepository interface {
	UpsertTrade(trade *models.Trade) error
	GetTradesByAccountID(accountID string) ([]*models.Trade, error)
	GetTradesByIB(ibRequestID string) ([]*models.Trade, error)
	AssignTradesToIB(accountIDs []string, ibRequestID string) (int64, error)
}

type MongoTradeRepository struct {
	collection *mongo.Collection
}

func NewTradeRepository(db *mongo.Database, collectionName string) TradeRepository {
	return &MongoTradeRepository{collection: db.Collection(collectionName)}
}

// UpsertTrade is keyed on the MT5 deal id so bridge replays are idempotent.
func (r *MongoTradeRepository) UpsertTrade(trade *models.Trade) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	set := bson.M{
		"deal_id":    trade.DealID,
		"account_id": trade.AccountID,
		"symbol":     trade.Symbol,
		"volume":     trade.Volume,
		"profit":     trade.Profit,
		"group":      trade.Group,
		"close_time": trade.CloseTime,
	}
	if trade.SpreadCommission != nil {
		set["spread_commission"] = *trade.SpreadCommission
	}
	if trade.IBRequestID != "" {
		set["ib_request_id"] = trade.IBRequestID
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"deal_id": trade.DealID}, bson.M{"$set": set}, options.Update().SetUpsert(true))
	return err
}

func (r *MongoTradeRepository) GetTradesByAccountID(accountID string) ([]*models.Trade, error) {
	return r.find(bson.M{"account_id": accountID})
}

func (r *MongoTradeRepository) GetTradesByIB(ibRequestID string) ([]*models.Trade, error) {
	return r.find(bson.M{"ib_request_id": ibRequestID})
}

func (r *MongoTradeRepository) find(filter bson.M) ([]*models.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"close_time": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trades []*models.Trade
	if err := cursor.All(ctx, &trades); err != nil {
		return nil, err
	}
	return trades, nil
}

func (r *MongoTradeRepository) AssignTradesToIB(accountIDs []string, ibRequestID string) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	filter := bson.M{
		"account_id":    bson.M{"$in": accountIDs},
		"ib_request_id": bson.M{"$ne": ibRequestID},
	}
	res, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"ib_request_id": ibRequestID}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
