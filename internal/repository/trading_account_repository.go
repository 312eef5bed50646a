package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mehrbod2002/ibadmin/internal/models"
)

type TradingAccountRepository interface {
	UpsertTradingAccount(acct *models.TradingAccount) error
	GetTradingAccount(accountID string) (*models.TradingAccount, error)
	GetTradingAccountsByIB(ibRequestID string) ([]*models.TradingAccount, error)
}

type MongoTradingAccountRepository struct {
	collection *mongo.Collection
}

func NewTradingAccountRepository(db *mongo.Database, collectionName string) TradingAccountRepository {
	return &MongoTradingAccountRepository{collection: db.Collection(collectionName)}
}

func (r *MongoTradingAccountRepository) UpsertTradingAccount(acct *models.TradingAccount) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	acct.UpdatedAt = time.Now()
	set := bson.M{
		"account_id":    acct.AccountID,
		"ib_request_id": acct.IBRequestID,
		"group":         acct.Group,
		"updated_at":    acct.UpdatedAt,
	}
	unset := bson.M{}
	if acct.USDPerLot != nil {
		set["usd_per_lot"] = *acct.USDPerLot
	} else {
		unset["usd_per_lot"] = ""
	}
	if acct.SpreadSharePercentage != nil {
		set["spread_share_percentage"] = *acct.SpreadSharePercentage
	} else {
		unset["spread_share_percentage"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"account_id": acct.AccountID}, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoTradingAccountRepository) GetTradingAccount(accountID string) (*models.TradingAccount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var acct models.TradingAccount
	err := r.collection.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&acct)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

func (r *MongoTradingAccountRepository) GetTradingAccountsByIB(ibRequestID string) ([]*models.TradingAccount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"ib_request_id": ibRequestID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*models.TradingAccount
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
