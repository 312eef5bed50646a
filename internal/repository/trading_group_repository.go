package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mehrbod2002/ibadmin/internal/models"
)

type TradingGroupRepository interface {
	UpsertTradingGroups(groups []*models.TradingGroup) (int, error)
	GetTradingGroups() ([]*models.TradingGroup, error)
	GetTradingGroup(groupID string) (*models.TradingGroup, error)
}

type MongoTradingGroupRepository struct {
	collection *mongo.Collection
}

func NewTradingGroupRepository(db *mongo.Database, collectionName string) TradingGroupRepository {
	return &MongoTradingGroupRepository{collection: db.Collection(collectionName)}
}

func (r *MongoTradingGroupRepository) UpsertTradingGroups(groups []*models.TradingGroup) (int, error) {
	if len(groups) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	now := time.Now()
	writes := make([]mongo.WriteModel, 0, len(groups))
	for _, g := range groups {
		g.SyncedAt = now
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"group_id": g.GroupID}).
			SetUpdate(bson.M{"$set": bson.M{
				"group_id":        g.GroupID,
				"name":            g.Name,
				"server":          g.Server,
				"currency":        g.Currency,
				"margin_call":     g.MarginCall,
				"margin_stop_out": g.MarginStopOut,
				"leverage":        g.Leverage,
				"is_active":       g.IsActive,
				"synced_at":       g.SyncedAt,
			}}).
			SetUpsert(true))
	}

	res, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return int(res.UpsertedCount + res.ModifiedCount), nil
}

func (r *MongoTradingGroupRepository) GetTradingGroups() ([]*models.TradingGroup, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"group_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*models.TradingGroup
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoTradingGroupRepository) GetTradingGroup(groupID string) (*models.TradingGroup, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var g models.TradingGroup
	err := r.collection.FindOne(ctx, bson.M{"group_id": groupID}).Decode(&g)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
