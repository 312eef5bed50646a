package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mehrbod2002/ibadmin/internal/models"
)

type CommissionRepository interface {
	SaveSnapshot(s *models.CommissionSnapshot) error
	GetSnapshot(ibRequestID string) (*models.CommissionSnapshot, error)
	GetSnapshots() ([]*models.CommissionSnapshot, error)
}

type MongoCommissionRepository struct {
	collection *mongo.Collection
}

func NewCommissionRepository(db *mongo.Database, collectionName string) CommissionRepository {
	return &MongoCommissionRepository{collection: db.Collection(collectionName)}
}

// SaveSnapshot replaces the IB's previous snapshot.
func (r *MongoCommissionRepository) SaveSnapshot(s *models.CommissionSnapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	doc := *s
	doc.ID = primitive.NilObjectID
	_, err := r.collection.ReplaceOne(ctx, bson.M{"ib_request_id": s.IBRequestID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (r *MongoCommissionRepository) GetSnapshot(ibRequestID string) (*models.CommissionSnapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var s models.CommissionSnapshot
	err := r.collection.FindOne(ctx, bson.M{"ib_request_id": ibRequestID}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *MongoCommissionRepository) GetSnapshots() ([]*models.CommissionSnapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"total_commission": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*models.CommissionSnapshot
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
