package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mehrbod2002/ibadmin/internal/models"
)

type WithdrawalRepository interface {
	SaveWithdrawal(w *models.Withdrawal) error
	GetWithdrawalByID(id primitive.ObjectID) (*models.Withdrawal, error)
	GetWithdrawals(status models.WithdrawalStatus) ([]*models.Withdrawal, error)
	GetWithdrawalsByIB(ibRequestID string) ([]*models.Withdrawal, error)
	UpdateWithdrawal(w *models.Withdrawal) error
}

type MongoWithdrawalRepository struct {
	collection *mongo.Collection
}

func NewWithdrawalRepository(db *mongo.Database, collectionName string) WithdrawalRepository {
	return &MongoWithdrawalRepository{collection: db.Collection(collectionName)}
}

func (r *MongoWithdrawalRepository) SaveWithdrawal(w *models.Withdrawal) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	w.ID = primitive.NewObjectID()
	w.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, w)
	return err
}

func (r *MongoWithdrawalRepository) GetWithdrawalByID(id primitive.ObjectID) (*models.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var w models.Withdrawal
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *MongoWithdrawalRepository) GetWithdrawals(status models.WithdrawalStatus) ([]*models.Withdrawal, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(filter)
}

func (r *MongoWithdrawalRepository) GetWithdrawalsByIB(ibRequestID string) ([]*models.Withdrawal, error) {
	return r.find(bson.M{"ib_request_id": ibRequestID})
}

func (r *MongoWithdrawalRepository) find(filter bson.M) ([]*models.Withdrawal, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*models.Withdrawal
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoWithdrawalRepository) UpdateWithdrawal(w *models.Withdrawal) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":         w.Status,
		"transaction_id": w.TransactionID,
		"admin_comment":  w.AdminComment,
		"processed_at":   w.ProcessedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": w.ID}, update)
	return err
}
