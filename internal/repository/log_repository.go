package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mehrbod2002/ibadmin/internal/models"
)

type LogRepository interface {
	SaveLog(entry *models.LogEntry) error
	GetLogs(filter models.LogFilter) ([]*models.LogEntry, error)
}

type MongoLogRepository struct {
	collection *mongo.Collection
}

func NewLogRepository(db *mongo.Database, collectionName string) LogRepository {
	return &MongoLogRepository{collection: db.Collection(collectionName)}
}

func (r *MongoLogRepository) SaveLog(entry *models.LogEntry) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	entry.ID = primitive.NewObjectID()
	entry.Timestamp = time.Now()
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *MongoLogRepository) GetLogs(f models.LogFilter) ([]*models.LogEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.AdminID != "" {
		filter["admin_id"] = f.AdminID
	}
	if f.IBRequestID != "" {
		filter["ib_request_id"] = f.IBRequestID
	}

	cursor, err := r.collection.Find(ctx, filter, paginate(f.Page, f.Limit).SetSort(bson.M{"timestamp": -1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []*models.LogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
