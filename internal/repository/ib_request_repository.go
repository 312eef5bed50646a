package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mehrbod2002/ibadmin/internal/models"
)

type IBRequestRepository interface {
	SaveIBRequest(req *models.IBRequest) error
	GetIBRequestByID(id primitive.ObjectID) (*models.IBRequest, error)
	GetIBRequestByReferralCode(code string) (*models.IBRequest, error)
	GetIBRequestByUserID(userID string) (*models.IBRequest, error)
	GetIBRequests(filter models.IBRequestFilter) ([]*models.IBRequest, int64, error)
	GetIBRequestsByStatus(status models.IBStatus) ([]*models.IBRequest, error)
	UpdateIBRequest(req *models.IBRequest) error
	CountByStatus() (map[models.IBStatus]int64, error)
}

type MongoIBRequestRepository struct {
	collection *mongo.Collection
}

func NewIBRequestRepository(db *mongo.Database, collectionName string) IBRequestRepository {
	return &MongoIBRequestRepository{collection: db.Collection(collectionName)}
}

func (r *MongoIBRequestRepository) SaveIBRequest(req *models.IBRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	req.ID = primitive.NewObjectID()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	_, err := r.collection.InsertOne(ctx, req)
	return err
}

func (r *MongoIBRequestRepository) GetIBRequestByID(id primitive.ObjectID) (*models.IBRequest, error) {
	return r.findOne(bson.M{"_id": id})
}

func (r *MongoIBRequestRepository) GetIBRequestByReferralCode(code string) (*models.IBRequest, error) {
	return r.findOne(bson.M{"referral_code": code})
}

// GetIBRequestByUserID returns the user's newest request that is not
// rejected, or the newest rejected one when every application was rejected.
func (r *MongoIBRequestRepository) GetIBRequestByUserID(userID string) (*models.IBRequest, error) {
	newest := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	req, err := r.findOne(bson.M{"user_id": userID, "status": bson.M{"$ne": models.IBStatusRejected}}, newest)
	if err != nil || req != nil {
		return req, err
	}
	return r.findOne(bson.M{"user_id": userID}, newest)
}

func (r *MongoIBRequestRepository) findOne(filter bson.M, opts ...*options.FindOneOptions) (*models.IBRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var req models.IBRequest
	err := r.collection.FindOne(ctx, filter, opts...).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *MongoIBRequestRepository) GetIBRequests(f models.IBRequestFilter) ([]*models.IBRequest, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"full_name": pattern},
			bson.M{"email": pattern},
			bson.M{"referral_code": pattern},
		}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := paginate(f.Page, f.Limit).SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var reqs []*models.IBRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

func (r *MongoIBRequestRepository) GetIBRequestsByStatus(status models.IBStatus) ([]*models.IBRequest, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reqs []*models.IBRequest
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *MongoIBRequestRepository) UpdateIBRequest(req *models.IBRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	req.UpdatedAt = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": req.ID}, bson.M{"$set": req})
	return err
}

func (r *MongoIBRequestRepository) CountByStatus() (map[models.IBStatus]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status models.IBStatus `bson:"_id"`
		Count  int64           `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[models.IBStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
