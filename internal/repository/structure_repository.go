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

type StructureRepository interface {
	SaveStructure(s *models.CommissionStructure) error
	GetStructureByID(id primitive.ObjectID) (*models.CommissionStructure, error)
	GetStructures(groupID string) ([]*models.CommissionStructure, error)
	UpdateStructure(id primitive.ObjectID, s *models.CommissionStructure) error
	DeleteStructure(id primitive.ObjectID) error

	SaveStructureSet(set *models.StructureSet) error
	GetStructureSetByID(id primitive.ObjectID) (*models.StructureSet, error)
	GetStructureSets() ([]*models.StructureSet, error)
}

type MongoStructureRepository struct {
	structures *mongo.Collection
	sets       *mongo.Collection
}

func NewStructureRepository(db *mongo.Database, structures, sets string) StructureRepository {
	return &MongoStructureRepository{
		structures: db.Collection(structures),
		sets:       db.Collection(sets),
	}
}

func (r *MongoStructureRepository) SaveStructure(s *models.CommissionStructure) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	s.ID = primitive.NewObjectID()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	_, err := r.structures.InsertOne(ctx, s)
	return err
}

func (r *MongoStructureRepository) GetStructureByID(id primitive.ObjectID) (*models.CommissionStructure, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var s models.CommissionStructure
	err := r.structures.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *MongoStructureRepository) GetStructures(groupID string) ([]*models.CommissionStructure, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	filter := bson.M{}
	if groupID != "" {
		filter["group_id"] = groupID
	}
	opts := options.Find().SetSort(bson.D{{Key: "group_id", Value: 1}, {Key: "level_order", Value: 1}})
	cursor, err := r.structures.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*models.CommissionStructure
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoStructureRepository) UpdateStructure(id primitive.ObjectID, s *models.CommissionStructure) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	s.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"structure_name":          s.StructureName,
		"usd_per_lot":             s.USDPerLot,
		"spread_share_percentage": s.SpreadSharePercentage,
		"min_deposit":             s.MinDeposit,
		"min_trading_volume":      s.MinTradingVolume,
		"min_active_clients":      s.MinActiveClients,
		"level_order":             s.LevelOrder,
		"is_active":               s.IsActive,
		"updated_at":              s.UpdatedAt,
	}}
	res, err := r.structures.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoStructureRepository) DeleteStructure(id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := r.structures.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoStructureRepository) SaveStructureSet(set *models.StructureSet) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	set.ID = primitive.NewObjectID()
	set.CreatedAt = time.Now()
	_, err := r.sets.InsertOne(ctx, set)
	return err
}

func (r *MongoStructureRepository) GetStructureSetByID(id primitive.ObjectID) (*models.StructureSet, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var set models.StructureSet
	err := r.sets.FindOne(ctx, bson.M{"_id": id}).Decode(&set)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &set, nil
}

func (r *MongoStructureRepository) GetStructureSets() ([]*models.StructureSet, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cursor, err := r.sets.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*models.StructureSet
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
