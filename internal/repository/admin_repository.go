package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mehrbod2002/ibadmin/internal/models"
)

type AdminRepository interface {
	SaveAdmin(admin *models.AdminAccount) error
	GetAdminByID(id primitive.ObjectID) (*models.AdminAccount, error)
	GetAdminByUsername(username string) (*models.AdminAccount, error)
}

type MongoAdminRepository struct {
	collection *mongo.Collection
}

func NewAdminRepository(db *mongo.Database, collectionName string) AdminRepository {
	return &MongoAdminRepository{collection: db.Collection(collectionName)}
}

func (r *MongoAdminRepository) SaveAdmin(admin *models.AdminAccount) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, admin)
	return err
}

func (r *MongoAdminRepository) GetAdminByID(id primitive.ObjectID) (*models.AdminAccount, error) {
	return r.findOne(bson.M{"_id": id})
}

func (r *MongoAdminRepository) GetAdminByUsername(username string) (*models.AdminAccount, error) {
	return r.findOne(bson.M{"username": username})
}

func (r *MongoAdminRepository) findOne(filter bson.M) (*models.AdminAccount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var admin models.AdminAccount
	err := r.collection.FindOne(ctx, filter).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}
