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

type SymbolRepository interface {
	SaveSymbol(symbol *models.Symbol) error
	UpsertSymbol(symbol *models.Symbol) error
	GetSymbolByID(id primitive.ObjectID) (*models.Symbol, error)
	GetAllSymbols() ([]*models.Symbol, error)
	UpdateSymbolPip(id primitive.ObjectID, pipValue float64, pipPosition int) error
}

type MongoSymbolRepository struct {
	collection *mongo.Collection
}

func NewSymbolRepository(db *mongo.Database, collectionName string) SymbolRepository {
	return &MongoSymbolRepository{collection: db.Collection(collectionName)}
}

func (r *MongoSymbolRepository) SaveSymbol(symbol *models.Symbol) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	symbol.ID = primitive.NewObjectID()
	symbol.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, symbol)
	return err
}

// UpsertSymbol refreshes the contract fields of a symbol by name. Pip
// settings are admin-owned and only seeded on insert.
func (r *MongoSymbolRepository) UpsertSymbol(symbol *models.Symbol) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	symbol.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"category":      symbol.Category,
			"contract_size": symbol.ContractSize,
			"digits":        symbol.Digits,
			"is_active":     symbol.IsActive,
			"updated_at":    symbol.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"pip_value":    symbol.PipValue,
			"pip_position": symbol.PipPosition,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"symbol": symbol.Symbol}, update, options.Update().SetUpsert(true))
	return err
}

func (r *MongoSymbolRepository) GetSymbolByID(id primitive.ObjectID) (*models.Symbol, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var symbol models.Symbol
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&symbol)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &symbol, nil
}

func (r *MongoSymbolRepository) GetAllSymbols() ([]*models.Symbol, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "symbol", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var symbols []*models.Symbol
	if err := cursor.All(ctx, &symbols); err != nil {
		return nil, err
	}
	return symbols, nil
}

func (r *MongoSymbolRepository) UpdateSymbolPip(id primitive.ObjectID, pipValue float64, pipPosition int) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"pip_value":    pipValue,
		"pip_position": pipPosition,
		"updated_at":   time.Now(),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
