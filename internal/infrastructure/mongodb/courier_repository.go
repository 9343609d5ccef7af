package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
)

// CourierRepository provides read access to couriers
type CourierRepository struct {
	collection *mongo.Collection
}

// NewCourierRepository creates a new CourierRepository
func NewCourierRepository(db *mongo.Database) *CourierRepository {
	repo := &CourierRepository{collection: db.Collection("couriers")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *CourierRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "courierId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "serviceableZones", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// FindByCourierID returns one courier by its id, or nil when not found
func (r *CourierRepository) FindByCourierID(ctx context.Context, storeID, courierID string) (*domain.Courier, error) {
	var courier domain.Courier
	err := r.collection.FindOne(ctx, bson.M{"storeId": storeID, "courierId": courierID}).Decode(&courier)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &courier, err
}

// FindActiveByStore returns all active couriers for a store
func (r *CourierRepository) FindActiveByStore(ctx context.Context, storeID string) ([]*domain.Courier, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"storeId": storeID, "active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var couriers []*domain.Courier
	err = cursor.All(ctx, &couriers)
	return couriers, err
}

// FindActiveByZone returns active couriers servicing a zone, ordered by
// priority ascending
func (r *CourierRepository) FindActiveByZone(ctx context.Context, storeID, zoneID string) ([]*domain.Courier, error) {
	filter := bson.M{
		"storeId":          storeID,
		"active":           true,
		"serviceableZones": zoneID,
	}
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var couriers []*domain.Courier
	err = cursor.All(ctx, &couriers)
	return couriers, err
}
