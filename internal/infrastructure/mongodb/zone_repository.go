package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
)

// ZoneRepository provides read access to shipping zones
type ZoneRepository struct {
	collection *mongo.Collection
}

// NewZoneRepository creates a new ZoneRepository
func NewZoneRepository(db *mongo.Database) *ZoneRepository {
	repo := &ZoneRepository{collection: db.Collection("shipping_zones")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *ZoneRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "zoneId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "country", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// FindActiveByStore returns all active zones for a store
func (r *ZoneRepository) FindActiveByStore(ctx context.Context, storeID string) ([]*domain.ShippingZone, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"storeId": storeID, "active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var zones []*domain.ShippingZone
	err = cursor.All(ctx, &zones)
	return zones, err
}

// FindByZoneID returns one zone by its id, or nil when not found
func (r *ZoneRepository) FindByZoneID(ctx context.Context, storeID, zoneID string) (*domain.ShippingZone, error) {
	var zone domain.ShippingZone
	err := r.collection.FindOne(ctx, bson.M{"storeId": storeID, "zoneId": zoneID}).Decode(&zone)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &zone, err
}
