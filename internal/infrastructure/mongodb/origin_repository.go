package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
)

// OriginRepository provides read access to supplier origins and their
// point-in-time inventory. Stock is read, never reserved.
type OriginRepository struct {
	origins   *mongo.Collection
	inventory *mongo.Collection
}

// NewOriginRepository creates a new OriginRepository
func NewOriginRepository(db *mongo.Database) *OriginRepository {
	repo := &OriginRepository{
		origins:   db.Collection("supplier_origins"),
		inventory: db.Collection("origin_inventory"),
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *OriginRepository) ensureIndexes(ctx context.Context) {
	originIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "originId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "active", Value: 1}}},
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "supplierId", Value: 1}}},
	}
	r.origins.Indexes().CreateMany(ctx, originIndexes)

	inventoryIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "originId", Value: 1}, {Key: "variantId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "variantId", Value: 1}, {Key: "availableStock", Value: 1}}},
	}
	r.inventory.Indexes().CreateMany(ctx, inventoryIndexes)
}

// FindByOriginID returns one origin by its id, or nil when not found
func (r *OriginRepository) FindByOriginID(ctx context.Context, storeID, originID string) (*domain.SupplierOrigin, error) {
	var origin domain.SupplierOrigin
	err := r.origins.FindOne(ctx, bson.M{"storeId": storeID, "originId": originID}).Decode(&origin)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &origin, err
}

// FindActiveByStore returns all active origins for a store
func (r *OriginRepository) FindActiveByStore(ctx context.Context, storeID string) ([]*domain.SupplierOrigin, error) {
	cursor, err := r.origins.Find(ctx, bson.M{"storeId": storeID, "active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var origins []*domain.SupplierOrigin
	err = cursor.All(ctx, &origins)
	return origins, err
}

// FindWithStock returns the active origins of a store holding at least the
// requested quantity of a variant, optionally restricted to one supplier
func (r *OriginRepository) FindWithStock(ctx context.Context, storeID, variantID string, quantity int, supplierID string) ([]*domain.SupplierOrigin, error) {
	stockFilter := bson.M{
		"variantId":      variantID,
		"availableStock": bson.M{"$gte": quantity},
	}
	if supplierID != "" {
		stockFilter["supplierId"] = supplierID
	}

	cursor, err := r.inventory.Find(ctx, stockFilter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stocks []*domain.OriginInventory
	if err := cursor.All(ctx, &stocks); err != nil {
		return nil, err
	}
	if len(stocks) == 0 {
		return nil, nil
	}

	originIDs := make([]string, 0, len(stocks))
	for _, stock := range stocks {
		originIDs = append(originIDs, stock.OriginID)
	}

	originFilter := bson.M{
		"storeId":  storeID,
		"active":   true,
		"originId": bson.M{"$in": originIDs},
	}
	if supplierID != "" {
		originFilter["supplierId"] = supplierID
	}

	originCursor, err := r.origins.Find(ctx, originFilter)
	if err != nil {
		return nil, err
	}
	defer originCursor.Close(ctx)

	var origins []*domain.SupplierOrigin
	err = originCursor.All(ctx, &origins)
	return origins, err
}
