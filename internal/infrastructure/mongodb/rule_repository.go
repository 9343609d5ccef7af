package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
)

// CourierRuleRepository provides read access to courier rules
type CourierRuleRepository struct {
	collection *mongo.Collection
}

// NewCourierRuleRepository creates a new CourierRuleRepository
func NewCourierRuleRepository(db *mongo.Database) *CourierRuleRepository {
	repo := &CourierRuleRepository{collection: db.Collection("courier_rules")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *CourierRuleRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "ruleId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "zoneId", Value: 1}, {Key: "active", Value: 1}, {Key: "priority", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// FindActiveByZone returns active rules for a zone, ordered by rule
// priority ascending
func (r *CourierRuleRepository) FindActiveByZone(ctx context.Context, storeID, zoneID string) ([]*domain.CourierRule, error) {
	filter := bson.M{
		"storeId": storeID,
		"zoneId":  zoneID,
		"active":  true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var rules []*domain.CourierRule
	err = cursor.All(ctx, &rules)
	return rules, err
}
