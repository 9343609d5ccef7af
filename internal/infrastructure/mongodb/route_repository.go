package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
	"github.com/marketplace-platform/fulfillment-service/pkg/cloudevents"
	"github.com/marketplace-platform/fulfillment-service/pkg/kafka"
	"github.com/marketplace-platform/fulfillment-service/pkg/outbox"
	outboxMongo "github.com/marketplace-platform/fulfillment-service/pkg/outbox/mongodb"
	"github.com/marketplace-platform/fulfillment-service/pkg/tenant"
)

// RouteRepository persists fulfillment routes. New routes are insert-only:
// a second routing attempt for the same order fails with
// domain.ErrRouteAlreadyExists, enforcing the never-recomputed invariant at
// the storage layer. Domain events are saved to the outbox in the same
// transaction as the aggregate.
type RouteRepository struct {
	collection   *mongo.Collection
	db           *mongo.Database
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
	helper       *tenant.RepositoryHelper
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db *mongo.Database, eventFactory *cloudevents.EventFactory) *RouteRepository {
	collection := db.Collection("fulfillment_routes")
	outboxRepo := outboxMongo.NewOutboxRepository(db)

	repo := &RouteRepository{
		collection:   collection,
		db:           db,
		outboxRepo:   outboxRepo,
		eventFactory: eventFactory,
		helper:       tenant.NewRepositoryHelper(false),
	}
	repo.ensureIndexes(context.Background())

	_ = outboxRepo.EnsureIndexes(context.Background())

	return repo
}

func (r *RouteRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "routeId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "groups.groupId", Value: 1}}},
	}
	r.collection.Indexes().CreateMany(ctx, indexes)
}

// Save inserts a new frozen route. Refuses to overwrite an existing route
// for the same order.
func (r *RouteRepository) Save(ctx context.Context, route *domain.FulfillmentRoute) error {
	return r.inTransaction(ctx, route, func(sessCtx mongo.SessionContext) error {
		if _, err := r.collection.InsertOne(sessCtx, route); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrRouteAlreadyExists
			}
			return fmt.Errorf("failed to insert fulfillment route: %w", err)
		}
		return nil
	})
}

// Update replaces an existing route after a reassignment or a shipment
// group status transition
func (r *RouteRepository) Update(ctx context.Context, route *domain.FulfillmentRoute) error {
	route.UpdatedAt = time.Now().UTC()

	return r.inTransaction(ctx, route, func(sessCtx mongo.SessionContext) error {
		result, err := r.collection.ReplaceOne(sessCtx, bson.M{"routeId": route.RouteID}, route)
		if err != nil {
			return fmt.Errorf("failed to update fulfillment route: %w", err)
		}
		if result.MatchedCount == 0 {
			return fmt.Errorf("fulfillment route %s not found", route.RouteID)
		}
		return nil
	})
}

// inTransaction runs the aggregate write and the outbox save in one
// MongoDB transaction, then clears the aggregate's domain events
func (r *RouteRepository) inTransaction(ctx context.Context, route *domain.FulfillmentRoute, write func(mongo.SessionContext) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := write(sessCtx); err != nil {
			return nil, err
		}

		if err := r.saveOutboxEvents(sessCtx, route); err != nil {
			return nil, err
		}

		route.ClearDomainEvents()
		return nil, nil
	})
	if err != nil {
		if err == domain.ErrRouteAlreadyExists {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// saveOutboxEvents converts the aggregate's domain events to CloudEvents
// and stores them in the outbox within the ambient transaction
func (r *RouteRepository) saveOutboxEvents(sessCtx mongo.SessionContext, route *domain.FulfillmentRoute) error {
	domainEvents := route.GetDomainEvents()
	if len(domainEvents) == 0 {
		return nil
	}

	outboxEvents := make([]*outbox.OutboxEvent, 0, len(domainEvents))
	for _, event := range domainEvents {
		cloudEvent := r.cloudEventFor(sessCtx, route, event)
		cloudEvent.StoreID = route.StoreID

		outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(
			route.RouteID,
			"FulfillmentRoute",
			topicForEvent(event),
			cloudEvent,
		)
		if err != nil {
			return fmt.Errorf("failed to create outbox event: %w", err)
		}
		outboxEvents = append(outboxEvents, outboxEvent)
	}

	if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
		return fmt.Errorf("failed to save outbox events: %w", err)
	}
	return nil
}

// cloudEventFor builds the typed CloudEvent for a domain event, so outbox
// payloads carry the canonical wire shape rather than the raw domain struct
func (r *RouteRepository) cloudEventFor(sessCtx mongo.SessionContext, route *domain.FulfillmentRoute, event domain.DomainEvent) *cloudevents.CloudEvent {
	switch e := event.(type) {
	case *domain.OriginSelectedEvent:
		return r.eventFactory.CreateOriginSelectedEvent(sessCtx, route.OrderID, e.VariantID, e.OriginID, e.Score, e.Distance, e.ShippingCost)
	case *domain.OrderRoutedEvent:
		return r.eventFactory.CreateOrderRoutedEvent(sessCtx, route.OrderID, e.GroupCount, e.OriginIDs, e.TotalCost)
	case *domain.CourierAssignedEvent:
		return r.eventFactory.CreateCourierAssignedEvent(sessCtx, route.OrderID, e.CourierID, e.CourierCode, e.Zone, e.Reason, e.Fallback)
	case *domain.CourierReassignedEvent:
		return r.eventFactory.CreateCourierReassignedEvent(sessCtx, route.OrderID, e.GroupID, e.PrevCourierCode, e.CourierCode, e.Reason)
	case *domain.GroupStatusChangedEvent:
		return r.eventFactory.CreateGroupStatusEvent(sessCtx, e.EventType(), route.OrderID, e.GroupID, e.Status)
	default:
		cloudEvent := r.eventFactory.CreateEvent(sessCtx, event.EventType(), "order/"+route.OrderID, event)
		cloudEvent.OrderID = route.OrderID
		return cloudEvent
	}
}

// topicForEvent routes a domain event to its Kafka topic
func topicForEvent(event domain.DomainEvent) string {
	switch event.(type) {
	case *domain.CourierAssignedEvent, *domain.CourierReassignedEvent:
		return kafka.Topics.CourierEvents
	case *domain.GroupStatusChangedEvent:
		return kafka.Topics.ShipmentEvents
	default:
		return kafka.Topics.FulfillmentEvents
	}
}

// FindByRouteID returns one route by its id, or nil when not found. The
// lookup is scoped to the store in context when one is present.
func (r *RouteRepository) FindByRouteID(ctx context.Context, routeID string) (*domain.FulfillmentRoute, error) {
	filter := r.helper.WithStoreFilterOptional(ctx, bson.M{"routeId": routeID})

	var route domain.FulfillmentRoute
	err := r.collection.FindOne(ctx, filter).Decode(&route)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &route, err
}

// FindByOrderID returns the route for an order, or nil when not found
func (r *RouteRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.FulfillmentRoute, error) {
	filter := r.helper.WithStoreFilterOptional(ctx, bson.M{"orderId": orderID})

	var route domain.FulfillmentRoute
	err := r.collection.FindOne(ctx, filter).Decode(&route)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &route, err
}

// GetOutboxRepository returns the outbox repository for this service
func (r *RouteRepository) GetOutboxRepository() outbox.Repository {
	return r.outboxRepo
}
