//go:build integration

package mongodb

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
	"github.com/marketplace-platform/fulfillment-service/pkg/cloudevents"
	testhelpers "github.com/marketplace-platform/fulfillment-service/pkg/testing"
)

func setupRouteRepository(t *testing.T) (*RouteRepository, *mongo.Database, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := testhelpers.NewMongoDBContainer(ctx)
	require.NoError(t, err)

	client, err := container.GetClient(ctx)
	require.NoError(t, err)

	db := client.Database("fulfillment_test")
	eventFactory := cloudevents.NewEventFactory(cloudevents.SourceFulfillment)
	repo := NewRouteRepository(db, eventFactory)

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		client.Disconnect(shutdownCtx)
		container.Close(shutdownCtx)
	}
	return repo, db, cleanup
}

func buildRoute(routeID, orderID string) *domain.FulfillmentRoute {
	items := []domain.FulfillmentRouteItem{
		{
			VariantID:    "variant-1",
			Quantity:     2,
			Weight:       1.5,
			SupplierID:   "supplier-1",
			OriginID:     "origin-1",
			ZoneID:       "zone-south",
			ShippingCost: 60,
			Score:        18.3,
		},
	}
	groups := []domain.ShipmentGroup{
		{
			GroupID:      "group-1",
			OriginID:     "origin-1",
			SupplierID:   "supplier-1",
			Items:        items,
			ShippingCost: 60,
			Courier: domain.CourierSnapshot{
				CourierID:   "courier-1",
				CourierCode: "BLUEDART",
				CourierName: "BlueDart",
				RuleID:      "rule-1",
				Reason:      "Rule priority 1 matched for courier BLUEDART",
				AssignedAt:  time.Now().UTC(),
			},
			Status: domain.ShipmentStatusPending,
		},
	}
	return domain.NewFulfillmentRoute(
		routeID,
		orderID,
		"store-1",
		domain.Address{Country: "IN", State: "TN", Pincode: "600001"},
		domain.PaymentCOD,
		1500,
		items,
		groups,
	)
}

func TestRouteRepositorySaveAndFind(t *testing.T) {
	repo, _, cleanup := setupRouteRepository(t)
	defer cleanup()
	ctx := context.Background()

	route := buildRoute("route-1", "order-1")
	require.NoError(t, repo.Save(ctx, route))

	// Domain events are consumed by the outbox save
	assert.Empty(t, route.GetDomainEvents())

	found, err := repo.FindByOrderID(ctx, "order-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "route-1", found.RouteID)
	assert.Equal(t, domain.PaymentCOD, found.PaymentMethod)
	assert.Equal(t, 60.0, found.TotalShipping)
	require.Len(t, found.Groups, 1)
	assert.Equal(t, "BLUEDART", found.Groups[0].Courier.CourierCode)

	byRoute, err := repo.FindByRouteID(ctx, "route-1")
	require.NoError(t, err)
	require.NotNil(t, byRoute)
	assert.Equal(t, "order-1", byRoute.OrderID)

	missing, err := repo.FindByOrderID(ctx, "order-missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRouteRepositorySaveIsInsertOnly(t *testing.T) {
	repo, _, cleanup := setupRouteRepository(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, buildRoute("route-1", "order-1")))

	// Second route for the same order violates the unique order index
	err := repo.Save(ctx, buildRoute("route-2", "order-1"))
	assert.ErrorIs(t, err, domain.ErrRouteAlreadyExists)

	// The frozen route is untouched
	found, err := repo.FindByOrderID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, "route-1", found.RouteID)
}

func TestRouteRepositoryOutboxEvents(t *testing.T) {
	repo, _, cleanup := setupRouteRepository(t)
	defer cleanup()
	ctx := context.Background()

	route := buildRoute("route-1", "order-1")
	route.AddDomainEvent(&domain.CourierAssignedEvent{
		OrderID:     "order-1",
		CourierID:   "courier-1",
		CourierCode: "BLUEDART",
		Zone:        "zone-south",
		AssignedAt:  time.Now().UTC(),
	})
	require.NoError(t, repo.Save(ctx, route))

	events, err := repo.GetOutboxRepository().FindUnpublished(ctx, 10)
	require.NoError(t, err)
	// OrderRoutedEvent from the aggregate constructor plus the courier event
	require.Len(t, events, 2)

	types := make([]string, 0, len(events))
	for _, e := range events {
		assert.Equal(t, "route-1", e.AggregateID)
		assert.Equal(t, "FulfillmentRoute", e.AggregateType)
		types = append(types, e.EventType)
	}
	assert.Contains(t, types, "marketplace.fulfillment.order-routed")
	assert.Contains(t, types, "marketplace.courier.assigned")

	// Payloads carry the canonical typed data, not the raw domain structs
	for _, e := range events {
		var envelope cloudevents.CloudEvent
		require.NoError(t, json.Unmarshal(e.Payload, &envelope))
		assert.Equal(t, cloudevents.SourceFulfillment, envelope.Source)
		assert.Equal(t, "order-1", envelope.OrderID)

		data, ok := envelope.Data.(map[string]interface{})
		require.True(t, ok)
		switch envelope.Type {
		case cloudevents.OrderRouted:
			assert.Contains(t, data, "groupCount")
			assert.Contains(t, data, "originIds")
		case cloudevents.CourierAssigned:
			assert.Equal(t, "BLUEDART", data["courierCode"])
			assert.Equal(t, "zone-south", data["zone"])
		}
	}
}

func TestRouteRepositoryUpdate(t *testing.T) {
	repo, _, cleanup := setupRouteRepository(t)
	defer cleanup()
	ctx := context.Background()

	route := buildRoute("route-1", "order-1")
	require.NoError(t, repo.Save(ctx, route))

	loaded, err := repo.FindByOrderID(ctx, "order-1")
	require.NoError(t, err)

	require.NoError(t, loaded.MarkGroupShipped("group-1"))
	require.NoError(t, repo.Update(ctx, loaded))

	found, err := repo.FindByOrderID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.ShipmentStatusShipped, found.Groups[0].Status)
	assert.NotNil(t, found.Groups[0].ShippedAt)

	// The status change landed in the outbox as well
	events, err := repo.GetOutboxRepository().FindUnpublished(ctx, 10)
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	assert.Contains(t, types, "marketplace.shipment.group-shipped")
}

func TestRouteRepositoryUpdateUnknownRoute(t *testing.T) {
	repo, _, cleanup := setupRouteRepository(t)
	defer cleanup()

	route := buildRoute("route-ghost", "order-ghost")
	route.ClearDomainEvents()
	err := repo.Update(context.Background(), route)
	assert.Error(t, err)
}
