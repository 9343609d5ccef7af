package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
	"github.com/marketplace-platform/fulfillment-service/pkg/errors"
	"github.com/marketplace-platform/fulfillment-service/pkg/metrics"
)

type mockRouteRepo struct {
	byOrder map[string]*domain.FulfillmentRoute
	byRoute map[string]*domain.FulfillmentRoute
	saveErr error
}

func newMockRouteRepo() *mockRouteRepo {
	return &mockRouteRepo{
		byOrder: make(map[string]*domain.FulfillmentRoute),
		byRoute: make(map[string]*domain.FulfillmentRoute),
	}
}

func (m *mockRouteRepo) Save(ctx context.Context, route *domain.FulfillmentRoute) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, exists := m.byOrder[route.OrderID]; exists {
		return domain.ErrRouteAlreadyExists
	}
	m.byOrder[route.OrderID] = route
	m.byRoute[route.RouteID] = route
	route.ClearDomainEvents()
	return nil
}

func (m *mockRouteRepo) Update(ctx context.Context, route *domain.FulfillmentRoute) error {
	m.byOrder[route.OrderID] = route
	m.byRoute[route.RouteID] = route
	route.ClearDomainEvents()
	return nil
}

func (m *mockRouteRepo) FindByRouteID(ctx context.Context, routeID string) (*domain.FulfillmentRoute, error) {
	return m.byRoute[routeID], nil
}

func (m *mockRouteRepo) FindByOrderID(ctx context.Context, orderID string) (*domain.FulfillmentRoute, error) {
	return m.byOrder[orderID], nil
}

func testMetrics() *metrics.Metrics {
	return metrics.New(metrics.DefaultConfig("fulfillment-service-test"))
}

func newService(routes domain.RouteRepository, origins *mockOriginRepo, zones []*domain.ShippingZone, couriers []*domain.Courier, rules []*domain.CourierRule) *RoutingApplicationService {
	logger := testLogger()
	router := newRouter(origins, zones, couriers, rules)
	assigner := newAssigner(zones, couriers, rules)
	courierRepo := &mockCourierRepo{couriers: couriers}
	return NewRoutingApplicationService(routes, courierRepo, router, assigner, nil, nil, logger, testMetrics())
}

func routedOrderCommand() RouteFulfillmentCommand {
	return RouteFulfillmentCommand{
		OrderID:         "order-1",
		StoreID:         "store-1",
		CartItems:       []CartItem{{VariantID: "variant-1", Quantity: 1, Weight: 2}},
		DeliveryAddress: chennaiDelivery(),
		PaymentMethod:   domain.PaymentCOD,
		OrderValue:      1500,
	}
}

func stockedOrigins() *mockOriginRepo {
	return &mockOriginRepo{
		origins: []*domain.SupplierOrigin{createTestOrigin("origin-1", "600001", 1)},
		stock:   map[string]int{"origin-1/variant-1": 10},
	}
}

// TestRouteFulfillment tests the happy path producing a frozen route
func TestRouteFulfillment(t *testing.T) {
	repo := newMockRouteRepo()
	service := newService(repo, stockedOrigins(), []*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart()}, nil)

	dto, err := service.RouteFulfillment(context.Background(), routedOrderCommand())
	require.NoError(t, err)
	require.NotNil(t, dto)

	assert.Equal(t, "order-1", dto.OrderID)
	assert.NotEmpty(t, dto.RouteID)
	require.Len(t, dto.Groups, 1)
	assert.Equal(t, "BLUEDART", dto.Groups[0].Courier.CourierCode)
	assert.Equal(t, string(domain.ShipmentStatusPending), dto.Groups[0].Status)

	saved := repo.byOrder["order-1"]
	require.NotNil(t, saved)
	assert.Equal(t, domain.PaymentCOD, saved.PaymentMethod)
}

// TestRouteFulfillmentImmutable verifies a second routing attempt for the
// same order is rejected without recomputation
func TestRouteFulfillmentImmutable(t *testing.T) {
	repo := newMockRouteRepo()
	service := newService(repo, stockedOrigins(), []*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart()}, nil)

	_, err := service.RouteFulfillment(context.Background(), routedOrderCommand())
	require.NoError(t, err)

	_, err = service.RouteFulfillment(context.Background(), routedOrderCommand())
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.CodeRouteImmutable, appErr.Code)
	assert.Equal(t, "order-1", appErr.Details["orderId"])
}

// TestGetRouteByOrder tests route lookup by order
func TestGetRouteByOrder(t *testing.T) {
	repo := newMockRouteRepo()
	service := newService(repo, stockedOrigins(), []*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart()}, nil)

	created, err := service.RouteFulfillment(context.Background(), routedOrderCommand())
	require.NoError(t, err)

	dto, err := service.GetRouteByOrder(context.Background(), GetRouteByOrderQuery{OrderID: "order-1"})
	require.NoError(t, err)
	assert.Equal(t, created.RouteID, dto.RouteID)

	_, err = service.GetRouteByOrder(context.Background(), GetRouteByOrderQuery{OrderID: "order-missing"})
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}

// TestGetGroups tests group retrieval by route id
func TestGetGroups(t *testing.T) {
	repo := newMockRouteRepo()
	service := newService(repo, stockedOrigins(), []*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart()}, nil)

	created, err := service.RouteFulfillment(context.Background(), routedOrderCommand())
	require.NoError(t, err)

	groups, err := service.GetGroups(context.Background(), GetGroupsQuery{RouteID: created.RouteID})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "origin-1", groups[0].OriginID)
}

// TestMarkGroupShippedAndDelivered tests the shipment status transitions
// through the service
func TestMarkGroupShippedAndDelivered(t *testing.T) {
	repo := newMockRouteRepo()
	service := newService(repo, stockedOrigins(), []*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart()}, nil)

	created, err := service.RouteFulfillment(context.Background(), routedOrderCommand())
	require.NoError(t, err)
	groupID := created.Groups[0].GroupID

	// Cannot deliver before shipping
	_, err = service.MarkGroupDelivered(context.Background(), MarkGroupDeliveredCommand{OrderID: "order-1", GroupID: groupID})
	require.Error(t, err)

	dto, err := service.MarkGroupShipped(context.Background(), MarkGroupShippedCommand{OrderID: "order-1", GroupID: groupID})
	require.NoError(t, err)
	assert.Equal(t, string(domain.ShipmentStatusShipped), dto.Groups[0].Status)

	dto, err = service.MarkGroupDelivered(context.Background(), MarkGroupDeliveredCommand{OrderID: "order-1", GroupID: groupID})
	require.NoError(t, err)
	assert.Equal(t, string(domain.ShipmentStatusDelivered), dto.Groups[0].Status)

	// Unknown group maps to not found
	_, err = service.MarkGroupShipped(context.Background(), MarkGroupShippedCommand{OrderID: "order-1", GroupID: "group-missing"})
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotFound, appErr.Code)
}

// TestReassignCourierExplicit tests reassignment to an explicitly chosen
// courier validated against the frozen group profile
func TestReassignCourierExplicit(t *testing.T) {
	secondCourier := delhivery()
	secondCourier.SupportsCOD = true

	repo := newMockRouteRepo()
	service := newService(repo, stockedOrigins(), []*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart(), secondCourier}, nil)

	created, err := service.RouteFulfillment(context.Background(), routedOrderCommand())
	require.NoError(t, err)
	groupID := created.Groups[0].GroupID

	dto, err := service.ReassignCourier(context.Background(), ReassignCourierCommand{
		OrderID:   "order-1",
		GroupID:   groupID,
		CourierID: "courier-delhivery",
		Reason:    "courier outage",
	})
	require.NoError(t, err)

	assert.Equal(t, "DELHIVERY", dto.Groups[0].Courier.CourierCode)
	require.Len(t, dto.CourierHistory, 1)
	assert.Equal(t, "BLUEDART", dto.CourierHistory[0].CourierCode)
}

// TestReassignCourierRejectsInvalidCourier verifies an explicit courier that
// fails validation against the frozen profile is rejected
func TestReassignCourierRejectsInvalidCourier(t *testing.T) {
	// Delhivery cannot take the route's COD payment
	repo := newMockRouteRepo()
	service := newService(repo, stockedOrigins(), []*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart(), delhivery()}, nil)

	created, err := service.RouteFulfillment(context.Background(), routedOrderCommand())
	require.NoError(t, err)

	_, err = service.ReassignCourier(context.Background(), ReassignCourierCommand{
		OrderID:   "order-1",
		GroupID:   created.Groups[0].GroupID,
		CourierID: "courier-delhivery",
	})
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.CodeValidationError, appErr.Code)
	assert.Contains(t, appErr.Message, "does not support COD")
}

// TestReassignCourierRerunsRules verifies reassignment without an explicit
// courier re-runs rule matching for the group's zone
func TestReassignCourierRerunsRules(t *testing.T) {
	repo := newMockRouteRepo()
	service := newService(repo, stockedOrigins(), []*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart()}, nil)

	created, err := service.RouteFulfillment(context.Background(), routedOrderCommand())
	require.NoError(t, err)

	dto, err := service.ReassignCourier(context.Background(), ReassignCourierCommand{
		OrderID: "order-1",
		GroupID: created.Groups[0].GroupID,
		Reason:  "rate change",
	})
	require.NoError(t, err)
	assert.Equal(t, "BLUEDART", dto.Groups[0].Courier.CourierCode)
	assert.Len(t, dto.CourierHistory, 1)
}
