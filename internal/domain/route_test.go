package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func createTestItems() []FulfillmentRouteItem {
	return []FulfillmentRouteItem{
		{
			VariantID:    "variant-1",
			Quantity:     2,
			Weight:       1.5,
			SupplierID:   "supplier-1",
			OriginID:     "origin-1",
			CourierID:    "courier-1",
			ZoneID:       "zone-south",
			ShippingCost: 60,
			Score:        12.5,
		},
		{
			VariantID:    "variant-2",
			Quantity:     1,
			Weight:       0.5,
			SupplierID:   "supplier-2",
			OriginID:     "origin-2",
			CourierID:    "courier-1",
			ZoneID:       "zone-south",
			ShippingCost: 40,
			Score:        18.0,
		},
	}
}

func createTestGroups() []ShipmentGroup {
	items := createTestItems()
	return []ShipmentGroup{
		{
			GroupID:      "group-1",
			OriginID:     "origin-1",
			SupplierID:   "supplier-1",
			Items:        items[:1],
			ShippingCost: 60,
			Courier:      CourierSnapshot{CourierID: "courier-1", CourierCode: "BLUEDART"},
			Status:       ShipmentStatusPending,
		},
		{
			GroupID:      "group-2",
			OriginID:     "origin-2",
			SupplierID:   "supplier-2",
			Items:        items[1:],
			ShippingCost: 40,
			Courier:      CourierSnapshot{CourierID: "courier-1", CourierCode: "BLUEDART"},
			Status:       ShipmentStatusPending,
		},
	}
}

func createTestRoute() *FulfillmentRoute {
	return NewFulfillmentRoute(
		"route-1",
		"order-1",
		"store-1",
		Address{Country: "IN", State: "TN", Pincode: "600001"},
		PaymentCOD,
		1500,
		createTestItems(),
		createTestGroups(),
	)
}

// TestNewFulfillmentRoute tests route aggregate creation
func TestNewFulfillmentRoute(t *testing.T) {
	route := createTestRoute()

	assert.Equal(t, "route-1", route.RouteID)
	assert.Equal(t, "order-1", route.OrderID)
	assert.Equal(t, "store-1", route.StoreID)
	assert.Equal(t, PaymentCOD, route.PaymentMethod)
	assert.Equal(t, 100.0, route.TotalShipping) // 60 + 40
	assert.Len(t, route.Groups, 2)
	assert.Empty(t, route.CourierHistory)
	assert.NotZero(t, route.CreatedAt)

	events := route.GetDomainEvents()
	require.Len(t, events, 1)
	event, ok := events[0].(*OrderRoutedEvent)
	require.True(t, ok)
	assert.Equal(t, "order-1", event.OrderID)
	assert.Equal(t, 2, event.GroupCount)
	assert.Equal(t, []string{"origin-1", "origin-2"}, event.OriginIDs)
	assert.Equal(t, 100.0, event.TotalCost)
}

// TestShipmentGroupTotalWeight tests group weight summation
func TestShipmentGroupTotalWeight(t *testing.T) {
	group := ShipmentGroup{Items: createTestItems()}
	assert.Equal(t, 2.0, group.TotalWeight()) // 1.5 + 0.5
}

// TestFulfillmentRouteFindGroup tests group lookup
func TestFulfillmentRouteFindGroup(t *testing.T) {
	route := createTestRoute()

	group := route.FindGroup("group-2")
	require.NotNil(t, group)
	assert.Equal(t, "origin-2", group.OriginID)

	assert.Nil(t, route.FindGroup("group-999"))
}

// TestFulfillmentRouteReassignCourier tests courier reassignment and history
func TestFulfillmentRouteReassignCourier(t *testing.T) {
	tests := []struct {
		name        string
		groupID     string
		expectError error
	}{
		{
			name:        "Reassign existing group",
			groupID:     "group-1",
			expectError: nil,
		},
		{
			name:        "Unknown group",
			groupID:     "group-999",
			expectError: ErrGroupNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := createTestRoute()
			route.ClearDomainEvents()

			snapshot := CourierSnapshot{CourierID: "courier-2", CourierCode: "DELHIVERY", Reason: "Manual reassignment to courier DELHIVERY"}
			err := route.ReassignCourier(tt.groupID, snapshot, "courier outage")

			if tt.expectError != nil {
				assert.Equal(t, tt.expectError, err)
				assert.Empty(t, route.CourierHistory)
			} else {
				require.NoError(t, err)

				// Previous snapshot preserved in history
				require.Len(t, route.CourierHistory, 1)
				assert.Equal(t, "BLUEDART", route.CourierHistory[0].CourierCode)

				group := route.FindGroup(tt.groupID)
				assert.Equal(t, "DELHIVERY", group.Courier.CourierCode)

				// Frozen routing fields untouched
				assert.Equal(t, "origin-1", group.OriginID)
				assert.Equal(t, 60.0, group.ShippingCost)

				events := route.GetDomainEvents()
				require.Len(t, events, 1)
				event, ok := events[0].(*CourierReassignedEvent)
				require.True(t, ok)
				assert.Equal(t, "BLUEDART", event.PrevCourierCode)
				assert.Equal(t, "DELHIVERY", event.CourierCode)
				assert.Equal(t, "courier outage", event.Reason)
			}
		})
	}
}

// TestFulfillmentRouteMarkGroupShipped tests the pending to shipped transition
func TestFulfillmentRouteMarkGroupShipped(t *testing.T) {
	tests := []struct {
		name        string
		setupRoute  func() *FulfillmentRoute
		groupID     string
		expectError error
	}{
		{
			name:       "Ship pending group",
			setupRoute: createTestRoute,
			groupID:    "group-1",
		},
		{
			name: "Cannot ship already shipped group",
			setupRoute: func() *FulfillmentRoute {
				r := createTestRoute()
				r.MarkGroupShipped("group-1")
				return r
			},
			groupID:     "group-1",
			expectError: ErrInvalidTransition,
		},
		{
			name:        "Unknown group",
			setupRoute:  createTestRoute,
			groupID:     "group-999",
			expectError: ErrGroupNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := tt.setupRoute()
			err := route.MarkGroupShipped(tt.groupID)

			if tt.expectError != nil {
				assert.Equal(t, tt.expectError, err)
			} else {
				require.NoError(t, err)
				group := route.FindGroup(tt.groupID)
				assert.Equal(t, ShipmentStatusShipped, group.Status)
				assert.NotNil(t, group.ShippedAt)
			}
		})
	}
}

// TestFulfillmentRouteMarkGroupDelivered tests the shipped to delivered transition
func TestFulfillmentRouteMarkGroupDelivered(t *testing.T) {
	tests := []struct {
		name        string
		setupRoute  func() *FulfillmentRoute
		groupID     string
		expectError error
	}{
		{
			name: "Deliver shipped group",
			setupRoute: func() *FulfillmentRoute {
				r := createTestRoute()
				r.MarkGroupShipped("group-1")
				return r
			},
			groupID: "group-1",
		},
		{
			name:        "Cannot deliver pending group",
			setupRoute:  createTestRoute,
			groupID:     "group-1",
			expectError: ErrInvalidTransition,
		},
		{
			name: "Cannot deliver twice",
			setupRoute: func() *FulfillmentRoute {
				r := createTestRoute()
				r.MarkGroupShipped("group-1")
				r.MarkGroupDelivered("group-1")
				return r
			},
			groupID:     "group-1",
			expectError: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := tt.setupRoute()
			err := route.MarkGroupDelivered(tt.groupID)

			if tt.expectError != nil {
				assert.Equal(t, tt.expectError, err)
			} else {
				require.NoError(t, err)
				group := route.FindGroup(tt.groupID)
				assert.Equal(t, ShipmentStatusDelivered, group.Status)
				assert.NotNil(t, group.DeliveredAt)
			}
		})
	}
}

// TestSnapshotConstructors tests the three courier snapshot builders
func TestSnapshotConstructors(t *testing.T) {
	courier := createTestCourier()
	rule := createTestRule()

	t.Run("Rule snapshot", func(t *testing.T) {
		snapshot := NewRuleSnapshot(courier, rule)
		assert.Equal(t, "courier-1", snapshot.CourierID)
		assert.Equal(t, "BLUEDART", snapshot.CourierCode)
		assert.Equal(t, "rule-1", snapshot.RuleID)
		assert.False(t, snapshot.Fallback)
		assert.Contains(t, snapshot.Reason, "Rule priority 1")
		assert.NotZero(t, snapshot.AssignedAt)
	})

	t.Run("Fallback snapshot", func(t *testing.T) {
		snapshot := NewFallbackSnapshot(courier, "IN-South")
		assert.Empty(t, snapshot.RuleID)
		assert.True(t, snapshot.Fallback)
		assert.Equal(t, "Default courier for zone IN-South", snapshot.Reason)
	})

	t.Run("Manual snapshot with reason", func(t *testing.T) {
		snapshot := NewManualSnapshot(courier, "courier outage")
		assert.False(t, snapshot.Fallback)
		assert.Equal(t, "courier outage", snapshot.Reason)
	})

	t.Run("Manual snapshot default reason", func(t *testing.T) {
		snapshot := NewManualSnapshot(courier, "")
		assert.Contains(t, snapshot.Reason, "Manual reassignment to courier BLUEDART")
	})
}

// TestFulfillmentRouteDomainEvents tests domain event handling
func TestFulfillmentRouteDomainEvents(t *testing.T) {
	route := createTestRoute()
	assert.Len(t, route.GetDomainEvents(), 1)

	route.MarkGroupShipped("group-1")
	route.MarkGroupDelivered("group-1")
	assert.Len(t, route.GetDomainEvents(), 3)

	route.ClearDomainEvents()
	assert.Len(t, route.GetDomainEvents(), 0)
}
