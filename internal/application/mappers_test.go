package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
)

func TestToRouteDTONil(t *testing.T) {
	assert.Nil(t, ToRouteDTO(nil))
}

func TestToRouteDTO(t *testing.T) {
	now := time.Now()
	route := &domain.FulfillmentRoute{
		RouteID: "route-30",
		OrderID: "order-30",
		StoreID: "store-1",
		DeliveryAddress: domain.Address{
			Pincode: "600001",
			State:   "TN",
			Country: "IN",
		},
		PaymentMethod: domain.PaymentCOD,
		OrderValue:    1500,
		Items: []domain.FulfillmentRouteItem{
			{VariantID: "variant-1", Quantity: 2, Weight: 1.5, SupplierID: "supplier-1", OriginID: "origin-1", CourierID: "courier-bluedart", ZoneID: "zone-south", ShippingCost: 60, Score: 18.3},
		},
		Groups: []domain.ShipmentGroup{
			{
				GroupID:      "group-1",
				OriginID:     "origin-1",
				SupplierID:   "supplier-1",
				ShippingCost: 60,
				Courier: domain.CourierSnapshot{
					CourierID:   "courier-bluedart",
					CourierCode: "BLUEDART",
					RuleID:      "rule-1",
					Reason:      "Rule priority 1 (rule-1)",
					AssignedAt:  now,
				},
				Status: domain.ShipmentStatusPending,
			},
		},
		CourierHistory: []domain.CourierSnapshot{
			{CourierID: "courier-delhivery", CourierCode: "DELHIVERY", Fallback: true, AssignedAt: now},
		},
		TotalShipping: 60,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	dto := ToRouteDTO(route)
	require.NotNil(t, dto)
	assert.Equal(t, "route-30", dto.RouteID)
	assert.Equal(t, "order-30", dto.OrderID)
	assert.Equal(t, "cod", dto.PaymentMethod)
	assert.Len(t, dto.Items, 1)
	assert.Len(t, dto.Groups, 1)
	assert.Equal(t, "pending", dto.Groups[0].Status)
	assert.Equal(t, "BLUEDART", dto.Groups[0].Courier.CourierCode)
	require.Len(t, dto.CourierHistory, 1)
	assert.True(t, dto.CourierHistory[0].Fallback)
}

func TestToShipmentGroupDTO(t *testing.T) {
	shipped := time.Now()
	group := domain.ShipmentGroup{
		GroupID:    "group-2",
		OriginID:   "origin-2",
		SupplierID: "supplier-2",
		Items: []domain.FulfillmentRouteItem{
			{VariantID: "variant-2", Quantity: 1, OriginID: "origin-2", ZoneID: "zone-south", ShippingCost: 40},
		},
		ShippingCost: 40,
		Status:       domain.ShipmentStatusShipped,
		ShippedAt:    &shipped,
	}

	dto := ToShipmentGroupDTO(group)
	assert.Equal(t, "group-2", dto.GroupID)
	assert.Equal(t, "shipped", dto.Status)
	require.NotNil(t, dto.ShippedAt)
	assert.Nil(t, dto.DeliveredAt)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, "variant-2", dto.Items[0].VariantID)
}

func TestToCourierSnapshotDTO(t *testing.T) {
	now := time.Now()
	snapshot := domain.CourierSnapshot{
		CourierID:   "courier-bluedart",
		CourierName: "BlueDart",
		CourierCode: "BLUEDART",
		RuleID:      "rule-9",
		Reason:      "Rule priority 2 (rule-9)",
		AssignedAt:  now,
	}

	dto := ToCourierSnapshotDTO(snapshot)
	assert.Equal(t, "courier-bluedart", dto.CourierID)
	assert.Equal(t, "rule-9", dto.RuleID)
	assert.False(t, dto.Fallback)
	assert.Equal(t, now, dto.AssignedAt)
}
