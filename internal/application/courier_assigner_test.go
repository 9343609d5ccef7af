package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
)

func southZone() *domain.ShippingZone {
	return &domain.ShippingZone{
		ZoneID:     "zone-south",
		StoreID:    "store-1",
		Name:       "IN-South",
		Country:    "IN",
		StateCodes: []string{"TN"},
		Pincodes:   []string{"600001"},
		Active:     true,
	}
}

func blueDart() *domain.Courier {
	return &domain.Courier{
		CourierID:        "courier-bluedart",
		StoreID:          "store-1",
		Code:             "BLUEDART",
		Name:             "BlueDart",
		SupportsCOD:      true,
		MaxWeight:        0,
		ServiceableZones: []string{"zone-south"},
		Priority:         1,
		Active:           true,
	}
}

func delhivery() *domain.Courier {
	return &domain.Courier{
		CourierID:        "courier-delhivery",
		StoreID:          "store-1",
		Code:             "DELHIVERY",
		Name:             "Delhivery",
		SupportsCOD:      false,
		MaxWeight:        10,
		ServiceableZones: []string{"zone-south"},
		Priority:         2,
		Active:           true,
	}
}

func newAssigner(zones []*domain.ShippingZone, couriers []*domain.Courier, rules []*domain.CourierRule) *CourierAssigner {
	return NewCourierAssigner(
		&mockZoneRepo{zones: zones},
		&mockCourierRepo{couriers: couriers},
		&mockRuleRepo{rules: rules},
		testLogger(),
	)
}

// TestCourierAssignerRuleMatch tests a single matching rule producing a
// rule-based snapshot
func TestCourierAssignerRuleMatch(t *testing.T) {
	rules := []*domain.CourierRule{
		{
			RuleID:        "rule-1",
			StoreID:       "store-1",
			ZoneID:        "zone-south",
			CourierID:     "courier-bluedart",
			PaymentMethod: domain.PaymentBoth,
			Priority:      1,
			Active:        true,
		},
	}
	assigner := newAssigner([]*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart()}, rules)

	assignment, err := assigner.Assign(context.Background(), AssignCourierCommand{
		StoreID:       "store-1",
		ZoneID:        "zone-south",
		Weight:        2,
		OrderValue:    500,
		PaymentMethod: domain.PaymentCOD,
		Pincode:       "600001",
	})

	require.NoError(t, err)
	assert.Equal(t, "BLUEDART", assignment.Snapshot.CourierCode)
	assert.Equal(t, "rule-1", assignment.Snapshot.RuleID)
	assert.False(t, assignment.Snapshot.Fallback)
	assert.Contains(t, assignment.Snapshot.Reason, "Rule priority 1")
	assert.Equal(t, "IN-South", assignment.Zone.Name)
}

// TestCourierAssignerPriorityOrdering tests rule and courier priority
// tie-breaks
func TestCourierAssignerPriorityOrdering(t *testing.T) {
	tests := []struct {
		name       string
		rules      []*domain.CourierRule
		expectCode string
		expectRule string
	}{
		{
			name: "Lower rule priority wins",
			rules: []*domain.CourierRule{
				{RuleID: "rule-delhivery", StoreID: "store-1", ZoneID: "zone-south", CourierID: "courier-delhivery", PaymentMethod: domain.PaymentBoth, Priority: 2, Active: true},
				{RuleID: "rule-bluedart", StoreID: "store-1", ZoneID: "zone-south", CourierID: "courier-bluedart", PaymentMethod: domain.PaymentBoth, Priority: 1, Active: true},
			},
			expectCode: "BLUEDART",
			expectRule: "rule-bluedart",
		},
		{
			name: "Equal rule priority breaks by courier priority",
			rules: []*domain.CourierRule{
				{RuleID: "rule-delhivery", StoreID: "store-1", ZoneID: "zone-south", CourierID: "courier-delhivery", PaymentMethod: domain.PaymentBoth, Priority: 1, Active: true},
				{RuleID: "rule-bluedart", StoreID: "store-1", ZoneID: "zone-south", CourierID: "courier-bluedart", PaymentMethod: domain.PaymentBoth, Priority: 1, Active: true},
			},
			expectCode: "BLUEDART",
			expectRule: "rule-bluedart",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assigner := newAssigner([]*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart(), delhivery()}, tt.rules)

			assignment, err := assigner.Assign(context.Background(), AssignCourierCommand{
				StoreID:       "store-1",
				ZoneID:        "zone-south",
				Weight:        2,
				OrderValue:    500,
				PaymentMethod: domain.PaymentPrepaid,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectCode, assignment.Snapshot.CourierCode)
			assert.Equal(t, tt.expectRule, assignment.Snapshot.RuleID)
		})
	}
}

// TestCourierAssignerSkipsInvalidCandidates verifies rule-matched couriers
// that fail validation are passed over for the next candidate
func TestCourierAssignerSkipsInvalidCandidates(t *testing.T) {
	rules := []*domain.CourierRule{
		// Best priority but Delhivery cannot take COD
		{RuleID: "rule-delhivery", StoreID: "store-1", ZoneID: "zone-south", CourierID: "courier-delhivery", PaymentMethod: domain.PaymentBoth, Priority: 1, Active: true},
		{RuleID: "rule-bluedart", StoreID: "store-1", ZoneID: "zone-south", CourierID: "courier-bluedart", PaymentMethod: domain.PaymentBoth, Priority: 2, Active: true},
	}
	assigner := newAssigner([]*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart(), delhivery()}, rules)

	assignment, err := assigner.Assign(context.Background(), AssignCourierCommand{
		StoreID:       "store-1",
		ZoneID:        "zone-south",
		Weight:        2,
		OrderValue:    500,
		PaymentMethod: domain.PaymentCOD,
	})

	require.NoError(t, err)
	assert.Equal(t, "BLUEDART", assignment.Snapshot.CourierCode)
	assert.Equal(t, "rule-bluedart", assignment.Snapshot.RuleID)
}

// TestCourierAssignerFallback tests the zone-default courier when no rule
// matches
func TestCourierAssignerFallback(t *testing.T) {
	assigner := newAssigner([]*domain.ShippingZone{southZone()}, []*domain.Courier{delhivery(), blueDart()}, nil)

	assignment, err := assigner.Assign(context.Background(), AssignCourierCommand{
		StoreID:       "store-1",
		ZoneID:        "zone-south",
		Weight:        2,
		OrderValue:    500,
		PaymentMethod: domain.PaymentPrepaid,
	})

	require.NoError(t, err)
	assert.True(t, assignment.Snapshot.Fallback)
	assert.Empty(t, assignment.Snapshot.RuleID)
	// Lowest courier priority wins the fallback
	assert.Equal(t, "BLUEDART", assignment.Snapshot.CourierCode)
	assert.Equal(t, "Default courier for zone IN-South", assignment.Snapshot.Reason)
}

// TestCourierAssignerNoCourierAvailable tests the diagnostics when neither a
// rule nor the fallback yields a courier
func TestCourierAssignerNoCourierAvailable(t *testing.T) {
	// Only Delhivery services the zone and the order is COD
	assigner := newAssigner([]*domain.ShippingZone{southZone()}, []*domain.Courier{delhivery()}, nil)

	_, err := assigner.Assign(context.Background(), AssignCourierCommand{
		StoreID:       "store-1",
		ZoneID:        "zone-south",
		Weight:        2,
		OrderValue:    500,
		PaymentMethod: domain.PaymentCOD,
	})

	require.Error(t, err)
	assert.True(t, domain.IsNoCourierAvailable(err))

	var courierErr *domain.NoCourierAvailableError
	require.ErrorAs(t, err, &courierErr)
	assert.Equal(t, "IN-South", courierErr.ZoneName)
	assert.Equal(t, domain.PaymentCOD, courierErr.PaymentMethod)
	assert.Equal(t, 2.0, courierErr.Weight)
	assert.Equal(t, 500.0, courierErr.OrderValue)
}

// TestCourierAssignerUnknownZone tests assignment against a missing or
// inactive zone
func TestCourierAssignerUnknownZone(t *testing.T) {
	assigner := newAssigner([]*domain.ShippingZone{southZone()}, []*domain.Courier{blueDart()}, nil)

	_, err := assigner.Assign(context.Background(), AssignCourierCommand{
		StoreID:       "store-1",
		ZoneID:        "zone-unknown",
		PaymentMethod: domain.PaymentPrepaid,
	})

	require.Error(t, err)
	assert.True(t, domain.IsZoneNotFound(err))
}
