package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
)

func createTestOrigin(originID, pincode string, priority int) *domain.SupplierOrigin {
	return &domain.SupplierOrigin{
		OriginID:          originID,
		StoreID:           "store-1",
		SupplierID:        "supplier-1",
		Name:              "Warehouse " + originID,
		Address:           domain.Address{Country: "IN", State: "TN", Pincode: pincode},
		Priority:          priority,
		SupportedCouriers: []string{"courier-bluedart"},
		Active:            true,
	}
}

func newScorer(zones []*domain.ShippingZone, couriers []*domain.Courier, rules []*domain.CourierRule, rates domain.RateCalculator) *OriginScorer {
	resolver := NewZoneResolver(&mockZoneRepo{zones: zones})
	assigner := newAssigner(zones, couriers, rules)
	return NewOriginScorer(resolver, assigner, rates, domain.NewPincodeDistanceEstimator(), testLogger())
}

// TestOriginScorerScore tests the weighted score formula
func TestOriginScorerScore(t *testing.T) {
	scorer := newScorer(
		[]*domain.ShippingZone{southZone()},
		[]*domain.Courier{blueDart()},
		nil,
		&fixedRateCalculator{rate: 60},
	)

	origin := createTestOrigin("origin-1", "600001", 2)
	delivery := domain.Address{Country: "IN", State: "TN", Pincode: "600001"}

	score, err := scorer.Score(context.Background(), origin, delivery, "store-1", 2, 500, domain.PaymentCOD)
	require.NoError(t, err)

	// distance 0 (same pincode), cost 60, priority 2, one courier option:
	// 0.4*0 + 0.3*60 + 0.2*2 - 0.1*1 = 18.3
	assert.Equal(t, 0.0, score.Distance)
	assert.Equal(t, 60.0, score.ShippingCost)
	assert.Equal(t, "zone-south", score.ZoneID)
	assert.InDelta(t, 18.3, score.Score, 0.0001)

	// Best-effort courier attached via the zone fallback
	require.NotNil(t, score.Courier)
	assert.Equal(t, "BLUEDART", score.Courier.CourierCode)
}

// TestOriginScorerDefaultPriority tests the default applied to origins with
// no admin-assigned priority
func TestOriginScorerDefaultPriority(t *testing.T) {
	scorer := newScorer(
		[]*domain.ShippingZone{southZone()},
		[]*domain.Courier{blueDart()},
		nil,
		&fixedRateCalculator{rate: 60},
	)

	origin := createTestOrigin("origin-1", "600001", 0)
	delivery := domain.Address{Country: "IN", State: "TN", Pincode: "600001"}

	score, err := scorer.Score(context.Background(), origin, delivery, "store-1", 2, 500, domain.PaymentCOD)
	require.NoError(t, err)

	// 0.4*0 + 0.3*60 + 0.2*999 - 0.1*1 = 217.7
	assert.InDelta(t, 217.7, score.Score, 0.0001)
}

// TestOriginScorerNoZonePenalty verifies the origin stays eligible with a
// penalized cost when no zone covers the delivery address
func TestOriginScorerNoZonePenalty(t *testing.T) {
	scorer := newScorer(nil, nil, nil, &fixedRateCalculator{rate: 60})

	origin := createTestOrigin("origin-1", "600001", 1)
	delivery := domain.Address{Country: "IN", State: "MH", Pincode: "400001"}

	score, err := scorer.Score(context.Background(), origin, delivery, "store-1", 2, 500, domain.PaymentPrepaid)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, score.ShippingCost)
	assert.Empty(t, score.ZoneID)
	assert.Nil(t, score.Courier)
	// 0.4*100 + 0.3*1000 + 0.2*1 - 0.1*1 = 340.1
	assert.InDelta(t, 340.1, score.Score, 0.0001)
}

// TestOriginScorerRateFailureFailsItem verifies a failing rate provider
// fails scoring instead of recording a penalty as the shipping cost
func TestOriginScorerRateFailureFailsItem(t *testing.T) {
	scorer := newScorer(
		[]*domain.ShippingZone{southZone()},
		[]*domain.Courier{blueDart()},
		nil,
		&fixedRateCalculator{err: assert.AnError},
	)

	origin := createTestOrigin("origin-1", "600001", 1)
	delivery := domain.Address{Country: "IN", State: "TN", Pincode: "600001"}

	score, err := scorer.Score(context.Background(), origin, delivery, "store-1", 2, 500, domain.PaymentPrepaid)
	require.Error(t, err)
	assert.Nil(t, score)
	assert.Contains(t, err.Error(), "rate calculation failed")
}

// TestOriginScorerCourierFailureIsBestEffort verifies a failed courier
// assignment leaves the courier unset without failing scoring
func TestOriginScorerCourierFailureIsBestEffort(t *testing.T) {
	// Zone exists but no courier services it
	scorer := newScorer([]*domain.ShippingZone{southZone()}, nil, nil, &fixedRateCalculator{rate: 60})

	origin := createTestOrigin("origin-1", "600001", 1)
	delivery := domain.Address{Country: "IN", State: "TN", Pincode: "600001"}

	score, err := scorer.Score(context.Background(), origin, delivery, "store-1", 2, 500, domain.PaymentPrepaid)
	require.NoError(t, err)
	assert.Nil(t, score.Courier)
	assert.Equal(t, "zone-south", score.ZoneID)
}

// TestOriginScorerDeterminism verifies identical inputs yield identical
// scores
func TestOriginScorerDeterminism(t *testing.T) {
	scorer := newScorer(
		[]*domain.ShippingZone{southZone()},
		[]*domain.Courier{blueDart()},
		nil,
		&fixedRateCalculator{rate: 60},
	)

	origin := createTestOrigin("origin-1", "600042", 3)
	delivery := domain.Address{Country: "IN", State: "TN", Pincode: "600001"}

	first, err := scorer.Score(context.Background(), origin, delivery, "store-1", 2, 500, domain.PaymentCOD)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := scorer.Score(context.Background(), origin, delivery, "store-1", 2, 500, domain.PaymentCOD)
		require.NoError(t, err)
		assert.Equal(t, first.Score, again.Score)
	}
}
