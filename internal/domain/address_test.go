package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

// TestPincodeDistanceEstimator tests the prefix heuristic and haversine path
func TestPincodeDistanceEstimator(t *testing.T) {
	estimator := NewPincodeDistanceEstimator()

	tests := []struct {
		name     string
		from     Address
		to       Address
		expected float64
	}{
		{
			name:     "Same pincode",
			from:     Address{Country: "IN", Pincode: "600001"},
			to:       Address{Country: "IN", Pincode: "600001"},
			expected: DistanceSamePincode,
		},
		{
			name:     "Same 3-digit prefix",
			from:     Address{Country: "IN", Pincode: "600001"},
			to:       Address{Country: "IN", Pincode: "600042"},
			expected: DistanceSamePrefix,
		},
		{
			name:     "Different area",
			from:     Address{Country: "IN", Pincode: "600001"},
			to:       Address{Country: "IN", Pincode: "110001"},
			expected: DistanceDifferentArea,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, estimator.Estimate(tt.from, tt.to))
		})
	}
}

// TestPincodeDistanceEstimatorHaversine tests the coordinate path
func TestPincodeDistanceEstimatorHaversine(t *testing.T) {
	estimator := NewPincodeDistanceEstimator()

	// Chennai to Bengaluru, roughly 290 km
	chennai := Address{Country: "IN", Pincode: "600001", Latitude: floatPtr(13.0827), Longitude: floatPtr(80.2707)}
	bengaluru := Address{Country: "IN", Pincode: "560001", Latitude: floatPtr(12.9716), Longitude: floatPtr(77.5946)}

	distance := estimator.Estimate(chennai, bengaluru)
	assert.InDelta(t, 290, distance, 10)

	// Identical coordinates
	assert.InDelta(t, 0, estimator.Estimate(chennai, chennai), 0.001)
}

// TestPincodeDistanceEstimatorMixedCoordinates verifies the heuristic is used
// when only one side carries coordinates
func TestPincodeDistanceEstimatorMixedCoordinates(t *testing.T) {
	estimator := NewPincodeDistanceEstimator()

	withCoords := Address{Country: "IN", Pincode: "600001", Latitude: floatPtr(13.0827), Longitude: floatPtr(80.2707)}
	withoutCoords := Address{Country: "IN", Pincode: "600042"}

	assert.Equal(t, float64(DistanceSamePrefix), estimator.Estimate(withCoords, withoutCoords))
}
