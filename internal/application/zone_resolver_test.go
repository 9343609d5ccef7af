package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
)

func createTestZones() []*domain.ShippingZone {
	return []*domain.ShippingZone{
		{
			ZoneID:     "zone-south",
			StoreID:    "store-1",
			Name:       "IN-South",
			Country:    "IN",
			StateCodes: []string{"TN", "KA"},
			Active:     true,
		},
		{
			ZoneID:   "zone-chennai",
			StoreID:  "store-1",
			Name:     "IN-Chennai-Metro",
			Country:  "IN",
			Pincodes: []string{"600001", "600002"},
			Active:   true,
		},
	}
}

// TestZoneResolverResolve tests address to zone resolution and tie-breaks
func TestZoneResolverResolve(t *testing.T) {
	tests := []struct {
		name         string
		zones        []*domain.ShippingZone
		address      domain.Address
		expectZoneID string
		expectError  bool
	}{
		{
			name:         "Pincode match outranks state match",
			zones:        createTestZones(),
			address:      domain.Address{Country: "IN", State: "TN", Pincode: "600001"},
			expectZoneID: "zone-chennai",
		},
		{
			name:         "State match when pincode not listed",
			zones:        createTestZones(),
			address:      domain.Address{Country: "IN", State: "KA", Pincode: "560001"},
			expectZoneID: "zone-south",
		},
		{
			name: "Equal specificity breaks ties by zone name ascending",
			zones: []*domain.ShippingZone{
				{ZoneID: "zone-b", StoreID: "store-1", Name: "Beta", Country: "IN", StateCodes: []string{"TN"}, Active: true},
				{ZoneID: "zone-a", StoreID: "store-1", Name: "Alpha", Country: "IN", StateCodes: []string{"TN"}, Active: true},
			},
			address:      domain.Address{Country: "IN", State: "TN", Pincode: "600001"},
			expectZoneID: "zone-a",
		},
		{
			name:        "No matching zone",
			zones:       createTestZones(),
			address:     domain.Address{Country: "IN", State: "MH", Pincode: "400001"},
			expectError: true,
		},
		{
			name: "Inactive zones are skipped",
			zones: []*domain.ShippingZone{
				{ZoneID: "zone-south", StoreID: "store-1", Name: "IN-South", Country: "IN", StateCodes: []string{"TN"}, Active: false},
			},
			address:     domain.Address{Country: "IN", State: "TN", Pincode: "600001"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewZoneResolver(&mockZoneRepo{zones: tt.zones})
			zone, err := resolver.Resolve(context.Background(), "store-1", tt.address)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, domain.IsZoneNotFound(err))

				var zoneErr *domain.ZoneNotFoundError
				require.ErrorAs(t, err, &zoneErr)
				assert.Equal(t, tt.address.Pincode, zoneErr.Pincode)
				assert.Equal(t, tt.address.State, zoneErr.State)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectZoneID, zone.ZoneID)
			}
		})
	}
}
