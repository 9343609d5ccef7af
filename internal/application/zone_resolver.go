package application

import (
	"context"
	"sort"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
)

// ZoneResolver maps a delivery address to an active shipping zone for a
// store. When multiple zones cover the same address, an exact pincode match
// outranks a state-level match; remaining ties break by zone name ascending.
type ZoneResolver struct {
	zones domain.ZoneRepository
}

// NewZoneResolver creates a new ZoneResolver
func NewZoneResolver(zones domain.ZoneRepository) *ZoneResolver {
	return &ZoneResolver{zones: zones}
}

// Resolve returns the shipping zone covering an address, or a
// ZoneNotFoundError when no active zone matches
func (r *ZoneResolver) Resolve(ctx context.Context, storeID string, address domain.Address) (*domain.ShippingZone, error) {
	zones, err := r.zones.FindActiveByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	type match struct {
		zone        *domain.ShippingZone
		specificity int
	}

	matches := make([]match, 0, len(zones))
	for _, zone := range zones {
		if s := zone.MatchSpecificity(address); s > domain.ZoneMatchNone {
			matches = append(matches, match{zone: zone, specificity: s})
		}
	}

	if len(matches) == 0 {
		return nil, &domain.ZoneNotFoundError{
			StoreID: storeID,
			Pincode: address.Pincode,
			State:   address.State,
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].specificity != matches[j].specificity {
			return matches[i].specificity > matches[j].specificity
		}
		return matches[i].zone.Name < matches[j].zone.Name
	})

	return matches[0].zone, nil
}
