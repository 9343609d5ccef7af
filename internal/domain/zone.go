package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Zone match specificity levels. An exact pincode match outranks a
// state-level match when multiple zones cover the same address.
const (
	ZoneMatchNone    = 0
	ZoneMatchState   = 1
	ZoneMatchPincode = 2
)

// ShippingZone is a named coverage area for a store, defined by country,
// state codes and an optional explicit pincode list. Admin-managed and
// read-only to the routing engine.
type ShippingZone struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ZoneID     string             `bson:"zoneId" json:"zoneId"`
	StoreID    string             `bson:"storeId" json:"storeId"`
	Name       string             `bson:"name" json:"name"`
	Country    string             `bson:"country" json:"country"`
	StateCodes []string           `bson:"stateCodes,omitempty" json:"stateCodes,omitempty"`
	Pincodes   []string           `bson:"pincodes,omitempty" json:"pincodes,omitempty"`
	Active     bool               `bson:"active" json:"active"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MatchSpecificity returns how specifically this zone covers an address:
// ZoneMatchPincode for an exact pincode hit, ZoneMatchState for a state-code
// hit, ZoneMatchNone when the zone does not cover the address at all.
// Inactive zones never match.
func (z *ShippingZone) MatchSpecificity(address Address) int {
	if !z.Active {
		return ZoneMatchNone
	}
	if z.Country != address.Country {
		return ZoneMatchNone
	}

	for _, pincode := range z.Pincodes {
		if pincode == address.Pincode {
			return ZoneMatchPincode
		}
	}
	for _, state := range z.StateCodes {
		if state == address.State {
			return ZoneMatchState
		}
	}
	return ZoneMatchNone
}

// Matches reports whether the zone covers an address at any specificity
func (z *ShippingZone) Matches(address Address) bool {
	return z.MatchSpecificity(address) > ZoneMatchNone
}
