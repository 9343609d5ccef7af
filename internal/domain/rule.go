package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CourierRule binds a zone and payment/weight/value profile to a courier
// with a priority. Lower priority numbers win. Admin-managed, read-only to
// the routing engine.
type CourierRule struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	RuleID        string             `bson:"ruleId" json:"ruleId"`
	StoreID       string             `bson:"storeId" json:"storeId"`
	ZoneID        string             `bson:"zoneId" json:"zoneId"`
	CourierID     string             `bson:"courierId" json:"courierId"`
	PaymentMethod PaymentMethod      `bson:"paymentMethod" json:"paymentMethod"` // prepaid, cod or both
	MinWeight     float64            `bson:"minWeight,omitempty" json:"minWeight,omitempty"`
	MaxWeight     float64            `bson:"maxWeight,omitempty" json:"maxWeight,omitempty"` // 0 means unbounded
	MinOrderValue float64            `bson:"minOrderValue,omitempty" json:"minOrderValue,omitempty"`
	MaxOrderValue float64            `bson:"maxOrderValue,omitempty" json:"maxOrderValue,omitempty"` // 0 means unbounded
	Priority      int                `bson:"priority" json:"priority"`
	Active        bool               `bson:"active" json:"active"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Matches reports whether the rule applies to an order profile. Weight and
// order-value bounds are half-open: the lower bound is inclusive, the upper
// bound exclusive. An unset (zero) upper bound is unbounded.
func (r *CourierRule) Matches(paymentMethod PaymentMethod, weight, orderValue float64) bool {
	if !r.Active {
		return false
	}

	normalized := paymentMethod.Normalize()
	if r.PaymentMethod != PaymentBoth && r.PaymentMethod != normalized {
		return false
	}

	if weight < r.MinWeight {
		return false
	}
	if r.MaxWeight > 0 && weight >= r.MaxWeight {
		return false
	}

	if orderValue < r.MinOrderValue {
		return false
	}
	if r.MaxOrderValue > 0 && orderValue >= r.MaxOrderValue {
		return false
	}

	return true
}
