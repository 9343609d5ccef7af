package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentMethod identifies how the buyer pays for an order
type PaymentMethod string

const (
	PaymentPrepaid    PaymentMethod = "prepaid"
	PaymentCOD        PaymentMethod = "cod"
	PaymentPartialCOD PaymentMethod = "partial_cod"
	// PaymentBoth is only valid on courier rules, meaning the rule
	// applies to prepaid and COD orders alike.
	PaymentBoth PaymentMethod = "both"
)

// Normalize collapses payment methods to the two profiles couriers care
// about: COD and partial-COD both require cash collection, everything else
// is treated as prepaid.
func (p PaymentMethod) Normalize() PaymentMethod {
	switch p {
	case PaymentCOD, PaymentPartialCOD:
		return PaymentCOD
	default:
		return PaymentPrepaid
	}
}

// Courier is a carrier usable by a store. Admin-managed, read-only to the
// routing engine.
type Courier struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CourierID           string             `bson:"courierId" json:"courierId"`
	StoreID             string             `bson:"storeId" json:"storeId"`
	Code                string             `bson:"code" json:"code"`
	Name                string             `bson:"name" json:"name"`
	SupportsCOD         bool               `bson:"supportsCod" json:"supportsCod"`
	MaxWeight           float64            `bson:"maxWeight" json:"maxWeight"` // 0 means unlimited
	ServiceableZones    []string           `bson:"serviceableZones,omitempty" json:"serviceableZones,omitempty"`
	ServiceablePincodes []string           `bson:"serviceablePincodes,omitempty" json:"serviceablePincodes,omitempty"`
	Priority            int                `bson:"priority" json:"priority"`
	Active              bool               `bson:"active" json:"active"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ValidationResult is the outcome of checking a courier against an order
// profile. Reason is set only when Valid is false.
type ValidationResult struct {
	Valid  bool
	Reason string
}

// Validate checks the courier against an order profile. Checks run in a
// fixed order and stop at the first failure: active, COD support, weight
// ceiling (0 means unlimited), zone membership, then the pincode allow-list
// when the courier declares one. Pure function, no I/O.
func (c *Courier) Validate(paymentMethod PaymentMethod, weight float64, zoneID string, pincode string) ValidationResult {
	if !c.Active {
		return ValidationResult{Valid: false, Reason: fmt.Sprintf("courier %s is not active", c.Code)}
	}

	if paymentMethod.Normalize() == PaymentCOD && !c.SupportsCOD {
		return ValidationResult{Valid: false, Reason: fmt.Sprintf("courier %s does not support COD", c.Code)}
	}

	if c.MaxWeight > 0 && weight > c.MaxWeight {
		return ValidationResult{Valid: false, Reason: fmt.Sprintf("weight %.2f exceeds courier %s max weight %.2f", weight, c.Code, c.MaxWeight)}
	}

	if !c.ServicesZone(zoneID) {
		return ValidationResult{Valid: false, Reason: fmt.Sprintf("courier %s does not service zone %s", c.Code, zoneID)}
	}

	if pincode != "" && len(c.ServiceablePincodes) > 0 && !c.ServicesPincode(pincode) {
		return ValidationResult{Valid: false, Reason: fmt.Sprintf("courier %s does not service pincode %s", c.Code, pincode)}
	}

	return ValidationResult{Valid: true}
}

// ServicesZone reports whether the courier covers a zone
func (c *Courier) ServicesZone(zoneID string) bool {
	for _, z := range c.ServiceableZones {
		if z == zoneID {
			return true
		}
	}
	return false
}

// ServicesPincode reports whether the courier covers a pincode. An empty
// allow-list means all pincodes within serviceable zones are covered.
func (c *Courier) ServicesPincode(pincode string) bool {
	if len(c.ServiceablePincodes) == 0 {
		return true
	}
	for _, p := range c.ServiceablePincodes {
		if p == pincode {
			return true
		}
	}
	return false
}
