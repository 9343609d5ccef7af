package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultOriginPriority is assumed when an origin has no admin-assigned
// priority. Lower numbers are better.
const DefaultOriginPriority = 999

// SupplierOrigin is a physical warehouse owned by a supplier
type SupplierOrigin struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OriginID          string             `bson:"originId" json:"originId"`
	StoreID           string             `bson:"storeId" json:"storeId"`
	SupplierID        string             `bson:"supplierId" json:"supplierId"`
	Name              string             `bson:"name" json:"name"`
	Address           Address            `bson:"address" json:"address"`
	Priority          int                `bson:"priority,omitempty" json:"priority,omitempty"` // 0 means unset
	SupportedCouriers []string           `bson:"supportedCouriers,omitempty" json:"supportedCouriers,omitempty"`
	Active            bool               `bson:"active" json:"active"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EffectivePriority returns the admin-assigned priority, or the default
// when none is set
func (o *SupplierOrigin) EffectivePriority() int {
	if o.Priority <= 0 {
		return DefaultOriginPriority
	}
	return o.Priority
}

// OriginInventory is the point-in-time stock of one variant at one origin.
// Owned by an external system of record; the engine reads but never locks it.
type OriginInventory struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OriginID       string             `bson:"originId" json:"originId"`
	VariantID      string             `bson:"variantId" json:"variantId"`
	SupplierID     string             `bson:"supplierId" json:"supplierId"`
	AvailableStock int                `bson:"availableStock" json:"availableStock"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CanFulfill reports whether the origin has enough stock for a quantity
func (i *OriginInventory) CanFulfill(quantity int) bool {
	return i.AvailableStock >= quantity
}
