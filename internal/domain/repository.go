package domain

import "context"

// ZoneRepository defines the interface for shipping zone reads
type ZoneRepository interface {
	FindActiveByStore(ctx context.Context, storeID string) ([]*ShippingZone, error)
	FindByZoneID(ctx context.Context, storeID, zoneID string) (*ShippingZone, error)
}

// CourierRepository defines the interface for courier reads
type CourierRepository interface {
	FindByCourierID(ctx context.Context, storeID, courierID string) (*Courier, error)
	FindActiveByStore(ctx context.Context, storeID string) ([]*Courier, error)
	FindActiveByZone(ctx context.Context, storeID, zoneID string) ([]*Courier, error)
}

// CourierRuleRepository defines the interface for courier rule reads
type CourierRuleRepository interface {
	FindActiveByZone(ctx context.Context, storeID, zoneID string) ([]*CourierRule, error)
}

// OriginRepository defines the interface for supplier origin and
// inventory reads. Stock is a point-in-time read, never a reservation.
type OriginRepository interface {
	FindByOriginID(ctx context.Context, storeID, originID string) (*SupplierOrigin, error)
	FindActiveByStore(ctx context.Context, storeID string) ([]*SupplierOrigin, error)
	FindWithStock(ctx context.Context, storeID, variantID string, quantity int, supplierID string) ([]*SupplierOrigin, error)
}

// RouteRepository defines the interface for fulfillment route persistence.
// Save is insert-only for new routes: the frozen decision is never
// overwritten by a second routing attempt.
type RouteRepository interface {
	Save(ctx context.Context, route *FulfillmentRoute) error
	Update(ctx context.Context, route *FulfillmentRoute) error
	FindByRouteID(ctx context.Context, routeID string) (*FulfillmentRoute, error)
	FindByOrderID(ctx context.Context, orderID string) (*FulfillmentRoute, error)
}

// RateCalculator is the pluggable external shipping-rate function
type RateCalculator interface {
	CalculateShipping(ctx context.Context, storeID string, address Address, weight, orderValue float64, paymentMethod PaymentMethod) (float64, error)
}
