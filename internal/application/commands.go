package application

import "github.com/marketplace-platform/fulfillment-service/internal/domain"

// CartItem is one line item to route
type CartItem struct {
	VariantID  string  `json:"variantId"`
	Quantity   int     `json:"quantity"`
	Weight     float64 `json:"weight"`
	SupplierID string  `json:"supplierId,omitempty"` // optional restriction
}

// RouteFulfillmentCommand routes a full cart to origins and couriers
type RouteFulfillmentCommand struct {
	OrderID         string
	StoreID         string
	CartItems       []CartItem
	DeliveryAddress domain.Address
	PaymentMethod   domain.PaymentMethod
	OrderValue      float64
}

// AssignCourierCommand is the narrow courier-only decision
type AssignCourierCommand struct {
	StoreID       string
	ZoneID        string
	Weight        float64
	OrderValue    float64
	PaymentMethod domain.PaymentMethod
	Pincode       string
	OrderID       string // optional, for audit correlation
}

// ReassignCourierCommand supersedes a frozen courier decision on one
// shipment group with a new snapshot
type ReassignCourierCommand struct {
	OrderID   string
	GroupID   string
	CourierID string // optional explicit courier; re-runs rule matching when empty
	Reason    string
}

// MarkGroupShippedCommand transitions a shipment group to shipped
type MarkGroupShippedCommand struct {
	OrderID string
	GroupID string
}

// MarkGroupDeliveredCommand transitions a shipment group to delivered
type MarkGroupDeliveredCommand struct {
	OrderID string
	GroupID string
}

// GetRouteByOrderQuery fetches the frozen route for an order
type GetRouteByOrderQuery struct {
	OrderID string
}

// GetRouteQuery fetches a route by its id
type GetRouteQuery struct {
	RouteID string
}

// GetGroupsQuery fetches the shipment groups of a route
type GetGroupsQuery struct {
	RouteID string
}
