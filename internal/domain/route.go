package domain

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShipmentStatus represents the status of a shipment group
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusShipped   ShipmentStatus = "shipped"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

// CourierSnapshot is the frozen courier decision for an order or shipment
// group. Built once, never mutated; a reassignment creates a brand-new
// snapshot rather than editing fields in place.
type CourierSnapshot struct {
	CourierID   string    `bson:"courierId" json:"courierId"`
	CourierName string    `bson:"courierName" json:"courierName"`
	CourierCode string    `bson:"courierCode" json:"courierCode"`
	RuleID      string    `bson:"ruleId,omitempty" json:"ruleId,omitempty"` // empty for fallback assignments
	Fallback    bool      `bson:"fallback" json:"fallback"`
	Reason      string    `bson:"reason" json:"reason"`
	AssignedAt  time.Time `bson:"assignedAt" json:"assignedAt"`
}

// NewRuleSnapshot builds the frozen decision for a rule-matched courier
func NewRuleSnapshot(courier *Courier, rule *CourierRule) CourierSnapshot {
	return CourierSnapshot{
		CourierID:   courier.CourierID,
		CourierName: courier.Name,
		CourierCode: courier.Code,
		RuleID:      rule.RuleID,
		Fallback:    false,
		Reason:      fmt.Sprintf("Rule priority %d matched for courier %s", rule.Priority, courier.Code),
		AssignedAt:  time.Now().UTC(),
	}
}

// NewFallbackSnapshot builds the frozen decision for a zone-default courier
// used when no explicit rule matched
func NewFallbackSnapshot(courier *Courier, zoneName string) CourierSnapshot {
	return CourierSnapshot{
		CourierID:   courier.CourierID,
		CourierName: courier.Name,
		CourierCode: courier.Code,
		Fallback:    true,
		Reason:      fmt.Sprintf("Default courier for zone %s", zoneName),
		AssignedAt:  time.Now().UTC(),
	}
}

// NewManualSnapshot builds the frozen decision for an explicit admin
// reassignment outside rule matching
func NewManualSnapshot(courier *Courier, reason string) CourierSnapshot {
	if reason == "" {
		reason = fmt.Sprintf("Manual reassignment to courier %s", courier.Code)
	}
	return CourierSnapshot{
		CourierID:   courier.CourierID,
		CourierName: courier.Name,
		CourierCode: courier.Code,
		Fallback:    false,
		Reason:      reason,
		AssignedAt:  time.Now().UTC(),
	}
}

// FulfillmentRouteItem is the frozen origin and courier decision for one
// line item. Created once per order, immutable.
type FulfillmentRouteItem struct {
	VariantID     string  `bson:"variantId" json:"variantId"`
	Quantity      int     `bson:"quantity" json:"quantity"`
	Weight        float64 `bson:"weight,omitempty" json:"weight,omitempty"`
	SupplierID    string  `bson:"supplierId" json:"supplierId"`
	OriginID      string  `bson:"originId" json:"originId"`
	OriginAddress Address `bson:"originAddress" json:"originAddress"`
	CourierID     string  `bson:"courierId,omitempty" json:"courierId,omitempty"`
	ZoneID        string  `bson:"zoneId" json:"zoneId"`
	ShippingCost  float64 `bson:"shippingCost" json:"shippingCost"`
	Score         float64 `bson:"score" json:"score"`
}

// ShipmentGroup holds the items routed to the same origin, shipped together
// under one courier. The routing fields are frozen at creation; only the
// shipment status transitions afterward.
type ShipmentGroup struct {
	GroupID      string                 `bson:"groupId" json:"groupId"`
	OriginID     string                 `bson:"originId" json:"originId"`
	SupplierID   string                 `bson:"supplierId" json:"supplierId"`
	Items        []FulfillmentRouteItem `bson:"items" json:"items"`
	ShippingCost float64                `bson:"shippingCost" json:"shippingCost"`
	Courier      CourierSnapshot        `bson:"courier" json:"courier"`
	Status       ShipmentStatus         `bson:"status" json:"status"`
	ShippedAt    *time.Time             `bson:"shippedAt,omitempty" json:"shippedAt,omitempty"`
	DeliveredAt  *time.Time             `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
}

// TotalWeight returns the summed weight of the group's items
func (g *ShipmentGroup) TotalWeight() float64 {
	total := 0.0
	for _, item := range g.Items {
		total += item.Weight
	}
	return total
}

// FulfillmentRoute is the aggregate root for one order's frozen routing
// decision. Persisted once at order time; never recomputed. Courier
// reassignment appends a new snapshot, leaving prior decisions in the
// history for auditability.
type FulfillmentRoute struct {
	ID              primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	RouteID         string                 `bson:"routeId" json:"routeId"`
	OrderID         string                 `bson:"orderId" json:"orderId"`
	StoreID         string                 `bson:"storeId" json:"storeId"`
	DeliveryAddress Address                `bson:"deliveryAddress" json:"deliveryAddress"`
	PaymentMethod   PaymentMethod          `bson:"paymentMethod" json:"paymentMethod"`
	OrderValue      float64                `bson:"orderValue" json:"orderValue"`
	Items           []FulfillmentRouteItem `bson:"items" json:"items"`
	Groups          []ShipmentGroup        `bson:"groups" json:"groups"`
	TotalShipping   float64                `bson:"totalShipping" json:"totalShipping"`
	CourierHistory  []CourierSnapshot      `bson:"courierHistory,omitempty" json:"courierHistory,omitempty"`
	CreatedAt       time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time              `bson:"updatedAt" json:"updatedAt"`
	DomainEvents    []DomainEvent          `bson:"-" json:"-"`
}

// NewFulfillmentRoute creates the frozen route aggregate from resolved
// items and shipment groups
func NewFulfillmentRoute(routeID, orderID, storeID string, deliveryAddress Address, paymentMethod PaymentMethod, orderValue float64, items []FulfillmentRouteItem, groups []ShipmentGroup) *FulfillmentRoute {
	now := time.Now().UTC()

	total := 0.0
	originIDs := make([]string, 0, len(groups))
	for _, g := range groups {
		total += g.ShippingCost
		originIDs = append(originIDs, g.OriginID)
	}

	route := &FulfillmentRoute{
		RouteID:         routeID,
		OrderID:         orderID,
		StoreID:         storeID,
		DeliveryAddress: deliveryAddress,
		PaymentMethod:   paymentMethod,
		OrderValue:      orderValue,
		Items:           items,
		Groups:          groups,
		TotalShipping:   total,
		CreatedAt:       now,
		UpdatedAt:       now,
		DomainEvents:    make([]DomainEvent, 0),
	}

	route.AddDomainEvent(&OrderRoutedEvent{
		OrderID:    orderID,
		RouteID:    routeID,
		GroupCount: len(groups),
		OriginIDs:  originIDs,
		TotalCost:  total,
		RoutedAt:   now,
	})

	return route
}

// FindGroup returns the shipment group with the given id, or nil
func (r *FulfillmentRoute) FindGroup(groupID string) *ShipmentGroup {
	for i := range r.Groups {
		if r.Groups[i].GroupID == groupID {
			return &r.Groups[i]
		}
	}
	return nil
}

// ReassignCourier supersedes the courier decision on one shipment group
// with a new snapshot. The previous snapshot is appended to the history;
// the frozen routing fields (origin, items, costs) are untouched.
func (r *FulfillmentRoute) ReassignCourier(groupID string, snapshot CourierSnapshot, reason string) error {
	group := r.FindGroup(groupID)
	if group == nil {
		return ErrGroupNotFound
	}

	previous := group.Courier
	r.CourierHistory = append(r.CourierHistory, previous)
	group.Courier = snapshot
	r.UpdatedAt = time.Now().UTC()

	r.AddDomainEvent(&CourierReassignedEvent{
		OrderID:         r.OrderID,
		GroupID:         groupID,
		PrevCourierCode: previous.CourierCode,
		CourierCode:     snapshot.CourierCode,
		Reason:          reason,
		ReassignedAt:    r.UpdatedAt,
	})

	return nil
}

// MarkGroupShipped transitions a shipment group from pending to shipped
func (r *FulfillmentRoute) MarkGroupShipped(groupID string) error {
	group := r.FindGroup(groupID)
	if group == nil {
		return ErrGroupNotFound
	}
	if group.Status != ShipmentStatusPending {
		return ErrInvalidTransition
	}

	now := time.Now().UTC()
	group.Status = ShipmentStatusShipped
	group.ShippedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(&GroupStatusChangedEvent{
		OrderID:   r.OrderID,
		GroupID:   groupID,
		Status:    string(ShipmentStatusShipped),
		ChangedAt: now,
	})

	return nil
}

// MarkGroupDelivered transitions a shipment group from shipped to delivered
func (r *FulfillmentRoute) MarkGroupDelivered(groupID string) error {
	group := r.FindGroup(groupID)
	if group == nil {
		return ErrGroupNotFound
	}
	if group.Status != ShipmentStatusShipped {
		return ErrInvalidTransition
	}

	now := time.Now().UTC()
	group.Status = ShipmentStatusDelivered
	group.DeliveredAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(&GroupStatusChangedEvent{
		OrderID:   r.OrderID,
		GroupID:   groupID,
		Status:    string(ShipmentStatusDelivered),
		ChangedAt: now,
	})

	return nil
}

// AddDomainEvent adds a domain event
func (r *FulfillmentRoute) AddDomainEvent(event DomainEvent) {
	r.DomainEvents = append(r.DomainEvents, event)
}

// ClearDomainEvents clears all domain events
func (r *FulfillmentRoute) ClearDomainEvents() {
	r.DomainEvents = make([]DomainEvent, 0)
}

// GetDomainEvents returns all domain events
func (r *FulfillmentRoute) GetDomainEvents() []DomainEvent {
	return r.DomainEvents
}
