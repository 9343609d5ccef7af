package domain

import "time"

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	EventType() string
	OccurredAt() time.Time
}

// OriginSelectedEvent is published when the scorer picks an origin for a
// line item
type OriginSelectedEvent struct {
	OrderID      string    `json:"orderId"`
	VariantID    string    `json:"variantId"`
	OriginID     string    `json:"originId"`
	Score        float64   `json:"score"`
	Distance     float64   `json:"distance"`
	ShippingCost float64   `json:"shippingCost"`
	SelectedAt   time.Time `json:"selectedAt"`
}

func (e *OriginSelectedEvent) EventType() string     { return "marketplace.fulfillment.origin-selected" }
func (e *OriginSelectedEvent) OccurredAt() time.Time { return e.SelectedAt }

// OrderRoutedEvent is published when a full order is routed successfully
type OrderRoutedEvent struct {
	OrderID    string    `json:"orderId"`
	RouteID    string    `json:"routeId"`
	GroupCount int       `json:"groupCount"`
	OriginIDs  []string  `json:"originIds"`
	TotalCost  float64   `json:"totalCost"`
	RoutedAt   time.Time `json:"routedAt"`
}

func (e *OrderRoutedEvent) EventType() string     { return "marketplace.fulfillment.order-routed" }
func (e *OrderRoutedEvent) OccurredAt() time.Time { return e.RoutedAt }

// RoutingFailedEvent is published when routing fails for one or more items
type RoutingFailedEvent struct {
	OrderID  string    `json:"orderId"`
	Reasons  []string  `json:"reasons"`
	FailedAt time.Time `json:"failedAt"`
}

func (e *RoutingFailedEvent) EventType() string     { return "marketplace.fulfillment.routing-failed" }
func (e *RoutingFailedEvent) OccurredAt() time.Time { return e.FailedAt }

// CourierAssignedEvent is published when a courier decision is frozen
type CourierAssignedEvent struct {
	OrderID     string    `json:"orderId"`
	CourierID   string    `json:"courierId"`
	CourierCode string    `json:"courierCode"`
	Zone        string    `json:"zone"`
	Reason      string    `json:"reason"`
	Fallback    bool      `json:"fallback"`
	AssignedAt  time.Time `json:"assignedAt"`
}

func (e *CourierAssignedEvent) EventType() string     { return "marketplace.courier.assigned" }
func (e *CourierAssignedEvent) OccurredAt() time.Time { return e.AssignedAt }

// CourierReassignedEvent is published when an explicit reassignment
// supersedes a frozen courier decision
type CourierReassignedEvent struct {
	OrderID         string    `json:"orderId"`
	GroupID         string    `json:"groupId"`
	PrevCourierCode string    `json:"prevCourierCode"`
	CourierCode     string    `json:"courierCode"`
	Reason          string    `json:"reason"`
	ReassignedAt    time.Time `json:"reassignedAt"`
}

func (e *CourierReassignedEvent) EventType() string     { return "marketplace.courier.reassigned" }
func (e *CourierReassignedEvent) OccurredAt() time.Time { return e.ReassignedAt }

// GroupStatusChangedEvent is published when a shipment group transitions
// status (shipped, delivered)
type GroupStatusChangedEvent struct {
	OrderID   string    `json:"orderId"`
	GroupID   string    `json:"groupId"`
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
}

func (e *GroupStatusChangedEvent) EventType() string {
	if e.Status == string(ShipmentStatusDelivered) {
		return "marketplace.shipment.group-delivered"
	}
	return "marketplace.shipment.group-shipped"
}
func (e *GroupStatusChangedEvent) OccurredAt() time.Time { return e.ChangedAt }
