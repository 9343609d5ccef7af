package cloudevents

import (
	"time"
)

// EventType constants for fulfillment domain events
const (
	// Fulfillment events
	OriginSelected   = "marketplace.fulfillment.origin-selected"
	OrderRouted      = "marketplace.fulfillment.order-routed"
	RoutingFailed    = "marketplace.fulfillment.routing-failed"

	// Courier events
	CourierAssigned   = "marketplace.courier.assigned"
	CourierReassigned = "marketplace.courier.reassigned"

	// Shipment events
	GroupShipped   = "marketplace.shipment.group-shipped"
	GroupDelivered = "marketplace.shipment.group-delivered"
)

// Source constants for event sources
const (
	SourceFulfillment = "/marketplace/fulfillment-service"
)

// CloudEvent represents a CloudEvents v1.0 compliant event
type CloudEvent struct {
	SpecVersion     string                 `json:"specversion"`
	Type            string                 `json:"type"`
	Source          string                 `json:"source"`
	Subject         string                 `json:"subject,omitempty"`
	ID              string                 `json:"id"`
	Time            time.Time              `json:"time"`
	DataContentType string                 `json:"datacontenttype"`
	Data            interface{}            `json:"data"`
	Extensions      map[string]interface{} `json:"-"`

	// Marketplace-specific extensions
	CorrelationID string `json:"mpcorrelationid,omitempty"`
	StoreID       string `json:"mpstoreid,omitempty"`
	OrderID       string `json:"mporderid,omitempty"`

	// W3C Trace Context
	TraceParent string `json:"traceparent,omitempty"`
	TraceState  string `json:"tracestate,omitempty"`
}

// OriginSelectedData represents the data payload for OriginSelected events
type OriginSelectedData struct {
	OrderID      string  `json:"orderId"`
	ItemID       string  `json:"itemId"`
	OriginID     string  `json:"originId"`
	Score        float64 `json:"score"`
	Distance     float64 `json:"distance"`
	ShippingCost float64 `json:"shippingCost"`
}

// OrderRoutedData represents the data payload for OrderRouted events
type OrderRoutedData struct {
	OrderID    string   `json:"orderId"`
	GroupCount int      `json:"groupCount"`
	OriginIDs  []string `json:"originIds"`
	TotalCost  float64  `json:"totalShippingCost"`
}

// RoutingFailedData represents the data payload for RoutingFailed events
type RoutingFailedData struct {
	OrderID string   `json:"orderId"`
	Reasons []string `json:"reasons"`
}

// CourierAssignedData represents the data payload for CourierAssigned events
type CourierAssignedData struct {
	OrderID     string `json:"orderId"`
	CourierID   string `json:"courierId"`
	CourierCode string `json:"courierCode"`
	Zone        string `json:"zone"`
	Reason      string `json:"reason"`
	Fallback    bool   `json:"fallback"`
}

// CourierReassignedData represents the data payload for CourierReassigned events
type CourierReassignedData struct {
	OrderID         string `json:"orderId"`
	GroupID         string `json:"groupId"`
	PrevCourierCode string `json:"previousCourierCode"`
	CourierCode     string `json:"courierCode"`
	Reason          string `json:"reason"`
}

// GroupStatusData represents the data payload for shipment group status events
type GroupStatusData struct {
	OrderID string `json:"orderId"`
	GroupID string `json:"groupId"`
	Status  string `json:"status"`
}
