package application

import (
	"time"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
)

// RouteDTO represents a frozen fulfillment route in responses
type RouteDTO struct {
	RouteID         string               `json:"routeId"`
	OrderID         string               `json:"orderId"`
	StoreID         string               `json:"storeId"`
	DeliveryAddress domain.Address       `json:"deliveryAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
	OrderValue      float64              `json:"orderValue"`
	Items           []RouteItemDTO       `json:"items"`
	Groups          []ShipmentGroupDTO   `json:"groups"`
	TotalShipping   float64              `json:"totalShipping"`
	CourierHistory  []CourierSnapshotDTO `json:"courierHistory,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// RouteItemDTO represents one frozen line-item decision
type RouteItemDTO struct {
	VariantID    string  `json:"variantId"`
	Quantity     int     `json:"quantity"`
	Weight       float64 `json:"weight,omitempty"`
	SupplierID   string  `json:"supplierId"`
	OriginID     string  `json:"originId"`
	CourierID    string  `json:"courierId,omitempty"`
	ZoneID       string  `json:"zoneId"`
	ShippingCost float64 `json:"shippingCost"`
	Score        float64 `json:"score"`
}

// ShipmentGroupDTO represents items routed to the same origin
type ShipmentGroupDTO struct {
	GroupID      string             `json:"groupId"`
	OriginID     string             `json:"originId"`
	SupplierID   string             `json:"supplierId"`
	Items        []RouteItemDTO     `json:"items"`
	ShippingCost float64            `json:"shippingCost"`
	Courier      CourierSnapshotDTO `json:"courier"`
	Status       string             `json:"status"`
	ShippedAt    *time.Time         `json:"shippedAt,omitempty"`
	DeliveredAt  *time.Time         `json:"deliveredAt,omitempty"`
}

// CourierAssignmentDTO is the outcome of the narrow courier-only decision
type CourierAssignmentDTO struct {
	Snapshot CourierSnapshotDTO `json:"snapshot"`
	ZoneID   string             `json:"zoneId"`
	ZoneName string             `json:"zoneName"`
}

// CourierSnapshotDTO represents a frozen courier decision
type CourierSnapshotDTO struct {
	CourierID   string    `json:"courierId"`
	CourierName string    `json:"courierName"`
	CourierCode string    `json:"courierCode"`
	RuleID      string    `json:"ruleId,omitempty"`
	Fallback    bool      `json:"fallback"`
	Reason      string    `json:"reason"`
	AssignedAt  time.Time `json:"assignedAt"`
}
