package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestEventTypes tests the event type identifiers
func TestEventTypes(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name     string
		event    DomainEvent
		expected string
	}{
		{
			name:     "Origin selected",
			event:    &OriginSelectedEvent{SelectedAt: now},
			expected: "marketplace.fulfillment.origin-selected",
		},
		{
			name:     "Order routed",
			event:    &OrderRoutedEvent{RoutedAt: now},
			expected: "marketplace.fulfillment.order-routed",
		},
		{
			name:     "Routing failed",
			event:    &RoutingFailedEvent{FailedAt: now},
			expected: "marketplace.fulfillment.routing-failed",
		},
		{
			name:     "Courier assigned",
			event:    &CourierAssignedEvent{AssignedAt: now},
			expected: "marketplace.courier.assigned",
		},
		{
			name:     "Courier reassigned",
			event:    &CourierReassignedEvent{ReassignedAt: now},
			expected: "marketplace.courier.reassigned",
		},
		{
			name:     "Group shipped",
			event:    &GroupStatusChangedEvent{Status: string(ShipmentStatusShipped), ChangedAt: now},
			expected: "marketplace.shipment.group-shipped",
		},
		{
			name:     "Group delivered",
			event:    &GroupStatusChangedEvent{Status: string(ShipmentStatusDelivered), ChangedAt: now},
			expected: "marketplace.shipment.group-delivered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.EventType())
			assert.Equal(t, now, tt.event.OccurredAt())
		})
	}
}
