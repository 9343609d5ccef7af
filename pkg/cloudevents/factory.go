package cloudevents

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventFactory creates CloudEvents for fulfillment domain events
type EventFactory struct {
	source string
}

// NewEventFactory creates a new EventFactory for a specific source
func NewEventFactory(source string) *EventFactory {
	return &EventFactory{source: source}
}

// CreateEvent creates a new CloudEvent with the given parameters
func (f *EventFactory) CreateEvent(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
) *CloudEvent {
	event := &CloudEvent{
		SpecVersion:     "1.0",
		Type:            eventType,
		Source:          f.source,
		Subject:         subject,
		ID:              uuid.New().String(),
		Time:            time.Now().UTC(),
		DataContentType: "application/json",
		Data:            data,
		Extensions:      make(map[string]interface{}),
	}

	return event
}

// CreateEventWithCorrelation creates an event with correlation tracking
func (f *EventFactory) CreateEventWithCorrelation(
	ctx context.Context,
	eventType string,
	subject string,
	data interface{},
	correlationID string,
	orderID string,
) *CloudEvent {
	event := f.CreateEvent(ctx, eventType, subject, data)
	event.CorrelationID = correlationID
	event.OrderID = orderID
	return event
}

// CreateOriginSelectedEvent creates an OriginSelected event
func (f *EventFactory) CreateOriginSelectedEvent(
	ctx context.Context,
	orderID string,
	itemID string,
	originID string,
	score float64,
	distance float64,
	shippingCost float64,
) *CloudEvent {
	data := OriginSelectedData{
		OrderID:      orderID,
		ItemID:       itemID,
		OriginID:     originID,
		Score:        score,
		Distance:     distance,
		ShippingCost: shippingCost,
	}
	event := f.CreateEvent(ctx, OriginSelected, "order/"+orderID, data)
	event.OrderID = orderID
	return event
}

// CreateOrderRoutedEvent creates an OrderRouted event
func (f *EventFactory) CreateOrderRoutedEvent(
	ctx context.Context,
	orderID string,
	groupCount int,
	originIDs []string,
	totalCost float64,
) *CloudEvent {
	data := OrderRoutedData{
		OrderID:    orderID,
		GroupCount: groupCount,
		OriginIDs:  originIDs,
		TotalCost:  totalCost,
	}
	event := f.CreateEvent(ctx, OrderRouted, "order/"+orderID, data)
	event.OrderID = orderID
	return event
}

// CreateRoutingFailedEvent creates a RoutingFailed event
func (f *EventFactory) CreateRoutingFailedEvent(
	ctx context.Context,
	orderID string,
	reasons []string,
) *CloudEvent {
	data := RoutingFailedData{
		OrderID: orderID,
		Reasons: reasons,
	}
	event := f.CreateEvent(ctx, RoutingFailed, "order/"+orderID, data)
	event.OrderID = orderID
	return event
}

// CreateCourierAssignedEvent creates a CourierAssigned event
func (f *EventFactory) CreateCourierAssignedEvent(
	ctx context.Context,
	orderID string,
	courierID string,
	courierCode string,
	zone string,
	reason string,
	fallback bool,
) *CloudEvent {
	data := CourierAssignedData{
		OrderID:     orderID,
		CourierID:   courierID,
		CourierCode: courierCode,
		Zone:        zone,
		Reason:      reason,
		Fallback:    fallback,
	}
	event := f.CreateEvent(ctx, CourierAssigned, "order/"+orderID, data)
	event.OrderID = orderID
	return event
}

// CreateCourierReassignedEvent creates a CourierReassigned event
func (f *EventFactory) CreateCourierReassignedEvent(
	ctx context.Context,
	orderID string,
	groupID string,
	prevCourierCode string,
	courierCode string,
	reason string,
) *CloudEvent {
	data := CourierReassignedData{
		OrderID:         orderID,
		GroupID:         groupID,
		PrevCourierCode: prevCourierCode,
		CourierCode:     courierCode,
		Reason:          reason,
	}
	event := f.CreateEvent(ctx, CourierReassigned, "order/"+orderID, data)
	event.OrderID = orderID
	return event
}

// CreateGroupStatusEvent creates a shipment group status event
func (f *EventFactory) CreateGroupStatusEvent(
	ctx context.Context,
	eventType string,
	orderID string,
	groupID string,
	status string,
) *CloudEvent {
	data := GroupStatusData{
		OrderID: orderID,
		GroupID: groupID,
		Status:  status,
	}
	event := f.CreateEvent(ctx, eventType, "order/"+orderID, data)
	event.OrderID = orderID
	return event
}
