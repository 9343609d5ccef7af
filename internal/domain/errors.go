package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errors
var (
	ErrRouteAlreadyExists = errors.New("fulfillment route already exists for this order")
	ErrGroupNotFound      = errors.New("shipment group not found")
	ErrInvalidTransition  = errors.New("invalid shipment group status transition")
)

// ZoneNotFoundError indicates no active shipping zone covers an address.
// Fatal for the routing or courier-assignment call in question.
type ZoneNotFoundError struct {
	StoreID string
	Pincode string
	State   string
}

func (e *ZoneNotFoundError) Error() string {
	return fmt.Sprintf("no shipping zone found for pincode %s, state %s", e.Pincode, e.State)
}

// NoCourierAvailableError indicates no rule-matched and no fallback courier
// qualifies. Carries the full order profile for operator diagnostics.
type NoCourierAvailableError struct {
	ZoneName      string
	PaymentMethod PaymentMethod
	Weight        float64
	OrderValue    float64
}

func (e *NoCourierAvailableError) Error() string {
	return fmt.Sprintf("no courier available for zone %s (paymentMethod=%s, weight=%.2f, orderValue=%.2f)",
		e.ZoneName, e.PaymentMethod, e.Weight, e.OrderValue)
}

// RoutingError aggregates all per-item failures from one routing attempt.
// Routing is all-or-nothing: a single unroutable item fails the whole order.
type RoutingError struct {
	OrderID    string
	ItemErrors []string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing failed for order %s: %s", e.OrderID, strings.Join(e.ItemErrors, "; "))
}

// IsZoneNotFound reports whether err is a ZoneNotFoundError
func IsZoneNotFound(err error) bool {
	var target *ZoneNotFoundError
	return errors.As(err, &target)
}

// IsNoCourierAvailable reports whether err is a NoCourierAvailableError
func IsNoCourierAvailable(err error) bool {
	var target *NoCourierAvailableError
	return errors.As(err, &target)
}
