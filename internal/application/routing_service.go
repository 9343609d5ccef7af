package application

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
	"github.com/marketplace-platform/fulfillment-service/pkg/cloudevents"
	"github.com/marketplace-platform/fulfillment-service/pkg/errors"
	"github.com/marketplace-platform/fulfillment-service/pkg/kafka"
	"github.com/marketplace-platform/fulfillment-service/pkg/logging"
	"github.com/marketplace-platform/fulfillment-service/pkg/metrics"
)

// RoutingApplicationService handles fulfillment routing use cases
type RoutingApplicationService struct {
	routes       domain.RouteRepository
	couriers     domain.CourierRepository
	router       *FulfillmentRouter
	assigner     *CourierAssigner
	producer     *kafka.InstrumentedProducer
	eventFactory *cloudevents.EventFactory
	logger       *logging.Logger
	metrics      *metrics.Metrics
}

// NewRoutingApplicationService creates a new RoutingApplicationService
func NewRoutingApplicationService(
	routes domain.RouteRepository,
	couriers domain.CourierRepository,
	router *FulfillmentRouter,
	assigner *CourierAssigner,
	producer *kafka.InstrumentedProducer,
	eventFactory *cloudevents.EventFactory,
	logger *logging.Logger,
	m *metrics.Metrics,
) *RoutingApplicationService {
	return &RoutingApplicationService{
		routes:       routes,
		couriers:     couriers,
		router:       router,
		assigner:     assigner,
		producer:     producer,
		eventFactory: eventFactory,
		logger:       logger,
		metrics:      m,
	}
}

// RouteFulfillment routes a full cart to origins and couriers and freezes
// the decision. A second routing attempt for the same order is rejected;
// the frozen route is never recomputed.
func (s *RoutingApplicationService) RouteFulfillment(ctx context.Context, cmd RouteFulfillmentCommand) (*RouteDTO, error) {
	start := time.Now()

	existing, err := s.routes.FindByOrderID(ctx, cmd.OrderID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to check existing route", "orderId", cmd.OrderID)
		return nil, fmt.Errorf("failed to check existing route: %w", err)
	}
	if existing != nil {
		return nil, errors.ErrRouteImmutable(cmd.OrderID)
	}

	result, err := s.router.Route(ctx, cmd)
	if err != nil {
		s.recordRoutingFailure(ctx, cmd.OrderID, err)
		s.metrics.RecordOrderRouted("failed", time.Since(start))
		return nil, s.mapRoutingError(cmd.OrderID, err)
	}

	routeID := uuid.New().String()
	route := domain.NewFulfillmentRoute(routeID, cmd.OrderID, cmd.StoreID, cmd.DeliveryAddress, cmd.PaymentMethod, cmd.OrderValue, result.Items, result.Groups)

	for _, item := range result.Items {
		route.AddDomainEvent(&domain.OriginSelectedEvent{
			OrderID:      cmd.OrderID,
			VariantID:    item.VariantID,
			OriginID:     item.OriginID,
			Score:        item.Score,
			ShippingCost: item.ShippingCost,
			SelectedAt:   route.CreatedAt,
		})
	}
	for _, group := range result.Groups {
		route.AddDomainEvent(&domain.CourierAssignedEvent{
			OrderID:     cmd.OrderID,
			CourierID:   group.Courier.CourierID,
			CourierCode: group.Courier.CourierCode,
			Zone:        groupZoneID(group),
			Reason:      group.Courier.Reason,
			Fallback:    group.Courier.Fallback,
			AssignedAt:  group.Courier.AssignedAt,
		})
	}

	if err := s.routes.Save(ctx, route); err != nil {
		if stderrors.Is(err, domain.ErrRouteAlreadyExists) {
			return nil, errors.ErrRouteImmutable(cmd.OrderID)
		}
		s.logger.WithError(err).Error("Failed to save fulfillment route", "orderId", cmd.OrderID)
		return nil, fmt.Errorf("failed to save fulfillment route: %w", err)
	}

	s.metrics.RecordOrderRouted("success", time.Since(start))
	s.metrics.RecordOriginsEvaluated(result.OriginsEvaluated)
	s.metrics.RecordShipmentGroups(len(result.Groups))
	for _, group := range result.Groups {
		outcome := "rule"
		if group.Courier.Fallback {
			outcome = "fallback"
			s.metrics.RecordCourierFallback(groupZoneID(group))
		}
		s.metrics.RecordCourierAssignment(group.Courier.CourierCode, groupZoneID(group), outcome)
	}

	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "fulfillment.routed",
		EntityType: "route",
		EntityID:   routeID,
		Action:     "routed",
		RelatedIDs: map[string]string{
			"orderId": cmd.OrderID,
			"storeId": cmd.StoreID,
		},
	})

	return ToRouteDTO(route), nil
}

// AssignCourier is the narrow courier-only decision, used by order creation
// and by manual admin flows. No route is persisted; an audit event is
// published fire-and-forget.
func (s *RoutingApplicationService) AssignCourier(ctx context.Context, cmd AssignCourierCommand) (*CourierAssignmentDTO, error) {
	assignment, err := s.assigner.Assign(ctx, cmd)
	if err != nil {
		var zoneErr *domain.ZoneNotFoundError
		if stderrors.As(err, &zoneErr) {
			return nil, errors.ErrZoneNotFound(zoneErr.Pincode, zoneErr.State)
		}
		var courierErr *domain.NoCourierAvailableError
		if stderrors.As(err, &courierErr) {
			s.metrics.RecordCourierAssignment("none", cmd.ZoneID, "unavailable")
			return nil, errors.ErrNoCourierAvailable(courierErr.ZoneName).
				WithDetail("paymentMethod", string(courierErr.PaymentMethod)).
				WithDetail("weight", fmt.Sprintf("%.2f", courierErr.Weight)).
				WithDetail("orderValue", fmt.Sprintf("%.2f", courierErr.OrderValue))
		}
		s.logger.WithError(err).Error("Courier assignment failed", "zoneId", cmd.ZoneID)
		return nil, fmt.Errorf("courier assignment failed: %w", err)
	}

	snapshot := assignment.Snapshot
	outcome := "rule"
	if snapshot.Fallback {
		outcome = "fallback"
		s.metrics.RecordCourierFallback(cmd.ZoneID)
	}
	s.metrics.RecordCourierAssignment(snapshot.CourierCode, cmd.ZoneID, outcome)

	// Audit is fire-and-forget: a publish failure never fails the decision
	event := s.eventFactory.CreateCourierAssignedEvent(ctx, cmd.OrderID, snapshot.CourierID, snapshot.CourierCode, cmd.ZoneID, snapshot.Reason, snapshot.Fallback)
	s.producer.PublishEventAsync(ctx, kafka.Topics.CourierEvents, event, nil)

	return &CourierAssignmentDTO{
		Snapshot: ToCourierSnapshotDTO(snapshot),
		ZoneID:   assignment.Zone.ZoneID,
		ZoneName: assignment.Zone.Name,
	}, nil
}

// ReassignCourier supersedes the frozen courier decision on one shipment
// group with a new snapshot. The previous snapshot is retained in the
// route's history.
func (s *RoutingApplicationService) ReassignCourier(ctx context.Context, cmd ReassignCourierCommand) (*RouteDTO, error) {
	route, err := s.routes.FindByOrderID(ctx, cmd.OrderID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load route", "orderId", cmd.OrderID)
		return nil, fmt.Errorf("failed to load route: %w", err)
	}
	if route == nil {
		return nil, errors.ErrNotFoundWithID("fulfillment route", cmd.OrderID)
	}

	group := route.FindGroup(cmd.GroupID)
	if group == nil {
		return nil, errors.ErrNotFoundWithID("shipment group", cmd.GroupID)
	}

	snapshot, err := s.resolveReassignment(ctx, route, group, cmd)
	if err != nil {
		return nil, err
	}

	if err := route.ReassignCourier(cmd.GroupID, *snapshot, cmd.Reason); err != nil {
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.routes.Update(ctx, route); err != nil {
		s.logger.WithError(err).Error("Failed to save reassignment", "orderId", cmd.OrderID)
		return nil, fmt.Errorf("failed to save reassignment: %w", err)
	}

	s.metrics.RecordCourierReassignment(snapshot.CourierCode)
	s.logger.LogBusinessEvent(ctx, logging.BusinessEvent{
		EventType:  "courier.reassigned",
		EntityType: "route",
		EntityID:   route.RouteID,
		Action:     "reassigned",
		RelatedIDs: map[string]string{
			"orderId": cmd.OrderID,
			"groupId": cmd.GroupID,
			"courier": snapshot.CourierCode,
		},
	})

	return ToRouteDTO(route), nil
}

// resolveReassignment builds the replacement snapshot: an explicit courier
// is validated against the group's frozen profile, otherwise rule matching
// runs again for the group's zone
func (s *RoutingApplicationService) resolveReassignment(ctx context.Context, route *domain.FulfillmentRoute, group *domain.ShipmentGroup, cmd ReassignCourierCommand) (*domain.CourierSnapshot, error) {
	zoneID := groupZoneID(*group)

	if cmd.CourierID != "" {
		courier, err := s.couriers.FindByCourierID(ctx, route.StoreID, cmd.CourierID)
		if err != nil {
			return nil, fmt.Errorf("failed to load courier %s: %w", cmd.CourierID, err)
		}
		if courier == nil {
			return nil, errors.ErrNotFoundWithID("courier", cmd.CourierID)
		}

		result := courier.Validate(route.PaymentMethod, group.TotalWeight(), zoneID, route.DeliveryAddress.Pincode)
		if !result.Valid {
			return nil, errors.ErrValidation(result.Reason)
		}

		snapshot := domain.NewManualSnapshot(courier, cmd.Reason)
		return &snapshot, nil
	}

	assignment, err := s.assigner.Assign(ctx, AssignCourierCommand{
		StoreID:       route.StoreID,
		ZoneID:        zoneID,
		Weight:        group.TotalWeight(),
		OrderValue:    route.OrderValue,
		PaymentMethod: route.PaymentMethod,
		Pincode:       route.DeliveryAddress.Pincode,
		OrderID:       route.OrderID,
	})
	if err != nil {
		var courierErr *domain.NoCourierAvailableError
		if stderrors.As(err, &courierErr) {
			return nil, errors.ErrNoCourierAvailable(courierErr.ZoneName)
		}
		return nil, fmt.Errorf("courier reassignment failed: %w", err)
	}
	return &assignment.Snapshot, nil
}

// GetRouteByOrder retrieves the frozen route for an order
func (s *RoutingApplicationService) GetRouteByOrder(ctx context.Context, query GetRouteByOrderQuery) (*RouteDTO, error) {
	route, err := s.routes.FindByOrderID(ctx, query.OrderID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get route by order", "orderId", query.OrderID)
		return nil, fmt.Errorf("failed to get route by order: %w", err)
	}
	if route == nil {
		return nil, errors.ErrNotFoundWithID("fulfillment route", query.OrderID)
	}
	return ToRouteDTO(route), nil
}

// GetRoute retrieves a route by its id
func (s *RoutingApplicationService) GetRoute(ctx context.Context, query GetRouteQuery) (*RouteDTO, error) {
	route, err := s.routes.FindByRouteID(ctx, query.RouteID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get route", "routeId", query.RouteID)
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	if route == nil {
		return nil, errors.ErrNotFoundWithID("fulfillment route", query.RouteID)
	}
	return ToRouteDTO(route), nil
}

// GetGroups retrieves the shipment groups of a route
func (s *RoutingApplicationService) GetGroups(ctx context.Context, query GetGroupsQuery) ([]ShipmentGroupDTO, error) {
	route, err := s.routes.FindByRouteID(ctx, query.RouteID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to get route groups", "routeId", query.RouteID)
		return nil, fmt.Errorf("failed to get route groups: %w", err)
	}
	if route == nil {
		return nil, errors.ErrNotFoundWithID("fulfillment route", query.RouteID)
	}

	groups := make([]ShipmentGroupDTO, 0, len(route.Groups))
	for _, group := range route.Groups {
		groups = append(groups, ToShipmentGroupDTO(group))
	}
	return groups, nil
}

// MarkGroupShipped transitions a shipment group to shipped
func (s *RoutingApplicationService) MarkGroupShipped(ctx context.Context, cmd MarkGroupShippedCommand) (*RouteDTO, error) {
	return s.transitionGroup(ctx, cmd.OrderID, cmd.GroupID, func(route *domain.FulfillmentRoute) error {
		return route.MarkGroupShipped(cmd.GroupID)
	})
}

// MarkGroupDelivered transitions a shipment group to delivered
func (s *RoutingApplicationService) MarkGroupDelivered(ctx context.Context, cmd MarkGroupDeliveredCommand) (*RouteDTO, error) {
	return s.transitionGroup(ctx, cmd.OrderID, cmd.GroupID, func(route *domain.FulfillmentRoute) error {
		return route.MarkGroupDelivered(cmd.GroupID)
	})
}

func (s *RoutingApplicationService) transitionGroup(ctx context.Context, orderID, groupID string, transition func(*domain.FulfillmentRoute) error) (*RouteDTO, error) {
	route, err := s.routes.FindByOrderID(ctx, orderID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load route", "orderId", orderID)
		return nil, fmt.Errorf("failed to load route: %w", err)
	}
	if route == nil {
		return nil, errors.ErrNotFoundWithID("fulfillment route", orderID)
	}

	if err := transition(route); err != nil {
		if stderrors.Is(err, domain.ErrGroupNotFound) {
			return nil, errors.ErrNotFoundWithID("shipment group", groupID)
		}
		return nil, errors.ErrValidation(err.Error())
	}

	if err := s.routes.Update(ctx, route); err != nil {
		s.logger.WithError(err).Error("Failed to save group transition", "orderId", orderID, "groupId", groupID)
		return nil, fmt.Errorf("failed to save group transition: %w", err)
	}

	return ToRouteDTO(route), nil
}

// recordRoutingFailure publishes the fire-and-forget audit event for a
// failed routing attempt
func (s *RoutingApplicationService) recordRoutingFailure(ctx context.Context, orderID string, err error) {
	reasons := []string{err.Error()}
	var routingErr *domain.RoutingError
	if stderrors.As(err, &routingErr) {
		reasons = routingErr.ItemErrors
	}

	s.logger.WithError(err).Error("Routing failed", "orderId", orderID, "reasons", strings.Join(reasons, "; "))

	event := s.eventFactory.CreateRoutingFailedEvent(ctx, orderID, reasons)
	s.producer.PublishEventAsync(ctx, kafka.Topics.FulfillmentEvents, event, nil)
}

// mapRoutingError converts engine failures to API errors
func (s *RoutingApplicationService) mapRoutingError(orderID string, err error) error {
	var routingErr *domain.RoutingError
	if stderrors.As(err, &routingErr) {
		return errors.ErrRoutingFailed(orderID).WithDetail("reasons", strings.Join(routingErr.ItemErrors, "; "))
	}
	var zoneErr *domain.ZoneNotFoundError
	if stderrors.As(err, &zoneErr) {
		return errors.ErrZoneNotFound(zoneErr.Pincode, zoneErr.State)
	}
	var courierErr *domain.NoCourierAvailableError
	if stderrors.As(err, &courierErr) {
		return errors.ErrNoCourierAvailable(courierErr.ZoneName)
	}
	return errors.ErrRoutingFailed(orderID).WithDetail("reasons", err.Error())
}

// groupZoneID returns the zone resolved for a group's items
func groupZoneID(group domain.ShipmentGroup) string {
	for _, item := range group.Items {
		if item.ZoneID != "" {
			return item.ZoneID
		}
	}
	return ""
}
