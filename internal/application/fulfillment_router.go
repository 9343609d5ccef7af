package application

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
	"github.com/marketplace-platform/fulfillment-service/pkg/logging"
)

// itemResolution is the outcome of routing one line item
type itemResolution struct {
	item    domain.FulfillmentRouteItem
	courier *domain.CourierSnapshot
	err     string
}

// FulfillmentRouter orchestrates per-item origin selection and groups the
// chosen items by origin into shipment groups. Line items are routed
// concurrently and joined before the all-or-nothing gate: if any item fails,
// the whole call fails and no partial result is exposed.
type FulfillmentRouter struct {
	origins  domain.OriginRepository
	scorer   *OriginScorer
	assigner *CourierAssigner
	logger   *logging.Logger
}

// NewFulfillmentRouter creates a new FulfillmentRouter
func NewFulfillmentRouter(
	origins domain.OriginRepository,
	scorer *OriginScorer,
	assigner *CourierAssigner,
	logger *logging.Logger,
) *FulfillmentRouter {
	return &FulfillmentRouter{
		origins:  origins,
		scorer:   scorer,
		assigner: assigner,
		logger:   logger.WithComponent("fulfillment-router"),
	}
}

// RoutingResult is a fully resolved order routing
type RoutingResult struct {
	Items            []domain.FulfillmentRouteItem
	Groups           []domain.ShipmentGroup
	OriginsEvaluated int
}

// Route resolves every cart item to an origin and courier. Returns a
// RoutingError carrying all per-item failures when any item is unroutable.
func (r *FulfillmentRouter) Route(ctx context.Context, cmd RouteFulfillmentCommand) (*RoutingResult, error) {
	if len(cmd.CartItems) == 0 {
		return nil, &domain.RoutingError{OrderID: cmd.OrderID, ItemErrors: []string{"cart has no items"}}
	}

	resolutions := make([]itemResolution, len(cmd.CartItems))
	evaluated := make([]int, len(cmd.CartItems))

	var wg sync.WaitGroup
	for i, item := range cmd.CartItems {
		wg.Add(1)
		go func(idx int, item CartItem) {
			defer wg.Done()
			resolutions[idx], evaluated[idx] = r.routeItem(ctx, cmd, item)
		}(i, item)
	}
	wg.Wait()

	totalEvaluated := 0
	for _, n := range evaluated {
		totalEvaluated += n
	}

	// All-or-nothing gate: collect every failure before deciding
	itemErrors := make([]string, 0)
	for _, res := range resolutions {
		if res.err != "" {
			itemErrors = append(itemErrors, res.err)
		}
	}
	if len(itemErrors) > 0 {
		return nil, &domain.RoutingError{OrderID: cmd.OrderID, ItemErrors: itemErrors}
	}

	groups, err := r.groupByOrigin(ctx, cmd, resolutions)
	if err != nil {
		return nil, err
	}

	items := make([]domain.FulfillmentRouteItem, 0, len(resolutions))
	for _, res := range resolutions {
		items = append(items, res.item)
	}

	return &RoutingResult{
		Items:            items,
		Groups:           groups,
		OriginsEvaluated: totalEvaluated,
	}, nil
}

// routeItem finds and scores origin candidates for one line item and picks
// the lowest score. Returns the number of origins evaluated for metrics.
func (r *FulfillmentRouter) routeItem(ctx context.Context, cmd RouteFulfillmentCommand, item CartItem) (itemResolution, int) {
	candidates, err := r.origins.FindWithStock(ctx, cmd.StoreID, item.VariantID, item.Quantity, item.SupplierID)
	if err != nil {
		return itemResolution{err: fmt.Sprintf("variant %s: failed to query origins: %v", item.VariantID, err)}, 0
	}
	if len(candidates) == 0 {
		return itemResolution{err: fmt.Sprintf("variant %s: no active origin with sufficient stock", item.VariantID)}, 0
	}

	scores := make([]*OriginScore, 0, len(candidates))
	for _, origin := range candidates {
		score, err := r.scorer.Score(ctx, origin, cmd.DeliveryAddress, cmd.StoreID, item.Weight, cmd.OrderValue, cmd.PaymentMethod)
		if err != nil {
			return itemResolution{err: fmt.Sprintf("variant %s: failed to score origin %s: %v", item.VariantID, origin.OriginID, err)}, len(candidates)
		}
		scores = append(scores, score)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score < scores[j].Score
		}
		return scores[i].Origin.OriginID < scores[j].Origin.OriginID
	})

	best := scores[0]
	resolution := itemResolution{
		item: domain.FulfillmentRouteItem{
			VariantID:     item.VariantID,
			Quantity:      item.Quantity,
			Weight:        item.Weight,
			SupplierID:    best.Origin.SupplierID,
			OriginID:      best.Origin.OriginID,
			OriginAddress: best.Origin.Address,
			ZoneID:        best.ZoneID,
			ShippingCost:  best.ShippingCost,
			Score:         best.Score,
		},
		courier: best.Courier,
	}
	if best.Courier != nil {
		resolution.item.CourierID = best.Courier.CourierID
	}

	return resolution, len(candidates)
}

// groupByOrigin groups resolved items by origin, preserving the order of
// first appearance. Each group carries the summed shipping cost of its
// items. Multi-item groups re-resolve their courier at the combined weight:
// the first item's courier is kept when the re-run picks it again,
// superseded when a heavier group needs a different carrier, and no eligible
// courier fails the whole call.
func (r *FulfillmentRouter) groupByOrigin(ctx context.Context, cmd RouteFulfillmentCommand, resolutions []itemResolution) ([]domain.ShipmentGroup, error) {
	groupIndex := make(map[string]int)
	groups := make([]domain.ShipmentGroup, 0)
	couriers := make(map[string]*domain.CourierSnapshot)

	for _, res := range resolutions {
		originID := res.item.OriginID
		idx, exists := groupIndex[originID]
		if !exists {
			idx = len(groups)
			groupIndex[originID] = idx
			groups = append(groups, domain.ShipmentGroup{
				GroupID:    uuid.New().String(),
				OriginID:   originID,
				SupplierID: res.item.SupplierID,
				Items:      make([]domain.FulfillmentRouteItem, 0, 1),
				Status:     domain.ShipmentStatusPending,
			})
			couriers[originID] = res.courier
		}

		groups[idx].Items = append(groups[idx].Items, res.item)
		groups[idx].ShippingCost += res.item.ShippingCost
	}

	for i := range groups {
		snapshot := couriers[groups[i].OriginID]
		if snapshot == nil || len(groups[i].Items) > 1 {
			resolved, err := r.resolveGroupCourier(ctx, cmd, &groups[i])
			if err != nil {
				return nil, err
			}
			if snapshot != nil && resolved.CourierID != snapshot.CourierID {
				r.logger.Warn("Group courier superseded at combined weight",
					"orderId", cmd.OrderID, "originId", groups[i].OriginID,
					"itemCourier", snapshot.CourierCode, "groupCourier", resolved.CourierCode,
					"totalWeight", groups[i].TotalWeight())
			}
			if snapshot == nil || resolved.CourierID != snapshot.CourierID {
				snapshot = resolved
			}
		}
		groups[i].Courier = *snapshot
	}

	return groups, nil
}

// resolveGroupCourier resolves the courier for a whole group at its combined
// weight, covering both items that carried no best-effort assignment from
// scoring and groups whose total weight exceeds what any single item saw
func (r *FulfillmentRouter) resolveGroupCourier(ctx context.Context, cmd RouteFulfillmentCommand, group *domain.ShipmentGroup) (*domain.CourierSnapshot, error) {
	zoneID := ""
	for _, item := range group.Items {
		if item.ZoneID != "" {
			zoneID = item.ZoneID
			break
		}
	}
	if zoneID == "" {
		return nil, &domain.RoutingError{
			OrderID:    cmd.OrderID,
			ItemErrors: []string{fmt.Sprintf("origin %s: no shipping zone resolved for delivery address", group.OriginID)},
		}
	}

	assignment, err := r.assigner.Assign(ctx, AssignCourierCommand{
		StoreID:       cmd.StoreID,
		ZoneID:        zoneID,
		Weight:        group.TotalWeight(),
		OrderValue:    cmd.OrderValue,
		PaymentMethod: cmd.PaymentMethod,
		Pincode:       cmd.DeliveryAddress.Pincode,
		OrderID:       cmd.OrderID,
	})
	if err != nil {
		return nil, err
	}
	return &assignment.Snapshot, nil
}
