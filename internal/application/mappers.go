package application

import "github.com/marketplace-platform/fulfillment-service/internal/domain"

// ToRouteDTO converts a domain FulfillmentRoute to RouteDTO
func ToRouteDTO(route *domain.FulfillmentRoute) *RouteDTO {
	if route == nil {
		return nil
	}

	items := make([]RouteItemDTO, 0, len(route.Items))
	for _, item := range route.Items {
		items = append(items, ToRouteItemDTO(item))
	}

	groups := make([]ShipmentGroupDTO, 0, len(route.Groups))
	for _, group := range route.Groups {
		groups = append(groups, ToShipmentGroupDTO(group))
	}

	history := make([]CourierSnapshotDTO, 0, len(route.CourierHistory))
	for _, snapshot := range route.CourierHistory {
		history = append(history, ToCourierSnapshotDTO(snapshot))
	}

	return &RouteDTO{
		RouteID:         route.RouteID,
		OrderID:         route.OrderID,
		StoreID:         route.StoreID,
		DeliveryAddress: route.DeliveryAddress,
		PaymentMethod:   string(route.PaymentMethod),
		OrderValue:      route.OrderValue,
		Items:           items,
		Groups:          groups,
		TotalShipping:   route.TotalShipping,
		CourierHistory:  history,
		CreatedAt:       route.CreatedAt,
		UpdatedAt:       route.UpdatedAt,
	}
}

// ToRouteItemDTO converts a domain FulfillmentRouteItem to RouteItemDTO
func ToRouteItemDTO(item domain.FulfillmentRouteItem) RouteItemDTO {
	return RouteItemDTO{
		VariantID:    item.VariantID,
		Quantity:     item.Quantity,
		Weight:       item.Weight,
		SupplierID:   item.SupplierID,
		OriginID:     item.OriginID,
		CourierID:    item.CourierID,
		ZoneID:       item.ZoneID,
		ShippingCost: item.ShippingCost,
		Score:        item.Score,
	}
}

// ToShipmentGroupDTO converts a domain ShipmentGroup to ShipmentGroupDTO
func ToShipmentGroupDTO(group domain.ShipmentGroup) ShipmentGroupDTO {
	items := make([]RouteItemDTO, 0, len(group.Items))
	for _, item := range group.Items {
		items = append(items, ToRouteItemDTO(item))
	}

	return ShipmentGroupDTO{
		GroupID:      group.GroupID,
		OriginID:     group.OriginID,
		SupplierID:   group.SupplierID,
		Items:        items,
		ShippingCost: group.ShippingCost,
		Courier:      ToCourierSnapshotDTO(group.Courier),
		Status:       string(group.Status),
		ShippedAt:    group.ShippedAt,
		DeliveredAt:  group.DeliveredAt,
	}
}

// ToCourierSnapshotDTO converts a domain CourierSnapshot to CourierSnapshotDTO
func ToCourierSnapshotDTO(snapshot domain.CourierSnapshot) CourierSnapshotDTO {
	return CourierSnapshotDTO{
		CourierID:   snapshot.CourierID,
		CourierName: snapshot.CourierName,
		CourierCode: snapshot.CourierCode,
		RuleID:      snapshot.RuleID,
		Fallback:    snapshot.Fallback,
		Reason:      snapshot.Reason,
		AssignedAt:  snapshot.AssignedAt,
	}
}
