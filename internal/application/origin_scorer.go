package application

import (
	"context"
	"fmt"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
	"github.com/marketplace-platform/fulfillment-service/pkg/logging"
)

// Scoring weights. Lower score is better: distance, shipping cost and
// origin priority add to the score, courier-option richness subtracts.
const (
	weightDistance       = 0.4
	weightShippingCost   = 0.3
	weightOriginPriority = 0.2
	weightCourierOptions = 0.1

	// noZoneCostPenalty stands in for the shipping cost when no zone covers
	// the delivery address. The origin stays eligible but heavily penalized,
	// so it can still win if it is the only candidate.
	noZoneCostPenalty = 1000.0
)

// OriginScore is the scoring outcome for one origin candidate
type OriginScore struct {
	Origin       *domain.SupplierOrigin
	Score        float64
	Distance     float64
	ShippingCost float64
	ZoneID       string
	Courier      *domain.CourierSnapshot // nil when best-effort assignment failed
}

// OriginScorer evaluates origin candidates for one line item. The weighted
// score combines distance, shipping cost, origin priority and courier-option
// richness; identical inputs always yield identical scores.
type OriginScorer struct {
	resolver  *ZoneResolver
	assigner  *CourierAssigner
	rates     domain.RateCalculator
	estimator domain.DistanceEstimator
	logger    *logging.Logger
}

// NewOriginScorer creates a new OriginScorer
func NewOriginScorer(
	resolver *ZoneResolver,
	assigner *CourierAssigner,
	rates domain.RateCalculator,
	estimator domain.DistanceEstimator,
	logger *logging.Logger,
) *OriginScorer {
	return &OriginScorer{
		resolver:  resolver,
		assigner:  assigner,
		rates:     rates,
		estimator: estimator,
		logger:    logger.WithComponent("origin-scorer"),
	}
}

// Score evaluates one origin for one line item against a delivery address
func (s *OriginScorer) Score(ctx context.Context, origin *domain.SupplierOrigin, delivery domain.Address, storeID string, weight, orderValue float64, paymentMethod domain.PaymentMethod) (*OriginScore, error) {
	distance := s.estimator.Estimate(origin.Address, delivery)

	result := &OriginScore{
		Origin:   origin,
		Distance: distance,
	}

	zone, err := s.resolver.Resolve(ctx, storeID, delivery)
	switch {
	case err == nil:
		result.ZoneID = zone.ZoneID

		// The cost persists into the frozen route, so a rate failure
		// fails the item rather than substituting a penalty value.
		cost, rateErr := s.rates.CalculateShipping(ctx, storeID, delivery, weight, orderValue, paymentMethod)
		if rateErr != nil {
			s.logger.WithError(rateErr).Error("Rate calculation failed", "originId", origin.OriginID, "zoneId", zone.ZoneID)
			return nil, fmt.Errorf("rate calculation failed: %w", rateErr)
		}
		result.ShippingCost = cost

		// Best-effort courier attach; failure here only leaves the courier
		// unset, to be retried at grouping time.
		assignment, assignErr := s.assigner.Assign(ctx, AssignCourierCommand{
			StoreID:       storeID,
			ZoneID:        zone.ZoneID,
			Weight:        weight,
			OrderValue:    orderValue,
			PaymentMethod: paymentMethod,
			Pincode:       delivery.Pincode,
		})
		if assignErr != nil {
			s.logger.Debug("Best-effort courier assignment failed during scoring",
				"originId", origin.OriginID, "zoneId", zone.ZoneID, "error", assignErr.Error())
		} else {
			result.Courier = &assignment.Snapshot
		}

	case domain.IsZoneNotFound(err):
		result.ShippingCost = noZoneCostPenalty

	default:
		return nil, err
	}

	priority := float64(origin.EffectivePriority())
	options := float64(len(origin.SupportedCouriers))

	result.Score = weightDistance*distance +
		weightShippingCost*result.ShippingCost +
		weightOriginPriority*priority -
		weightCourierOptions*options

	return result, nil
}
