package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
	"github.com/marketplace-platform/fulfillment-service/pkg/logging"
)

// CourierAssigner resolves the courier for one order profile: rule matching
// with a (rule priority, courier priority) ascending tie-break, then a
// zone-default fallback, then failure with full diagnostics. Pure decision,
// persistence is the caller's responsibility.
type CourierAssigner struct {
	zones    domain.ZoneRepository
	couriers domain.CourierRepository
	rules    domain.CourierRuleRepository
	logger   *logging.Logger
}

// NewCourierAssigner creates a new CourierAssigner
func NewCourierAssigner(
	zones domain.ZoneRepository,
	couriers domain.CourierRepository,
	rules domain.CourierRuleRepository,
	logger *logging.Logger,
) *CourierAssigner {
	return &CourierAssigner{
		zones:    zones,
		couriers: couriers,
		rules:    rules,
		logger:   logger.WithComponent("courier-assigner"),
	}
}

// CourierAssignment is the outcome of a courier decision
type CourierAssignment struct {
	Snapshot domain.CourierSnapshot
	Zone     *domain.ShippingZone
}

// Assign resolves the courier for an order profile in a zone
func (a *CourierAssigner) Assign(ctx context.Context, cmd AssignCourierCommand) (*CourierAssignment, error) {
	normalized := cmd.PaymentMethod.Normalize()

	zone, err := a.zones.FindByZoneID(ctx, cmd.StoreID, cmd.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to load zone %s: %w", cmd.ZoneID, err)
	}
	if zone == nil || !zone.Active {
		return nil, &domain.ZoneNotFoundError{StoreID: cmd.StoreID, Pincode: cmd.Pincode}
	}

	rules, err := a.rules.FindActiveByZone(ctx, cmd.StoreID, cmd.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to load courier rules for zone %s: %w", cmd.ZoneID, err)
	}

	type candidate struct {
		rule    *domain.CourierRule
		courier *domain.Courier
	}

	candidates := make([]candidate, 0, len(rules))
	for _, rule := range rules {
		if !rule.Matches(normalized, cmd.Weight, cmd.OrderValue) {
			continue
		}

		courier, err := a.couriers.FindByCourierID(ctx, cmd.StoreID, rule.CourierID)
		if err != nil {
			return nil, fmt.Errorf("failed to load courier %s: %w", rule.CourierID, err)
		}
		if courier == nil {
			a.logger.Warn("Rule references unknown courier", "ruleId", rule.RuleID, "courierId", rule.CourierID)
			continue
		}

		result := courier.Validate(normalized, cmd.Weight, cmd.ZoneID, cmd.Pincode)
		if !result.Valid {
			a.logger.Debug("Courier failed validation", "ruleId", rule.RuleID, "courier", courier.Code, "reason", result.Reason)
			continue
		}

		candidates = append(candidates, candidate{rule: rule, courier: courier})
	}

	if len(candidates) > 0 {
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].rule.Priority != candidates[j].rule.Priority {
				return candidates[i].rule.Priority < candidates[j].rule.Priority
			}
			return candidates[i].courier.Priority < candidates[j].courier.Priority
		})

		best := candidates[0]
		snapshot := domain.NewRuleSnapshot(best.courier, best.rule)
		a.logger.Info("Courier assigned by rule",
			"zoneId", cmd.ZoneID, "courier", best.courier.Code, "ruleId", best.rule.RuleID, "rulePriority", best.rule.Priority)
		return &CourierAssignment{Snapshot: snapshot, Zone: zone}, nil
	}

	// No rule survived; try the zone-default courier
	fallback, err := a.resolveFallback(ctx, cmd, normalized)
	if err != nil {
		return nil, err
	}
	if fallback != nil {
		snapshot := domain.NewFallbackSnapshot(fallback, zone.Name)
		a.logger.Info("Courier assigned by fallback", "zoneId", cmd.ZoneID, "courier", fallback.Code)
		return &CourierAssignment{Snapshot: snapshot, Zone: zone}, nil
	}

	return nil, &domain.NoCourierAvailableError{
		ZoneName:      zone.Name,
		PaymentMethod: normalized,
		Weight:        cmd.Weight,
		OrderValue:    cmd.OrderValue,
	}
}

// resolveFallback finds the best zone-servicing courier by priority when no
// rule matched. Returns nil without error when none qualifies.
func (a *CourierAssigner) resolveFallback(ctx context.Context, cmd AssignCourierCommand, normalized domain.PaymentMethod) (*domain.Courier, error) {
	couriers, err := a.couriers.FindActiveByZone(ctx, cmd.StoreID, cmd.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to load couriers for zone %s: %w", cmd.ZoneID, err)
	}

	valid := make([]*domain.Courier, 0, len(couriers))
	for _, courier := range couriers {
		if result := courier.Validate(normalized, cmd.Weight, cmd.ZoneID, cmd.Pincode); result.Valid {
			valid = append(valid, courier)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}

	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Priority < valid[j].Priority
	})
	return valid[0], nil
}
