package application

import (
	"context"
	"fmt"
	"sort"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
	"github.com/marketplace-platform/fulfillment-service/pkg/resilience"
)

// RateProviderID identifies a registered shipping-rate provider
type RateProviderID string

const (
	RateProviderFlat RateProviderID = "flat"
	RateProviderSlab RateProviderID = "slab"
)

// RateProviderConstructor builds a rate calculator from provider settings
type RateProviderConstructor func(settings map[string]float64) (domain.RateCalculator, error)

// RateProviderRegistry maps provider identifiers to constructors. Providers
// register at startup; lookup at request time is a plain map read.
type RateProviderRegistry struct {
	constructors map[RateProviderID]RateProviderConstructor
}

// NewRateProviderRegistry creates a registry with the bundled providers
func NewRateProviderRegistry() *RateProviderRegistry {
	r := &RateProviderRegistry{constructors: make(map[RateProviderID]RateProviderConstructor)}
	r.Register(RateProviderFlat, func(settings map[string]float64) (domain.RateCalculator, error) {
		return NewFlatRateProvider(settings["baseRate"], settings["perKgRate"]), nil
	})
	r.Register(RateProviderSlab, func(settings map[string]float64) (domain.RateCalculator, error) {
		return NewSlabRateProvider(settings)
	})
	return r
}

// Register adds a provider constructor
func (r *RateProviderRegistry) Register(id RateProviderID, constructor RateProviderConstructor) {
	r.constructors[id] = constructor
}

// Build constructs the rate calculator for a provider id
func (r *RateProviderRegistry) Build(id RateProviderID, settings map[string]float64) (domain.RateCalculator, error) {
	constructor, ok := r.constructors[id]
	if !ok {
		return nil, fmt.Errorf("unknown rate provider %q", id)
	}
	return constructor(settings)
}

// FlatRateProvider charges a base rate plus a per-kilogram rate
type FlatRateProvider struct {
	baseRate  float64
	perKgRate float64
}

// NewFlatRateProvider creates a flat rate provider
func NewFlatRateProvider(baseRate, perKgRate float64) *FlatRateProvider {
	return &FlatRateProvider{baseRate: baseRate, perKgRate: perKgRate}
}

// CalculateShipping returns base rate plus weight times the per-kg rate
func (p *FlatRateProvider) CalculateShipping(ctx context.Context, storeID string, address domain.Address, weight, orderValue float64, paymentMethod domain.PaymentMethod) (float64, error) {
	return p.baseRate + weight*p.perKgRate, nil
}

// slab is one weight band with its rate
type slab struct {
	upToWeight float64
	rate       float64
}

// SlabRateProvider charges by weight band: the first slab whose upper bound
// covers the weight wins; weights above every slab pay the last slab's rate.
type SlabRateProvider struct {
	slabs []slab
}

// NewSlabRateProvider builds a slab provider from a map of upper weight
// bound to rate. Non-numeric keys are ignored; a configuration yielding no
// bands is rejected so a misconfigured provider fails at startup, not per
// request.
func NewSlabRateProvider(bands map[string]float64) (*SlabRateProvider, error) {
	slabs := make([]slab, 0, len(bands))
	for bound, rate := range bands {
		var upTo float64
		if _, err := fmt.Sscanf(bound, "%f", &upTo); err != nil {
			continue
		}
		slabs = append(slabs, slab{upToWeight: upTo, rate: rate})
	}
	if len(slabs) == 0 {
		return nil, fmt.Errorf("slab rate provider requires at least one weight band")
	}
	sort.Slice(slabs, func(i, j int) bool {
		return slabs[i].upToWeight < slabs[j].upToWeight
	})
	return &SlabRateProvider{slabs: slabs}, nil
}

// CalculateShipping returns the rate of the first slab covering the weight
func (p *SlabRateProvider) CalculateShipping(ctx context.Context, storeID string, address domain.Address, weight, orderValue float64, paymentMethod domain.PaymentMethod) (float64, error) {
	if len(p.slabs) == 0 {
		return 0, fmt.Errorf("slab rate provider has no configured bands")
	}
	for _, s := range p.slabs {
		if weight <= s.upToWeight {
			return s.rate, nil
		}
	}
	return p.slabs[len(p.slabs)-1].rate, nil
}

// BreakerRateCalculator wraps an external rate provider in a circuit
// breaker so a flapping rate service cannot stall routing
type BreakerRateCalculator struct {
	inner   domain.RateCalculator
	breaker *resilience.CircuitBreaker
}

// NewBreakerRateCalculator wraps a rate calculator with a circuit breaker
func NewBreakerRateCalculator(inner domain.RateCalculator, breaker *resilience.CircuitBreaker) *BreakerRateCalculator {
	return &BreakerRateCalculator{inner: inner, breaker: breaker}
}

// CalculateShipping delegates through the circuit breaker
func (c *BreakerRateCalculator) CalculateShipping(ctx context.Context, storeID string, address domain.Address, weight, orderValue float64, paymentMethod domain.PaymentMethod) (float64, error) {
	return resilience.ExecuteTyped(ctx, c.breaker, func() (float64, error) {
		return c.inner.CalculateShipping(ctx, storeID, address, weight, orderValue, paymentMethod)
	})
}
