package application

import (
	"context"

	"github.com/marketplace-platform/fulfillment-service/internal/domain"
	"github.com/marketplace-platform/fulfillment-service/pkg/logging"
)

// In-memory fakes shared by the application-layer tests

type mockZoneRepo struct {
	zones []*domain.ShippingZone
	err   error
}

func (m *mockZoneRepo) FindActiveByStore(ctx context.Context, storeID string) ([]*domain.ShippingZone, error) {
	if m.err != nil {
		return nil, m.err
	}
	active := make([]*domain.ShippingZone, 0, len(m.zones))
	for _, z := range m.zones {
		if z.StoreID == storeID && z.Active {
			active = append(active, z)
		}
	}
	return active, nil
}

func (m *mockZoneRepo) FindByZoneID(ctx context.Context, storeID, zoneID string) (*domain.ShippingZone, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, z := range m.zones {
		if z.StoreID == storeID && z.ZoneID == zoneID {
			return z, nil
		}
	}
	return nil, nil
}

type mockCourierRepo struct {
	couriers []*domain.Courier
	err      error
}

func (m *mockCourierRepo) FindByCourierID(ctx context.Context, storeID, courierID string) (*domain.Courier, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.couriers {
		if c.StoreID == storeID && c.CourierID == courierID {
			return c, nil
		}
	}
	return nil, nil
}

func (m *mockCourierRepo) FindActiveByStore(ctx context.Context, storeID string) ([]*domain.Courier, error) {
	if m.err != nil {
		return nil, m.err
	}
	active := make([]*domain.Courier, 0, len(m.couriers))
	for _, c := range m.couriers {
		if c.StoreID == storeID && c.Active {
			active = append(active, c)
		}
	}
	return active, nil
}

func (m *mockCourierRepo) FindActiveByZone(ctx context.Context, storeID, zoneID string) ([]*domain.Courier, error) {
	if m.err != nil {
		return nil, m.err
	}
	matched := make([]*domain.Courier, 0, len(m.couriers))
	for _, c := range m.couriers {
		if c.StoreID == storeID && c.Active && c.ServicesZone(zoneID) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}

type mockRuleRepo struct {
	rules []*domain.CourierRule
	err   error
}

func (m *mockRuleRepo) FindActiveByZone(ctx context.Context, storeID, zoneID string) ([]*domain.CourierRule, error) {
	if m.err != nil {
		return nil, m.err
	}
	matched := make([]*domain.CourierRule, 0, len(m.rules))
	for _, r := range m.rules {
		if r.StoreID == storeID && r.ZoneID == zoneID && r.Active {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

type mockOriginRepo struct {
	origins []*domain.SupplierOrigin
	// stock maps originID+variantID to available quantity
	stock       map[string]int
	findStockFn func(ctx context.Context, storeID, variantID string, quantity int, supplierID string) ([]*domain.SupplierOrigin, error)
	err         error
}

func (m *mockOriginRepo) FindByOriginID(ctx context.Context, storeID, originID string) (*domain.SupplierOrigin, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, o := range m.origins {
		if o.StoreID == storeID && o.OriginID == originID {
			return o, nil
		}
	}
	return nil, nil
}

func (m *mockOriginRepo) FindActiveByStore(ctx context.Context, storeID string) ([]*domain.SupplierOrigin, error) {
	if m.err != nil {
		return nil, m.err
	}
	active := make([]*domain.SupplierOrigin, 0, len(m.origins))
	for _, o := range m.origins {
		if o.StoreID == storeID && o.Active {
			active = append(active, o)
		}
	}
	return active, nil
}

func (m *mockOriginRepo) FindWithStock(ctx context.Context, storeID, variantID string, quantity int, supplierID string) ([]*domain.SupplierOrigin, error) {
	if m.findStockFn != nil {
		return m.findStockFn(ctx, storeID, variantID, quantity, supplierID)
	}
	if m.err != nil {
		return nil, m.err
	}
	matched := make([]*domain.SupplierOrigin, 0, len(m.origins))
	for _, o := range m.origins {
		if o.StoreID != storeID || !o.Active {
			continue
		}
		if supplierID != "" && o.SupplierID != supplierID {
			continue
		}
		if m.stock[o.OriginID+"/"+variantID] >= quantity {
			matched = append(matched, o)
		}
	}
	return matched, nil
}

type fixedRateCalculator struct {
	rate float64
	err  error
}

func (f *fixedRateCalculator) CalculateShipping(ctx context.Context, storeID string, address domain.Address, weight, orderValue float64, paymentMethod domain.PaymentMethod) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.rate, nil
}

func testLogger() *logging.Logger {
	cfg := logging.DefaultConfig("fulfillment-service-test")
	cfg.Level = logging.LogLevel("error")
	return logging.New(cfg)
}
