package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func createTestRule() *CourierRule {
	return &CourierRule{
		RuleID:        "rule-1",
		StoreID:       "store-1",
		ZoneID:        "zone-south",
		CourierID:     "courier-1",
		PaymentMethod: PaymentBoth,
		MinWeight:     5,
		MaxWeight:     10,
		Priority:      1,
		Active:        true,
	}
}

// TestCourierRuleMatches tests rule matching against order profiles
func TestCourierRuleMatches(t *testing.T) {
	tests := []struct {
		name          string
		setupRule     func() *CourierRule
		paymentMethod PaymentMethod
		weight        float64
		orderValue    float64
		expected      bool
	}{
		{
			name:          "Weight at inclusive lower bound matches",
			setupRule:     createTestRule,
			paymentMethod: PaymentCOD,
			weight:        5,
			orderValue:    500,
			expected:      true,
		},
		{
			name:          "Weight at exclusive upper bound does not match",
			setupRule:     createTestRule,
			paymentMethod: PaymentCOD,
			weight:        10,
			orderValue:    500,
			expected:      false,
		},
		{
			name:          "Weight below lower bound does not match",
			setupRule:     createTestRule,
			paymentMethod: PaymentCOD,
			weight:        4.99,
			orderValue:    500,
			expected:      false,
		},
		{
			name: "Zero max weight is unbounded",
			setupRule: func() *CourierRule {
				r := createTestRule()
				r.MaxWeight = 0
				return r
			},
			paymentMethod: PaymentCOD,
			weight:        5000,
			orderValue:    500,
			expected:      true,
		},
		{
			name: "Inactive rule never matches",
			setupRule: func() *CourierRule {
				r := createTestRule()
				r.Active = false
				return r
			},
			paymentMethod: PaymentCOD,
			weight:        5,
			orderValue:    500,
			expected:      false,
		},
		{
			name: "COD-only rule rejects prepaid order",
			setupRule: func() *CourierRule {
				r := createTestRule()
				r.PaymentMethod = PaymentCOD
				return r
			},
			paymentMethod: PaymentPrepaid,
			weight:        5,
			orderValue:    500,
			expected:      false,
		},
		{
			name: "COD-only rule accepts partial COD order",
			setupRule: func() *CourierRule {
				r := createTestRule()
				r.PaymentMethod = PaymentCOD
				return r
			},
			paymentMethod: PaymentPartialCOD,
			weight:        5,
			orderValue:    500,
			expected:      true,
		},
		{
			name:          "Both rule accepts prepaid order",
			setupRule:     createTestRule,
			paymentMethod: PaymentPrepaid,
			weight:        5,
			orderValue:    500,
			expected:      true,
		},
		{
			name: "Order value at exclusive upper bound does not match",
			setupRule: func() *CourierRule {
				r := createTestRule()
				r.MinOrderValue = 100
				r.MaxOrderValue = 1000
				return r
			},
			paymentMethod: PaymentCOD,
			weight:        5,
			orderValue:    1000,
			expected:      false,
		},
		{
			name: "Order value at inclusive lower bound matches",
			setupRule: func() *CourierRule {
				r := createTestRule()
				r.MinOrderValue = 100
				r.MaxOrderValue = 1000
				return r
			},
			paymentMethod: PaymentCOD,
			weight:        5,
			orderValue:    100,
			expected:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := tt.setupRule()
			assert.Equal(t, tt.expected, rule.Matches(tt.paymentMethod, tt.weight, tt.orderValue))
		})
	}
}
