package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketplace-platform/fulfillment-service/pkg/metrics"
)

// MetricsMiddleware creates middleware that records HTTP metrics
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid recursion
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		m.IncrementHTTPRequestsInFlight()
		defer m.DecrementHTTPRequestsInFlight()

		start := time.Now()

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()
		method := c.Request.Method
		path := c.FullPath() // route pattern, not raw path

		if path == "" {
			path = c.Request.URL.Path
		}

		m.RecordHTTPRequest(method, path, status, duration)
	}
}

// MetricsEndpoint returns a handler for the /metrics endpoint
func MetricsEndpoint(m *metrics.Metrics) gin.HandlerFunc {
	handler := m.Handler()
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// RoutingMetrics provides helpers for recording fulfillment business metrics
type RoutingMetrics struct {
	metrics *metrics.Metrics
}

// NewRoutingMetrics creates a new RoutingMetrics helper
func NewRoutingMetrics(m *metrics.Metrics) *RoutingMetrics {
	return &RoutingMetrics{metrics: m}
}

// RecordOrderRouted records a completed routing attempt
func (r *RoutingMetrics) RecordOrderRouted(status string, duration time.Duration) {
	r.metrics.RecordOrderRouted(status, duration)
}

// RecordCourierAssignment records a courier assignment outcome
func (r *RoutingMetrics) RecordCourierAssignment(courierCode, zone, outcome string) {
	r.metrics.RecordCourierAssignment(courierCode, zone, outcome)
}

// RecordCourierFallback records a zone-default courier fallback
func (r *RoutingMetrics) RecordCourierFallback(zone string) {
	r.metrics.RecordCourierFallback(zone)
}

// RecordCourierReassignment records a courier reassignment
func (r *RoutingMetrics) RecordCourierReassignment(courierCode string) {
	r.metrics.RecordCourierReassignment(courierCode)
}

// RecordOriginsEvaluated records how many candidate origins were scored for an item
func (r *RoutingMetrics) RecordOriginsEvaluated(count int) {
	r.metrics.RecordOriginsEvaluated(count)
}

// RecordShipmentGroups records the shipment group count of a routed order
func (r *RoutingMetrics) RecordShipmentGroups(count int) {
	r.metrics.RecordShipmentGroups(count)
}

// RecordCircuitBreakerState records circuit breaker state
func (r *RoutingMetrics) RecordCircuitBreakerState(name string, state int) {
	r.metrics.SetCircuitBreakerState(name, state)
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (r *RoutingMetrics) RecordCircuitBreakerTrip(name string) {
	r.metrics.RecordCircuitBreakerTrip(name)
}
