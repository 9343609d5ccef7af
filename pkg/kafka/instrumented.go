package kafka

import (
	"context"
	"time"

	"github.com/marketplace-platform/fulfillment-service/pkg/cloudevents"
	"github.com/marketplace-platform/fulfillment-service/pkg/logging"
	"github.com/marketplace-platform/fulfillment-service/pkg/metrics"
	"github.com/marketplace-platform/fulfillment-service/pkg/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// addCloudEventAttributes adds marketplace extension attributes to a span
func addCloudEventAttributes(span trace.Span, event *cloudevents.CloudEvent) {
	if event.CorrelationID != "" {
		span.SetAttributes(attribute.String("marketplace.correlation_id", event.CorrelationID))
	}
	if event.StoreID != "" {
		span.SetAttributes(attribute.String("marketplace.store_id", event.StoreID))
	}
	if event.OrderID != "" {
		span.SetAttributes(attribute.String("marketplace.order_id", event.OrderID))
	}
}

// InstrumentedProducer wraps a Producer with metrics and tracing
type InstrumentedProducer struct {
	producer *Producer
	metrics  *metrics.Metrics
	logger   *logging.Logger
	tracer   trace.Tracer
}

// NewInstrumentedProducer creates a new instrumented producer
func NewInstrumentedProducer(producer *Producer, m *metrics.Metrics, logger *logging.Logger) *InstrumentedProducer {
	return &InstrumentedProducer{
		producer: producer,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("kafka-producer"),
	}
}

// PublishEvent publishes a CloudEvent with metrics and tracing
func (p *InstrumentedProducer) PublishEvent(ctx context.Context, topic string, event *cloudevents.CloudEvent) error {
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "kafka.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKey.String("kafka"),
			semconv.MessagingDestinationNameKey.String(topic),
			semconv.MessagingOperationKey.String("publish"),
			attribute.String("messaging.kafka.event_type", event.Type),
			attribute.String("messaging.message_id", event.ID),
		),
	)
	defer span.End()

	addCloudEventAttributes(span, event)

	// Propagate trace context on the event itself
	carrier := tracing.MapCarrier{}
	tracing.InjectTraceContext(ctx, carrier)
	if tp, ok := carrier["traceparent"]; ok {
		event.TraceParent = tp
	}
	if ts, ok := carrier["tracestate"]; ok {
		event.TraceState = ts
	}

	err := p.producer.PublishEvent(ctx, topic, event)
	duration := time.Since(start)

	success := err == nil
	if p.metrics != nil {
		p.metrics.RecordKafkaPublish(topic, event.Type, success, duration)
	}

	if p.logger != nil {
		p.logger.KafkaPublish(ctx, topic, event.Type, success, duration)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.Int64("messaging.duration_ms", duration.Milliseconds()))
	}

	return err
}

// PublishEventAsync publishes a CloudEvent asynchronously with metrics
func (p *InstrumentedProducer) PublishEventAsync(ctx context.Context, topic string, event *cloudevents.CloudEvent, callback func(error)) {
	start := time.Now()

	_, span := p.tracer.Start(ctx, "kafka.publish.async",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKey.String("kafka"),
			semconv.MessagingDestinationNameKey.String(topic),
			semconv.MessagingOperationKey.String("publish"),
			attribute.String("messaging.kafka.event_type", event.Type),
			attribute.String("messaging.message_id", event.ID),
			attribute.Bool("messaging.async", true),
		),
	)

	addCloudEventAttributes(span, event)

	wrappedCallback := func(err error) {
		defer span.End()
		duration := time.Since(start)

		success := err == nil
		if p.metrics != nil {
			p.metrics.RecordKafkaPublish(topic, event.Type, success, duration)
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		if callback != nil {
			callback(err)
		}
	}

	p.producer.PublishEventAsync(ctx, topic, event, wrappedCallback)
}

// PublishBatch publishes multiple events with metrics and tracing
func (p *InstrumentedProducer) PublishBatch(ctx context.Context, topic string, events []*cloudevents.CloudEvent) error {
	start := time.Now()

	ctx, span := p.tracer.Start(ctx, "kafka.publish.batch",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKey.String("kafka"),
			semconv.MessagingDestinationNameKey.String(topic),
			semconv.MessagingOperationKey.String("publish"),
			attribute.Int("messaging.batch_size", len(events)),
		),
	)
	defer span.End()

	err := p.producer.PublishBatch(ctx, topic, events)
	duration := time.Since(start)

	success := err == nil
	if p.metrics != nil && len(events) > 0 {
		for _, event := range events {
			p.metrics.RecordKafkaPublish(topic, event.Type, success, duration/time.Duration(len(events)))
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
		span.SetAttributes(attribute.Int64("messaging.duration_ms", duration.Milliseconds()))
	}

	return err
}

// Close closes the underlying producer
func (p *InstrumentedProducer) Close() error {
	return p.producer.Close()
}
