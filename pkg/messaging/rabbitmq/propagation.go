// Package rabbitmq carries spans across RabbitMQ publishers and consumers
// through AMQP message headers.
package rabbitmq

import (
	"context"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/propagation"
)

// TableCarrier adapts an amqp.Table to propagation.TextMapCarrier.
//
// Example:
//
//	Before: headers = amqp.Table{"content_type": "application/json"}
//	After:  headers = amqp.Table{
//	  "content_type": "application/json",
//	  "traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
//	}
type TableCarrier struct {
	headers amqp.Table
}

var _ propagation.TextMapCarrier = TableCarrier{}

// NewTableCarrier wraps headers. Set writes into headers in place.
func NewTableCarrier(headers amqp.Table) TableCarrier {
	return TableCarrier{headers: headers}
}

// Get returns the header value for key. Brokers and some clients deliver
// string headers as byte slices, both are accepted.
func (c TableCarrier) Get(key string) string {
	switch v := c.headers[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Set stores value under key. Writes to a nil table are dropped.
func (c TableCarrier) Set(key, value string) {
	if c.headers == nil {
		return
	}
	c.headers[key] = value
}

// Keys returns all header keys.
func (c TableCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for k := range c.headers {
		keys = append(keys, k)
	}
	return keys
}

// Inject encodes span into msg.Headers, allocating the table when needed.
func Inject(span *tracing.Span, msg *amqp.Publishing) {
	if msg.Headers == nil {
		msg.Headers = amqp.Table{}
	}
	span.EncodeInto(NewTableCarrier(msg.Headers))
}

// Decode returns the context-only span carried by delivery.
func Decode(ctx context.Context, tracer *tracing.Tracer, delivery amqp.Delivery) *tracing.Span {
	return tracer.DecodeFrom(ctx, NewTableCarrier(delivery.Headers))
}

// StartPublishSpan starts a producer span under parent for a publish to
// exchange with routingKey and injects it into msg.
func StartPublishSpan(parent *tracing.Span, exchange, routingKey string, msg *amqp.Publishing, start time.Time) *tracing.Span {
	span := parent.StartSpan(destination(exchange, routingKey)+" publish", start,
		tracing.WithSpanKind(tracing.SpanKindProducer),
		tracing.WithAttributes(
			tracing.String("messaging.system", "rabbitmq"),
			tracing.String("messaging.operation", "publish"),
			tracing.String("messaging.destination.name", exchange),
			tracing.String("messaging.rabbitmq.destination.routing_key", routingKey),
		),
	)
	if msg.MessageId != "" {
		span.SetAttribute("messaging.message.id", msg.MessageId)
	}

	Inject(span, msg)
	return span
}

// StartConsumeSpan continues the trace carried by delivery with a consumer
// span. A delivery without trace headers starts a new trace.
func StartConsumeSpan(ctx context.Context, tracer *tracing.Tracer, delivery amqp.Delivery, start time.Time) *tracing.Span {
	span := Decode(ctx, tracer, delivery).StartSpan(destination(delivery.Exchange, delivery.RoutingKey)+" process", start,
		tracing.WithSpanKind(tracing.SpanKindConsumer),
		tracing.WithAttributes(
			tracing.String("messaging.system", "rabbitmq"),
			tracing.String("messaging.operation", "process"),
			tracing.String("messaging.destination.name", delivery.Exchange),
			tracing.String("messaging.rabbitmq.destination.routing_key", delivery.RoutingKey),
			tracing.Bool("messaging.rabbitmq.redelivered", delivery.Redelivered),
		),
	)
	if delivery.MessageId != "" {
		span.SetAttribute("messaging.message.id", delivery.MessageId)
	}
	return span
}

// destination names the span target. The default exchange has no name, so
// the routing key (the queue) is used instead.
func destination(exchange, routingKey string) string {
	if exchange == "" {
		return routingKey
	}
	return exchange
}
