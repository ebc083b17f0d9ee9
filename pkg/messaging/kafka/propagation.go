// Package kafka carries spans across Kafka producers and consumers through
// message headers.
package kafka

import (
	"context"
	"strconv"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
)

// HeaderCarrier adapts Kafka message headers to propagation.TextMapCarrier.
//
// Example:
//
//	Before: msg.Headers = [{event_type user.created}]
//	After:  msg.Headers = [{event_type user.created} {traceparent 00-4bf9...-00f0...-01}]
type HeaderCarrier struct {
	headers *[]kafka.Header
}

var _ propagation.TextMapCarrier = (*HeaderCarrier)(nil)

// NewHeaderCarrier wraps headers. Set appends to the slice headers points to.
func NewHeaderCarrier(headers *[]kafka.Header) *HeaderCarrier {
	return &HeaderCarrier{headers: headers}
}

// Get returns the value of the first header named key.
func (c *HeaderCarrier) Get(key string) string {
	if c.headers == nil {
		return ""
	}
	for _, h := range *c.headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set replaces the header named key, or appends it.
func (c *HeaderCarrier) Set(key, value string) {
	if c.headers == nil {
		return
	}
	for i, h := range *c.headers {
		if h.Key == key {
			(*c.headers)[i].Value = []byte(value)
			return
		}
	}
	*c.headers = append(*c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

// Keys returns all header keys.
func (c *HeaderCarrier) Keys() []string {
	if c.headers == nil {
		return nil
	}
	keys := make([]string, 0, len(*c.headers))
	for _, h := range *c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

// Inject encodes span into the headers of msg.
func Inject(span *tracing.Span, msg *kafka.Message) {
	span.EncodeInto(NewHeaderCarrier(&msg.Headers))
}

// Decode returns the context-only span carried by msg.
func Decode(ctx context.Context, tracer *tracing.Tracer, msg kafka.Message) *tracing.Span {
	return tracer.DecodeFrom(ctx, NewHeaderCarrier(&msg.Headers))
}

// StartProducerSpan starts a producer span under parent for msg and injects
// it into the message headers, so consumers become its children.
func StartProducerSpan(parent *tracing.Span, msg *kafka.Message, start time.Time) *tracing.Span {
	span := parent.StartSpan(msg.Topic+" publish", start,
		tracing.WithSpanKind(tracing.SpanKindProducer),
		tracing.WithAttributes(
			tracing.String("messaging.system", "kafka"),
			tracing.String("messaging.operation", "publish"),
			tracing.String("messaging.destination.name", msg.Topic),
		),
	)
	if len(msg.Key) > 0 {
		span.SetAttribute("messaging.kafka.message.key", string(msg.Key))
	}

	Inject(span, msg)
	return span
}

// StartConsumerSpan continues the trace carried by msg with a consumer span.
// A message without trace headers starts a new trace.
func StartConsumerSpan(ctx context.Context, tracer *tracing.Tracer, msg kafka.Message, start time.Time) *tracing.Span {
	return Decode(ctx, tracer, msg).StartSpan(msg.Topic+" process", start,
		tracing.WithSpanKind(tracing.SpanKindConsumer),
		tracing.WithAttributes(
			tracing.String("messaging.system", "kafka"),
			tracing.String("messaging.operation", "process"),
			tracing.String("messaging.destination.name", msg.Topic),
			tracing.String("messaging.destination.partition.id", strconv.Itoa(msg.Partition)),
			tracing.Int64("messaging.kafka.message.offset", msg.Offset),
		),
	)
}
