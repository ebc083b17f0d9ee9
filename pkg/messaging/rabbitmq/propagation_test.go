package rabbitmq

import (
	"context"
	"testing"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing/tracingtest"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	oteltrace "go.opentelemetry.io/otel/trace"
)

func TestTableCarrier(t *testing.T) {
	tests := []struct {
		name     string
		headers  amqp.Table
		key      string
		expected string
	}{
		{name: "string value", headers: amqp.Table{"traceparent": "abc"}, key: "traceparent", expected: "abc"},
		{name: "byte slice value", headers: amqp.Table{"traceparent": []byte("abc")}, key: "traceparent", expected: "abc"},
		{name: "non string value", headers: amqp.Table{"traceparent": int32(7)}, key: "traceparent", expected: ""},
		{name: "missing key", headers: amqp.Table{}, key: "traceparent", expected: ""},
		{name: "nil table", headers: nil, key: "traceparent", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewTableCarrier(tt.headers).Get(tt.key))
		})
	}
}

func TestTableCarrier_SetAndKeys(t *testing.T) {
	headers := amqp.Table{"content_type": "application/json"}
	carrier := NewTableCarrier(headers)

	carrier.Set("traceparent", "value")

	assert.Equal(t, "value", headers["traceparent"])
	assert.ElementsMatch(t, []string{"content_type", "traceparent"}, carrier.Keys())

	assert.NotPanics(t, func() { NewTableCarrier(nil).Set("traceparent", "value") })
}

func TestInject_AllocatesHeaders(t *testing.T) {
	tracer := tracingtest.NewRecorder().Tracer("billing")
	span := tracer.StartSpan(context.Background(), "charge", time.Time{})
	msg := amqp.Publishing{}

	Inject(span, &msg)

	require.NotNil(t, msg.Headers)
	assert.Contains(t, msg.Headers, "traceparent")
}

func TestPublishConsumeRoundTrip(t *testing.T) {
	recorder := tracingtest.NewRecorder()
	publisher := recorder.Tracer("billing-api")
	consumer := recorder.Tracer("billing-worker")

	root := publisher.StartSpan(context.Background(), "charge", time.UnixMilli(0))
	msg := amqp.Publishing{MessageId: "msg-1", Body: []byte(`{}`)}

	published := StartPublishSpan(root, "", "invoices", &msg, time.UnixMilli(1))
	published.End(time.UnixMilli(2))
	root.End(time.UnixMilli(3))

	delivery := amqp.Delivery{
		Headers:     msg.Headers,
		RoutingKey:  "invoices",
		MessageId:   msg.MessageId,
		Redelivered: true,
	}
	consumed := StartConsumeSpan(context.Background(), consumer, delivery, time.UnixMilli(10))
	consumed.End(time.UnixMilli(11))

	publishSpan, ok := recorder.Find("invoices publish")
	require.True(t, ok)
	consumeSpan, ok := recorder.Find("invoices process")
	require.True(t, ok)

	assert.Equal(t, oteltrace.SpanKindProducer, publishSpan.SpanKind())
	assert.Equal(t, oteltrace.SpanKindConsumer, consumeSpan.SpanKind())
	assert.Equal(t, publishSpan.SpanContext().SpanID(), consumeSpan.Parent().SpanID())
	assert.Equal(t, root.SpanContext().TraceID(), consumeSpan.SpanContext().TraceID())

	redelivered, ok := tracingtest.Attribute(consumeSpan, "messaging.rabbitmq.redelivered")
	require.True(t, ok)
	assert.True(t, redelivered.AsBool())

	id, ok := tracingtest.Attribute(consumeSpan, "messaging.message.id")
	require.True(t, ok)
	assert.Equal(t, "msg-1", id.AsString())
}

func TestStartConsumeSpan_WithoutHeaders(t *testing.T) {
	recorder := tracingtest.NewRecorder()
	tracer := recorder.Tracer("billing-worker")

	span := StartConsumeSpan(context.Background(), tracer, amqp.Delivery{Exchange: "billing"}, time.Time{})
	span.End(time.Time{})

	ended, ok := recorder.Find("billing process")
	require.True(t, ok)
	assert.False(t, ended.Parent().IsValid())
}
