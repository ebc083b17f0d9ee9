package tracing

import (
	"fmt"
	"math"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// convertFieldToAttribute converts a Field to an OpenTelemetry attribute.
// Strings, integers, floats and booleans keep their type; everything else is
// stored as its string form.
func convertFieldToAttribute(field Field) attribute.KeyValue {
	switch v := field.Value.(type) {
	case string:
		return attribute.String(field.Key, v)
	case bool:
		return attribute.Bool(field.Key, v)
	case int:
		return attribute.Int(field.Key, v)
	case int64:
		return attribute.Int64(field.Key, v)
	case int32:
		return attribute.Int64(field.Key, int64(v))
	case int16:
		return attribute.Int64(field.Key, int64(v))
	case int8:
		return attribute.Int64(field.Key, int64(v))
	case uint:
		if uint64(v) > math.MaxInt64 {
			return attribute.String(field.Key, fmt.Sprintf("%d", v))
		}
		return attribute.Int64(field.Key, int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return attribute.String(field.Key, fmt.Sprintf("%d", v))
		}
		return attribute.Int64(field.Key, int64(v))
	case uint32:
		return attribute.Int64(field.Key, int64(v))
	case uint16:
		return attribute.Int64(field.Key, int64(v))
	case uint8:
		return attribute.Int64(field.Key, int64(v))
	case float64:
		return attribute.Float64(field.Key, v)
	case float32:
		return attribute.Float64(field.Key, float64(v))
	case []string:
		return attribute.StringSlice(field.Key, v)
	case []int64:
		return attribute.Int64Slice(field.Key, v)
	case []float64:
		return attribute.Float64Slice(field.Key, v)
	case []bool:
		return attribute.BoolSlice(field.Key, v)
	case error:
		return attribute.String(field.Key, v.Error())
	case fmt.Stringer:
		return attribute.String(field.Key, v.String())
	default:
		return attribute.String(field.Key, fmt.Sprintf("%v", v))
	}
}

// convertFieldsToAttributes returns nil for empty input to avoid allocating.
func convertFieldsToAttributes(fields []Field) []attribute.KeyValue {
	if len(fields) == 0 {
		return nil
	}

	attrs := make([]attribute.KeyValue, len(fields))
	for i, field := range fields {
		attrs[i] = convertFieldToAttribute(field)
	}
	return attrs
}

func convertSpanKind(kind SpanKind) oteltrace.SpanKind {
	switch kind {
	case SpanKindInternal:
		return oteltrace.SpanKindInternal
	case SpanKindServer:
		return oteltrace.SpanKindServer
	case SpanKindClient:
		return oteltrace.SpanKindClient
	case SpanKindProducer:
		return oteltrace.SpanKindProducer
	case SpanKindConsumer:
		return oteltrace.SpanKindConsumer
	default:
		return oteltrace.SpanKindInternal
	}
}

func convertStatus(success bool) codes.Code {
	if success {
		return codes.Ok
	}
	return codes.Error
}
