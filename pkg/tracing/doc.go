// Package tracing is a small facade over OpenTelemetry for creating, nesting
// and propagating spans.
//
// A Tracer is bound to one instrumentation scope. It starts root spans and
// decodes inbound carriers into spans that continue a remote trace:
//
//	tracer := tracing.New("checkout", tracing.WithVersion("1.4.0"))
//
//	root := tracer.StartSpan(ctx, "place-order", time.Now())
//	defer root.End(time.Now())
//
//	child := root.StartSpan("reserve-stock", time.Now())
//	child.SetAttribute("sku", "A-113")
//	child.SetStatus(true, "")
//	child.End(time.Now())
//
//	headers := child.Encode() // attach to the outbound call
//
// On the receiving side:
//
//	remote := tracer.Decode(ctx, headers)
//	span := remote.StartSpan("handle-reservation", time.Now())
//
// A span returned by Decode carries context only. It can start children and
// be encoded again, while SetAttribute, SetStatus, RecordError, AddEvent and
// End do nothing on it.
package tracing
