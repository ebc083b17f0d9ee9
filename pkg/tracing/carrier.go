package tracing

import "go.opentelemetry.io/otel/propagation"

// Carrier is the flat key/value representation of a trace context, suitable
// for attaching to an outbound request. Key names are chosen by the propagator.
type Carrier map[string]string

var _ propagation.TextMapCarrier = Carrier(nil)

// Get returns the value stored under key, or "" if absent.
func (c Carrier) Get(key string) string {
	return propagation.MapCarrier(c).Get(key)
}

// Set stores value under key. Set on a nil Carrier panics like any nil map write.
func (c Carrier) Set(key, value string) {
	propagation.MapCarrier(c).Set(key, value)
}

// Keys lists the keys stored in the carrier.
func (c Carrier) Keys() []string {
	return propagation.MapCarrier(c).Keys()
}

// DefaultPropagator returns the W3C Trace Context and Baggage composite used
// when no propagator is configured.
func DefaultPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}
