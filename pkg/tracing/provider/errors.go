package provider

import "errors"

var (
	ErrNilConfig            = errors.New("provider: config cannot be nil")
	ErrInsecureInProduction = errors.New("provider: insecure connections are not allowed in production environment")
	ErrWeakTLS              = errors.New("provider: minimum TLS version must be 1.2 or higher")
	ErrUnknownExporter      = errors.New("provider: unknown exporter")
	ErrInvalidSampleRate    = errors.New("provider: sample rate must be between 0.0 and 1.0")
)
