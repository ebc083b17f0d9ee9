package tracingfx

import (
	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing/provider"
	"go.uber.org/fx"
)

// ConfigModule provides the provider config from environment variables.
// See provider.ConfigFromEnv for the variables read.
var ConfigModule = fx.Provide(provider.ConfigFromEnv)
