package tracingfx

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing"
	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing/provider"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides a *provider.Provider and a *tracing.Tracer scoped to the
// service name. A *provider.Config must be supplied by the application.
// Usage:
//
//	fx.New(
//	    tracingfx.ConfigModule,
//	    tracingfx.Module,
//	)
var Module = fx.Module("tracing",
	fx.Provide(
		ProvideProvider,
		ProvideTracer,
	),
)

// ModuleWithConfig provides tracing with inline config.
func ModuleWithConfig(cfg *provider.Config) fx.Option {
	return fx.Module("tracing",
		fx.Supply(cfg),
		fx.Provide(
			ProvideProvider,
			ProvideTracer,
		),
	)
}

// ProviderParams holds the dependencies of ProvideProvider.
type ProviderParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *provider.Config
	Logger    *zap.Logger `optional:"true"`
}

// ProvideProvider builds the provider and shuts it down when the app stops.
func ProvideProvider(params ProviderParams) (*provider.Provider, error) {
	if params.Config != nil && params.Config.Logger == nil && params.Logger != nil {
		params.Config.Logger = params.Logger
	}

	p, err := provider.NewProvider(context.Background(), params.Config)
	if err != nil {
		return nil, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: p.Shutdown,
	})

	return p, nil
}

// ProvideTracer returns a tracer scoped to the service name.
func ProvideTracer(p *provider.Provider) *tracing.Tracer {
	return p.Tracer("")
}
