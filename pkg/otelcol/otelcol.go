package otelcol

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"prizewheel/pkg/config"
	"prizewheel/pkg/otelcol/exporters"
)

var Module = fx.Module("otelcol",
	fx.Provide(ProvideTracerProvider),
)

func defaultTraceProviderOption() []sdktrace.TracerProviderOption {
	return []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.Default()),
	}
}

func ProvideTrace(exporter sdktrace.SpanExporter, opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	if len(opts) == 0 {
		opts = defaultTraceProviderOption()
	}

	opts = append(opts, sdktrace.WithBatcher(exporter))

	return sdktrace.NewTracerProvider(opts...)
}

type Params struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *zap.Logger
}

// ProvideTracerProvider exports spans over OTLP/HTTP when OTEL.ENDPOINT is
// set. Without an endpoint the global (no-op) provider is returned.
func ProvideTracerProvider(p Params) (trace.TracerProvider, error) {
	endpoint := p.Config.Otel.Endpoint
	if endpoint == "" {
		return otel.GetTracerProvider(), nil
	}

	// the exporter connects lazily, so startup does not block on the collector
	exporter, err := exporters.ProvideHttp(p.Config)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", p.Config.AppName),
		attribute.String("deployment.environment", p.Config.AppEnv),
	))
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	tp := ProvideTrace(exporter, sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	p.Logger.Info("[otel] exporting traces", zap.String("endpoint", endpoint))

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}
