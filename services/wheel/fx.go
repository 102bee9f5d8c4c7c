package wheel

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"prizewheel/pkg/config"
	"prizewheel/pkg/server"
	"prizewheel/services/cooldown"
	"prizewheel/services/journal"
	"prizewheel/services/redeem"
	"prizewheel/services/reward"
)

var Module = fx.Module("wheel",
	fx.Provide(ProvideService),
)

// Gateway mounts the HTTP handler on the shared engine.
var Gateway = fx.Module("wheel.gateway",
	fx.Provide(server.AsRoutes(NewHandler)),
)

type Params struct {
	fx.In
	Config     *config.Config
	Table      reward.Table
	Gate       *cooldown.Gate
	Links      *redeem.Builder
	Journal    *journal.Journal      `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
	Tracer     trace.TracerProvider  `optional:"true"`
	Logger     *zap.Logger
}

func ProvideService(p Params) (*Service, error) {
	metrics, err := NewMetrics(p.Registerer)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithRevealDelay(p.Config.Spin.RevealDelay),
		WithMetrics(metrics),
		WithLogger(p.Logger.Named("wheel")),
	}
	if p.Journal != nil {
		opts = append(opts, WithJournal(p.Journal))
	}
	if p.Tracer != nil {
		opts = append(opts, WithTracerProvider(p.Tracer))
	}

	return NewService(p.Table, p.Gate, p.Links, opts...), nil
}
