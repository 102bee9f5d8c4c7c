package profiling

import (
	"context"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"prizewheel/pkg/config"
)

var Module = fx.Module("profiling", fx.Invoke(ProvideProfiling))

// ProvideProfiling pushes continuous profiles to PYROSCOPE.ADDR while the
// server runs. It does nothing when the address is empty.
func ProvideProfiling(lc fx.Lifecycle, c *config.Config, log *zap.Logger) {
	if c.Pyroscope.Addr == "" {
		log.Debug("pyroscope disabled")
		return
	}

	var profiler *pyroscope.Profiler
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting pyroscope", zap.String("app_name", c.AppName), zap.String("pyroscope_addr", c.Pyroscope.Addr))
			p, err := pyroscope.Start(pyroscope.Config{
				ApplicationName: c.AppName,
				ServerAddress:   c.Pyroscope.Addr,
				ProfileTypes: []pyroscope.ProfileType{
					pyroscope.ProfileCPU,
					pyroscope.ProfileAllocObjects,
					pyroscope.ProfileAllocSpace,
					pyroscope.ProfileInuseObjects,
					pyroscope.ProfileInuseSpace,
					pyroscope.ProfileGoroutines,
				},
				Tags: map[string]string{
					"service_name": c.AppName,
					"env":          c.AppEnv,
				},
			})
			if err != nil {
				return err
			}
			profiler = p
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if profiler == nil {
				return nil
			}
			log.Info("stopping pyroscope")
			return profiler.Stop()
		},
	})
}
