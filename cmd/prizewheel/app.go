package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"prizewheel/pkg/config"
	"prizewheel/pkg/db"
	"prizewheel/pkg/gen"
	"prizewheel/pkg/health"
	"prizewheel/pkg/kvstore"
	"prizewheel/pkg/logger"
	"prizewheel/pkg/otelcol"
	"prizewheel/pkg/profiling"
	"prizewheel/pkg/server"
	"prizewheel/services/cooldown"
	"prizewheel/services/journal"
	"prizewheel/services/redeem"
	"prizewheel/services/reward"
	"prizewheel/services/wheel"
)

const stopTimeout = 5 * time.Second

type deps struct {
	svc   *wheel.Service
	gate  *cooldown.Gate
	links *redeem.Builder
}

func baseOptions(opts cliOptions) []fx.Option {
	return []fx.Option{
		fx.Supply(config.Source{File: opts.configFile}),
		config.Module,
		logger.Module,
		db.Module,
		gen.Module,
		kvstore.Module,
		reward.Module,
		cooldown.Module,
		redeem.Module,
		journal.Module,
		wheel.Module,
		otelcol.Module,
		fx.Provide(
			provideRegisterer,
			provideGatherer,
		),
		fxLogger,
	}
}

var fxLogger = fx.WithLogger(func() fxevent.Logger {
	return fxevent.NopLogger
})

func provideRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

func provideGatherer() prometheus.Gatherer {
	return prometheus.DefaultGatherer
}

// withApp starts the dependency graph without the HTTP server, runs fn and
// stops everything again.
func withApp(ctx context.Context, opts cliOptions, fn func(deps) error) error {
	var d deps
	app := fx.New(append(baseOptions(opts),
		fx.Populate(&d.svc, &d.gate, &d.links),
	)...)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(d)
}

func serve(opts cliOptions) error {
	app := fx.New(append(baseOptions(opts),
		health.Module,
		profiling.Module,
		server.ProvideHTTPServer,
		wheel.Gateway,
	)...)
	if err := app.Err(); err != nil {
		return err
	}
	app.Run()
	return nil
}
