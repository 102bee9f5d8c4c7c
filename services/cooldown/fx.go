package cooldown

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"prizewheel/pkg/config"
	"prizewheel/pkg/kvstore"
)

var Module = fx.Module("cooldown",
	fx.Provide(ProvideGate),
)

type Params struct {
	fx.In
	Config *config.Config
	Store  kvstore.Store
	Logger *zap.Logger
}

func ProvideGate(p Params) *Gate {
	return NewGate(p.Store,
		WithKey(p.Config.Cooldown.Key),
		WithWindow(p.Config.Cooldown.Window),
		WithLogger(p.Logger.Named("cooldown")),
	)
}
