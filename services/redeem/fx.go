package redeem

import (
	"go.uber.org/fx"

	"prizewheel/pkg/config"
)

var Module = fx.Module("redeem",
	fx.Provide(ProvideBuilder),
)

func ProvideBuilder(cfg *config.Config) (*Builder, error) {
	return NewBuilder(cfg.Redeem.BaseURL, cfg.Redeem.Phone)
}
