package reward

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"prizewheel/pkg/config"
)

var Module = fx.Module("reward",
	fx.Provide(ProvideTable),
)

type Params struct {
	fx.In
	Config *config.Config
	Logger *zap.Logger
}

// ProvideTable loads REWARDS.FILE when set, otherwise the built-in table.
// An invalid table stops startup.
func ProvideTable(p Params) (Table, error) {
	if p.Config.Rewards.File == "" {
		return Default(), nil
	}
	t, err := LoadFile(p.Config.Rewards.File)
	if err != nil {
		p.Logger.Error("failed to load reward table", zap.String("file", p.Config.Rewards.File), zap.Error(err))
		return Table{}, err
	}
	p.Logger.Info("reward table loaded", zap.String("file", p.Config.Rewards.File), zap.Int("entries", t.Len()))
	return t, nil
}
