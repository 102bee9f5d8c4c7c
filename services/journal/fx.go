package journal

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("journal",
	fx.Provide(ProvideJournal),
)

type Params struct {
	fx.In
	DB     *gorm.DB
	Node   *snowflake.Node
	Logger *zap.Logger
}

func ProvideJournal(p Params) (*Journal, error) {
	return New(p.DB, p.Node, p.Logger.Named("journal"))
}
