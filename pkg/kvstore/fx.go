package kvstore

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"prizewheel/pkg/config"
)

var Module = fx.Module("kvstore",
	fx.Provide(Provide),
)

type Params struct {
	fx.In
	Config *config.Config
	Logger *zap.Logger
	DB     *gorm.DB `optional:"true"`
}

// Provide picks the backend named by STORAGE.DRIVER.
func Provide(p Params) (Store, error) {
	driver := p.Config.Storage.Driver
	log := p.Logger.With(zap.String("driver", driver))

	switch driver {
	case "memory":
		log.Warn("[kvstore] using in-memory storage, cooldown resets on restart")
		return NewMemory(), nil
	case "file":
		s, err := NewFile(p.Config.Storage.Path)
		if err != nil {
			return nil, err
		}
		log.Info("[kvstore] using file storage", zap.String("path", s.Path()))
		return s, nil
	case "sqlite", "":
		if p.DB == nil {
			return nil, fmt.Errorf("kvstore: sqlite driver needs a database")
		}
		log.Info("[kvstore] using sqlite storage")
		return NewSQLite(p.DB)
	default:
		return nil, fmt.Errorf("kvstore: unknown driver %q", driver)
	}
}
