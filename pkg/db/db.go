package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"prizewheel/pkg/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Module = fx.Module("database",
	fx.Provide(New),
	fx.Invoke(registerClose),
)

type Params struct {
	fx.In
	Config *config.Config
	Logger *zap.Logger
}

// New opens the device-local SQLite database under DATABASE.PATH.
func New(p Params) (*gorm.DB, error) {
	path := p.Config.Database.Path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	logLevel := logger.Info
	showSQL := true
	if p.Config.AppEnv == "production" {
		logLevel = logger.Warn
		showSQL = false
	}

	db, err := Open(sqlite.Open(path), NewZapGormLogger(p.Logger, logLevel, showSQL))
	if err != nil {
		p.Logger.Error("[DB] failed to open database", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	p.Logger.Info("[DB] database ready", zap.String("path", path))
	return db, nil
}

func Open(dialector gorm.Dialector, l logger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: l})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// NewTest opens a private in-memory database.
func NewTest() (*gorm.DB, error) {
	return Open(sqlite.Open(":memory:"), logger.Default.LogMode(logger.Silent))
}

func registerClose(lc fx.Lifecycle, db *gorm.DB, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			log.Info("[DB] closing database")
			return sqlDB.Close()
		},
	})
}

// Ping reports whether the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
