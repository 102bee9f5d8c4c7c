package kvstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"prizewheel/pkg/db"
)

// Entry is one row of the device_state table.
type Entry struct {
	Key       string    `gorm:"column:state_key;primaryKey;type:varchar(128)"`
	Value     string    `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Entry) TableName() string {
	return "device_state"
}

type SQLite struct {
	db *gorm.DB
}

// NewSQLite migrates the device_state table on the given database.
func NewSQLite(conn *gorm.DB) (*SQLite, error) {
	if err := conn.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}
	return &SQLite{db: conn}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var e Entry
	err := s.db.WithContext(ctx).Where("state_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return e.Value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "state_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&Entry{Key: key, Value: value}).Error
}

// CompareAndSwap relies on single conditional statements, which SQLite
// applies atomically for every connection to the same file.
func (s *SQLite) CompareAndSwap(ctx context.Context, key, old, next string) (bool, error) {
	if old == "" {
		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&Entry{Key: key, Value: next})
		if res.Error != nil {
			return false, res.Error
		}
		if res.RowsAffected == 1 {
			return true, nil
		}
	}

	res := s.db.WithContext(ctx).Model(&Entry{}).
		Where("state_key = ? AND value = ?", key, old).
		Updates(map[string]any{"value": next, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *SQLite) Ping(ctx context.Context) error {
	return db.Ping(ctx, s.db)
}
