package journal

import (
	"context"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"prizewheel/pkg/db/pagination"
	"prizewheel/pkg/errutil"
	"prizewheel/services/reward"
)

var ErrInvalidCursor = errutil.BadRequest("invalid cursor", nil)

// Journal keeps the local history of spins. It is informational only; the
// cooldown gate never reads it.
type Journal struct {
	db   *gorm.DB
	node *snowflake.Node
	log  *zap.Logger
}

func New(conn *gorm.DB, node *snowflake.Node, log *zap.Logger) (*Journal, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := conn.AutoMigrate(&Spin{}); err != nil {
		return nil, errutil.Internal("failed to migrate spin journal", err)
	}
	return &Journal{db: conn, node: node, log: log}, nil
}

func (j *Journal) Record(ctx context.Context, index int, r reward.Reward, at time.Time) (*Spin, error) {
	spin, err := newSpin(j.node.Generate(), index, r, at)
	if err != nil {
		return nil, errutil.Internal("failed to encode reward kind", err)
	}

	if err := j.db.WithContext(ctx).Create(spin).Error; err != nil {
		j.log.Error("failed to record spin", zap.String("reward_id", r.ID), zap.Error(err))
		return nil, errutil.Internal("failed to record spin", err)
	}

	j.log.Debug("spin recorded",
		zap.String("spin_id", spin.SpinID.String()),
		zap.String("reward_id", spin.RewardID),
		zap.Bool("winning", spin.Winning),
	)
	return spin, nil
}

// List returns spins newest first.
func (j *Journal) List(ctx context.Context, p pagination.Pagination) ([]*Spin, *pagination.PageInfo, error) {
	p = p.Normalize()

	query := j.db.WithContext(ctx).Model(&Spin{}).Order("spin_id DESC").Limit(p.Limit + 1)
	if p.Cursor != "" {
		cursor, err := pagination.DecodeCursor(p.Cursor)
		if err != nil {
			return nil, nil, errutil.Wrap(ErrInvalidCursor, errutil.WithErr(err))
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, nil, errutil.Wrap(ErrInvalidCursor, errutil.WithErr(err))
		}
		query = query.Where("spin_id < ?", id.Int64())
	}

	var spins []*Spin
	if err := query.Find(&spins).Error; err != nil {
		return nil, nil, errutil.Internal("failed to list spins", err)
	}

	return pagination.BuildCursorPageInfo(spins, p.Limit, func(s *Spin) pagination.Cursor {
		return pagination.Cursor{
			ID:        strconv.FormatInt(s.SpinID.Int64(), 10),
			CreatedAt: s.SpunAt.Format(time.RFC3339Nano),
		}
	})
}

// Count returns how many times each reward id has come up.
func (j *Journal) Count(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		RewardID string
		Total    int64
	}
	err := j.db.WithContext(ctx).Model(&Spin{}).
		Select("reward_id, COUNT(*) AS total").
		Group("reward_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errutil.Internal("failed to count spins", err)
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.RewardID] = r.Total
	}
	return out, nil
}
