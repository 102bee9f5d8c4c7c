package journal

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"

	"prizewheel/services/reward"
)

// Spin is one recorded wheel result on this device.
type Spin struct {
	SpinID    snowflake.ID   `gorm:"column:spin_id;primaryKey;autoIncrement:false" json:"spin_id"`
	RewardID  string         `gorm:"column:reward_id;index;not null" json:"reward_id"`
	Label     string         `gorm:"column:label;not null" json:"label"`
	SlotIndex int            `gorm:"column:slot_index;not null" json:"slot_index"`
	Kind      datatypes.JSON `gorm:"column:kind;type:text" json:"kind"`
	Winning   bool           `gorm:"column:winning;not null;default:false" json:"winning"`
	SpunAt    time.Time      `gorm:"column:spun_at;index;not null" json:"spun_at"`
}

func (Spin) TableName() string {
	return "spins"
}

// RewardKind decodes the stored kind document.
func (s *Spin) RewardKind() (reward.Kind, error) {
	if len(s.Kind) == 0 {
		return reward.NoReward{}, nil
	}
	var doc reward.KindDoc
	if err := json.Unmarshal(s.Kind, &doc); err != nil {
		return nil, err
	}
	return reward.DecodeKind(doc)
}

func newSpin(id snowflake.ID, index int, r reward.Reward, at time.Time) (*Spin, error) {
	kind, err := json.Marshal(reward.EncodeKind(r.Kind))
	if err != nil {
		return nil, err
	}
	return &Spin{
		SpinID:    id,
		RewardID:  r.ID,
		Label:     r.Label,
		SlotIndex: index,
		Kind:      datatypes.JSON(kind),
		Winning:   r.Winning(),
		SpunAt:    at.UTC(),
	}, nil
}
