package reward

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type KindType string

const (
	KindPercent  KindType = "PERCENT"
	KindItem     KindType = "ITEM"
	KindShipping KindType = "SHIPPING"
	KindNone     KindType = "NONE"
)

// Kind is the payout of a reward. The set of implementations is closed:
// Percent, FreeItem, FreeShipping and NoReward.
type Kind interface {
	Type() KindType
	isKind()
}

// Percent is a percentage discount on the next order.
type Percent struct {
	Value float64
}

// FreeItem is a free menu item.
type FreeItem struct {
	Name string
}

type FreeShipping struct{}

type NoReward struct{}

func (Percent) Type() KindType      { return KindPercent }
func (FreeItem) Type() KindType     { return KindItem }
func (FreeShipping) Type() KindType { return KindShipping }
func (NoReward) Type() KindType     { return KindNone }

func (Percent) isKind()      {}
func (FreeItem) isKind()     {}
func (FreeShipping) isKind() {}
func (NoReward) isKind()     {}

// Winning reports whether the kind pays anything out. A nil kind is NoReward.
func Winning(k Kind) bool {
	switch k.(type) {
	case Percent, FreeItem, FreeShipping:
		return true
	case NoReward:
		return false
	default:
		return false
	}
}

// KindDoc is the wire form of a Kind, shared by JSON and YAML.
type KindDoc struct {
	Type  KindType `json:"type" yaml:"type"`
	Value any      `json:"value,omitempty" yaml:"value,omitempty"`
}

func EncodeKind(k Kind) KindDoc {
	switch v := k.(type) {
	case Percent:
		return KindDoc{Type: KindPercent, Value: v.Value}
	case FreeItem:
		return KindDoc{Type: KindItem, Value: v.Name}
	case FreeShipping:
		return KindDoc{Type: KindShipping, Value: "FREE"}
	case NoReward:
		return KindDoc{Type: KindNone}
	default:
		return KindDoc{Type: KindNone}
	}
}

func DecodeKind(doc KindDoc) (Kind, error) {
	switch KindType(strings.ToUpper(string(doc.Type))) {
	case KindPercent:
		v, err := toFloat(doc.Value)
		if err != nil {
			return nil, fmt.Errorf("percent value: %w", err)
		}
		return Percent{Value: v}, nil
	case KindItem:
		name, ok := doc.Value.(string)
		if !ok {
			return nil, fmt.Errorf("item value must be a string, got %T", doc.Value)
		}
		return FreeItem{Name: strings.TrimSpace(name)}, nil
	case KindShipping:
		return FreeShipping{}, nil
	case KindNone, "":
		return NoReward{}, nil
	default:
		return nil, fmt.Errorf("unknown reward kind %q", doc.Type)
	}
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", v)
	}
	return f, nil
}
