package reward

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"prizewheel/pkg/errutil"
)

func TestDefaultTable(t *testing.T) {
	tbl := Default()

	require.Equal(t, 9, tbl.Len())
	require.Equal(t, float64(100), tbl.TotalWeight())
	require.InDelta(t, 0.25, tbl.Probability(1), 1e-9)

	r, idx, ok := tbl.ByID("pct50")
	require.True(t, ok)
	require.Equal(t, 4, idx)
	require.Equal(t, Percent{Value: 50}, r.Kind)

	_, _, ok = tbl.ByID("nope")
	require.False(t, ok)
}

func TestTableIsImmutable(t *testing.T) {
	tbl := Default()
	entries := tbl.Entries()
	entries[0].Weight = 1000
	weights := tbl.Weights()
	weights[1] = 0

	require.Equal(t, float64(15), tbl.At(0).Weight)
	require.Equal(t, float64(25), tbl.At(1).Weight)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		entries []Reward
		field   string
	}{
		{name: "empty", entries: nil, field: "rewards"},
		{
			name:    "zero total",
			entries: []Reward{{ID: "a", Kind: NoReward{}}, {ID: "b", Kind: NoReward{}}},
			field:   "rewards",
		},
		{
			name:    "negative weight",
			entries: []Reward{{ID: "a", Weight: -1, Kind: NoReward{}}, {ID: "b", Weight: 2, Kind: NoReward{}}},
			field:   "rewards[0]",
		},
		{
			name:    "nan weight",
			entries: []Reward{{ID: "a", Weight: math.NaN(), Kind: NoReward{}}},
			field:   "rewards[0]",
		},
		{
			name:    "duplicate id",
			entries: []Reward{{ID: "a", Weight: 1, Kind: NoReward{}}, {ID: "a", Weight: 1, Kind: NoReward{}}},
			field:   "rewards[1]",
		},
		{
			name:    "percent out of range",
			entries: []Reward{{ID: "a", Weight: 1, Kind: Percent{Value: 150}}},
			field:   "rewards[0]",
		},
		{
			name:    "item without name",
			entries: []Reward{{ID: "a", Weight: 1, Kind: FreeItem{Name: " "}}},
			field:   "rewards[0]",
		},
		{
			name:    "missing kind",
			entries: []Reward{{ID: "a", Weight: 1}},
			field:   "rewards[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.entries...)
			require.ErrorIs(t, err, ErrInvalidTable)

			var be errutil.BaseError
			require.True(t, errutil.As(err, &be))
			require.Equal(t, errutil.StatusValidationFailed, be.Code)
			require.NotEmpty(t, be.Details)
			require.Equal(t, tt.field, be.Details[0].Field)
		})
	}
}

func TestZeroWeightEntryIsAllowed(t *testing.T) {
	tbl, err := NewTable(
		Reward{ID: "never", Weight: 0, Kind: NoReward{}},
		Reward{ID: "always", Weight: 3, Kind: FreeShipping{}},
	)
	require.NoError(t, err)
	require.Equal(t, float64(0), tbl.Probability(0))
	require.Equal(t, float64(1), tbl.Probability(1))
}

func TestParseYAML(t *testing.T) {
	doc := []byte(`
rewards:
  - id: pct10
    label: 10% OFF
    weight: 3
    kind: {type: PERCENT, value: 10}
  - label: Free Shipping
    weight: 1.5
    kind: {type: shipping, value: FREE}
    text: light
  - id: dog
    label: Sushi Dog gratis
    weight: 2
    kind: {type: ITEM, value: Sushi Dog}
  - id: none
    label: Seguí participando
    weight: 0
    kind: {type: NONE}
`)
	tbl, err := Parse(doc)
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Len())

	require.Equal(t, Percent{Value: 10}, tbl.At(0).Kind)
	require.Equal(t, "free-shipping", tbl.At(1).ID)
	require.Equal(t, FreeShipping{}, tbl.At(1).Kind)
	require.Equal(t, TextLight, tbl.At(1).Text)
	require.Equal(t, FreeItem{Name: "Sushi Dog"}, tbl.At(2).Kind)
	require.Equal(t, NoReward{}, tbl.At(3).Kind)
	require.Equal(t, TextDark, tbl.At(3).Text)
	require.Equal(t, 6.5, tbl.TotalWeight())
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := Parse([]byte("rewards:\n  - id: x\n    weight: 1\n    kind: {type: CASHBACK}\n"))
	require.ErrorIs(t, err, ErrInvalidTable)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rewards:\n  - id: a\n    weight: 1\n    kind: {type: NONE}\n"), 0o644))

	tbl, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRewardJSON(t *testing.T) {
	r := Default().At(5)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"id": "dog",
		"label": "Sushi Dog gratis",
		"detail": "Un Sushi Dog de regalo 🐶🍣",
		"weight": 8,
		"kind": {"type": "ITEM", "value": "Sushi Dog"},
		"fill": "#C6A05A",
		"text": "dark",
		"winning": true
	}`, string(data))

	var back Reward
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, r, back)
}

func TestWinning(t *testing.T) {
	require.True(t, Winning(Percent{Value: 5}))
	require.True(t, Winning(FreeItem{Name: "x"}))
	require.True(t, Winning(FreeShipping{}))
	require.False(t, Winning(NoReward{}))
	require.False(t, Winning(nil))
}
