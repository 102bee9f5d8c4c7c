package wheel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"prizewheel/pkg/errutil"
	"prizewheel/services/reward"
)

func fixed(v float64) RandomSource {
	return func() float64 { return v }
}

func TestPickScenarios(t *testing.T) {
	weights := []float64{1, 1, 2}

	tests := []struct {
		name string
		r    float64
		want int
	}{
		{"zero draw", 0, 0},
		{"inside first slice", 0.99 / 4, 0},
		{"start of second slice", 0.25, 1},
		{"inside third slice", 2.5 / 4, 2},
		{"just below one", math.Nextafter(1, 0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Pick(weights, fixed(tt.r))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPickSkipsZeroWeight(t *testing.T) {
	weights := []float64{0, 3, 0, 1, 0}
	for _, r := range []float64{0, 0.1, 0.5, 0.74, 0.75, 0.9, math.Nextafter(1, 0)} {
		got, err := Pick(weights, fixed(r))
		require.NoError(t, err)
		require.Contains(t, []int{1, 3}, got, "r=%v", r)
	}
}

func TestPickDriftFallsBackToLastPositive(t *testing.T) {
	// a source returning 1 is out of contract but must still land on a real slice
	got, err := Pick([]float64{0.1, 0.2, 0.3, 0}, fixed(1))
	require.NoError(t, err)
	require.Equal(t, 2, got)
}

func TestPickRejectsInvalidWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
	}{
		{"empty", nil},
		{"all zero", []float64{0, 0}},
		{"negative", []float64{1, -1}},
		{"nan", []float64{1, math.NaN()}},
		{"inf", []float64{math.Inf(1)}},
		{"overflowing total", []float64{math.MaxFloat64, math.MaxFloat64}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Pick(tt.weights, fixed(0.5))
			require.ErrorIs(t, err, ErrInvalidWeights)
			require.Equal(t, errutil.StatusValidationFailed, errutil.StatusOf(err))
		})
	}
}

func TestPickDistribution(t *testing.T) {
	table := reward.Default()
	weights := table.Weights()
	counts := make([]int, len(weights))

	const draws = 200_000
	for range draws {
		i, err := Pick(weights, nil)
		require.NoError(t, err)
		require.GreaterOrEqual(t, i, 0)
		require.Less(t, i, len(weights))
		counts[i]++
	}

	for i := range weights {
		want := table.Probability(i)
		got := float64(counts[i]) / draws
		require.InDelta(t, want, got, 0.01, "index %d", i)
	}
}

func TestPickReward(t *testing.T) {
	table := reward.Default()
	i, r, err := PickReward(table, fixed(0))
	require.NoError(t, err)
	require.Equal(t, 0, i)
	require.Equal(t, table.At(0).ID, r.ID)
}
