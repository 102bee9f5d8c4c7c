package wheel

import (
	"fmt"
	"math"
	"math/rand/v2"

	"prizewheel/pkg/errutil"
	"prizewheel/services/reward"
)

// RandomSource returns a uniform value in [0, 1).
type RandomSource func() float64

var ErrInvalidWeights = errutil.ValidationFailed("weights must be non-negative with a positive total", nil)

func DefaultRandom() float64 {
	return rand.Float64()
}

// Pick returns an index with probability weight[i]/total. Zero-weight entries
// are never chosen.
func Pick(weights []float64, rnd RandomSource) (int, error) {
	if rnd == nil {
		rnd = DefaultRandom
	}

	total := 0.0
	last := -1
	for i, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, errutil.Wrap(ErrInvalidWeights, errutil.WithDetails(errutil.Detail{
				Field:   fmt.Sprintf("weights[%d]", i),
				Message: fmt.Sprintf("invalid weight %v", w),
			}))
		}
		if w > 0 {
			last = i
		}
		total += w
	}
	if last < 0 || math.IsInf(total, 0) {
		return 0, errutil.Wrap(ErrInvalidWeights, errutil.WithDetails(errutil.Detail{
			Field:   "weights",
			Message: fmt.Sprintf("total weight %v", total),
		}))
	}

	r := rnd() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i, nil
		}
	}

	// floating point drift can leave r at zero after the last entry
	return last, nil
}

func PickReward(table reward.Table, rnd RandomSource) (int, reward.Reward, error) {
	i, err := Pick(table.Weights(), rnd)
	if err != nil {
		return 0, reward.Reward{}, err
	}
	return i, table.At(i), nil
}
