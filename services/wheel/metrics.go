package wheel

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"prizewheel/services/reward"
)

const (
	rejectInProgress = "in_progress"
	rejectLocked     = "locked"
	rejectCancelled  = "cancelled"
	rejectFailed     = "failed"
)

type Metrics struct {
	spins    *prometheus.CounterVec
	rejected *prometheus.CounterVec
}

// NewMetrics registers the spin counters on reg. Registering twice on the
// same registry reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	spins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prizewheel_spins_total",
		Help: "Completed spins by reward.",
	}, []string{"reward_id", "kind"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prizewheel_spins_rejected_total",
		Help: "Spin attempts that did not produce a reward.",
	}, []string{"reason"})

	var err error
	if spins, err = register(reg, spins); err != nil {
		return nil, err
	}
	if rejected, err = register(reg, rejected); err != nil {
		return nil, err
	}
	return &Metrics{spins: spins, rejected: rejected}, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if reg == nil {
		return c, nil
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (m *Metrics) spun(r reward.Reward) {
	if m == nil {
		return
	}
	m.spins.WithLabelValues(r.ID, string(r.Kind.Type())).Inc()
}

func (m *Metrics) reject(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}
