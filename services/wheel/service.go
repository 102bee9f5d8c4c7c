package wheel

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"prizewheel/pkg/db/pagination"
	"prizewheel/pkg/errutil"
	"prizewheel/services/cooldown"
	"prizewheel/services/journal"
	"prizewheel/services/redeem"
	"prizewheel/services/reward"
)

const (
	DefaultRevealDelay = 5400 * time.Millisecond

	tracerName = "prizewheel/services/wheel"
)

var (
	ErrSpinInProgress = errutil.Conflict("a spin is already in progress", nil)
	ErrLocked         = errutil.TooManyRequest("wheel is locked for this device", nil)
	ErrRewardNotFound = errutil.NotFound("reward not found", nil)
)

// Journal is the spin history the service appends to.
type Journal interface {
	Record(ctx context.Context, index int, r reward.Reward, at time.Time) (*journal.Spin, error)
	List(ctx context.Context, p pagination.Pagination) ([]*journal.Spin, *pagination.PageInfo, error)
	Count(ctx context.Context) (map[string]int64, error)
}

type Result struct {
	Index      int           `json:"index"`
	Reward     reward.Reward `json:"reward"`
	RedeemURL  string        `json:"redeem_url,omitempty"`
	SpunAt     time.Time     `json:"spun_at"`
	NextSpinAt time.Time     `json:"next_spin_at,omitzero"`
	Recorded   bool          `json:"recorded"`
}

type Status struct {
	State       cooldown.State `json:"state"`
	Remaining   time.Duration  `json:"-"`
	RemainingMS int64          `json:"remaining_ms"`
	Countdown   string         `json:"countdown"`
	NextSpinAt  *time.Time     `json:"next_spin_at,omitempty"`
}

type Service struct {
	table   reward.Table
	gate    *cooldown.Gate
	links   *redeem.Builder
	journal Journal
	rnd     RandomSource
	delay   time.Duration
	metrics *Metrics
	tracer  trace.Tracer
	log     *zap.Logger

	spinning atomic.Bool
}

type Option func(*Service)

func WithRandom(rnd RandomSource) Option {
	return func(s *Service) { s.rnd = rnd }
}

func WithRevealDelay(d time.Duration) Option {
	return func(s *Service) { s.delay = d }
}

func WithJournal(j Journal) Option {
	return func(s *Service) { s.journal = j }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) { s.tracer = tp.Tracer(tracerName) }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(table reward.Table, gate *cooldown.Gate, links *redeem.Builder, opts ...Option) *Service {
	s := &Service{
		table:  table,
		gate:   gate,
		links:  links,
		rnd:    DefaultRandom,
		delay:  DefaultRevealDelay,
		tracer: otel.GetTracerProvider().Tracer(tracerName),
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spin runs one full spin: gate claim, selection, reveal delay and
// persistence. The window is claimed in storage before the reveal so a second
// process on the device is turned away; cancelling ctx before the reveal
// completes releases the claim.
func (s *Service) Spin(ctx context.Context) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "wheel.Spin")
	defer span.End()

	if !s.spinning.CompareAndSwap(false, true) {
		s.metrics.reject(rejectInProgress)
		span.SetStatus(codes.Error, "in progress")
		return nil, ErrSpinInProgress
	}
	defer s.spinning.Store(false)

	start := s.gate.Now()
	claim, left, err := s.gate.Claim(ctx, start)
	switch {
	case err != nil:
		// Storage is unreachable: reads fail open, so spin unclaimed.
		s.log.Warn("failed to claim spin, continuing unclaimed", zap.Error(err))
		span.RecordError(err)
	case claim == nil:
		s.metrics.reject(rejectLocked)
		span.SetStatus(codes.Error, "locked")
		return nil, lockedError(start, left)
	}

	index, won, err := PickReward(s.table, s.rnd)
	if err != nil {
		s.release(ctx, claim)
		s.metrics.reject(rejectFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, "pick failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("wheel.index", index),
		attribute.String("wheel.reward_id", won.ID),
		attribute.String("wheel.kind", string(won.Kind.Type())),
	)

	if err := s.waitReveal(ctx); err != nil {
		s.release(ctx, claim)
		s.metrics.reject(rejectCancelled)
		span.SetStatus(codes.Error, "cancelled")
		return nil, errutil.ClientClosedRequest("spin cancelled", err)
	}

	now := s.gate.Now()
	result := &Result{
		Index:  index,
		Reward: won,
		SpunAt: now.UTC(),
	}

	// The outcome is settled; persist it even if the caller goes away now.
	persistCtx := context.WithoutCancel(ctx)
	if claim != nil {
		err = claim.Commit(persistCtx, now)
	} else {
		err = s.gate.RecordSpin(persistCtx, now)
	}
	if err != nil {
		s.log.Warn("failed to persist spin, gate stays open", zap.Error(err))
		span.RecordError(err)
	} else {
		result.Recorded = true
		result.NextSpinAt = now.Add(s.gate.Window()).UTC()
	}

	if s.journal != nil {
		if _, err := s.journal.Record(persistCtx, index, won, now); err != nil {
			s.log.Warn("failed to journal spin", zap.String("reward_id", won.ID), zap.Error(err))
		}
	}

	if won.Winning() && s.links != nil {
		result.RedeemURL = s.links.URL(won)
	}

	s.metrics.spun(won)
	s.log.Info("wheel spun",
		zap.Int("index", index),
		zap.String("reward_id", won.ID),
		zap.Bool("winning", won.Winning()),
		zap.Bool("recorded", result.Recorded),
	)

	return result, nil
}

func lockedError(now time.Time, left time.Duration) error {
	return errutil.Wrap(ErrLocked, errutil.WithDetails(
		errutil.Detail{Field: "retry_after", Message: cooldown.FormatHMS(left)},
		errutil.Detail{Field: "next_spin_at", Message: cooldown.FormatTimestamp(now.Add(left))},
	))
}

func (s *Service) release(ctx context.Context, claim *cooldown.Claim) {
	if claim == nil {
		return
	}
	if err := claim.Release(ctx); err != nil {
		s.log.Warn("failed to release spin claim", zap.Error(err))
	}
}

func (s *Service) waitReveal(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Service) Status(ctx context.Context) Status {
	left := s.gate.RemainingLockTime(ctx)
	st := Status{
		State:       cooldown.Available,
		Remaining:   left,
		RemainingMS: left.Milliseconds(),
		Countdown:   cooldown.FormatHMS(left),
	}
	if left > 0 {
		next := s.gate.Now().Add(left).UTC()
		st.State = cooldown.Locked
		st.NextSpinAt = &next
	}
	return st
}

func (s *Service) Table() reward.Table {
	return s.table
}

func (s *Service) Reward(id string) (reward.Reward, error) {
	r, _, ok := s.table.ByID(id)
	if !ok {
		return reward.Reward{}, errutil.Wrap(ErrRewardNotFound, errutil.WithDetails(errutil.Detail{Field: "id", Message: id}))
	}
	return r, nil
}

func (s *Service) RedeemURL(id string) (string, error) {
	r, err := s.Reward(id)
	if err != nil {
		return "", err
	}
	return s.links.RedeemURL(r)
}

func (s *Service) QRCode(id string, size int) ([]byte, error) {
	r, err := s.Reward(id)
	if err != nil {
		return nil, err
	}
	return s.links.QRCode(r, size)
}

func (s *Service) History(ctx context.Context, p pagination.Pagination) ([]*journal.Spin, *pagination.PageInfo, error) {
	if s.journal == nil {
		return []*journal.Spin{}, &pagination.PageInfo{}, nil
	}
	return s.journal.List(ctx, p)
}

// RewardStat compares how often a reward came up on this device with its
// configured probability.
type RewardStat struct {
	RewardID    string  `json:"reward_id"`
	Label       string  `json:"label"`
	Spins       int64   `json:"spins"`
	Observed    float64 `json:"observed"`
	Probability float64 `json:"probability"`
}

// Stats returns one entry per table slot in table order. Journal rows for
// rewards no longer in the table are left out of the shares.
func (s *Service) Stats(ctx context.Context) ([]RewardStat, error) {
	counts := map[string]int64{}
	if s.journal != nil {
		var err error
		if counts, err = s.journal.Count(ctx); err != nil {
			return nil, err
		}
	}

	var total int64
	for _, r := range s.table.Entries() {
		total += counts[r.ID]
	}

	out := make([]RewardStat, 0, s.table.Len())
	for i, r := range s.table.Entries() {
		st := RewardStat{
			RewardID:    r.ID,
			Label:       r.Label,
			Spins:       counts[r.ID],
			Probability: s.table.Probability(i),
		}
		if total > 0 {
			st.Observed = float64(st.Spins) / float64(total)
		}
		out = append(out, st)
	}
	return out, nil
}

// IsLocked reports whether err came from a spin attempt during cooldown.
func IsLocked(err error) bool {
	return errors.Is(err, ErrLocked)
}
