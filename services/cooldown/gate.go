package cooldown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultWindow = 24 * time.Hour
	DefaultKey    = "nova_last_spin_at"

	// UTC with millisecond precision, e.g. 2025-03-01T18:04:05.123Z.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"

	claimAttempts = 3
)

var ErrClaimLost = errors.New("cooldown: claim was overwritten")

// Storage is the device-local string store holding the last-spin timestamp.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Swapper is implemented by storage that can compare-and-swap a key
// atomically. Without it the gate serialises claims within this process only.
type Swapper interface {
	CompareAndSwap(ctx context.Context, key, old, next string) (swapped bool, err error)
}

type State int

const (
	Available State = iota
	Locked
)

func (s State) String() string {
	switch s {
	case Available:
		return "AVAILABLE"
	case Locked:
		return "LOCKED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Gate allows one spin per window per device. Reads fail open: a timestamp
// that cannot be read or parsed counts as Available.
type Gate struct {
	store  Storage
	key    string
	window time.Duration
	now    func() time.Time
	log    *zap.Logger

	mu sync.Mutex
}

type Option func(*Gate)

func WithKey(key string) Option {
	return func(g *Gate) { g.key = key }
}

func WithWindow(d time.Duration) Option {
	return func(g *Gate) { g.window = d }
}

func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(g *Gate) { g.log = log }
}

func NewGate(store Storage, opts ...Option) *Gate {
	g := &Gate{
		store:  store,
		key:    DefaultKey,
		window: DefaultWindow,
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gate) Window() time.Duration {
	return g.window
}

func (g *Gate) Now() time.Time {
	return g.now()
}

// LastSpin returns the persisted last-spin instant, if any.
func (g *Gate) LastSpin(ctx context.Context) (time.Time, bool) {
	if g.store == nil {
		return time.Time{}, false
	}

	raw, ok, err := g.store.Get(ctx, g.key)
	if err != nil {
		g.log.Warn("cooldown storage unavailable, treating as available",
			zap.String("key", g.key), zap.Error(err))
		return time.Time{}, false
	}
	if !ok || raw == "" {
		return time.Time{}, false
	}

	last, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		g.log.Warn("ignoring unparsable last spin timestamp",
			zap.String("key", g.key), zap.String("value", raw), zap.Error(err))
		return time.Time{}, false
	}
	return last, true
}

// RemainingLockTime is max(0, lastSpin + window - now), capped at window.
func (g *Gate) RemainingLockTime(ctx context.Context) time.Duration {
	last, ok := g.LastSpin(ctx)
	if !ok {
		return 0
	}
	return g.remaining(last, g.now())
}

func (g *Gate) remaining(last, now time.Time) time.Duration {
	left := last.Add(g.window).Sub(now)
	if left <= 0 {
		return 0
	}
	// A last spin in the future means the device clock went backwards.
	if left > g.window {
		return g.window
	}
	return left
}

func (g *Gate) Available(ctx context.Context) bool {
	return g.RemainingLockTime(ctx) == 0
}

func (g *Gate) State(ctx context.Context) State {
	if g.Available(ctx) {
		return Available
	}
	return Locked
}

// NextSpinAt is the instant the gate opens again; ok is false when it is
// already open.
func (g *Gate) NextSpinAt(ctx context.Context) (time.Time, bool) {
	now := g.now()
	last, ok := g.LastSpin(ctx)
	if !ok {
		return time.Time{}, false
	}
	left := g.remaining(last, now)
	if left == 0 {
		return time.Time{}, false
	}
	return now.Add(left), true
}

// RecordSpin persists now as the last spin. Last writer wins.
func (g *Gate) RecordSpin(ctx context.Context, now time.Time) error {
	if g.store == nil {
		return fmt.Errorf("cooldown: no storage configured")
	}
	value := FormatTimestamp(now)
	if err := g.store.Set(ctx, g.key, value); err != nil {
		return fmt.Errorf("cooldown: record spin: %w", err)
	}
	g.log.Debug("spin recorded", zap.String("key", g.key), zap.String("at", value))
	return nil
}

// Claim takes the window starting at now before the outcome is known, so
// concurrent spinners sharing the storage cannot both pass the gate. When the
// gate is locked it returns a nil claim and the remaining lock time.
func (g *Gate) Claim(ctx context.Context, now time.Time) (*Claim, time.Duration, error) {
	if g.store == nil {
		return nil, 0, fmt.Errorf("cooldown: no storage configured")
	}

	value := FormatTimestamp(now)
	for range claimAttempts {
		raw, ok, err := g.store.Get(ctx, g.key)
		if err != nil {
			return nil, 0, fmt.Errorf("cooldown: claim: %w", err)
		}
		if !ok {
			raw = ""
		}
		if left := g.remainingRaw(raw, now); left > 0 {
			return nil, left, nil
		}

		swapped, err := g.compareAndSwap(ctx, raw, value)
		if err != nil {
			return nil, 0, fmt.Errorf("cooldown: claim: %w", err)
		}
		if swapped {
			g.log.Debug("spin claimed", zap.String("key", g.key), zap.String("at", value))
			return &Claim{gate: g, prev: raw, value: value}, 0, nil
		}
	}

	// Another spinner keeps changing the key; whoever holds it is mid-spin.
	return nil, g.window, nil
}

// remainingRaw is the lock time implied by a stored value. Unparsable values
// count as no prior spin.
func (g *Gate) remainingRaw(raw string, now time.Time) time.Duration {
	if raw == "" {
		return 0
	}
	last, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return 0
	}
	return g.remaining(last, now)
}

func (g *Gate) compareAndSwap(ctx context.Context, old, next string) (bool, error) {
	if s, ok := g.store.(Swapper); ok {
		return s.CompareAndSwap(ctx, g.key, old, next)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	raw, _, err := g.store.Get(ctx, g.key)
	if err != nil {
		return false, err
	}
	if raw != old {
		return false, nil
	}
	return true, g.store.Set(ctx, g.key, next)
}

// Claim is a window taken by Gate.Claim. It must end in Commit or Release.
// Both persist even when ctx is already cancelled.
type Claim struct {
	gate  *Gate
	prev  string
	value string
}

// Commit replaces the claim with the final spin instant.
func (c *Claim) Commit(ctx context.Context, at time.Time) error {
	value := FormatTimestamp(at)
	swapped, err := c.gate.compareAndSwap(context.WithoutCancel(ctx), c.value, value)
	if err != nil {
		return fmt.Errorf("cooldown: record spin: %w", err)
	}
	if !swapped {
		return ErrClaimLost
	}
	c.value = value
	c.gate.log.Debug("spin recorded", zap.String("key", c.gate.key), zap.String("at", value))
	return nil
}

// Release restores the value seen before the claim, reopening the gate.
func (c *Claim) Release(ctx context.Context) error {
	swapped, err := c.gate.compareAndSwap(context.WithoutCancel(ctx), c.value, c.prev)
	if err != nil {
		return fmt.Errorf("cooldown: release claim: %w", err)
	}
	if !swapped {
		return ErrClaimLost
	}
	c.gate.log.Debug("spin claim released", zap.String("key", c.gate.key))
	return nil
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
