package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"prizewheel/pkg/kvstore"
)

func TestFormatHMS(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{-time.Second, "00:00:00"},
		{time.Millisecond, "00:00:01"},
		{time.Second, "00:00:01"},
		{1500 * time.Millisecond, "00:00:02"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{23*time.Hour + 59*time.Minute + 59*time.Second, "23:59:59"},
		{24 * time.Hour, "24:00:00"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatHMS(tt.in), tt.in.String())
	}
}

func TestWatchClosesWhenAvailable(t *testing.T) {
	store := kvstore.NewMemory()
	clock := &fakeClock{now: t0}
	g := NewGate(store, WithClock(func() time.Time { return clock.now }), WithWindow(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seed(t, store, t0.Add(-time.Hour))

	var got []time.Duration
	for left := range g.Watch(ctx, time.Millisecond) {
		got = append(got, left)
	}
	require.Equal(t, []time.Duration{0}, got)
}

func TestWatchStopsOnContextCancel(t *testing.T) {
	store := kvstore.NewMemory()
	g := NewGate(store, WithClock(func() time.Time { return t0 }))
	seed(t, store, t0)

	ctx, cancel := context.WithCancel(context.Background())
	ch := g.Watch(ctx, time.Millisecond)

	first := <-ch
	require.Equal(t, 24*time.Hour, first)

	cancel()
	for range ch {
	}
}
