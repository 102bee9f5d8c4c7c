package cooldown

import (
	"context"
	"fmt"
	"time"
)

// FormatHMS renders d as HH:MM:SS, rounding up to the whole second so a
// countdown never shows 00:00:00 while still locked.
func FormatHMS(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}
	total := int64((d + time.Second - 1) / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Watch polls the gate every interval and sends the remaining lock time.
// The channel closes after a zero is sent or when ctx is done.
func (g *Gate) Watch(ctx context.Context, interval time.Duration) <-chan time.Duration {
	if interval <= 0 {
		interval = time.Second
	}
	out := make(chan time.Duration, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			left := g.RemainingLockTime(ctx)
			select {
			case out <- left:
			case <-ctx.Done():
				return
			}
			if left == 0 {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
