package anim

import (
	"context"
	"time"
)

// FrameClock delivers frame timestamps, one per display refresh. The
// extrapolator suspends at each frame boundary rather than sleeping on a
// fixed timer, so the host decides the cadence: a vsync callback in a
// graphical client, a fixed-rate ticker in a terminal or a test.
type FrameClock interface {
	// Frames returns a channel that delivers one timestamp per frame until
	// the context is cancelled.
	Frames(ctx context.Context) <-chan time.Time
}

// TickerClock is a fixed-rate FrameClock.
type TickerClock struct {
	// Interval between frames (default: ~30 fps)
	Interval time.Duration
}

// DefaultFrameInterval approximates a 30 fps refresh.
const DefaultFrameInterval = 33 * time.Millisecond

// Frames implements FrameClock.
func (c TickerClock) Frames(ctx context.Context) <-chan time.Time {
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	frames := make(chan time.Time, 1)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				// Drop the frame if the consumer is behind; animation
				// must never accumulate a backlog of stale frames.
				select {
				case frames <- now:
				default:
				}
			}
		}
	}()
	return frames
}
