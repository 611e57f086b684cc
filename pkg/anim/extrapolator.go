// Package anim animates aircraft markers between snapshot refreshes. Each
// frame it coasts every aircraft forward along its last known heading at its
// last known ground speed, so markers keep moving smoothly even though the
// backend only delivers discrete snapshots every few seconds.
package anim

import (
	"context"
	"sync"
	"time"

	"github.com/JasperJeuken/SkyTracker/pkg/geo"
	"github.com/JasperJeuken/SkyTracker/pkg/store"
)

// MarkerSink receives per-frame coordinate updates for visible markers.
// Implementations must only move existing markers, never rebuild them;
// rebuilding happens on batch replacement, not during animation.
type MarkerSink interface {
	Move(callsign string, lat, lon float64)
}

// Extrapolator drives the animation loop. It has two states: idle (no frame
// delivery pending) and running (consuming the frame clock). It runs only
// while the zoom gate is open and at least one aircraft is visible.
type Extrapolator struct {
	store *store.Store
	clock FrameClock
	sink  MarkerSink

	mu      sync.Mutex
	running bool
}

// NewExtrapolator creates an extrapolator writing to the given marker sink.
func NewExtrapolator(s *store.Store, clock FrameClock, sink MarkerSink) *Extrapolator {
	return &Extrapolator{store: s, clock: clock, sink: sink}
}

// Running reports whether the frame loop is currently consuming frames.
func (e *Extrapolator) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Extrapolator) setRunning(v bool) {
	e.mu.Lock()
	e.running = v
	e.mu.Unlock()
}

// shouldRun evaluates the gate: zoom at or above the animation threshold
// and a non-empty batch.
func (e *Extrapolator) shouldRun() bool {
	return e.store.AnimationEnabled() && e.store.BatchSize() > 0
}

// Run blocks until the context is cancelled, toggling between idle and
// running as the gate opens and closes. Store mutations (zoom, batch)
// re-evaluate the gate; no frames are consumed while idle.
func (e *Extrapolator) Run(ctx context.Context) {
	events := make(chan store.Event, 16)
	unsubscribe := e.store.Subscribe(func(ev store.Event) {
		switch ev {
		case store.EventBatch, store.EventViewport, store.EventSettings:
			select {
			case events <- ev:
			default:
			}
		}
	})
	defer unsubscribe()

	var frames <-chan time.Time
	var stopClock context.CancelFunc

	stop := func() {
		if stopClock != nil {
			stopClock()
			stopClock = nil
		}
		frames = nil
		e.setRunning(false)
	}
	defer stop()

	for {
		if e.shouldRun() {
			if frames == nil {
				var clockCtx context.Context
				clockCtx, stopClock = context.WithCancel(ctx)
				frames = e.clock.Frames(clockCtx)
				e.setRunning(true)
			}
		} else if frames != nil {
			stop()
		}

		// A nil frames channel blocks forever, which is exactly the idle state.
		select {
		case <-ctx.Done():
			return
		case <-events:
		case now := <-frames:
			e.Step(now)
		}
	}
}

// Step computes one animation frame: every snapshot with known kinematics is
// coasted forward from its batch position by the distance covered since the
// batch refresh. Snapshots missing ground speed or heading keep their last
// known position. The selected aircraft's result is also published as the
// store's animated position.
func (e *Extrapolator) Step(now time.Time) {
	batch := e.store.Batch()
	if len(batch.Snapshots) == 0 {
		return
	}

	dt := now.Sub(batch.RefreshedAt).Seconds()
	if dt < 0 {
		dt = 0
	}

	selected := e.store.Selected()
	for callsign, snap := range batch.Snapshots {
		if snap.GroundSpeed == nil || snap.Heading == nil {
			continue
		}

		distance := *snap.GroundSpeed * dt
		lat, lon := geo.Project(snap.Lat, snap.Lon, *snap.Heading, distance)

		if e.sink != nil {
			e.sink.Move(callsign, lat, lon)
		}
		if callsign == selected {
			e.store.SetAnimatedPositionFor(callsign, lat, lon)
		}
	}
}
