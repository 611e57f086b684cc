package track

import (
	"sync"
	"time"
)

// DefaultRevealInterval is the delay between successive segment reveals
// when a full track loads.
const DefaultRevealInterval = 10 * time.Millisecond

// Revealer animates the progressive drawing of a track. After a wholesale
// history replacement it reveals one segment per interval starting from the
// oldest; after an append of a single new segment it reveals the new segment
// immediately without restarting the animation.
type Revealer struct {
	mu       sync.Mutex
	interval time.Duration
	total    int
	revealed int
	gen      int
	timer    *time.Timer
	onChange func(revealed int)
}

// NewRevealer creates a revealer that calls onChange with the current
// revealed count after every change. onChange is invoked without internal
// locks held and must be safe to call from timer goroutines.
func NewRevealer(interval time.Duration, onChange func(revealed int)) *Revealer {
	if interval <= 0 {
		interval = DefaultRevealInterval
	}
	return &Revealer{
		interval: interval,
		onChange: onChange,
	}
}

// Reset starts a fresh reveal animation over total segments. Any in-flight
// animation is cancelled and the revealed count drops to zero.
func (r *Revealer) Reset(total int) {
	r.mu.Lock()
	r.cancelLocked()
	r.gen++
	r.total = total
	r.revealed = 0
	if total > 0 {
		r.scheduleLocked(r.gen)
	}
	r.mu.Unlock()

	r.onChange(0)
}

// Append records that the segment count grew by one. If the track was fully
// revealed the new segment becomes visible immediately; if a reveal
// animation is still running the total is extended and the animation
// carries on to cover it.
func (r *Revealer) Append() {
	r.mu.Lock()
	fullyRevealed := r.revealed == r.total
	r.total++
	if fullyRevealed {
		r.revealed = r.total
	}
	revealed := r.revealed
	r.mu.Unlock()

	if fullyRevealed {
		r.onChange(revealed)
	}
}

// Cancel stops any pending reveal without changing the revealed count.
// Used when the selection changes mid-animation.
func (r *Revealer) Cancel() {
	r.mu.Lock()
	r.cancelLocked()
	r.gen++
	r.mu.Unlock()
}

// Revealed returns how many segments are currently visible.
func (r *Revealer) Revealed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revealed
}

func (r *Revealer) cancelLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Revealer) scheduleLocked(gen int) {
	r.timer = time.AfterFunc(r.interval, func() {
		r.step(gen)
	})
}

func (r *Revealer) step(gen int) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}
	if r.revealed < r.total {
		r.revealed++
	}
	if r.revealed < r.total {
		r.scheduleLocked(gen)
	} else {
		r.timer = nil
	}
	revealed := r.revealed
	r.mu.Unlock()

	r.onChange(revealed)
}
