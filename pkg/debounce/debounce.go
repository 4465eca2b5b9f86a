// Package debounce throttles bursts of calls and tracks which of several
// overlapping requests is the latest.
package debounce

import (
	"sync"
	"sync/atomic"
	"time"
)

// Debouncer runs the most recently submitted function once no new call has
// arrived for the configured window.
type Debouncer struct {
	mu     sync.Mutex
	window time.Duration
	timer  *time.Timer
	gen    uint64
}

func New(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Trigger schedules fn, replacing anything still pending.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		current := d.gen == gen
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Sequencer hands out monotonically increasing tickets. A response is only
// applied when its ticket is still the latest one issued.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new ticket, superseding every earlier one.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

func (s *Sequencer) IsLatest(ticket uint64) bool {
	return s.latest.Load() == ticket
}

// Latest returns the most recent ticket issued, 0 before the first call.
func (s *Sequencer) Latest() uint64 {
	return s.latest.Load()
}
