// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package timer

import (
	"sync"
	"time"

	"github.com/ManuGH/playstate/internal/clock"
)

// Repeating fires repeatedly following an interval schedule. The schedule
// advances by one step per fire and its last interval repeats forever, so a
// single-element schedule is a fixed-interval ticker and a longer one backs
// off.
type Repeating struct {
	clock clock.Clock
	exec  Executor
	name  string

	mu       sync.Mutex
	gen      uint64
	pending  clock.Timer
	schedule []time.Duration
	index    int
	fn       func()
}

// NewRepeating creates a stopped repeating timer.
func NewRepeating(c clock.Clock, exec Executor, name string) *Repeating {
	return &Repeating{clock: c, exec: exec, name: name}
}

// Name returns the label given at construction.
func (r *Repeating) Name() string { return r.name }

// Start cancels any running instance and begins firing fn following
// schedule. An empty schedule or a non-positive interval leaves the timer
// stopped.
func (r *Repeating) Start(fn func(), schedule ...time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
	if len(schedule) == 0 {
		return
	}
	for _, d := range schedule {
		if d <= 0 {
			return
		}
	}
	r.schedule = append([]time.Duration(nil), schedule...)
	r.fn = fn
	r.armLocked(r.gen)
}

func (r *Repeating) armLocked(gen uint64) {
	r.pending = r.clock.AfterFunc(r.schedule[r.index], func() {
		r.exec.Submit(func() { r.fire(gen) })
	})
}

func (r *Repeating) fire(gen uint64) {
	r.mu.Lock()
	if r.gen != gen || r.pending == nil {
		r.mu.Unlock()
		return
	}
	fn := r.fn
	r.mu.Unlock()

	fn()

	r.mu.Lock()
	defer r.mu.Unlock()
	// fn may have stopped or restarted the timer.
	if r.gen != gen {
		return
	}
	if r.index < len(r.schedule)-1 {
		r.index++
	}
	r.armLocked(gen)
}

// Stop cancels the timer and rewinds the schedule. It reports whether the
// timer was running.
func (r *Repeating) Stop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopLocked()
}

func (r *Repeating) stopLocked() bool {
	r.gen++
	r.index = 0
	if r.pending == nil {
		return false
	}
	r.pending.Stop()
	r.pending = nil
	return true
}

// Active reports whether the timer is running.
func (r *Repeating) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending != nil
}

// NextInterval returns the interval that will be used for the next fire.
func (r *Repeating) NextInterval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.schedule) == 0 {
		return 0
	}
	return r.schedule[r.index]
}
