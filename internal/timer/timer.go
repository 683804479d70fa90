// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package timer provides cancellable, reschedulable timers whose fire
// actions are marshalled onto the owner's serialized executor.
//
// Every Start bumps a generation counter. A fire that reaches the executor
// after Stop or a newer Start sees a stale generation and is dropped, so a
// canceled timer can never be observed even if the clock already released it.
package timer

import (
	"sync"
	"time"

	"github.com/ManuGH/playstate/internal/clock"
)

// Executor runs fire actions on the owner's single-writer context.
type Executor interface {
	Submit(fn func())
}

// OneShot fires once after a delay.
type OneShot struct {
	clock clock.Clock
	exec  Executor
	name  string

	mu      sync.Mutex
	gen     uint64
	pending clock.Timer
}

// NewOneShot creates a stopped one-shot timer.
func NewOneShot(c clock.Clock, exec Executor, name string) *OneShot {
	return &OneShot{clock: c, exec: exec, name: name}
}

// Name returns the label given at construction.
func (t *OneShot) Name() string { return t.name }

// Start (re)schedules fn to run after d. Any previously scheduled fire is
// canceled first.
func (t *OneShot) Start(d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	gen := t.gen
	t.pending = t.clock.AfterFunc(d, func() {
		t.exec.Submit(func() {
			t.mu.Lock()
			if t.gen != gen || t.pending == nil {
				t.mu.Unlock()
				return
			}
			t.pending = nil
			t.mu.Unlock()
			fn()
		})
	})
}

// Stop cancels a pending fire. It reports whether a fire was pending.
func (t *OneShot) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopLocked()
}

func (t *OneShot) stopLocked() bool {
	t.gen++
	if t.pending == nil {
		return false
	}
	t.pending.Stop()
	t.pending = nil
	return true
}

// Active reports whether a fire is pending.
func (t *OneShot) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}
