// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import (
	"time"

	"github.com/ManuGH/playstate/internal/timer"
)

// RebufferGuard fires onTimeout when buffering outlasts an absolute
// ceiling. It is restarted on every buffering entry and reset on every exit.
type RebufferGuard struct {
	timer     *timer.OneShot
	timeout   time.Duration
	onTimeout func()
}

// NewRebufferGuard builds a guard that schedules through t.
func NewRebufferGuard(t *timer.OneShot, timeout time.Duration, onTimeout func()) *RebufferGuard {
	return &RebufferGuard{timer: t, timeout: timeout, onTimeout: onTimeout}
}

// Start (re)schedules the ceiling.
func (g *RebufferGuard) Start() {
	g.timer.Start(g.timeout, g.onTimeout)
}

// Reset cancels a pending ceiling. Safe to call when nothing is pending.
func (g *RebufferGuard) Reset() {
	g.timer.Stop()
}

// Active reports whether the ceiling is armed.
func (g *RebufferGuard) Active() bool { return g.timer.Active() }
