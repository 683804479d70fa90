// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import (
	"time"

	"github.com/ManuGH/playstate/internal/timer"
)

// QualityGuard rate-limits quality changes within a rolling window. The
// window opens on the first increment and zeroes the counter when it
// expires.
type QualityGuard struct {
	threshold int
	window    time.Duration
	timer     *timer.OneShot
	counter   int
}

// NewQualityGuard builds a guard that expires its window through t.
func NewQualityGuard(t *timer.OneShot, threshold int, window time.Duration) *QualityGuard {
	return &QualityGuard{threshold: threshold, window: window, timer: t}
}

// Increment counts one quality change.
func (g *QualityGuard) Increment() {
	if g.counter == 0 {
		g.timer.Start(g.window, func() { g.counter = 0 })
	}
	g.counter++
}

// IsBelowThreshold reports whether further quality changes are tolerated.
func (g *QualityGuard) IsBelowThreshold() bool {
	return g.counter <= g.threshold
}

// Reset cancels the window and zeroes the counter.
func (g *QualityGuard) Reset() {
	g.timer.Stop()
	g.counter = 0
}

// Count returns the number of changes in the current window.
func (g *QualityGuard) Count() int { return g.counter }
