// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package timer

import (
	"time"

	"github.com/ManuGH/playstate/internal/clock"
)

// Escalating is a Repeating bound to a fixed back-off schedule chosen at
// construction. Every Start begins again at the first interval.
type Escalating struct {
	*Repeating
	schedule []time.Duration
}

// NewEscalating creates a stopped escalating timer.
func NewEscalating(c clock.Clock, exec Executor, name string, schedule []time.Duration) *Escalating {
	return &Escalating{
		Repeating: NewRepeating(c, exec, name),
		schedule:  append([]time.Duration(nil), schedule...),
	}
}

// Start cancels any running instance and fires fn following the schedule.
func (e *Escalating) Start(fn func()) {
	e.Repeating.Start(fn, e.schedule...)
}

// Schedule returns a copy of the configured intervals.
func (e *Escalating) Schedule() []time.Duration {
	return append([]time.Duration(nil), e.schedule...)
}
