// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package dispatch delivers analytics records to local sinks: memory, the
// structured log, a Redis list and a SQLite spool, the last two drained by
// an out-of-process uploader.
package dispatch

import (
	"context"
	"sync"

	"github.com/ManuGH/playstate/internal/eventdata"
)

// Dispatcher accepts records for delivery. Add never returns an error;
// failures are logged and counted. Sinks that do I/O block for up to their
// own timeout, so the collector reaches them through an Async.
type Dispatcher interface {
	Add(ctx context.Context, r eventdata.Record)
	Enable()
	Disable()
}

// Sequencer stamps a per-session sequence number on each record before
// forwarding it. Numbering restarts at zero on Disable.
type Sequencer struct {
	next Dispatcher

	mu  sync.Mutex
	seq int32
}

// NewSequencer wraps next.
func NewSequencer(next Dispatcher) *Sequencer {
	return &Sequencer{next: next}
}

func (s *Sequencer) Add(ctx context.Context, r eventdata.Record) {
	s.mu.Lock()
	r.SequenceNumber = s.seq
	s.seq++
	s.mu.Unlock()
	s.next.Add(ctx, r)
}

func (s *Sequencer) Enable() { s.next.Enable() }

func (s *Sequencer) Disable() {
	s.mu.Lock()
	s.seq = 0
	s.mu.Unlock()
	s.next.Disable()
}

// Fanout forwards every call to each of its dispatchers in order.
type Fanout []Dispatcher

func (f Fanout) Add(ctx context.Context, r eventdata.Record) {
	for _, d := range f {
		d.Add(ctx, r)
	}
}

func (f Fanout) Enable() {
	for _, d := range f {
		d.Enable()
	}
}

func (f Fanout) Disable() {
	for _, d := range f {
		d.Disable()
	}
}
