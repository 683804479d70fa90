// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package serial provides the single-writer execution context shared by
// adapter calls and timer fires.
package serial

import (
	"context"
	"errors"
	"sync"

	"github.com/ManuGH/playstate/internal/log"
	"github.com/rs/zerolog"
)

// ErrClosed is returned by Do once the queue has been closed.
var ErrClosed = errors.New("serial queue closed")

// Queue runs submitted tasks one at a time, in submission order, on a
// dedicated goroutine. Submit never blocks: the backlog is unbounded.
type Queue struct {
	logger zerolog.Logger

	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewQueue starts a queue goroutine. Close must be called to release it.
func NewQueue() *Queue {
	q := &Queue{
		logger: log.WithComponent("serial"),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

// Submit enqueues fn. Tasks submitted after Close are dropped.
func (q *Queue) Submit(fn func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Debug().Msg("task dropped: queue closed")
		return
	}
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the queue and waits for it to finish. It must not be called
// from a task already running on q.
func (q *Queue) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.pending = append(q.pending, func() {
		defer close(finished)
		fn()
	})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work, drains what was already submitted and waits
// for the goroutine to exit. It is safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.mu.Unlock()
		select {
		case q.wake <- struct{}{}:
		default:
		}
	} else {
		q.mu.Unlock()
	}
	<-q.done
}

func (q *Queue) run() {
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		closing := q.closed
		q.mu.Unlock()

		if len(batch) == 0 {
			if closing {
				close(q.done)
				return
			}
			<-q.wake
			continue
		}
		for _, fn := range batch {
			q.runTask(fn)
		}
	}
}

func (q *Queue) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error().Interface("panic", r).Msg("serial task panicked")
		}
	}()
	fn()
}

// Inline runs every task immediately on the caller's goroutine. It pairs
// with clock.Mock for deterministic tests and replays.
type Inline struct{}

func (Inline) Submit(fn func()) { fn() }
