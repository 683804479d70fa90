// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ManuGH/playstate/internal/eventdata"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/metrics"
)

// DefaultAsyncCapacity bounds the records an Async holds for its sink.
const DefaultAsyncCapacity = 256

type opKind uint8

const (
	opAdd opKind = iota
	opEnable
	opDisable
)

type asyncOp struct {
	kind opKind
	ctx  context.Context
	rec  eventdata.Record
}

// Async hands records to a background writer so Add, Enable and Disable
// return immediately. Operations reach the wrapped sink in call order.
// Records beyond the capacity are dropped and counted; Enable and Disable
// are never dropped.
type Async struct {
	name     string
	next     Dispatcher
	capacity int
	logger   zerolog.Logger

	mu      sync.Mutex
	ops     []asyncOp
	records int
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// NewAsync starts the writer goroutine for next. name labels the drop
// metric and log lines. A capacity <= 0 uses DefaultAsyncCapacity.
func NewAsync(name string, next Dispatcher, capacity int, logger zerolog.Logger) *Async {
	if capacity <= 0 {
		capacity = DefaultAsyncCapacity
	}
	a := &Async{
		name:     name,
		next:     next,
		capacity: capacity,
		logger:   logger.With().Str(log.FieldSink, name).Logger(),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) Add(ctx context.Context, r eventdata.Record) {
	a.mu.Lock()
	if a.closed || a.records >= a.capacity {
		a.mu.Unlock()
		metrics.IncRecordFailed(a.name)
		a.logger.Debug().Str(log.FieldImpressionID, r.ImpressionID).Str("state", r.State).Msg("record dropped, writer full")
		return
	}
	// The caller's cancellation must not abort a write that runs later.
	a.ops = append(a.ops, asyncOp{kind: opAdd, ctx: context.WithoutCancel(ctxOrBackground(ctx)), rec: r})
	a.records++
	a.mu.Unlock()
	a.signal()
}

func (a *Async) Enable()  { a.control(opEnable) }
func (a *Async) Disable() { a.control(opDisable) }

func (a *Async) control(kind opKind) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.ops = append(a.ops, asyncOp{kind: kind})
	a.mu.Unlock()
	a.signal()
}

// Pending returns the number of queued records.
func (a *Async) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.records
}

// Close stops accepting operations and waits until the queued ones have
// reached the sink or ctx is done.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.wake)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) signal() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	select {
	case a.wake <- struct{}{}:
	default:
	}
}

func (a *Async) run() {
	defer close(a.done)
	for range a.wake {
		a.drain()
	}
	a.drain()
}

func (a *Async) drain() {
	for {
		a.mu.Lock()
		batch := a.ops
		a.ops = nil
		a.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, op := range batch {
			switch op.kind {
			case opAdd:
				a.next.Add(op.ctx, op.rec)
				a.mu.Lock()
				a.records--
				a.mu.Unlock()
			case opEnable:
				a.next.Enable()
			case opDisable:
				a.next.Disable()
			}
		}
	}
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
