// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package collector glues a player engine to the playback state machine.
// It owns one Machine, its Assembler and the record dispatcher, and runs
// every inbound call and timer fire on a single executor.
package collector

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/playstate/internal/clock"
	"github.com/ManuGH/playstate/internal/dispatch"
	"github.com/ManuGH/playstate/internal/eventdata"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/playback"
	"github.com/ManuGH/playstate/internal/serial"
	"github.com/ManuGH/playstate/internal/telemetry"
	"github.com/ManuGH/playstate/internal/timer"
)

var (
	ErrNoDispatcher = errors.New("collector: dispatcher is required")
	ErrNoAdapter    = errors.New("collector: adapter is required")
	ErrClosed       = errors.New("collector: closed")
)

// PlayerAdapter is the engine-specific side of a collector: it reports the
// player facts stamped on each record and the current playback position.
type PlayerAdapter interface {
	eventdata.FactsSource
	Position() playback.MediaTime
}

// SeekSettings tunes seek detection from time jumps.
type SeekSettings struct {
	// DuplicateTolerance suppresses a jump recorded this soon after the
	// previous one.
	DuplicateTolerance time.Duration
	// ConfirmWindow is the maximum age of a jump that ReadyToPlay still
	// confirms as a seek.
	ConfirmWindow time.Duration
}

// DefaultSeekSettings returns 1s duplicate tolerance and a 10s confirm
// window.
func DefaultSeekSettings() SeekSettings {
	return SeekSettings{
		DuplicateTolerance: time.Second,
		ConfirmWindow:      10 * time.Second,
	}
}

// Options configures a Collector.
type Options struct {
	Identity eventdata.Identity
	Settings *playback.Settings
	Seek     *SeekSettings
	// Dispatcher receives every record, wrapped in a dispatch.Sequencer.
	// Required.
	Dispatcher dispatch.Dispatcher
	// Clock defaults to clock.Real.
	Clock clock.Clock
	// Executor runs every call and timer fire. When nil the collector
	// starts and owns a serial.Queue.
	Executor timer.Executor
	UserID   string
	NewID    func() string
	Logger   *zerolog.Logger
}

// Collector tracks the playback sessions of one player.
type Collector struct {
	clock      clock.Clock
	exec       timer.Executor
	queue      *serial.Queue
	dispatcher *dispatch.Sequencer
	machine    *playback.Machine
	assembler  *eventdata.Assembler
	seek       SeekSettings
	videoID    string
	logger     zerolog.Logger
	tracer     trace.Tracer
	closed     atomic.Bool
	closeOnce  sync.Once

	// Owned by the executor.
	adapter     PlayerAdapter
	attached    bool
	lastBitrate float64
}

// New builds a detached Collector.
func New(opts Options) (*Collector, error) {
	if opts.Dispatcher == nil {
		return nil, ErrNoDispatcher
	}
	c := &Collector{
		clock:      opts.Clock,
		exec:       opts.Executor,
		dispatcher: dispatch.NewSequencer(opts.Dispatcher),
		seek:       DefaultSeekSettings(),
		videoID:    opts.Identity.VideoID,
		tracer:     telemetry.Tracer("playstate.collector"),
	}
	if c.clock == nil {
		c.clock = clock.Real{}
	}
	if opts.Seek != nil {
		c.seek = *opts.Seek
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	} else {
		c.logger = log.WithComponent("collector")
	}
	if c.exec == nil {
		c.queue = serial.NewQueue()
		c.exec = c.queue
	}

	c.assembler = eventdata.NewAssembler(eventdata.Options{
		Identity: opts.Identity,
		Facts:    eventdata.FactsFunc(c.facts),
		Sink:     c.dispatcher,
		Clock:    c.clock,
		UserID:   opts.UserID,
	})
	m, err := playback.New(playback.Options{
		Clock:    c.clock,
		Executor: c.exec,
		Listener: c.assembler,
		Position: c.position,
		Settings: opts.Settings,
		NewID:    opts.NewID,
	})
	if err != nil {
		if c.queue != nil {
			c.queue.Close()
		}
		return nil, err
	}
	c.machine = m
	return c, nil
}

// UserID returns the user id stamped on every record.
func (c *Collector) UserID() string { return c.assembler.UserID() }

func (c *Collector) facts() eventdata.PlayerFacts {
	if c.adapter == nil {
		return eventdata.PlayerFacts{}
	}
	return c.adapter.PlayerFacts()
}

func (c *Collector) position() playback.MediaTime {
	if c.adapter == nil {
		return playback.NoTime
	}
	return c.adapter.Position()
}

// do runs fn on the executor and waits for it when the collector owns a
// queue. Caller-supplied executors are assumed to run fn before Submit
// returns or to order it behind earlier work.
func (c *Collector) do(ctx context.Context, fn func()) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if c.queue != nil {
		if err := c.queue.Do(ctx, fn); err != nil {
			if errors.Is(err, serial.ErrClosed) {
				return ErrClosed
			}
			return err
		}
		return nil
	}
	c.exec.Submit(fn)
	return nil
}

// submit queues a player event. Events arriving while no player is
// attached are dropped.
func (c *Collector) submit(event string, fn func(pos playback.MediaTime)) {
	if c.closed.Load() {
		return
	}
	c.exec.Submit(func() {
		if !c.attached {
			c.logger.Debug().Str(log.FieldEvent, event).Msg("event ignored: no player attached")
			return
		}
		fn(c.position())
	})
}

// Attach starts a session for adapter. With autoplay the session enters
// startup immediately. Attaching over an existing player detaches it
// first.
func (c *Collector) Attach(ctx context.Context, adapter PlayerAdapter, autoplay bool) error {
	if adapter == nil {
		return ErrNoAdapter
	}
	ctx, span := c.tracer.Start(ctx, "collector.attach",
		trace.WithAttributes(attribute.Bool(telemetry.AutoplayKey, autoplay)))
	defer span.End()

	err := c.do(ctx, func() {
		if c.attached {
			c.detach()
		}
		c.adapter = adapter
		c.attached = true
		c.lastBitrate = 0
		c.dispatcher.Enable()
		span.SetAttributes(telemetry.SessionAttributes(
			c.machine.ImpressionID(), c.assembler.UserID(), c.videoID)...)
		if autoplay {
			c.machine.TransitionState(playback.StateStartup, c.position(), nil)
		}
		c.logger.Info().
			Str(log.FieldImpressionID, c.machine.ImpressionID()).
			Bool("autoplay", autoplay).
			Msg("player attached")
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Detach ends the current session. A session that attempted but never
// started playback is closed as a failed play attempt.
func (c *Collector) Detach(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "collector.detach")
	defer span.End()

	err := c.do(ctx, func() {
		if !c.attached {
			return
		}
		span.SetAttributes(telemetry.SessionAttributes(
			c.machine.ImpressionID(), c.assembler.UserID(), c.videoID)...)
		if c.machine.DidAttemptPlayingVideo() && !c.machine.DidStartPlayingVideo() {
			span.SetAttributes(attribute.String(telemetry.StartFailedReasonKey, string(playback.StartFailedPageClosed)))
		}
		c.detach()
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Collector) detach() {
	if c.machine.DidAttemptPlayingVideo() && !c.machine.DidStartPlayingVideo() {
		c.machine.OnPlayAttemptFailed(playback.StartFailedPageClosed, c.position())
	}
	impression := c.machine.ImpressionID()
	c.dispatcher.Disable()
	c.machine.Reset()
	c.adapter = nil
	c.attached = false
	c.lastBitrate = 0
	c.logger.Info().Str(log.FieldImpressionID, impression).Msg("player detached")
}

// Close detaches the current player and stops the owned queue. It is safe
// to call more than once.
func (c *Collector) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		err = c.Detach(ctx)
		c.closed.Store(true)
		// Stop also runs on the executor so pending timer fires drain first.
		if c.queue != nil {
			c.queue.Submit(c.machine.Stop)
			c.queue.Close()
		} else {
			c.exec.Submit(c.machine.Stop)
		}
	})
	return err
}

// Snapshot reports the machine state read on the executor.
type Snapshot struct {
	Attached     bool
	State        playback.State
	ImpressionID string
	Started      bool
}

// Snapshot returns the current session state.
func (c *Collector) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := c.do(ctx, func() {
		s = Snapshot{
			Attached:     c.attached,
			State:        c.machine.State(),
			ImpressionID: c.machine.ImpressionID(),
			Started:      c.machine.DidStartPlayingVideo(),
		}
	})
	return s, err
}
