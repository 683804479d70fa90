// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/playstate/internal/clock"
	"github.com/ManuGH/playstate/internal/collector"
	"github.com/ManuGH/playstate/internal/config"
	"github.com/ManuGH/playstate/internal/dispatch"
	"github.com/ManuGH/playstate/internal/eventdata"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/playback"
	"github.com/ManuGH/playstate/internal/serial"
	"github.com/ManuGH/playstate/internal/telemetry"
)

// DefaultStart is the virtual wall clock at the start of a replay.
var DefaultStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Options configures Run.
type Options struct {
	// Config supplies identity, timing and seek settings. Defaults to
	// config.Defaults().
	Config *config.Config
	// Sinks receive every record next to the in-memory capture.
	Sinks []dispatch.Dispatcher
	// Start defaults to DefaultStart.
	Start  time.Time
	Logger *zerolog.Logger
}

// Result is the outcome of one replay.
type Result struct {
	Script     string             `json:"script"`
	Operations int                `json:"operations"`
	Elapsed    time.Duration      `json:"-"`
	Records    []eventdata.Record `json:"records"`
}

// WriteJSON writes the result as indented JSON.
func (r Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

type scriptPlayer struct {
	pos   time.Duration
	facts eventdata.PlayerFacts
}

func (p *scriptPlayer) PlayerFacts() eventdata.PlayerFacts { return p.facts }
func (p *scriptPlayer) Position() playback.MediaTime       { return playback.At(p.pos) }

// stableID derives a repeatable UUID so identical scripts produce identical
// records.
func stableID(script, what string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("playstate:"+script+"/"+what)).String()
}

// Run replays s against a fresh collector on a virtual clock. Every call
// runs inline, so timers fire exactly when the clock passes them. The
// collector is closed at the end, which detaches a still attached player.
func Run(ctx context.Context, s Script, opts Options) (Result, error) {
	if err := s.Validate(); err != nil {
		return Result{}, err
	}
	cfg := config.Defaults()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	start := opts.Start
	if start.IsZero() {
		start = DefaultStart
	}
	logger := log.WithComponent("replay")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	ctx, span := telemetry.Tracer("playstate.replay").Start(ctx, "replay.run",
		trace.WithAttributes(attribute.String("replay.script", s.Name)))
	defer span.End()

	res, err := run(ctx, s, cfg, start, opts.Sinks, logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}
	span.SetAttributes(
		attribute.Int(telemetry.ReplayOperationsKey, res.Operations),
		attribute.Int(telemetry.ReplayRecordsKey, len(res.Records)),
	)
	logger.Info().
		Str("script", s.Name).
		Int("operations", res.Operations).
		Int("records", len(res.Records)).
		Dur("elapsed", res.Elapsed).
		Msg("replay finished")
	return res, nil
}

func run(ctx context.Context, s Script, cfg config.Config, start time.Time, sinks []dispatch.Dispatcher, logger zerolog.Logger) (Result, error) {
	clk := clock.NewMock(start)
	mem := dispatch.NewMemory()
	fanout := append(dispatch.Fanout{mem}, sinks...)

	settings := cfg.PlaybackSettings()
	seek := collector.SeekSettings{
		DuplicateTolerance: cfg.Seek.DuplicateTolerance,
		ConfirmWindow:      cfg.Seek.ConfirmWindow,
	}
	impressions := 0
	c, err := collector.New(collector.Options{
		Identity:   cfg.Identity(),
		Settings:   &settings,
		Seek:       &seek,
		Dispatcher: fanout,
		Clock:      clk,
		Executor:   serial.Inline{},
		UserID:     stableID(s.Name, "user"),
		NewID: func() string {
			impressions++
			return stableID(s.Name, fmt.Sprintf("impression/%d", impressions))
		},
		Logger: &logger,
	})
	if err != nil {
		return Result{}, fmt.Errorf("build collector: %w", err)
	}

	player := &scriptPlayer{facts: s.Player.facts()}
	var elapsed time.Duration
	for i, ev := range s.Events {
		if err := ctx.Err(); err != nil {
			_ = c.Close(context.Background())
			return Result{}, err
		}
		clk.Advance(ev.At - elapsed)
		elapsed = ev.At
		if ev.Position != nil {
			player.pos = *ev.Position
		}
		if err := apply(ctx, c, player, ev); err != nil {
			_ = c.Close(context.Background())
			return Result{}, fmt.Errorf("events[%d] %s: %w", i, ev.Op, err)
		}
	}
	clk.Advance(s.Tail)
	elapsed += s.Tail

	if err := c.Close(ctx); err != nil {
		return Result{}, fmt.Errorf("close collector: %w", err)
	}
	return Result{
		Script:     s.Name,
		Operations: len(s.Events),
		Elapsed:    elapsed,
		Records:    mem.Records(),
	}, nil
}

func apply(ctx context.Context, c *collector.Collector, p *scriptPlayer, ev Event) error {
	switch ev.Op {
	case OpAttach:
		return c.Attach(ctx, p, ev.Autoplay)
	case OpDetach:
		return c.Detach(ctx)
	case OpPlay:
		c.Play()
	case OpPause:
		c.Pause()
	case OpPlaying:
		c.Playing()
	case OpStalled:
		c.Stalled()
	case OpSeeked:
		c.Seeked()
	case OpTimeJumped:
		c.TimeJumped()
	case OpReadyToPlay:
		c.ReadyToPlay()
	case OpBitrate:
		c.BitrateObserved(ev.Bitrate)
	case OpVideoQuality:
		c.VideoQualityChange()
	case OpAudioQuality:
		c.AudioQualityChange()
	case OpSubtitle:
		c.SubtitleChange()
	case OpError:
		c.Error(ev.Code, ev.Message, ev.Data)
	case OpTransition:
		state, _ := playback.ParseState(ev.State)
		c.Transition(state)
	case OpResignActive:
		c.WillResignActive()
	case OpEnterForeground:
		c.WillEnterForeground()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, ev.Op)
	}
	return nil
}
