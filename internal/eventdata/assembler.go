// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package eventdata

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/playstate/internal/clock"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/playback"
)

// DefaultAnalyticsVersion is stamped on records when Identity leaves it
// empty.
const DefaultAnalyticsVersion = "0"

// Sink receives finished records. dispatch.Dispatcher implementations
// satisfy it.
type Sink interface {
	Add(ctx context.Context, r Record)
}

// Options configures an Assembler.
type Options struct {
	Identity Identity
	// Facts may be nil, in which case records carry identity and session
	// fields only.
	Facts FactsSource
	Sink  Sink
	// Clock stamps Record.Time. Defaults to clock.Real.
	Clock clock.Clock
	// UserID is stable across sessions. Defaults to a random UUID.
	UserID string
	Logger *zerolog.Logger
}

// Assembler implements playback.Listener by building exactly one Record per
// notification and handing it to the sink.
type Assembler struct {
	identity Identity
	facts    FactsSource
	sink     Sink
	clock    clock.Clock
	userID   string
	logger   zerolog.Logger

	drmSentFor string
}

var _ playback.Listener = (*Assembler)(nil)

// NewAssembler builds an Assembler. A nil sink discards records.
func NewAssembler(opts Options) *Assembler {
	a := &Assembler{
		identity: opts.Identity,
		facts:    opts.Facts,
		sink:     opts.Sink,
		clock:    opts.Clock,
		userID:   opts.UserID,
	}
	if a.clock == nil {
		a.clock = clock.Real{}
	}
	if a.userID == "" {
		a.userID = uuid.NewString()
	}
	if a.identity.AnalyticsVersion == "" {
		a.identity.AnalyticsVersion = DefaultAnalyticsVersion
	}
	if a.identity.Platform == "" {
		a.identity.Platform = runtime.GOOS
	}
	if opts.Logger != nil {
		a.logger = *opts.Logger
	} else {
		a.logger = log.WithComponent("eventdata")
	}
	return a
}

// UserID returns the user id stamped on every record.
func (a *Assembler) UserID() string { return a.userID }

func (a *Assembler) build(m *playback.Machine, duration int64) (Record, PlayerFacts) {
	r := Record{PageLoadType: 1}
	a.identity.apply(&r)

	var facts PlayerFacts
	if a.facts != nil {
		facts = a.facts.PlayerFacts()
	}
	facts.apply(&r)

	r.ImpressionID = m.ImpressionID()
	r.UserID = a.userID
	r.State = m.State().String()
	r.Duration = duration
	r.Time = clock.NowMillis(a.clock)

	if facts.DRMLoadTime > 0 && a.drmSentFor != r.ImpressionID {
		a.drmSentFor = r.ImpressionID
		ms := facts.DRMLoadTime.Milliseconds()
		r.DRMLoadTime = &ms
	}
	if ms, ok := m.VideoTimeStart().Millis(); ok {
		r.VideoTimeStart = ms
	}
	if ms, ok := m.VideoTimeEnd().Millis(); ok {
		r.VideoTimeEnd = ms
	}
	if reason, ok := m.ConsumeVideoStartFailed(); ok {
		r.VideoStartFailed = true
		r.VideoStartFailedReason = string(reason)
	}
	return r, facts
}

func (a *Assembler) emit(m *playback.Machine, r Record) {
	a.logger.Debug().
		Str(log.FieldImpressionID, r.ImpressionID).
		Str(log.FieldState, r.State).
		Int64(log.FieldDurationMS, r.Duration).
		Msg("record assembled")
	if a.sink == nil {
		return
	}
	ctx := log.ContextWithImpressionID(context.Background(), m.ImpressionID())
	a.sink.Add(ctx, r)
}

// DidStartup emits the startup record with the startup timings and codecs.
func (a *Assembler) DidStartup(m *playback.Machine, d int64) {
	r, facts := a.build(m, d)
	r.VideoStartupTime = d
	// Player startup is not measured and is reported as 1 ms.
	r.PlayerStartupTime = 1
	r.StartupTime = d + 1
	r.State = playback.StateStartup.String()
	if len(facts.SupportedVideoCodecs) > 0 {
		r.SupportedVideoCodecs = append([]string(nil), facts.SupportedVideoCodecs...)
	}
	a.emit(m, r)
}

// DidExitBuffering emits a record with the time spent buffering.
func (a *Assembler) DidExitBuffering(m *playback.Machine, d int64) {
	r, _ := a.build(m, d)
	r.Buffered = d
	a.emit(m, r)
}

// DidExitPlaying emits a record with the time spent playing.
func (a *Assembler) DidExitPlaying(m *playback.Machine, d int64) {
	r, _ := a.build(m, d)
	r.Played = d
	a.emit(m, r)
}

// DidExitPaused emits a record with the time spent paused.
func (a *Assembler) DidExitPaused(m *playback.Machine, d int64) {
	r, _ := a.build(m, d)
	r.Paused = d
	a.emit(m, r)
}

// DidExitSeeking emits a record with the time spent seeking.
func (a *Assembler) DidExitSeeking(m *playback.Machine, d int64, _ playback.State) {
	r, _ := a.build(m, d)
	r.Seeked = d
	a.emit(m, r)
}

// DidQualityChange emits a qualitychange record.
func (a *Assembler) DidQualityChange(m *playback.Machine) {
	r, _ := a.build(m, 0)
	a.emit(m, r)
}

// DidAudioChange emits an audiochange record.
func (a *Assembler) DidAudioChange(m *playback.Machine) {
	r, _ := a.build(m, 0)
	a.emit(m, r)
}

// DidSubtitleChange emits a subtitlechange record.
func (a *Assembler) DidSubtitleChange(m *playback.Machine) {
	r, _ := a.build(m, 0)
	a.emit(m, r)
}

// DidHeartbeat emits an interim record for the current state.
func (a *Assembler) DidHeartbeat(m *playback.Machine, d int64) {
	r, _ := a.build(m, d)
	switch m.State() {
	case playback.StatePlaying:
		r.Played = d
	case playback.StatePaused:
		r.Paused = d
	case playback.StateBuffering:
		r.Buffered = d
	}
	a.emit(m, r)
}

// DidEnterError emits an error record carrying the error fields.
func (a *Assembler) DidEnterError(m *playback.Machine, data *playback.ErrorData) {
	r, _ := a.build(m, 0)
	if data != nil {
		code := data.Code
		r.ErrorCode = &code
		r.ErrorMessage = data.Message
		r.ErrorData = data.Data
	}
	a.emit(m, r)
}

// EnterPlayAttemptFailed emits the record that carries the start failure.
func (a *Assembler) EnterPlayAttemptFailed(m *playback.Machine) {
	r, _ := a.build(m, 0)
	a.emit(m, r)
}
