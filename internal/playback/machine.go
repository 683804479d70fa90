// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package playback implements the playback analytics state machine: a
// single-session finite state machine that turns player notifications into
// exit/entry hooks, heartbeats and timeout-driven policy errors.
//
// A Machine is not safe for concurrent use. Every method, and every timer
// fire, must run on the Executor given to New.
package playback

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ManuGH/playstate/internal/clock"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/metrics"
	"github.com/ManuGH/playstate/internal/timer"
)

// Options configures a Machine.
type Options struct {
	// Clock defaults to clock.Real.
	Clock clock.Clock
	// Executor receives every timer fire. Required.
	Executor timer.Executor
	// Listener receives the notifications. Required.
	Listener Listener
	// Position is queried by heartbeats and timeout-driven transitions.
	// Defaults to a function that always reports NoTime.
	Position PositionFunc
	// Settings defaults to DefaultSettings().
	Settings *Settings
	// Logger defaults to the "playback" component logger.
	Logger *zerolog.Logger
	// NewID generates impression ids. Defaults to uuid.NewString.
	NewID func() string
}

// Machine tracks one playback session.
type Machine struct {
	clock    clock.Clock
	listener Listener
	position PositionFunc
	settings Settings
	logger   zerolog.Logger
	newID    func() string

	state          State
	entered        bool
	enterTimestamp int64
	videoTimeStart MediaTime
	videoTimeEnd   MediaTime

	didAttemptPlayingVideo bool
	didStartPlayingVideo   bool
	startupTime            int64
	impressionID           string

	potentialSeekStart          int64
	potentialSeekVideoTimeStart MediaTime

	videoStartFailed       bool
	videoStartFailedReason StartFailedReason

	quality           *QualityGuard
	rebuffer          *RebufferGuard
	heartbeat         *timer.Repeating
	rebufferHeartbeat *timer.Escalating
	startFailed       *timer.OneShot
}

// New builds a Machine in StateReady with a fresh impression id.
func New(opts Options) (*Machine, error) {
	if opts.Listener == nil {
		return nil, ErrNoListener
	}
	if opts.Executor == nil {
		return nil, ErrNoExecutor
	}
	settings := DefaultSettings()
	if opts.Settings != nil {
		settings = *opts.Settings
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		clock:    opts.Clock,
		listener: opts.Listener,
		position: opts.Position,
		settings: settings,
		newID:    opts.NewID,
		state:    StateReady,
	}
	if m.clock == nil {
		m.clock = clock.Real{}
	}
	if m.position == nil {
		m.position = func() MediaTime { return NoTime }
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	if opts.Logger != nil {
		m.logger = *opts.Logger
	} else {
		m.logger = log.WithComponent("playback")
	}

	exec := opts.Executor
	m.quality = NewQualityGuard(
		timer.NewOneShot(m.clock, exec, "quality-window"),
		settings.QualityChangeThreshold,
		settings.QualityChangeWindow,
	)
	m.rebuffer = NewRebufferGuard(
		timer.NewOneShot(m.clock, exec, "rebuffer-timeout"),
		settings.RebufferTimeout,
		m.onRebufferTimeout,
	)
	m.heartbeat = timer.NewRepeating(m.clock, exec, "heartbeat")
	m.rebufferHeartbeat = timer.NewEscalating(m.clock, exec, "rebuffer-heartbeat", settings.RebufferHeartbeatSchedule)
	m.startFailed = timer.NewOneShot(m.clock, exec, "start-failed")
	m.impressionID = m.newID()
	return m, nil
}

// TransitionState moves the machine to dest. t is the player position at
// the moment of the transition and data is only meaningful for StateError.
// Transitions rejected by Allowed are absorbed silently.
func (m *Machine) TransitionState(dest State, t MediaTime, data *ErrorData) {
	from := m.state
	if d := Allowed(from, dest); !d.Allowed {
		metrics.IncTransitionRejected(d.Reason)
		m.logger.Debug().
			Str(log.FieldImpressionID, m.impressionID).
			Str(log.FieldOldState, from.String()).
			Str(log.FieldNewState, dest.String()).
			Str(log.FieldReason, d.Reason).
			Msg("transition rejected")
		return
	}

	ts := clock.NowMillis(m.clock)
	m.videoTimeEnd = t
	if r := m.onExit(from, ts, dest, data); r != nil {
		dest, data = r.to, r.data
	}
	m.state = dest
	m.entered = true
	m.enterTimestamp = ts
	m.videoTimeStart = m.videoTimeEnd

	metrics.IncTransition(from.String(), dest.String())
	m.logger.Debug().
		Str(log.FieldImpressionID, m.impressionID).
		Str(log.FieldOldState, from.String()).
		Str(log.FieldNewState, dest.String()).
		Msg("state transition")

	m.onEntry(dest, data)
}

// Play enters startup unless the first frame has already rendered.
func (m *Machine) Play(t MediaTime) {
	if m.didStartPlayingVideo {
		return
	}
	m.TransitionState(StateStartup, t, nil)
}

// Pause enters paused once playback has started, ready otherwise.
func (m *Machine) Pause(t MediaTime) {
	if m.didStartPlayingVideo {
		m.TransitionState(StatePaused, t, nil)
		return
	}
	m.TransitionState(StateReady, t, nil)
}

// Playing enters playing.
func (m *Machine) Playing(t MediaTime) {
	m.TransitionState(StatePlaying, t, nil)
}

// VideoQualityChange enters qualitychange unless the guard is saturated.
func (m *Machine) VideoQualityChange(t MediaTime) {
	if !m.quality.IsBelowThreshold() {
		return
	}
	m.TransitionState(StateQualityChange, t, nil)
}

// AudioQualityChange enters audiochange unless the quality guard is
// saturated.
func (m *Machine) AudioQualityChange(t MediaTime) {
	if !m.quality.IsBelowThreshold() {
		return
	}
	m.TransitionState(StateAudioChange, t, nil)
}

// OnPlayAttemptFailed flags the start failure and enters
// playAttemptFailed. An empty reason is recorded as UNKNOWN. Nothing is
// flagged when the current state may not exit to playAttemptFailed.
func (m *Machine) OnPlayAttemptFailed(reason StartFailedReason, t MediaTime) {
	if reason == "" {
		reason = StartFailedUnknown
	}
	if !Allowed(m.state, StatePlayAttemptFailed).Allowed {
		m.logger.Debug().
			Str(log.FieldState, m.state.String()).
			Str(log.FieldReason, string(reason)).
			Msg("start failure ignored")
		return
	}
	m.SetVideoStartFailed(reason)
	m.TransitionState(StatePlayAttemptFailed, t, nil)
}

// SetPotentialSeek remembers a time jump that may turn out to be a seek.
func (m *Machine) SetPotentialSeek(ts int64, t MediaTime) {
	m.potentialSeekStart = ts
	m.potentialSeekVideoTimeStart = t
}

// PotentialSeekStart returns the epoch ms of the pending time jump, or 0.
func (m *Machine) PotentialSeekStart() int64 { return m.potentialSeekStart }

// PotentialSeekVideoTimeStart returns the position captured with the
// pending time jump.
func (m *Machine) PotentialSeekVideoTimeStart() MediaTime { return m.potentialSeekVideoTimeStart }

// ConfirmSeek backdates the current state to the pending time jump so the
// seek duration covers the whole jump, then clears it. It reports false
// when no jump is pending.
func (m *Machine) ConfirmSeek() bool {
	if m.potentialSeekStart == 0 {
		return false
	}
	m.enterTimestamp = m.potentialSeekStart
	m.entered = true
	m.videoTimeStart = m.potentialSeekVideoTimeStart
	m.potentialSeekStart = 0
	m.potentialSeekVideoTimeStart = NoTime
	return true
}

// StartVideoStartFailedTimer arms the start-failed timeout. It does nothing
// once playback has started or outside startup.
func (m *Machine) StartVideoStartFailedTimer() {
	if m.didStartPlayingVideo || m.state != StateStartup {
		return
	}
	m.startFailed.Start(m.settings.StartFailedTimeout, m.onStartFailedTimeout)
}

// ClearVideoStartFailedTimer cancels a pending start-failed timeout.
func (m *Machine) ClearVideoStartFailedTimer() {
	m.startFailed.Stop()
}

// SetVideoStartFailed raises the one-shot start failure flag.
func (m *Machine) SetVideoStartFailed(reason StartFailedReason) {
	m.videoStartFailed = true
	m.videoStartFailedReason = reason
}

// ConsumeVideoStartFailed returns the pending start failure reason and
// clears it, so only one record carries it.
func (m *Machine) ConsumeVideoStartFailed() (StartFailedReason, bool) {
	if !m.videoStartFailed {
		return "", false
	}
	reason := m.videoStartFailedReason
	m.videoStartFailed = false
	m.videoStartFailedReason = ""
	return reason, true
}

// Reset cancels every timer and returns the machine to ready with a new
// impression id.
func (m *Machine) Reset() {
	m.Stop()
	m.state = StateReady
	m.entered = false
	m.enterTimestamp = 0
	m.videoTimeStart = NoTime
	m.videoTimeEnd = NoTime
	m.didAttemptPlayingVideo = false
	m.didStartPlayingVideo = false
	m.startupTime = 0
	m.potentialSeekStart = 0
	m.potentialSeekVideoTimeStart = NoTime
	m.videoStartFailed = false
	m.videoStartFailedReason = ""
	m.impressionID = m.newID()

	m.logger.Debug().Str(log.FieldImpressionID, m.impressionID).Msg("session reset")
}

// Stop cancels every timer without touching session fields.
func (m *Machine) Stop() {
	m.heartbeat.Stop()
	m.rebufferHeartbeat.Stop()
	m.rebuffer.Reset()
	m.startFailed.Stop()
	m.quality.Reset()
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// ImpressionID identifies the current session.
func (m *Machine) ImpressionID() string { return m.impressionID }

// EnterTimestamp is the epoch ms at which the current state was entered,
// or 0 before the first transition.
func (m *Machine) EnterTimestamp() int64 { return m.enterTimestamp }

// VideoTimeStart is the position at which the current state was entered.
func (m *Machine) VideoTimeStart() MediaTime { return m.videoTimeStart }

// VideoTimeEnd is the position recorded by the latest transition or
// heartbeat.
func (m *Machine) VideoTimeEnd() MediaTime { return m.videoTimeEnd }

// StartupTime is the accumulated time spent in startup, in ms.
func (m *Machine) StartupTime() int64 { return m.startupTime }

// DidAttemptPlayingVideo reports whether startup was entered this session.
func (m *Machine) DidAttemptPlayingVideo() bool { return m.didAttemptPlayingVideo }

// DidStartPlayingVideo reports whether the first frame was rendered this session.
func (m *Machine) DidStartPlayingVideo() bool { return m.didStartPlayingVideo }

// CurrentPosition queries the player position.
func (m *Machine) CurrentPosition() MediaTime { return m.position() }

// Settings returns the timing policy in effect.
func (m *Machine) Settings() Settings { return m.settings }
