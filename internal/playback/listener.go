// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

// Listener receives the machine's notifications, synchronously and in the
// order the transitions happen. Durations are milliseconds spent in the
// state being exited (or since the previous heartbeat).
//
// The machine is passed to every call so a listener can read the session
// fields without holding a reference back to it.
type Listener interface {
	DidStartup(m *Machine, durationMS int64)
	DidExitBuffering(m *Machine, durationMS int64)
	DidExitPlaying(m *Machine, durationMS int64)
	DidExitPaused(m *Machine, durationMS int64)
	DidExitSeeking(m *Machine, durationMS int64, destination State)
	DidQualityChange(m *Machine)
	DidAudioChange(m *Machine)
	DidSubtitleChange(m *Machine)
	DidHeartbeat(m *Machine, durationMS int64)
	DidEnterError(m *Machine, data *ErrorData)
	EnterPlayAttemptFailed(m *Machine)
}

// Callbacks is a Listener assembled from plain functions. Nil fields are
// skipped.
type Callbacks struct {
	OnStartup                func(m *Machine, durationMS int64)
	OnExitBuffering          func(m *Machine, durationMS int64)
	OnExitPlaying            func(m *Machine, durationMS int64)
	OnExitPaused             func(m *Machine, durationMS int64)
	OnExitSeeking            func(m *Machine, durationMS int64, destination State)
	OnQualityChange          func(m *Machine)
	OnAudioChange            func(m *Machine)
	OnSubtitleChange         func(m *Machine)
	OnHeartbeat              func(m *Machine, durationMS int64)
	OnEnterError             func(m *Machine, data *ErrorData)
	OnEnterPlayAttemptFailed func(m *Machine)
}

var _ Listener = Callbacks{}

func (c Callbacks) DidStartup(m *Machine, d int64) {
	if c.OnStartup != nil {
		c.OnStartup(m, d)
	}
}

func (c Callbacks) DidExitBuffering(m *Machine, d int64) {
	if c.OnExitBuffering != nil {
		c.OnExitBuffering(m, d)
	}
}

func (c Callbacks) DidExitPlaying(m *Machine, d int64) {
	if c.OnExitPlaying != nil {
		c.OnExitPlaying(m, d)
	}
}

func (c Callbacks) DidExitPaused(m *Machine, d int64) {
	if c.OnExitPaused != nil {
		c.OnExitPaused(m, d)
	}
}

func (c Callbacks) DidExitSeeking(m *Machine, d int64, dest State) {
	if c.OnExitSeeking != nil {
		c.OnExitSeeking(m, d, dest)
	}
}

func (c Callbacks) DidQualityChange(m *Machine) {
	if c.OnQualityChange != nil {
		c.OnQualityChange(m)
	}
}

func (c Callbacks) DidAudioChange(m *Machine) {
	if c.OnAudioChange != nil {
		c.OnAudioChange(m)
	}
}

func (c Callbacks) DidSubtitleChange(m *Machine) {
	if c.OnSubtitleChange != nil {
		c.OnSubtitleChange(m)
	}
}

func (c Callbacks) DidHeartbeat(m *Machine, d int64) {
	if c.OnHeartbeat != nil {
		c.OnHeartbeat(m, d)
	}
}

func (c Callbacks) DidEnterError(m *Machine, data *ErrorData) {
	if c.OnEnterError != nil {
		c.OnEnterError(m, data)
	}
}

func (c Callbacks) EnterPlayAttemptFailed(m *Machine) {
	if c.OnEnterPlayAttemptFailed != nil {
		c.OnEnterPlayAttemptFailed(m)
	}
}
