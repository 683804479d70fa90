// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/playstate/internal/clock"
	"github.com/ManuGH/playstate/internal/serial"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type note struct {
	Name     string
	Duration int64
	State    State
	Dest     State
	Data     *ErrorData
	Start    MediaTime
	End      MediaTime
}

type recorder struct{ notes []note }

func (r *recorder) add(m *Machine, n note) {
	n.State = m.State()
	n.Start = m.VideoTimeStart()
	n.End = m.VideoTimeEnd()
	r.notes = append(r.notes, n)
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnStartup: func(m *Machine, d int64) { r.add(m, note{Name: "startup", Duration: d}) },
		OnExitBuffering: func(m *Machine, d int64) {
			r.add(m, note{Name: "exitBuffering", Duration: d})
		},
		OnExitPlaying: func(m *Machine, d int64) { r.add(m, note{Name: "exitPlaying", Duration: d}) },
		OnExitPaused:  func(m *Machine, d int64) { r.add(m, note{Name: "exitPaused", Duration: d}) },
		OnExitSeeking: func(m *Machine, d int64, dest State) {
			r.add(m, note{Name: "exitSeeking", Duration: d, Dest: dest})
		},
		OnQualityChange:  func(m *Machine) { r.add(m, note{Name: "qualityChange"}) },
		OnAudioChange:    func(m *Machine) { r.add(m, note{Name: "audioChange"}) },
		OnSubtitleChange: func(m *Machine) { r.add(m, note{Name: "subtitleChange"}) },
		OnHeartbeat:      func(m *Machine, d int64) { r.add(m, note{Name: "heartbeat", Duration: d}) },
		OnEnterError: func(m *Machine, data *ErrorData) {
			r.add(m, note{Name: "enterError", Data: data})
		},
		OnEnterPlayAttemptFailed: func(m *Machine) { r.add(m, note{Name: "playAttemptFailed"}) },
	}
}

type harness struct {
	clock *clock.Mock
	rec   *recorder
	pos   MediaTime
	m     *Machine
}

func newHarness(t *testing.T, tweak func(*Settings)) *harness {
	t.Helper()
	h := &harness{clock: clock.NewMock(epoch), rec: &recorder{}}
	settings := DefaultSettings()
	if tweak != nil {
		tweak(&settings)
	}
	ids := 0
	logger := zerolog.Nop()
	m, err := New(Options{
		Clock:    h.clock,
		Executor: serial.Inline{},
		Listener: h.rec.callbacks(),
		Position: func() MediaTime { return h.pos },
		Settings: &settings,
		Logger:   &logger,
		NewID: func() string {
			ids++
			return fmt.Sprintf("imp-%d", ids)
		},
	})
	require.NoError(t, err)
	h.m = m
	return h
}

func (h *harness) nowMS() int64 { return h.clock.Now().UnixMilli() }

func (h *harness) names() []string {
	out := make([]string, 0, len(h.rec.notes))
	for _, n := range h.rec.notes {
		out = append(out, n.Name)
	}
	return out
}

func (h *harness) durations(name string) []int64 {
	var out []int64
	for _, n := range h.rec.notes {
		if n.Name == name {
			out = append(out, n.Duration)
		}
	}
	return out
}

func (h *harness) clear() { h.rec.notes = nil }

// startPlaying drives ready → startup → playing with one second of startup.
func (h *harness) startPlaying(t *testing.T) {
	t.Helper()
	h.m.Play(At(0))
	h.clock.Advance(time.Second)
	h.m.Playing(At(0))
	require.Equal(t, StatePlaying, h.m.State())
	h.clear()
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Options{Executor: serial.Inline{}})
	require.ErrorIs(t, err, ErrNoListener)

	_, err = New(Options{Listener: Callbacks{}})
	require.ErrorIs(t, err, ErrNoExecutor)
}

func TestNew_RejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		tweak func(*Settings)
	}{
		{"zero heartbeat", func(s *Settings) { s.HeartbeatInterval = 0 }},
		{"empty rebuffer schedule", func(s *Settings) { s.RebufferHeartbeatSchedule = nil }},
		{"negative rebuffer interval", func(s *Settings) { s.RebufferHeartbeatSchedule = []time.Duration{time.Second, -1} }},
		{"zero rebuffer timeout", func(s *Settings) { s.RebufferTimeout = 0 }},
		{"zero start timeout", func(s *Settings) { s.StartFailedTimeout = 0 }},
		{"negative threshold", func(s *Settings) { s.QualityChangeThreshold = -1 }},
		{"zero window", func(s *Settings) { s.QualityChangeWindow = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.tweak(&s)
			_, err := New(Options{Executor: serial.Inline{}, Listener: Callbacks{}, Settings: &s})
			require.ErrorIs(t, err, ErrInvalidSettings)
		})
	}
}

func TestMachine_InitialState(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t, StateReady, h.m.State())
	assert.Equal(t, "imp-1", h.m.ImpressionID())
	assert.Zero(t, h.m.EnterTimestamp())
	assert.False(t, h.m.DidAttemptPlayingVideo())
	assert.False(t, h.m.DidStartPlayingVideo())
	assert.Zero(t, h.clock.Pending())
}

func TestMachine_RejectedTransitionIsNoop(t *testing.T) {
	h := newHarness(t, nil)

	h.m.Playing(At(5 * time.Second))
	h.m.TransitionState(StateBuffering, At(5*time.Second), nil)

	assert.Equal(t, StateReady, h.m.State())
	assert.Empty(t, h.rec.notes)
	assert.Zero(t, h.m.EnterTimestamp())
	assert.Equal(t, NoTime, h.m.VideoTimeEnd())
}

func TestMachine_SameStateTransitionIsNoop(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)
	h.clear()
	entered := h.m.EnterTimestamp()
	start := h.m.VideoTimeStart()

	h.clock.Advance(2 * time.Second)
	h.m.TransitionState(StatePlaying, At(42*time.Second), nil)

	assert.Equal(t, StatePlaying, h.m.State())
	assert.Equal(t, entered, h.m.EnterTimestamp())
	assert.Equal(t, start, h.m.VideoTimeStart())
	assert.Empty(t, h.rec.notes)
}

func TestMachine_StartupReportsDuration(t *testing.T) {
	h := newHarness(t, nil)

	h.m.Play(At(0))
	assert.True(t, h.m.DidAttemptPlayingVideo())
	h.clock.Advance(1500 * time.Millisecond)
	h.m.Playing(At(0))

	require.Equal(t, []string{"startup"}, h.names())
	assert.Equal(t, int64(1500), h.rec.notes[0].Duration)
	assert.Equal(t, StateStartup, h.rec.notes[0].State)
	assert.True(t, h.m.DidStartPlayingVideo())
	assert.Equal(t, int64(1500), h.m.StartupTime())
	assert.Equal(t, h.nowMS(), h.m.EnterTimestamp())
}

func TestMachine_StartupAccumulatesAcrossReentries(t *testing.T) {
	h := newHarness(t, nil)

	h.m.Play(At(0))
	h.clock.Advance(time.Second)
	h.m.Pause(At(0))
	assert.Equal(t, StateReady, h.m.State())
	assert.Empty(t, h.rec.notes)

	h.clock.Advance(5 * time.Second)
	h.m.Play(At(0))
	h.clock.Advance(2 * time.Second)
	h.m.Playing(At(0))

	assert.Equal(t, []int64{3000}, h.durations("startup"))
}

func TestMachine_PlayIgnoredOnceStarted(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)

	h.m.Play(At(time.Second))
	assert.Equal(t, StatePlaying, h.m.State())
	assert.Empty(t, h.rec.notes)
}

func TestMachine_PauseBeforeStartReturnsToReady(t *testing.T) {
	h := newHarness(t, nil)
	h.m.Play(At(0))
	h.m.Pause(At(0))
	assert.Equal(t, StateReady, h.m.State())
	assert.True(t, h.m.DidAttemptPlayingVideo())
	assert.False(t, h.m.DidStartPlayingVideo())
}

func TestMachine_StartFailedTimeout(t *testing.T) {
	h := newHarness(t, nil)
	h.m.Play(At(0))

	h.clock.Advance(59999 * time.Millisecond)
	assert.Empty(t, h.rec.notes)
	h.clock.Advance(time.Millisecond)

	require.Equal(t, []string{"playAttemptFailed"}, h.names())
	assert.Equal(t, StatePlayAttemptFailed, h.m.State())
	assert.Equal(t, NoTime, h.m.VideoTimeEnd())

	reason, ok := h.m.ConsumeVideoStartFailed()
	require.True(t, ok)
	assert.Equal(t, StartFailedTimeout, reason)
	_, ok = h.m.ConsumeVideoStartFailed()
	assert.False(t, ok)
}

func TestMachine_StartFailedTimerClearedOnStart(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)

	h.clock.Advance(61 * time.Second)
	assert.NotContains(t, h.names(), "playAttemptFailed")
	assert.Equal(t, StatePlaying, h.m.State())
}

func TestMachine_StartFailedTimerRequiresStartup(t *testing.T) {
	h := newHarness(t, nil)
	h.m.StartVideoStartFailedTimer()
	assert.Zero(t, h.clock.Pending())

	h.clock.Advance(2 * time.Minute)
	assert.Equal(t, StateReady, h.m.State())
	assert.Empty(t, h.rec.notes)
}

func TestMachine_StartFailedTimerSuspendedInBackground(t *testing.T) {
	h := newHarness(t, nil)
	h.m.Play(At(0))
	h.clock.Advance(30 * time.Second)

	h.m.ClearVideoStartFailedTimer()
	h.clock.Advance(90 * time.Second)
	assert.Empty(t, h.rec.notes)

	h.m.StartVideoStartFailedTimer()
	h.clock.Advance(60 * time.Second)
	assert.Equal(t, []string{"playAttemptFailed"}, h.names())
}

func TestMachine_Heartbeat(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)

	h.pos = At(59 * time.Second)
	h.clock.Advance(59 * time.Second)
	require.Equal(t, []int64{59000}, h.durations("heartbeat"))
	hb := h.rec.notes[0]
	assert.Equal(t, StatePlaying, hb.State)
	assert.Equal(t, At(0), hb.Start)
	assert.Equal(t, At(59*time.Second), hb.End)
	assert.Equal(t, At(59*time.Second), h.m.VideoTimeStart())
	assert.Equal(t, h.nowMS(), h.m.EnterTimestamp())

	h.clock.Advance(59 * time.Second)
	assert.Equal(t, []int64{59000, 59000}, h.durations("heartbeat"))

	h.clock.Advance(10 * time.Second)
	h.m.Pause(At(128 * time.Second))
	assert.Equal(t, []int64{10000}, h.durations("exitPlaying"))

	h.clock.Advance(5 * time.Minute)
	assert.Len(t, h.durations("heartbeat"), 2)
}

func TestMachine_RebufferHeartbeatEscalates(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)
	h.clock.Advance(10 * time.Second)
	h.m.TransitionState(StateBuffering, At(10*time.Second), nil)
	require.Equal(t, []int64{10000}, h.durations("exitPlaying"))
	h.clear()

	for _, step := range []time.Duration{3 * time.Second, 5 * time.Second, 10 * time.Second, 59700 * time.Millisecond} {
		h.clock.Advance(step)
	}
	assert.Equal(t, []int64{3000, 5000, 10000, 59700}, h.durations("heartbeat"))

	h.m.Playing(At(10 * time.Second))
	assert.Equal(t, []int64{0}, h.durations("exitBuffering"))
	h.clear()

	h.m.TransitionState(StateBuffering, At(10*time.Second), nil)
	h.clock.Advance(3 * time.Second)
	assert.Equal(t, []int64{3000}, h.durations("heartbeat"))
}

func TestMachine_RebufferTimeout(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)
	h.m.TransitionState(StateBuffering, At(5*time.Second), nil)
	h.clear()

	h.pos = At(7 * time.Second)
	h.clock.Advance(2 * time.Minute)

	assert.Equal(t, []string{"heartbeat", "heartbeat", "heartbeat", "heartbeat", "exitBuffering", "enterError"}, h.names())
	assert.Equal(t, []int64{42300}, h.durations("exitBuffering"))

	// Rebuffer heartbeats report the time since the previous record, so the
	// whole stall is split across them and the exit.
	var total int64
	for _, d := range h.durations("heartbeat") {
		total += d
	}
	total += h.durations("exitBuffering")[0]
	assert.Equal(t, int64(120000), total)

	exit := h.rec.notes[4]
	assert.Equal(t, StateBuffering, exit.State)

	enter := h.rec.notes[5]
	assert.Equal(t, StateError, enter.State)
	require.NotNil(t, enter.Data)
	assert.Equal(t, BufferingTimeoutReached, *enter.Data)
	assert.Equal(t, At(7*time.Second), h.m.VideoTimeEnd())

	h.clock.Advance(10 * time.Minute)
	assert.Len(t, h.rec.notes, 6)
}

func TestMachine_RebufferTimeoutCanceledByExit(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)
	h.m.TransitionState(StateBuffering, At(0), nil)
	h.clock.Advance(time.Minute)
	h.m.Playing(At(0))
	h.clear()

	h.clock.Advance(90 * time.Second)
	assert.NotContains(t, h.names(), "enterError")
	assert.Equal(t, StatePlaying, h.m.State())
}

func TestMachine_QualityChangeThreshold(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.QualityChangeThreshold = 2 })
	h.startPlaying(t)

	for i := 0; i < 2; i++ {
		h.m.VideoQualityChange(At(0))
		require.Equal(t, StateQualityChange, h.m.State())
		h.m.Playing(At(0))
	}
	assert.Len(t, h.durations("qualityChange"), 2)
	h.clear()

	h.m.VideoQualityChange(At(0))
	h.m.Playing(At(0))

	assert.Equal(t, []string{"exitPlaying", "enterError"}, h.names())
	require.NotNil(t, h.rec.notes[1].Data)
	assert.Equal(t, QualityChangeThresholdExceeded, *h.rec.notes[1].Data)
	assert.Equal(t, StateError, h.m.State())

	h.m.VideoQualityChange(At(0))
	assert.Equal(t, StateError, h.m.State())

	h.clock.Advance(time.Hour)
	h.m.VideoQualityChange(At(0))
	assert.Equal(t, StateQualityChange, h.m.State())
}

func TestMachine_QualityChangeThresholdKeepsPlayerError(t *testing.T) {
	h := newHarness(t, func(s *Settings) { s.QualityChangeThreshold = 0 })
	h.startPlaying(t)

	h.m.VideoQualityChange(At(0))
	require.Equal(t, StateQualityChange, h.m.State())
	playerErr := &ErrorData{Code: 3001, Message: "decoder failure"}
	h.m.TransitionState(StateError, At(0), playerErr)

	require.Equal(t, []string{"exitPlaying", "enterError"}, h.names())
	assert.Same(t, playerErr, h.rec.notes[1].Data)
}

func TestMachine_VideoTimeContinuity(t *testing.T) {
	h := newHarness(t, nil)
	h.m.Play(At(0))
	h.clock.Advance(time.Second)
	h.m.Playing(At(2 * time.Second))
	assert.Equal(t, At(2*time.Second), h.m.VideoTimeStart())

	h.clock.Advance(3 * time.Second)
	h.m.Pause(At(5 * time.Second))

	exit := h.rec.notes[len(h.rec.notes)-1]
	require.Equal(t, "exitPlaying", exit.Name)
	assert.Equal(t, At(2*time.Second), exit.Start)
	assert.Equal(t, At(5*time.Second), exit.End)
	assert.Equal(t, At(5*time.Second), h.m.VideoTimeStart())
}

func TestMachine_ExitSeekingReportsDestination(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)

	h.m.TransitionState(StateSeeking, At(time.Second), nil)
	h.clock.Advance(700 * time.Millisecond)
	h.m.Playing(At(30 * time.Second))

	n := h.rec.notes[len(h.rec.notes)-1]
	assert.Equal(t, "exitSeeking", n.Name)
	assert.Equal(t, int64(700), n.Duration)
	assert.Equal(t, StatePlaying, n.Dest)
}

func TestMachine_OverlappingNotificationsAbsorbed(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)
	h.m.TransitionState(StateSeeking, At(0), nil)
	h.clear()

	h.m.TransitionState(StateBuffering, At(0), nil)
	h.m.VideoQualityChange(At(0))
	assert.Equal(t, StateSeeking, h.m.State())
	assert.Empty(t, h.rec.notes)
	assert.Zero(t, h.m.quality.Count())
}

func TestMachine_ConfirmSeek(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)
	h.clock.Advance(2 * time.Second)

	jumpAt := h.nowMS()
	h.m.SetPotentialSeek(jumpAt, At(10*time.Second))
	h.clock.Advance(500 * time.Millisecond)

	require.True(t, h.m.ConfirmSeek())
	assert.Equal(t, jumpAt, h.m.EnterTimestamp())
	assert.Equal(t, At(10*time.Second), h.m.VideoTimeStart())
	assert.Zero(t, h.m.PotentialSeekStart())
	assert.Equal(t, NoTime, h.m.PotentialSeekVideoTimeStart())

	h.m.TransitionState(StateSeeking, At(30*time.Second), nil)
	assert.Equal(t, []int64{500}, h.durations("exitPlaying"))

	assert.False(t, h.m.ConfirmSeek())
}

func TestMachine_PlayAttemptFailedStopsTimers(t *testing.T) {
	h := newHarness(t, nil)
	h.m.Play(At(0))
	require.NotZero(t, h.clock.Pending())

	h.m.OnPlayAttemptFailed(StartFailedPlayerError, At(0))
	assert.Equal(t, []string{"playAttemptFailed"}, h.names())
	assert.Zero(t, h.clock.Pending())

	reason, ok := h.m.ConsumeVideoStartFailed()
	require.True(t, ok)
	assert.Equal(t, StartFailedPlayerError, reason)
}

func TestMachine_PlayAttemptFailedSkipsStateExit(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)
	h.m.TransitionState(StateBuffering, At(0), nil)
	h.clear()

	h.m.OnPlayAttemptFailed("", At(0))
	assert.Equal(t, []string{"playAttemptFailed"}, h.names())
	assert.Zero(t, h.clock.Pending())

	reason, ok := h.m.ConsumeVideoStartFailed()
	require.True(t, ok)
	assert.Equal(t, StartFailedUnknown, reason)
}

func TestMachine_PlayAttemptFailedRejectedDuringAd(t *testing.T) {
	h := newHarness(t, nil)
	h.m.TransitionState(StateAd, At(0), nil)
	h.clear()

	h.m.OnPlayAttemptFailed(StartFailedPageClosed, At(0))
	assert.Empty(t, h.names())
	assert.Equal(t, StateAd, h.m.State())

	_, ok := h.m.ConsumeVideoStartFailed()
	assert.False(t, ok, "a rejected failure must not ride on a later record")
}

func TestMachine_AudioAndSubtitleChanges(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)

	h.m.AudioQualityChange(At(0))
	require.Equal(t, StateAudioChange, h.m.State())
	h.m.Playing(At(0))
	h.m.TransitionState(StateSubtitleChange, At(0), nil)
	h.m.Playing(At(0))

	assert.Equal(t, []string{"exitPlaying", "audioChange", "exitPlaying", "subtitleChange"}, h.names())
}

func TestMachine_AdBlocksPlaying(t *testing.T) {
	h := newHarness(t, nil)
	h.m.Play(At(0))
	h.m.TransitionState(StateAd, At(0), nil)

	h.m.Playing(At(0))
	assert.Equal(t, StateAd, h.m.State())

	h.m.TransitionState(StateAdFinished, At(0), nil)
	h.m.Playing(At(0))
	assert.Equal(t, StatePlaying, h.m.State())
}

func TestMachine_ResetStartsNewSession(t *testing.T) {
	h := newHarness(t, nil)
	h.startPlaying(t)
	h.m.VideoQualityChange(At(0))
	h.m.SetPotentialSeek(h.nowMS(), At(0))
	h.m.SetVideoStartFailed(StartFailedPageClosed)
	require.NotZero(t, h.clock.Pending())

	h.m.Reset()

	assert.Equal(t, StateReady, h.m.State())
	assert.Equal(t, "imp-2", h.m.ImpressionID())
	assert.Zero(t, h.m.EnterTimestamp())
	assert.Zero(t, h.m.StartupTime())
	assert.Zero(t, h.m.PotentialSeekStart())
	assert.False(t, h.m.DidAttemptPlayingVideo())
	assert.False(t, h.m.DidStartPlayingVideo())
	assert.Zero(t, h.m.quality.Count())
	assert.Zero(t, h.clock.Pending())
	_, ok := h.m.ConsumeVideoStartFailed()
	assert.False(t, ok)

	h.clear()
	h.clock.Advance(2 * time.Hour)
	assert.Empty(t, h.rec.notes)
}
