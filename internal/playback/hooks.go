// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import (
	"github.com/ManuGH/playstate/internal/clock"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/metrics"
)

// redirect replaces the destination of a transition that is already under
// way. Only the quality-change exit uses it.
type redirect struct {
	to   State
	data *ErrorData
}

func (m *Machine) durationUntil(ts int64) int64 {
	if !m.entered {
		return 0
	}
	return ts - m.enterTimestamp
}

func (m *Machine) onExit(from State, ts int64, dest State, data *ErrorData) *redirect {
	duration := m.durationUntil(ts)

	if dest == StatePlayAttemptFailed {
		m.rebufferHeartbeat.Stop()
		m.heartbeat.Stop()
		m.rebuffer.Reset()
		m.startFailed.Stop()
		metrics.IncStartFailure(string(m.videoStartFailedReason))
		m.logger.Warn().
			Str(log.FieldImpressionID, m.impressionID).
			Str(log.FieldState, from.String()).
			Str(log.FieldReason, string(m.videoStartFailedReason)).
			Msg("play attempt failed")
		m.listener.EnterPlayAttemptFailed(m)
		return nil
	}

	switch from {
	case StateStartup:
		m.startFailed.Stop()
		m.startupTime += duration
		if dest == StatePlaying {
			m.didStartPlayingVideo = true
			metrics.ObserveStateDuration(from.String(), m.startupTime)
			m.listener.DidStartup(m, m.startupTime)
		}
	case StateBuffering:
		m.rebuffer.Reset()
		m.rebufferHeartbeat.Stop()
		metrics.ObserveStateDuration(from.String(), duration)
		m.listener.DidExitBuffering(m, duration)
	case StatePlaying:
		m.heartbeat.Stop()
		metrics.ObserveStateDuration(from.String(), duration)
		m.listener.DidExitPlaying(m, duration)
	case StatePaused:
		metrics.ObserveStateDuration(from.String(), duration)
		m.listener.DidExitPaused(m, duration)
	case StateQualityChange:
		if m.quality.IsBelowThreshold() {
			m.listener.DidQualityChange(m)
			return nil
		}
		if dest == StateError && data != nil {
			return nil
		}
		exceeded := QualityChangeThresholdExceeded
		metrics.IncPolicyError(exceeded.Code)
		m.logger.Warn().
			Str(log.FieldImpressionID, m.impressionID).
			Int(log.FieldErrorCode, exceeded.Code).
			Str(log.FieldErrorMessage, exceeded.Message).
			Str(log.FieldNewState, dest.String()).
			Msg("quality change threshold exceeded")
		return &redirect{to: StateError, data: &exceeded}
	case StateSeeking:
		metrics.ObserveStateDuration(from.String(), duration)
		m.listener.DidExitSeeking(m, duration, dest)
	case StateSubtitleChange:
		m.listener.DidSubtitleChange(m)
	case StateAudioChange:
		m.listener.DidAudioChange(m)
	}
	return nil
}

func (m *Machine) onEntry(to State, data *ErrorData) {
	switch to {
	case StateStartup:
		m.didAttemptPlayingVideo = true
		m.StartVideoStartFailedTimer()
	case StateBuffering:
		m.rebuffer.Start()
		m.rebufferHeartbeat.Start(m.onHeartbeat)
	case StatePlaying:
		m.heartbeat.Start(m.onHeartbeat, m.settings.HeartbeatInterval)
	case StateQualityChange:
		m.quality.Increment()
	case StateError:
		m.listener.DidEnterError(m, data)
	}
}

func (m *Machine) onHeartbeat() {
	if !m.entered {
		return
	}
	now := clock.NowMillis(m.clock)
	m.videoTimeEnd = m.position()
	duration := now - m.enterTimestamp

	metrics.IncHeartbeat(m.state.String())
	metrics.ObserveStateDuration(m.state.String(), duration)
	m.logger.Debug().
		Str(log.FieldImpressionID, m.impressionID).
		Str(log.FieldState, m.state.String()).
		Int64(log.FieldDurationMS, duration).
		Msg("heartbeat")
	m.listener.DidHeartbeat(m, duration)

	m.videoTimeStart = m.videoTimeEnd
	m.enterTimestamp = now
}

func (m *Machine) onRebufferTimeout() {
	reached := BufferingTimeoutReached
	metrics.IncPolicyError(reached.Code)
	m.logger.Warn().
		Str(log.FieldImpressionID, m.impressionID).
		Str(log.FieldTimer, "rebuffer-timeout").
		Dur(log.FieldIntervalMS, m.settings.RebufferTimeout).
		Msg("buffering timeout reached")
	m.TransitionState(StateError, m.position(), &reached)
}

func (m *Machine) onStartFailedTimeout() {
	m.logger.Warn().
		Str(log.FieldImpressionID, m.impressionID).
		Str(log.FieldTimer, "start-failed").
		Dur(log.FieldIntervalMS, m.settings.StartFailedTimeout).
		Msg("video start timed out")
	m.OnPlayAttemptFailed(StartFailedTimeout, NoTime)
}
