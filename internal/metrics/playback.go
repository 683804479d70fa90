// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package metrics exposes Prometheus collectors for the playback state
// machine and the record sinks.
package metrics

import (
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const labelUnknown = "unknown"

var knownStates = map[string]struct{}{
	"ready":             {},
	"startup":           {},
	"playing":           {},
	"paused":            {},
	"buffering":         {},
	"seeking":           {},
	"qualitychange":     {},
	"subtitlechange":    {},
	"audiochange":       {},
	"ad":                {},
	"adFinished":        {},
	"playAttemptFailed": {},
	"error":             {},
}

var knownRejectReasons = map[string]struct{}{
	"already_in_state":         {},
	"overlapping_notification": {},
	"requires_startup":         {},
	"startup_incomplete":       {},
	"ad_in_progress":           {},
}

var knownStartFailReasons = map[string]struct{}{
	"PAGE_CLOSED":  {},
	"PLAYER_ERROR": {},
	"TIMEOUT":      {},
	"UNKNOWN":      {},
}

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playstate_transitions_total",
		Help: "Accepted playback state transitions by source and destination state",
	}, []string{"from", "to"})

	transitionsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playstate_transitions_rejected_total",
		Help: "Playback state transitions absorbed by the transition guard, by reason",
	}, []string{"reason"})

	stateDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "playstate_state_duration_seconds",
		Help:    "Time spent in a playback state per exit or heartbeat",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 30, 60, 120, 300},
	}, []string{"state"})

	heartbeatsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playstate_heartbeats_total",
		Help: "Heartbeat ticks emitted by state",
	}, []string{"state"})

	policyErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playstate_policy_errors_total",
		Help: "Errors synthesised by the state machine itself, by error code",
	}, []string{"code"})

	startFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playstate_start_failures_total",
		Help: "Video start failures by reason",
	}, []string{"reason"})
)

// IncTransition counts an accepted transition.
func IncTransition(from, to string) {
	transitionsTotal.WithLabelValues(normalizeState(from), normalizeState(to)).Inc()
}

// IncTransitionRejected counts a transition absorbed by the guard.
func IncTransitionRejected(reason string) {
	transitionsRejectedTotal.WithLabelValues(normalizeRejectReason(reason)).Inc()
}

// ObserveStateDuration records the milliseconds spent in state.
func ObserveStateDuration(state string, durationMS int64) {
	if durationMS < 0 {
		return
	}
	stateDurationSeconds.WithLabelValues(normalizeState(state)).Observe(float64(durationMS) / 1000)
}

// IncHeartbeat counts a heartbeat tick in state.
func IncHeartbeat(state string) {
	heartbeatsTotal.WithLabelValues(normalizeState(state)).Inc()
}

// IncPolicyError counts a machine-internal error such as a buffering timeout.
func IncPolicyError(code int) {
	policyErrorsTotal.WithLabelValues(normalizePolicyCode(code)).Inc()
}

// IncStartFailure counts a video start failure.
func IncStartFailure(reason string) {
	startFailuresTotal.WithLabelValues(normalizeStartFailReason(reason)).Inc()
}

func normalizeState(state string) string {
	s := strings.TrimSpace(state)
	if _, ok := knownStates[s]; ok {
		return s
	}
	return labelUnknown
}

func normalizeRejectReason(reason string) string {
	r := strings.ToLower(strings.TrimSpace(reason))
	if _, ok := knownRejectReasons[r]; ok {
		return r
	}
	return labelUnknown
}

func normalizeStartFailReason(reason string) string {
	r := strings.ToUpper(strings.TrimSpace(reason))
	if _, ok := knownStartFailReasons[r]; ok {
		return r
	}
	return "UNKNOWN"
}

func normalizePolicyCode(code int) string {
	// Policy codes live in the 10000 block; anything else is a player code
	// and would explode cardinality.
	if code >= 10000 && code < 10100 {
		return strconv.Itoa(code)
	}
	return labelUnknown
}
