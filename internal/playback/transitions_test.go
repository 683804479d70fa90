// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed_Coverage(t *testing.T) {
	type key struct{ from, to State }
	forbidden := map[key]string{
		{StateBuffering, StateQualityChange}: RejectOverlappingNotification,
		{StateSeeking, StateQualityChange}:   RejectOverlappingNotification,
		{StateSeeking, StateBuffering}:       RejectOverlappingNotification,
	}
	legal := map[State][]State{
		StateReady:   {StateError, StatePlayAttemptFailed, StateStartup, StateAd},
		StateStartup: {StateError, StatePlayAttemptFailed, StateReady, StatePlaying, StateAd},
		StateAd:      {StateError, StateAdFinished},
	}
	reasons := map[State]string{
		StateReady:   RejectRequiresStartup,
		StateStartup: RejectStartupIncomplete,
		StateAd:      RejectAdInProgress,
	}

	for _, from := range AllStates {
		for _, to := range AllStates {
			d := Allowed(from, to)
			name := from.String() + "->" + to.String()

			if from == to {
				assert.False(t, d.Allowed, name)
				assert.Equal(t, RejectAlreadyInState, d.Reason, name)
				continue
			}
			if reason, ok := forbidden[key{from, to}]; ok {
				assert.False(t, d.Allowed, name)
				assert.Equal(t, reason, d.Reason, name)
				continue
			}
			if dests, ok := legal[from]; ok {
				if contains(dests, to) {
					assert.True(t, d.Allowed, name)
				} else {
					assert.False(t, d.Allowed, name)
					assert.Equal(t, reasons[from], d.Reason, name)
				}
				continue
			}
			assert.True(t, d.Allowed, name)
			assert.Empty(t, d.Reason, name)
		}
	}
}

func TestAllowed_AdCannotResumePlaying(t *testing.T) {
	d := Allowed(StateAd, StatePlaying)
	assert.False(t, d.Allowed)
	assert.Equal(t, RejectAdInProgress, d.Reason)
}

func TestParseState(t *testing.T) {
	s, ok := ParseState("qualitychange")
	assert.True(t, ok)
	assert.Equal(t, StateQualityChange, s)

	_, ok = ParseState("rewinding")
	assert.False(t, ok)
}

func contains(states []State, s State) bool {
	for _, v := range states {
		if v == s {
			return true
		}
	}
	return false
}
