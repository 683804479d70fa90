// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

// Rejection reasons. Keep these stable: metrics depend on them.
const (
	RejectAlreadyInState          = "already_in_state"
	RejectOverlappingNotification = "overlapping_notification"
	RejectRequiresStartup         = "requires_startup"
	RejectStartupIncomplete       = "startup_incomplete"
	RejectAdInProgress            = "ad_in_progress"
)

// Decision records whether a transition is allowed and why it is not.
type Decision struct {
	Allowed bool
	Reason  string
}

func allowed() Decision        { return Decision{Allowed: true} }
func forbid(r string) Decision { return Decision{Allowed: false, Reason: r} }

// exitsFrom restricts the destinations of states that only have a few
// legal successors. States not listed accept any destination.
var exitsFrom = map[State]struct {
	to     map[State]struct{}
	reason string
}{
	StateReady: {
		to:     set(StateError, StatePlayAttemptFailed, StateStartup, StateAd),
		reason: RejectRequiresStartup,
	},
	StateStartup: {
		to:     set(StateError, StatePlayAttemptFailed, StateReady, StatePlaying, StateAd),
		reason: RejectStartupIncomplete,
	},
	StateAd: {
		to:     set(StateError, StateAdFinished),
		reason: RejectAdInProgress,
	},
}

// overlapping lists pairs where the second notification is an artefact of
// the first one still being in progress.
var overlapping = map[State]map[State]struct{}{
	StateBuffering: set(StateQualityChange),
	StateSeeking:   set(StateQualityChange, StateBuffering),
}

func set(states ...State) map[State]struct{} {
	m := make(map[State]struct{}, len(states))
	for _, s := range states {
		m[s] = struct{}{}
	}
	return m
}

// Allowed decides whether from → to may proceed. Rejected transitions are
// absorbed by the machine as no-ops.
func Allowed(from, to State) Decision {
	if from == to {
		return forbid(RejectAlreadyInState)
	}
	if _, ok := overlapping[from][to]; ok {
		return forbid(RejectOverlappingNotification)
	}
	if rule, ok := exitsFrom[from]; ok {
		if _, ok := rule.to[to]; !ok {
			return forbid(rule.reason)
		}
	}
	return allowed()
}
