// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

// State is a mutually exclusive playback phase. The string value is the
// wire name carried in analytics records.
type State string

const (
	StateReady             State = "ready"
	StateStartup           State = "startup"
	StatePlaying           State = "playing"
	StatePaused            State = "paused"
	StateBuffering         State = "buffering"
	StateSeeking           State = "seeking"
	StateQualityChange     State = "qualitychange"
	StateSubtitleChange    State = "subtitlechange"
	StateAudioChange       State = "audiochange"
	StateAd                State = "ad"
	StateAdFinished        State = "adFinished"
	StatePlayAttemptFailed State = "playAttemptFailed"
	StateError             State = "error"
)

// AllStates lists every state in declaration order.
var AllStates = []State{
	StateReady,
	StateStartup,
	StatePlaying,
	StatePaused,
	StateBuffering,
	StateSeeking,
	StateQualityChange,
	StateSubtitleChange,
	StateAudioChange,
	StateAd,
	StateAdFinished,
	StatePlayAttemptFailed,
	StateError,
}

func (s State) String() string { return string(s) }

// Valid reports whether s is one of the declared states.
func (s State) Valid() bool {
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

// ParseState maps a wire name back to a State.
func ParseState(name string) (State, bool) {
	s := State(name)
	return s, s.Valid()
}
