// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import "time"

// MediaTime is a player-reported position on the media timeline. The zero
// value means the player reported nothing usable.
type MediaTime struct {
	Position time.Duration
	Valid    bool
}

// NoTime is the absent position.
var NoTime = MediaTime{}

// At returns a valid MediaTime for position d.
func At(d time.Duration) MediaTime {
	return MediaTime{Position: d, Valid: true}
}

// Millis returns the position in milliseconds and whether it is valid.
func (t MediaTime) Millis() (int64, bool) {
	if !t.Valid {
		return 0, false
	}
	return t.Position.Milliseconds(), true
}

// PositionFunc reports the player's current position on demand. It is
// queried for heartbeat and timeout-driven transitions.
type PositionFunc func() MediaTime
