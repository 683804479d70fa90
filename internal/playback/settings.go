// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import (
	"fmt"
	"time"
)

// Settings holds the machine's timing policy.
type Settings struct {
	// HeartbeatInterval is the fixed tick while playing.
	HeartbeatInterval time.Duration
	// RebufferHeartbeatSchedule is the escalating tick while buffering; the
	// last entry repeats.
	RebufferHeartbeatSchedule []time.Duration
	// RebufferTimeout is the buffering ceiling before the machine forces an
	// error.
	RebufferTimeout time.Duration
	// StartFailedTimeout bounds startup before it counts as a failed start.
	StartFailedTimeout time.Duration
	// QualityChangeThreshold is the number of quality changes tolerated per
	// QualityChangeWindow.
	QualityChangeThreshold int
	QualityChangeWindow    time.Duration
}

// DefaultSettings returns the production timing policy.
func DefaultSettings() Settings {
	return Settings{
		HeartbeatInterval: 59 * time.Second,
		RebufferHeartbeatSchedule: []time.Duration{
			3 * time.Second,
			5 * time.Second,
			10 * time.Second,
			59700 * time.Millisecond,
		},
		RebufferTimeout:        2 * time.Minute,
		StartFailedTimeout:     60 * time.Second,
		QualityChangeThreshold: 50,
		QualityChangeWindow:    time.Hour,
	}
}

// Validate rejects settings that would leave a timer unable to fire.
func (s Settings) Validate() error {
	if s.HeartbeatInterval <= 0 {
		return fmt.Errorf("%w: heartbeat interval must be positive", ErrInvalidSettings)
	}
	if len(s.RebufferHeartbeatSchedule) == 0 {
		return fmt.Errorf("%w: rebuffer heartbeat schedule is empty", ErrInvalidSettings)
	}
	for i, d := range s.RebufferHeartbeatSchedule {
		if d <= 0 {
			return fmt.Errorf("%w: rebuffer heartbeat interval %d must be positive", ErrInvalidSettings, i)
		}
	}
	if s.RebufferTimeout <= 0 {
		return fmt.Errorf("%w: rebuffer timeout must be positive", ErrInvalidSettings)
	}
	if s.StartFailedTimeout <= 0 {
		return fmt.Errorf("%w: start failed timeout must be positive", ErrInvalidSettings)
	}
	if s.QualityChangeThreshold < 0 {
		return fmt.Errorf("%w: quality change threshold must not be negative", ErrInvalidSettings)
	}
	if s.QualityChangeWindow <= 0 {
		return fmt.Errorf("%w: quality change window must be positive", ErrInvalidSettings)
	}
	return nil
}
