// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package playback

import (
	"errors"
	"fmt"
)

var (
	ErrNoListener      = errors.New("playback: listener is required")
	ErrNoExecutor      = errors.New("playback: executor is required")
	ErrInvalidSettings = errors.New("playback: invalid settings")
)

// ErrorData is the side-channel payload attached when entering StateError.
type ErrorData struct {
	Code    int
	Message string
	Data    string
}

func (e ErrorData) String() string {
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

// Codes synthesised by the machine itself. They share the error state with
// player-reported errors and are told apart downstream only by code.
var (
	QualityChangeThresholdExceeded = ErrorData{Code: 10000, Message: "ANALYTICS_QUALITY_CHANGE_THRESHOLD_EXCEEDED"}
	BufferingTimeoutReached        = ErrorData{Code: 10001, Message: "ANALYTICS_BUFFERING_TIMEOUT_REACHED"}
)

// StartFailedReason explains why the first frame never rendered.
type StartFailedReason string

const (
	StartFailedPageClosed  StartFailedReason = "PAGE_CLOSED"
	StartFailedPlayerError StartFailedReason = "PLAYER_ERROR"
	StartFailedTimeout     StartFailedReason = "TIMEOUT"
	StartFailedUnknown     StartFailedReason = "UNKNOWN"
)
