// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/ManuGH/playstate/internal/eventdata"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/metrics"
)

// Logger writes each record as one structured log event.
type Logger struct {
	logger  zerolog.Logger
	level   zerolog.Level
	enabled atomic.Bool
}

// NewLogger builds a Logger sink writing at level.
func NewLogger(logger zerolog.Logger, level zerolog.Level) *Logger {
	return &Logger{logger: logger.With().Str(log.FieldSink, "log").Logger(), level: level}
}

func (l *Logger) Add(ctx context.Context, r eventdata.Record) {
	payload, err := json.Marshal(r)
	if err != nil {
		metrics.IncRecordFailed("log")
		l.logger.Warn().Err(err).Str(log.FieldImpressionID, r.ImpressionID).Msg("record encode failed")
		return
	}
	if log.ImpressionIDFromContext(ctx) == "" {
		ctx = log.ContextWithImpressionID(ctx, r.ImpressionID)
	}
	lg := log.WithContext(ctx, l.logger)
	lg.WithLevel(l.level).
		Int32(log.FieldSequence, r.SequenceNumber).
		Str(log.FieldState, r.State).
		Int64(log.FieldDurationMS, r.Duration).
		Bool("enabled", l.enabled.Load()).
		RawJSON("record", payload).
		Msg("analytics record")
	metrics.IncRecordDispatched("log", r.State)
}

func (l *Logger) Enable()  { l.enabled.Store(true) }
func (l *Logger) Disable() { l.enabled.Store(false) }
