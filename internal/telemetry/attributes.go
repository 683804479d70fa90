// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Common attribute keys for consistent tracing across the collector.
const (
	// Session attributes
	ImpressionIDKey = "playstate.impression_id"
	UserIDKey       = "playstate.user_id"
	VideoIDKey      = "playstate.video_id"
	AutoplayKey     = "playstate.autoplay"

	// State attributes
	StateKey     = "playstate.state"
	FromStateKey = "playstate.from_state"
	ToStateKey   = "playstate.to_state"

	// Record attributes
	SequenceKey          = "record.sequence_number"
	DurationKey          = "record.duration_ms"
	ErrorCodeKey         = "record.error_code"
	StartFailedKey       = "record.video_start_failed"
	StartFailedReasonKey = "record.video_start_failed_reason"

	// Replay attributes
	ReplayOperationsKey = "replay.operations"
	ReplayRecordsKey    = "replay.records"

	// Error attributes
	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// SessionAttributes describes the session a span belongs to. Empty values
// are omitted.
func SessionAttributes(impressionID, userID, videoID string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if impressionID != "" {
		attrs = append(attrs, attribute.String(ImpressionIDKey, impressionID))
	}
	if userID != "" {
		attrs = append(attrs, attribute.String(UserIDKey, userID))
	}
	if videoID != "" {
		attrs = append(attrs, attribute.String(VideoIDKey, videoID))
	}
	return attrs
}

// TransitionAttributes describes a state change.
func TransitionAttributes(from, to string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(FromStateKey, from),
		attribute.String(ToStateKey, to),
	}
}

// RecordAttributes describes an emitted analytics record. errorCode and
// startFailedReason are only attached when present.
func RecordAttributes(state string, sequence int32, durationMS int64, errorCode *int, startFailedReason string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(StateKey, state),
		attribute.Int(SequenceKey, int(sequence)),
		attribute.Int64(DurationKey, durationMS),
	}
	if errorCode != nil {
		attrs = append(attrs, attribute.Int(ErrorCodeKey, *errorCode))
	}
	if startFailedReason != "" {
		attrs = append(attrs,
			attribute.Bool(StartFailedKey, true),
			attribute.String(StartFailedReasonKey, startFailedReason),
		)
	}
	return attrs
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
