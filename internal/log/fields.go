// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldImpressionID = "impression_id"
	FieldUserID       = "user_id"
	FieldSequence     = "sequence_number"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldSink      = "sink"
	FieldTimer     = "timer"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
	FieldState    = "state"
	FieldReason   = "reason"

	// Timing fields
	FieldDurationMS = "duration_ms"
	FieldIntervalMS = "interval_ms"
	FieldPosition   = "position_ms"

	// Error fields
	FieldErrorCode    = "error_code"
	FieldErrorMessage = "error_message"
)
