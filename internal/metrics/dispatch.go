// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var knownSinks = map[string]struct{}{
	"memory": {},
	"log":    {},
	"redis":  {},
	"sqlite": {},
}

var (
	recordsDispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playstate_records_dispatched_total",
		Help: "Analytics records handed to a sink, by sink and record state",
	}, []string{"sink", "state"})

	recordsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "playstate_records_failed_total",
		Help: "Analytics records a sink failed to accept, by sink",
	}, []string{"sink"})

	recordsBuffered = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "playstate_records_buffered",
		Help: "Records held by a disabled sink awaiting enable",
	}, []string{"sink"})
)

// IncRecordDispatched counts a record accepted by sink.
func IncRecordDispatched(sink, state string) {
	recordsDispatchedTotal.WithLabelValues(normalizeSink(sink), normalizeState(state)).Inc()
}

// IncRecordFailed counts a record sink could not accept.
func IncRecordFailed(sink string) {
	recordsFailedTotal.WithLabelValues(normalizeSink(sink)).Inc()
}

// SetRecordsBuffered reports the backlog size of a disabled sink.
func SetRecordsBuffered(sink string, n int) {
	recordsBuffered.WithLabelValues(normalizeSink(sink)).Set(float64(n))
}

func normalizeSink(sink string) string {
	s := strings.ToLower(strings.TrimSpace(sink))
	if _, ok := knownSinks[s]; ok {
		return s
	}
	return labelUnknown
}
