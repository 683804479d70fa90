// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"
	"sync"

	"github.com/ManuGH/playstate/internal/eventdata"
	"github.com/ManuGH/playstate/internal/metrics"
)

// Memory retains every record it is given, enabled or not.
type Memory struct {
	mu      sync.Mutex
	records []eventdata.Record
	enabled bool
}

// NewMemory returns an empty, disabled Memory sink.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Add(_ context.Context, r eventdata.Record) {
	m.mu.Lock()
	m.records = append(m.records, r)
	m.mu.Unlock()
	metrics.IncRecordDispatched("memory", r.State)
}

func (m *Memory) Enable() {
	m.mu.Lock()
	m.enabled = true
	m.mu.Unlock()
}

func (m *Memory) Disable() {
	m.mu.Lock()
	m.enabled = false
	m.mu.Unlock()
}

// Enabled reports the last Enable/Disable call.
func (m *Memory) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

// Records returns a copy of the retained records.
func (m *Memory) Records() []eventdata.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]eventdata.Record(nil), m.records...)
}

// Reset drops all retained records.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.records = nil
	m.mu.Unlock()
}
