// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package clock

import (
	"sync"
	"time"
)

// Mock provides deterministic time control. Callbacks never run on their
// own; they fire synchronously inside Advance on the caller's goroutine.
type Mock struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*mockTimer
}

type mockTimer struct {
	m        *Mock
	deadline time.Time
	seq      uint64
	f        func()
	done     bool
}

// NewMock creates a mock clock starting at the given time.
func NewMock(start time.Time) *Mock {
	return &Mock{now: start}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &mockTimer{m: m, deadline: m.now.Add(d), seq: m.seq, f: f}
	m.timers = append(m.timers, t)
	return t
}

func (t *mockTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.m.remove(t)
	return true
}

// remove drops t from the pending list. Caller holds m.mu.
func (m *Mock) remove(t *mockTimer) {
	for i, p := range m.timers {
		if p == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return
		}
	}
}

// next returns the earliest pending timer due at or before limit.
// Ties fire in scheduling order. Caller holds m.mu.
func (m *Mock) next(limit time.Time) *mockTimer {
	var best *mockTimer
	for _, t := range m.timers {
		if t.deadline.After(limit) {
			continue
		}
		if best == nil || t.deadline.Before(best.deadline) ||
			(t.deadline.Equal(best.deadline) && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// Advance moves the clock forward by d. Every timer due within the window
// fires in deadline order, and Now reports that timer's deadline while its
// callback runs. Timers scheduled by callbacks fire too if they fall due
// before the end of the window.
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	for {
		t := m.next(target)
		if t == nil {
			break
		}
		t.done = true
		m.remove(t)
		if t.deadline.After(m.now) {
			m.now = t.deadline
		}
		m.mu.Unlock()
		t.f()
		m.mu.Lock()
	}
	if target.After(m.now) {
		m.now = target
	}
	m.mu.Unlock()
}

// Pending returns the number of scheduled, unfired timers.
func (m *Mock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
