// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/playstate/internal/clock"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func backlog(n int, err error) func(context.Context) (int, error) {
	return func(context.Context) (int, error) { return n, err }
}

func TestManager_NoCheckersIsHealthy(t *testing.T) {
	m := NewManager("1.0.0", clock.NewMock(now))
	resp := m.Check(context.Background())
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.True(t, resp.Ready)
	assert.Equal(t, now, resp.Timestamp)
	assert.Empty(t, resp.Checks)
}

func TestManager_AggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name      string
		checkers  []Checker
		want      Status
		wantReady bool
	}{
		{
			name:      "all healthy",
			checkers:  []Checker{NewPingChecker("redis", func(context.Context) error { return nil })},
			want:      StatusHealthy,
			wantReady: true,
		},
		{
			name: "backlog over limit degrades",
			checkers: []Checker{
				NewPingChecker("redis", func(context.Context) error { return nil }),
				NewBacklogChecker("spool", 10, backlog(11, nil)),
			},
			want:      StatusDegraded,
			wantReady: true,
		},
		{
			name: "failed ping wins over degraded",
			checkers: []Checker{
				NewBacklogChecker("spool", 10, backlog(11, nil)),
				NewPingChecker("redis", func(context.Context) error { return errors.New("connection refused") }),
			},
			want:      StatusUnhealthy,
			wantReady: false,
		},
		{
			name:      "unreadable backlog",
			checkers:  []Checker{NewBacklogChecker("spool", 0, backlog(0, errors.New("database is locked")))},
			want:      StatusUnhealthy,
			wantReady: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("", clock.NewMock(now))
			m.Register(tt.checkers...)
			resp := m.Check(context.Background())
			assert.Equal(t, tt.want, resp.Status)
			assert.Equal(t, tt.wantReady, resp.Ready)
			assert.Len(t, resp.Checks, len(tt.checkers))
		})
	}
}

func TestBacklogChecker_Message(t *testing.T) {
	res := NewBacklogChecker("redis-backlog", 0, backlog(3, nil)).Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, "3 records pending", res.Message)
}

func TestServeHealth_AlwaysOK(t *testing.T) {
	m := NewManager("1.0.0", clock.NewMock(now))
	m.Register(NewPingChecker("redis", func(context.Context) error { return errors.New("down") }))

	rec := httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Empty(t, resp.Checks)

	rec = httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, "down", resp.Checks["redis"].Error)
}

func TestServeReady_UnavailableWhenUnhealthy(t *testing.T) {
	m := NewManager("1.0.0", clock.NewMock(now))
	healthy := true
	m.Register(NewPingChecker("redis", func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("down")
	}))

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	healthy = false
	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
