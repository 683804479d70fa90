// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
)

// PingChecker is unhealthy while ping fails.
type PingChecker struct {
	name string
	ping func(ctx context.Context) error
}

// NewPingChecker wraps a connectivity probe such as dispatch.Redis.HealthCheck.
func NewPingChecker(name string, ping func(ctx context.Context) error) *PingChecker {
	return &PingChecker{name: name, ping: ping}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	if err := c.ping(ctx); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	return CheckResult{Status: StatusHealthy}
}

// BacklogChecker reports records waiting for delivery. It degrades once
// the backlog exceeds limit and is unhealthy when it cannot be read.
type BacklogChecker struct {
	name  string
	count func(ctx context.Context) (int, error)
	limit int
}

// NewBacklogChecker builds a checker around count.
func NewBacklogChecker(name string, limit int, count func(ctx context.Context) (int, error)) *BacklogChecker {
	return &BacklogChecker{name: name, count: count, limit: limit}
}

func (c *BacklogChecker) Name() string { return c.name }

func (c *BacklogChecker) Check(ctx context.Context) CheckResult {
	n, err := c.count(ctx)
	if err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	msg := fmt.Sprintf("%d records pending", n)
	if c.limit > 0 && n > c.limit {
		return CheckResult{Status: StatusDegraded, Message: msg}
	}
	return CheckResult{Status: StatusHealthy, Message: msg}
}
