// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/playstate/internal/config"
	"github.com/ManuGH/playstate/internal/dispatch"
	"github.com/ManuGH/playstate/internal/health"
	"github.com/ManuGH/playstate/internal/log"
)

type sinkSet struct {
	dispatchers []dispatch.Dispatcher
	writers     []*dispatch.Async
	redis       *dispatch.Redis
	spool       *dispatch.SQLite
}

// async puts d behind a background writer so network and disk latency never
// reaches the collector's executor.
func (s *sinkSet) async(name string, d dispatch.Dispatcher) {
	w := dispatch.NewAsync(name, d, dispatch.DefaultAsyncCapacity, log.WithComponent("dispatch"))
	s.writers = append(s.writers, w)
	s.dispatchers = append(s.dispatchers, w)
}

func openSinks(cfg config.Config, logRecords bool) (*sinkSet, error) {
	s := &sinkSet{}
	if logRecords {
		s.dispatchers = append(s.dispatchers, dispatch.NewLogger(log.WithComponent("records"), zerolog.InfoLevel))
	}
	if cfg.Redis.Enabled {
		r, err := dispatch.NewRedis(cfg.RedisSink(), log.WithComponent("dispatch"))
		if err != nil {
			return nil, fmt.Errorf("open redis sink: %w", err)
		}
		s.redis = r
		s.async("redis", r)
	}
	if cfg.Spool.Path != "" {
		sp, err := dispatch.NewSQLite(cfg.Spool.Path, log.WithComponent("dispatch"))
		if err != nil {
			s.close(log.WithComponent("replay"))
			return nil, fmt.Errorf("open spool: %w", err)
		}
		s.spool = sp
		s.async("sqlite", sp)
	}
	return s, nil
}

// checkers exposes the sinks to the readiness probe.
func (s *sinkSet) checkers(maxBuffered int) []health.Checker {
	var out []health.Checker
	if s.redis != nil {
		out = append(out,
			health.NewPingChecker("redis", s.redis.HealthCheck),
			health.NewBacklogChecker("redis_backlog", maxBuffered/2, func(context.Context) (int, error) {
				return s.redis.Buffered(), nil
			}),
		)
	}
	if s.spool != nil {
		out = append(out, health.NewBacklogChecker("spool", 0, s.spool.Count))
	}
	return out
}

func (s *sinkSet) close(logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, w := range s.writers {
		if err := w.Close(ctx); err != nil {
			logger.Warn().Err(err).Int("pending", w.Pending()).Msg("record writer did not drain")
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("redis close failed")
		}
	}
	if s.spool != nil {
		if err := s.spool.Close(); err != nil {
			logger.Warn().Err(err).Msg("spool close failed")
		}
	}
}
