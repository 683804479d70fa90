// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/playstate/internal/api"
	"github.com/ManuGH/playstate/internal/config"
	"github.com/ManuGH/playstate/internal/health"
	"github.com/ManuGH/playstate/internal/replay"
	"github.com/ManuGH/playstate/internal/version"
)

type app struct {
	opts   options
	cfg    config.Config
	sinks  *sinkSet
	stdout io.Writer
	logger zerolog.Logger

	mu     sync.Mutex
	latest *replay.Result
}

func (a *app) latestResult() (replay.Result, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.latest == nil {
		return replay.Result{}, false
	}
	return *a.latest, true
}

// serve runs the replay, plus the HTTP listener and script watcher when
// requested. Without -watch or -listen it returns once the replay is written.
func (a *app) serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.opts.listen != "" {
		hm := health.NewManager(version.Version, nil)
		hm.Register(a.sinks.checkers(a.cfg.Redis.MaxBuffered)...)
		srv := &http.Server{
			Addr: a.opts.listen,
			Handler: api.NewRouter(api.Options{
				Health:      hm,
				Latest:      a.latestResult,
				ServiceName: a.cfg.Log.Service,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			a.logger.Info().Str("addr", a.opts.listen).Msg("http listener started")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http listener: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownServer(srv, a.logger)
			return nil
		})
	}

	g.Go(func() error {
		if err := a.replayOnce(ctx); err != nil && !a.opts.watch {
			cancel()
			return err
		}
		if !a.opts.watch {
			// A listener keeps serving the result until shutdown.
			if a.opts.listen == "" {
				cancel()
			}
			return nil
		}
		return replay.Watch(ctx, a.logger, a.opts.script, replay.DefaultDebounce, func(ctx context.Context) {
			if err := a.replayOnce(ctx); err != nil {
				a.logger.Error().Err(err).Msg("replay failed")
			}
		})
	})

	return g.Wait()
}

func (a *app) replayOnce(ctx context.Context) error {
	script, err := replay.LoadScript(a.opts.script)
	if err != nil {
		return err
	}
	res, err := replay.Run(ctx, script, replay.Options{
		Config: &a.cfg,
		Sinks:  a.sinks.dispatchers,
	})
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.latest = &res
	a.mu.Unlock()

	return a.write(res)
}

func (a *app) write(res replay.Result) error {
	var buf bytes.Buffer
	if err := res.WriteJSON(&buf); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if a.opts.out == "" {
		_, err := a.stdout.Write(buf.Bytes())
		return err
	}
	if err := renameio.WriteFile(a.opts.out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", a.opts.out, err)
	}
	a.logger.Info().Str("path", a.opts.out).Int("records", len(res.Records)).Msg("records written")
	return nil
}
