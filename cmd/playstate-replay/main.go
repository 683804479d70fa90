// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// playstate-replay replays a scripted player session through the playback
// collector on a virtual clock and writes the resulting analytics records.
//
// Usage:
//
//	playstate-replay -script session.yaml [-config playstate.yaml] [-out records.json]
//	playstate-replay -script session.yaml -watch -listen :9090
//
// Exit codes:
//   - 0: Replay finished
//   - 1: Replay failed (script, config, sink or output error)
//   - 2: Usage error (missing required flag)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/playstate/internal/config"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/telemetry"
	"github.com/ManuGH/playstate/internal/version"
)

type options struct {
	script     string
	configPath string
	out        string
	listen     string
	watch      bool
	logRecords bool
}

func main() {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.script, "script", "", "path to YAML replay script")
	flag.StringVar(&opts.script, "s", "", "path to YAML replay script (shorthand)")
	flag.StringVar(&opts.configPath, "config", "", "path to YAML configuration file")
	flag.StringVar(&opts.out, "out", "", "write records as JSON to this file instead of stdout")
	flag.StringVar(&opts.listen, "listen", "", "serve /healthz, /readyz, /metrics and /records on this address")
	flag.BoolVar(&opts.watch, "watch", false, "replay again whenever the script changes")
	flag.BoolVar(&opts.logRecords, "log-records", false, "also log every record at info level")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if opts.script == "" {
		fmt.Fprintln(os.Stderr, "Error: -script is required")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  playstate-replay -script session.yaml [-config playstate.yaml] [-out records.json]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer) error {
	cfg, err := config.NewLoader(opts.configPath).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.Reconfigure(log.Config{Level: cfg.Log.Level, Service: cfg.Log.Service})
	logger := log.WithComponent("replay")

	tp, err := telemetry.NewProvider(ctx, cfg.Tracing(version.Version))
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	sinks, err := openSinks(cfg, opts.logRecords)
	if err != nil {
		return err
	}
	defer sinks.close(logger)

	app := &app{
		opts:   opts,
		cfg:    cfg,
		sinks:  sinks,
		stdout: stdout,
		logger: logger,
	}
	return app.serve(ctx)
}

func shutdownServer(srv *http.Server, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn().Err(err).Msg("http server shutdown failed")
	}
}
