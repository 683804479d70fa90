// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves the replay tool's operator endpoints: health probes,
// Prometheus metrics and the latest replay result.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuGH/playstate/internal/health"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/replay"
)

// Options configures NewRouter.
type Options struct {
	Health *health.Manager
	// Gatherer defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Latest returns the most recent replay result, if any.
	Latest func() (replay.Result, bool)
	// RequestLimit per client IP and Window default to 600 per minute.
	RequestLimit int
	Window       time.Duration
	ServiceName  string
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) http.Handler {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.RequestLimit <= 0 {
		opts.RequestLimit = 600
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "playstate"
	}
	if opts.Health == nil {
		opts.Health = health.NewManager("", nil)
	}

	r := chi.NewRouter()
	r.Use(OTelHTTP(opts.ServiceName))
	r.Use(RateLimit(opts.RequestLimit, opts.Window))

	r.Get("/healthz", opts.Health.ServeHealth)
	r.Get("/readyz", opts.Health.ServeReady)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/records", latestHandler(opts.Latest))
	return r
}

func latestHandler(latest func() (replay.Result, bool)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if latest == nil {
			http.Error(w, "no replay available", http.StatusNotFound)
			return
		}
		res, ok := latest()
		if !ok {
			http.Error(w, "no replay available", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := res.WriteJSON(w); err != nil {
			lg := log.WithContext(r.Context(), log.WithComponent("api"))
			lg.Error().Err(err).Msg("failed to encode replay result")
		}
	}
}
