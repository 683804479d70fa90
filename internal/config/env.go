// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/playstate/internal/log"
)

// lookupEnv resolves key through parse, falling back to defaultValue when
// the variable is unset, empty or malformed. Every outcome is logged with
// its source.
func lookupEnv[T any](key string, defaultValue T, kind string, parse func(string) (T, bool), field func(*zerolog.Event, string, T) *zerolog.Event) T {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok {
		field(logger.Debug().Str("key", key).Str("source", "default"), "default", defaultValue).
			Msg("using default value")
		return defaultValue
	}
	if v == "" {
		field(logger.Debug().Str("key", key).Str("source", "default"), "default", defaultValue).
			Msg("using default value (environment variable is empty)")
		return defaultValue
	}
	parsed, ok := parse(v)
	if !ok {
		field(logger.Warn().Str("key", key).Str("value", v), "default", defaultValue).
			Msgf("invalid %s in environment variable, using default", kind)
		return defaultValue
	}
	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitive(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = field(ev, "value", parsed)
	}
	ev.Msg("using environment variable")
	return parsed
}

func isSensitive(key string) bool {
	k := strings.ToLower(key)
	return strings.Contains(k, "token") || strings.Contains(k, "password") || strings.HasSuffix(k, "_key")
}

// ParseString reads a string from environment variable or returns default value.
func ParseString(key, defaultValue string) string {
	return lookupEnv(key, defaultValue, "string",
		func(v string) (string, bool) { return v, true },
		func(e *zerolog.Event, k, v string) *zerolog.Event { return e.Str(k, v) })
}

// ParseInt reads an integer from environment variable or returns default value.
func ParseInt(key string, defaultValue int) int {
	return lookupEnv(key, defaultValue, "integer",
		func(v string) (int, bool) {
			i, err := strconv.Atoi(strings.TrimSpace(v))
			return i, err == nil
		},
		func(e *zerolog.Event, k string, v int) *zerolog.Event { return e.Int(k, v) })
}

// ParseFloat reads a float from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return lookupEnv(key, defaultValue, "float",
		func(v string) (float64, bool) {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			return f, err == nil
		},
		func(e *zerolog.Event, k string, v float64) *zerolog.Event { return e.Float64(k, v) })
}

// ParseDuration reads a duration in Go syntax (e.g. "5s") from environment
// variable or returns default value.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return lookupEnv(key, defaultValue, "duration",
		func(v string) (time.Duration, bool) {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			return d, err == nil
		},
		func(e *zerolog.Event, k string, v time.Duration) *zerolog.Event { return e.Dur(k, v) })
}

// ParseDurationList reads a comma separated list of durations
// (e.g. "3s,5s,10s") or returns default value. One malformed entry rejects
// the whole list.
func ParseDurationList(key string, defaultValue []time.Duration) []time.Duration {
	return lookupEnv(key, defaultValue, "duration list",
		func(v string) ([]time.Duration, bool) {
			parts := strings.Split(v, ",")
			out := make([]time.Duration, 0, len(parts))
			for _, p := range parts {
				d, err := time.ParseDuration(strings.TrimSpace(p))
				if err != nil {
					return nil, false
				}
				out = append(out, d)
			}
			return out, true
		},
		func(e *zerolog.Event, k string, v []time.Duration) *zerolog.Event {
			s := make([]string, len(v))
			for i, d := range v {
				s[i] = d.String()
			}
			return e.Strs(k, s)
		})
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return lookupEnv(key, defaultValue, "boolean",
		func(v string) (bool, bool) {
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "true", "1", "yes":
				return true, true
			case "false", "0", "no":
				return false, true
			}
			return false, false
		},
		func(e *zerolog.Event, k string, v bool) *zerolog.Event { return e.Bool(k, v) })
}
