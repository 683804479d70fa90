// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Validate checks cfg and joins every problem found into one error
// wrapping ErrInvalidConfig.
func Validate(cfg Config) error {
	var errs []error

	if err := cfg.PlaybackSettings().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("timing: %w", err))
	}
	if cfg.Seek.DuplicateTolerance < 0 {
		errs = append(errs, errors.New("seek.duplicateTolerance must not be negative"))
	}
	if cfg.Seek.ConfirmWindow <= 0 {
		errs = append(errs, errors.New("seek.confirmWindow must be positive"))
	}
	if cfg.Redis.Enabled {
		if cfg.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
		}
		if cfg.Redis.DB < 0 {
			errs = append(errs, errors.New("redis.db must not be negative"))
		}
		if cfg.Redis.MaxBuffered < 0 {
			errs = append(errs, errors.New("redis.maxBuffered must not be negative"))
		}
	}
	if cfg.Telemetry.Enabled {
		switch cfg.Telemetry.ExporterType {
		case "grpc", "http":
		default:
			errs = append(errs, fmt.Errorf("telemetry.exporter %q must be grpc or http", cfg.Telemetry.ExporterType))
		}
		if cfg.Telemetry.Endpoint == "" {
			errs = append(errs, errors.New("telemetry.endpoint is required when telemetry is enabled"))
		}
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			errs = append(errs, errors.New("telemetry.samplingRate must be between 0 and 1"))
		}
	}
	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			errs = append(errs, fmt.Errorf("log.level %q: %w", cfg.Log.Level, err))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
