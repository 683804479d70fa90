// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"time"
)

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envBool(key string, defaultVal bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envFloat(key string, defaultVal float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, defaultVal)
}

func (l *Loader) envDuration(key string, defaultVal time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, defaultVal)
}

func (l *Loader) envDurations(key string, defaultVal []time.Duration) []time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDurationList(key, defaultVal)
}

// mergeEnv applies PLAYSTATE_* overrides on top of cfg.
func (l *Loader) mergeEnv(cfg *Config) {
	cfg.Key = l.envString(EnvPrefix+"KEY", cfg.Key)
	cfg.PlayerKey = l.envString(EnvPrefix+"PLAYER_KEY", cfg.PlayerKey)
	cfg.Domain = l.envString(EnvPrefix+"DOMAIN", cfg.Domain)
	cfg.Path = l.envString(EnvPrefix+"PATH", cfg.Path)
	cfg.CdnProvider = l.envString(EnvPrefix+"CDN_PROVIDER", cfg.CdnProvider)
	cfg.CustomerUserID = l.envString(EnvPrefix+"CUSTOMER_USER_ID", cfg.CustomerUserID)
	custom := []*string{
		&cfg.CustomData1, &cfg.CustomData2, &cfg.CustomData3, &cfg.CustomData4,
		&cfg.CustomData5, &cfg.CustomData6, &cfg.CustomData7,
	}
	for i, field := range custom {
		*field = l.envString(fmt.Sprintf("%sCUSTOM_DATA_%d", EnvPrefix, i+1), *field)
	}
	cfg.ExperimentName = l.envString(EnvPrefix+"EXPERIMENT_NAME", cfg.ExperimentName)
	cfg.VideoID = l.envString(EnvPrefix+"VIDEO_ID", cfg.VideoID)
	cfg.Title = l.envString(EnvPrefix+"TITLE", cfg.Title)
	cfg.IsLive = l.envBool(EnvPrefix+"IS_LIVE", cfg.IsLive)

	t := &cfg.Timing
	t.HeartbeatInterval = l.envDuration(EnvPrefix+"HEARTBEAT_INTERVAL", t.HeartbeatInterval)
	t.RebufferHeartbeatSchedule = l.envDurations(EnvPrefix+"REBUFFER_HEARTBEAT_SCHEDULE", t.RebufferHeartbeatSchedule)
	t.RebufferTimeout = l.envDuration(EnvPrefix+"REBUFFER_TIMEOUT", t.RebufferTimeout)
	t.StartFailedTimeout = l.envDuration(EnvPrefix+"START_FAILED_TIMEOUT", t.StartFailedTimeout)
	t.QualityChangeThreshold = l.envInt(EnvPrefix+"QUALITY_CHANGE_THRESHOLD", t.QualityChangeThreshold)
	t.QualityChangeWindow = l.envDuration(EnvPrefix+"QUALITY_CHANGE_WINDOW", t.QualityChangeWindow)

	cfg.Seek.DuplicateTolerance = l.envDuration(EnvPrefix+"SEEK_DUPLICATE_TOLERANCE", cfg.Seek.DuplicateTolerance)
	cfg.Seek.ConfirmWindow = l.envDuration(EnvPrefix+"SEEK_CONFIRM_WINDOW", cfg.Seek.ConfirmWindow)

	r := &cfg.Redis
	r.Enabled = l.envBool(EnvPrefix+"REDIS_ENABLED", r.Enabled)
	r.Addr = l.envString(EnvPrefix+"REDIS_ADDR", r.Addr)
	r.Password = l.envString(EnvPrefix+"REDIS_PASSWORD", r.Password)
	r.DB = l.envInt(EnvPrefix+"REDIS_DB", r.DB)
	r.Key = l.envString(EnvPrefix+"REDIS_KEY", r.Key)
	r.Timeout = l.envDuration(EnvPrefix+"REDIS_TIMEOUT", r.Timeout)
	r.MaxBuffered = l.envInt(EnvPrefix+"REDIS_MAX_BUFFERED", r.MaxBuffered)

	cfg.Spool.Path = l.envString(EnvPrefix+"SPOOL_PATH", cfg.Spool.Path)

	tel := &cfg.Telemetry
	tel.Enabled = l.envBool(EnvPrefix+"OTEL_ENABLED", tel.Enabled)
	tel.ExporterType = l.envString(EnvPrefix+"OTEL_EXPORTER", tel.ExporterType)
	tel.Endpoint = l.envString(EnvPrefix+"OTEL_ENDPOINT", tel.Endpoint)
	tel.SamplingRate = l.envFloat(EnvPrefix+"OTEL_SAMPLING_RATE", tel.SamplingRate)
	tel.Environment = l.envString(EnvPrefix+"OTEL_ENVIRONMENT", tel.Environment)

	cfg.Log.Level = l.envString(EnvPrefix+"LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Service = l.envString(EnvPrefix+"LOG_SERVICE", cfg.Log.Service)
}
