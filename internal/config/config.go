// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package config loads collector configuration with precedence
// ENV > File > Defaults.
package config

import (
	"time"

	"github.com/ManuGH/playstate/internal/dispatch"
	"github.com/ManuGH/playstate/internal/eventdata"
	"github.com/ManuGH/playstate/internal/playback"
	"github.com/ManuGH/playstate/internal/telemetry"
)

// Config is the complete collector configuration.
type Config struct {
	Key            string `yaml:"key"`
	PlayerKey      string `yaml:"playerKey"`
	Domain         string `yaml:"domain"`
	Path           string `yaml:"path"`
	CdnProvider    string `yaml:"cdnProvider"`
	CustomerUserID string `yaml:"customerUserId"`
	CustomData1    string `yaml:"customData1"`
	CustomData2    string `yaml:"customData2"`
	CustomData3    string `yaml:"customData3"`
	CustomData4    string `yaml:"customData4"`
	CustomData5    string `yaml:"customData5"`
	CustomData6    string `yaml:"customData6"`
	CustomData7    string `yaml:"customData7"`
	ExperimentName string `yaml:"experimentName"`
	VideoID        string `yaml:"videoId"`
	Title          string `yaml:"title"`
	IsLive         bool   `yaml:"isLive"`

	Timing    TimingConfig    `yaml:"timing"`
	Seek      SeekConfig      `yaml:"seek"`
	Redis     RedisConfig     `yaml:"redis"`
	Spool     SpoolConfig     `yaml:"spool"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`
}

// TimingConfig mirrors playback.Settings.
type TimingConfig struct {
	HeartbeatInterval         time.Duration   `yaml:"heartbeatInterval"`
	RebufferHeartbeatSchedule []time.Duration `yaml:"rebufferHeartbeatSchedule"`
	RebufferTimeout           time.Duration   `yaml:"rebufferTimeout"`
	StartFailedTimeout        time.Duration   `yaml:"startFailedTimeout"`
	QualityChangeThreshold    int             `yaml:"qualityChangeThreshold"`
	QualityChangeWindow       time.Duration   `yaml:"qualityChangeWindow"`
}

// SeekConfig tunes seek detection from time jumps.
type SeekConfig struct {
	// DuplicateTolerance suppresses a second jump recorded this soon after
	// the first.
	DuplicateTolerance time.Duration `yaml:"duplicateTolerance"`
	// ConfirmWindow is the maximum age of a jump that ready-to-play still
	// confirms as a seek.
	ConfirmWindow time.Duration `yaml:"confirmWindow"`
}

// RedisConfig configures the optional Redis record sink.
type RedisConfig struct {
	Enabled     bool          `yaml:"enabled"`
	Addr        string        `yaml:"addr"`
	Password    string        `yaml:"password"`
	DB          int           `yaml:"db"`
	Key         string        `yaml:"key"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxBuffered int           `yaml:"maxBuffered"`
}

// SpoolConfig configures the optional SQLite record spool. An empty path
// disables it.
type SpoolConfig struct {
	Path string `yaml:"path"`
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ExporterType string  `yaml:"exporter"` // grpc or http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
	Environment  string  `yaml:"environment"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	s := playback.DefaultSettings()
	return Config{
		Domain: "playstate",
		Timing: TimingConfig{
			HeartbeatInterval:         s.HeartbeatInterval,
			RebufferHeartbeatSchedule: s.RebufferHeartbeatSchedule,
			RebufferTimeout:           s.RebufferTimeout,
			StartFailedTimeout:        s.StartFailedTimeout,
			QualityChangeThreshold:    s.QualityChangeThreshold,
			QualityChangeWindow:       s.QualityChangeWindow,
		},
		Seek: SeekConfig{
			DuplicateTolerance: time.Second,
			ConfirmWindow:      10 * time.Second,
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			Key:         dispatch.DefaultRedisKey,
			Timeout:     2 * time.Second,
			MaxBuffered: dispatch.DefaultRedisMaxBuffered,
		},
		Telemetry: TelemetryConfig{
			ExporterType: "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
			Environment:  "production",
		},
		Log: LogConfig{
			Level:   "info",
			Service: "playstate",
		},
	}
}

// PlaybackSettings converts the timing section for playback.New.
func (c Config) PlaybackSettings() playback.Settings {
	return playback.Settings{
		HeartbeatInterval:         c.Timing.HeartbeatInterval,
		RebufferHeartbeatSchedule: append([]time.Duration(nil), c.Timing.RebufferHeartbeatSchedule...),
		RebufferTimeout:           c.Timing.RebufferTimeout,
		StartFailedTimeout:        c.Timing.StartFailedTimeout,
		QualityChangeThreshold:    c.Timing.QualityChangeThreshold,
		QualityChangeWindow:       c.Timing.QualityChangeWindow,
	}
}

// Identity converts the metadata fields for eventdata.NewAssembler.
func (c Config) Identity() eventdata.Identity {
	return eventdata.Identity{
		Key:            c.Key,
		PlayerKey:      c.PlayerKey,
		Domain:         c.Domain,
		Path:           c.Path,
		CdnProvider:    c.CdnProvider,
		CustomerUserID: c.CustomerUserID,
		CustomData: [7]string{
			c.CustomData1, c.CustomData2, c.CustomData3, c.CustomData4,
			c.CustomData5, c.CustomData6, c.CustomData7,
		},
		ExperimentName: c.ExperimentName,
		VideoID:        c.VideoID,
		Title:          c.Title,
		IsLive:         c.IsLive,
	}
}

// RedisSink converts the redis section for dispatch.NewRedis.
func (c Config) RedisSink() dispatch.RedisConfig {
	return dispatch.RedisConfig{
		Addr:        c.Redis.Addr,
		Password:    c.Redis.Password,
		DB:          c.Redis.DB,
		Key:         c.Redis.Key,
		Timeout:     c.Redis.Timeout,
		MaxBuffered: c.Redis.MaxBuffered,
	}
}

// Tracing converts the telemetry section for telemetry.NewProvider.
func (c Config) Tracing(version string) telemetry.Config {
	return telemetry.Config{
		Enabled:        c.Telemetry.Enabled,
		ServiceName:    c.Log.Service,
		ServiceVersion: version,
		Environment:    c.Telemetry.Environment,
		ExporterType:   c.Telemetry.ExporterType,
		Endpoint:       c.Telemetry.Endpoint,
		SamplingRate:   c.Telemetry.SamplingRate,
	}
}
