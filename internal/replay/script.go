// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package replay drives a collector from a scripted timeline of player
// events on a virtual clock, producing the record stream deterministically.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/playstate/internal/eventdata"
	"github.com/ManuGH/playstate/internal/playback"
)

var (
	ErrInvalidScript = errors.New("replay: invalid script")
	ErrUnknownOp     = errors.New("replay: unknown operation")
)

// Op names a scripted player event.
type Op string

const (
	OpAttach          Op = "attach"
	OpDetach          Op = "detach"
	OpPlay            Op = "play"
	OpPause           Op = "pause"
	OpPlaying         Op = "playing"
	OpStalled         Op = "stalled"
	OpSeeked          Op = "seeked"
	OpTimeJumped      Op = "time_jumped"
	OpReadyToPlay     Op = "ready_to_play"
	OpBitrate         Op = "bitrate"
	OpVideoQuality    Op = "video_quality"
	OpAudioQuality    Op = "audio_quality"
	OpSubtitle        Op = "subtitle"
	OpError           Op = "error"
	OpTransition      Op = "transition"
	OpResignActive    Op = "resign_active"
	OpEnterForeground Op = "enter_foreground"
)

var knownOps = map[Op]struct{}{
	OpAttach: {}, OpDetach: {}, OpPlay: {}, OpPause: {}, OpPlaying: {},
	OpStalled: {}, OpSeeked: {}, OpTimeJumped: {}, OpReadyToPlay: {},
	OpBitrate: {}, OpVideoQuality: {}, OpAudioQuality: {}, OpSubtitle: {},
	OpError: {}, OpTransition: {}, OpResignActive: {}, OpEnterForeground: {},
}

// Script is a replayable session timeline.
type Script struct {
	Name   string  `yaml:"name"`
	Player Player  `yaml:"player"`
	Events []Event `yaml:"events"`
	// Tail advances the clock after the last event so pending timers can
	// fire.
	Tail time.Duration `yaml:"tail"`
}

// Player describes the facts the scripted player reports.
type Player struct {
	Name                 string        `yaml:"name"`
	Tech                 string        `yaml:"tech"`
	Version              string        `yaml:"version"`
	StreamURL            string        `yaml:"streamUrl"`
	Duration             time.Duration `yaml:"duration"`
	Live                 *bool         `yaml:"live"`
	Muted                bool          `yaml:"muted"`
	Width                int           `yaml:"width"`
	Height               int           `yaml:"height"`
	VideoCodec           string        `yaml:"videoCodec"`
	AudioCodec           string        `yaml:"audioCodec"`
	SupportedVideoCodecs []string      `yaml:"supportedVideoCodecs"`
	Language             string        `yaml:"language"`
	AudioLanguage        string        `yaml:"audioLanguage"`
	DRMType              string        `yaml:"drmType"`
	DRMLoadTime          time.Duration `yaml:"drmLoadTime"`
}

// Event is one scripted call. At is the offset from the start of the
// script; Position, when set, moves the player before the call.
type Event struct {
	At       time.Duration  `yaml:"at"`
	Op       Op             `yaml:"op"`
	Position *time.Duration `yaml:"position"`

	Autoplay bool    `yaml:"autoplay"`
	Bitrate  float64 `yaml:"bitrate"`
	State    string  `yaml:"state"`
	Code     int     `yaml:"code"`
	Message  string  `yaml:"message"`
	Data     string  `yaml:"data"`
}

// LoadScript reads and validates a YAML script file.
func LoadScript(path string) (Script, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return Script{}, fmt.Errorf("%w: %s: expected .yaml or .yml", ErrInvalidScript, path)
	}
	f, err := os.Open(path) // #nosec G304 -- path is an operator-supplied CLI flag
	if err != nil {
		return Script{}, fmt.Errorf("open script: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := ParseScript(f)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), ext)
	}
	return s, nil
}

// ParseScript decodes a single YAML document strictly and validates it.
func ParseScript(r io.Reader) (Script, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Script{}, fmt.Errorf("%w: empty script", ErrInvalidScript)
		}
		return Script{}, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return Script{}, fmt.Errorf("%w: multiple YAML documents", ErrInvalidScript)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// Validate checks ops, ordering and per-op arguments.
func (s Script) Validate() error {
	var errs []error
	var last time.Duration
	for i, ev := range s.Events {
		if _, ok := knownOps[ev.Op]; !ok {
			errs = append(errs, fmt.Errorf("events[%d]: %w: %q", i, ErrUnknownOp, ev.Op))
		}
		if ev.At < last {
			errs = append(errs, fmt.Errorf("events[%d]: at %s is before the previous event (%s)", i, ev.At, last))
		}
		last = ev.At
		if ev.Position != nil && *ev.Position < 0 {
			errs = append(errs, fmt.Errorf("events[%d]: position must not be negative", i))
		}
		switch ev.Op {
		case OpTransition:
			if _, ok := playback.ParseState(ev.State); !ok {
				errs = append(errs, fmt.Errorf("events[%d]: unknown state %q", i, ev.State))
			}
		case OpBitrate:
			if ev.Bitrate <= 0 {
				errs = append(errs, fmt.Errorf("events[%d]: bitrate must be positive", i))
			}
		}
	}
	if s.Tail < 0 {
		errs = append(errs, errors.New("tail must not be negative"))
	}
	if s.Player.Duration < 0 || s.Player.DRMLoadTime < 0 {
		errs = append(errs, errors.New("player durations must not be negative"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidScript, errors.Join(errs...))
}

func (p Player) facts() eventdata.PlayerFacts {
	return eventdata.PlayerFacts{
		Player:               p.Name,
		PlayerTech:           p.Tech,
		Version:              p.Version,
		StreamURL:            p.StreamURL,
		VideoDuration:        p.Duration,
		IsLive:               p.Live,
		IsMuted:              p.Muted,
		PlaybackWidth:        p.Width,
		PlaybackHeight:       p.Height,
		VideoCodec:           p.VideoCodec,
		AudioCodec:           p.AudioCodec,
		SupportedVideoCodecs: p.SupportedVideoCodecs,
		Language:             p.Language,
		AudioLanguage:        p.AudioLanguage,
		DRMType:              p.DRMType,
		DRMLoadTime:          p.DRMLoadTime,
	}
}
