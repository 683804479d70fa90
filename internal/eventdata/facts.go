// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package eventdata

import (
	"net/url"
	"strings"
	"time"
)

// StreamFormat names the delivery format of the current source.
type StreamFormat string

const (
	StreamFormatUnknown     StreamFormat = ""
	StreamFormatHLS         StreamFormat = "hls"
	StreamFormatDASH        StreamFormat = "dash"
	StreamFormatProgressive StreamFormat = "progressive"
)

// DetectStreamFormat infers the format from the URL path suffix. Query
// strings and fragments are ignored.
func DetectStreamFormat(rawURL string) StreamFormat {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		path = u.Path
	}
	path = strings.ToLower(path)
	switch {
	case strings.HasSuffix(path, ".m3u8"):
		return StreamFormatHLS
	case strings.HasSuffix(path, ".mpd"):
		return StreamFormatDASH
	case strings.HasSuffix(path, ".mp4"),
		strings.HasSuffix(path, ".m4v"),
		strings.HasSuffix(path, ".m4a"),
		strings.HasSuffix(path, ".webm"):
		return StreamFormatProgressive
	}
	return StreamFormatUnknown
}

// PlayerFacts is the snapshot an engine adapter reports about the player
// each time a record is built. Zero values mean unknown.
type PlayerFacts struct {
	Player     string
	PlayerTech string
	Version    string

	VideoDuration time.Duration
	// IsLive overrides the configured default when the player knows better.
	IsLive    *bool
	IsCasting bool
	IsMuted   bool

	StreamURL    string
	StreamFormat StreamFormat

	PlaybackWidth  int
	PlaybackHeight int
	WindowWidth    int
	WindowHeight   int
	ScreenWidth    int
	ScreenHeight   int

	VideoBitrate         float64
	AudioBitrate         float64
	VideoCodec           string
	AudioCodec           string
	SupportedVideoCodecs []string

	SubtitleEnabled  bool
	SubtitleLanguage string
	AudioLanguage    string
	DroppedFrames    int

	DRMType     string
	DRMLoadTime time.Duration

	Language  string
	UserAgent string
}

// FactsSource supplies PlayerFacts on demand.
type FactsSource interface {
	PlayerFacts() PlayerFacts
}

// FactsFunc adapts a function to FactsSource.
type FactsFunc func() PlayerFacts

func (f FactsFunc) PlayerFacts() PlayerFacts { return f() }

// apply copies the facts onto r, placing the stream URL by format.
func (f PlayerFacts) apply(r *Record) {
	r.Player = f.Player
	r.PlayerTech = f.PlayerTech
	r.Version = f.Version
	r.VideoDuration = f.VideoDuration.Milliseconds()
	if f.IsLive != nil {
		r.IsLive = *f.IsLive
	}
	r.IsCasting = f.IsCasting
	r.IsMuted = f.IsMuted

	format := f.StreamFormat
	if format == StreamFormatUnknown && f.StreamURL != "" {
		format = DetectStreamFormat(f.StreamURL)
	}
	r.StreamFormat = string(format)
	switch format {
	case StreamFormatHLS:
		r.M3U8URL = f.StreamURL
	case StreamFormatDASH:
		r.MPDURL = f.StreamURL
	case StreamFormatProgressive:
		r.ProgURL = f.StreamURL
	}

	r.VideoPlaybackWidth = f.PlaybackWidth
	r.VideoPlaybackHeight = f.PlaybackHeight
	r.VideoWindowWidth = f.WindowWidth
	r.VideoWindowHeight = f.WindowHeight
	r.ScreenWidth = f.ScreenWidth
	r.ScreenHeight = f.ScreenHeight
	r.VideoBitrate = f.VideoBitrate
	r.AudioBitrate = f.AudioBitrate
	r.VideoCodec = f.VideoCodec
	r.AudioCodec = f.AudioCodec
	r.SubtitleEnabled = f.SubtitleEnabled
	r.SubtitleLanguage = NormalizeLanguage(f.SubtitleLanguage)
	r.AudioLanguage = NormalizeLanguage(f.AudioLanguage)
	r.DroppedFrames = f.DroppedFrames
	r.DRMType = f.DRMType
	if f.Language != "" {
		r.Language = NormalizeLanguage(f.Language)
	}
	if f.UserAgent != "" {
		r.UserAgent = f.UserAgent
	}
}
