// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package eventdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectStreamFormat(t *testing.T) {
	tests := []struct {
		url  string
		want StreamFormat
	}{
		{"https://cdn.example.org/a/master.m3u8", StreamFormatHLS},
		{"https://cdn.example.org/a/MASTER.M3U8?sig=1", StreamFormatHLS},
		{"https://cdn.example.org/a/manifest.mpd", StreamFormatDASH},
		{"https://cdn.example.org/a/clip.mp4", StreamFormatProgressive},
		{"https://cdn.example.org/a/clip.m4v#t=10", StreamFormatProgressive},
		{"https://cdn.example.org/a/audio.m4a", StreamFormatProgressive},
		{"https://cdn.example.org/a/clip.webm", StreamFormatProgressive},
		{"https://cdn.example.org/a/stream", StreamFormatUnknown},
		{"", StreamFormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectStreamFormat(tt.url))
		})
	}
}

func TestPlayerFacts_URLPlacement(t *testing.T) {
	tests := []struct {
		name  string
		facts PlayerFacts
		check func(t *testing.T, r Record)
	}{
		{
			name:  "dash from suffix",
			facts: PlayerFacts{StreamURL: "https://x/y.mpd"},
			check: func(t *testing.T, r Record) {
				assert.Equal(t, "dash", r.StreamFormat)
				assert.Equal(t, "https://x/y.mpd", r.MPDURL)
				assert.Empty(t, r.M3U8URL)
			},
		},
		{
			name:  "explicit format wins over suffix",
			facts: PlayerFacts{StreamURL: "https://x/play", StreamFormat: StreamFormatProgressive},
			check: func(t *testing.T, r Record) {
				assert.Equal(t, "progressive", r.StreamFormat)
				assert.Equal(t, "https://x/play", r.ProgURL)
			},
		},
		{
			name:  "unknown format leaves urls empty",
			facts: PlayerFacts{StreamURL: "https://x/play"},
			check: func(t *testing.T, r Record) {
				assert.Empty(t, r.StreamFormat)
				assert.Empty(t, r.M3U8URL)
				assert.Empty(t, r.MPDURL)
				assert.Empty(t, r.ProgURL)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Record
			tt.facts.apply(&r)
			tt.check(t, r)
		})
	}
}
