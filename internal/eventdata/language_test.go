// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package eventdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"  ", ""},
		{"en_us", "en-US"},
		{"EN-us", "en-US"},
		{"DE", "de"},
		{"pt-br", "pt-BR"},
		{"not a tag", "not a tag"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLanguage(tt.in))
		})
	}
}

func TestFactsApply_NormalizesLanguages(t *testing.T) {
	var r Record
	Identity{Language: "fr_ca"}.apply(&r)
	assert.Equal(t, "fr-CA", r.Language)

	PlayerFacts{AudioLanguage: "EN", SubtitleLanguage: "es_mx"}.apply(&r)
	assert.Equal(t, "en", r.AudioLanguage)
	assert.Equal(t, "es-MX", r.SubtitleLanguage)
	assert.Equal(t, "fr-CA", r.Language, "empty player language keeps identity value")
}
