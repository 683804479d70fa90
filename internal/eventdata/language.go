// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package eventdata

import (
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLanguage canonicalises a BCP 47 tag, so "en_us" and "EN-us"
// both become "en-US". Values that do not parse are returned trimmed but
// otherwise unchanged.
func NormalizeLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}
	parsed, err := language.Parse(strings.ReplaceAll(tag, "_", "-"))
	if err != nil {
		return tag
	}
	return parsed.String()
}
