// Cinegraph - TMDB Catalog Reconciliation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinegraph

package sync

// The catalog is stored in English with optional per-language
// translation rows. Translated endpoints want a full locale tag while
// the database keys translations by the bare language code.
const (
	defaultLanguageCode = "en"
	defaultLanguageTag  = "en-US"
)

// videoLanguages lists the languages requested for appended video
// sub-resources. Upstream caps the list at five.
const videoLanguages = "en,fr,es,ja,de"

// localeTags maps a bare language code to the locale tag requested
// upstream. Codes without an entry fall back to the code itself.
var localeTags = map[string]string{
	"en": defaultLanguageTag,
	"fr": "fr-FR",
	"es": "es-ES",
	"de": "de-DE",
	"it": "it-IT",
	"ja": "ja-JP",
	"pt": "pt-BR",
	"ko": "ko-KR",
	"zh": "zh-CN",
}

func localeTag(code string) string {
	if tag, ok := localeTags[code]; ok {
		return tag
	}
	return code
}

// extraLanguageCodes returns the configured extra language codes with
// the default language filtered out.
func extraLanguageCodes(codes []string) []string {
	var out []string
	for _, code := range codes {
		if code == "" || code == defaultLanguageCode {
			continue
		}
		out = append(out, code)
	}
	return out
}
