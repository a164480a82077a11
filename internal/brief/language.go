package brief

import "strings"

var languageCodes = map[string]string{
	"english":    "en",
	"german":     "de",
	"french":     "fr",
	"spanish":    "es",
	"italian":    "it",
	"portuguese": "pt",
	"dutch":      "nl",
	"russian":    "ru",
	"chinese":    "zh",
	"japanese":   "ja",
	"korean":     "ko",
}

// LanguageCode maps a language display name to the short code used as
// the output folder name. Unknown names fall back to the first two
// characters, lowercased, so the mapping is total.
func LanguageCode(language string) string {
	normalized := strings.ToLower(strings.TrimSpace(language))
	if code, ok := languageCodes[normalized]; ok {
		return code
	}

	runes := []rune(normalized)
	if len(runes) <= 2 {
		return normalized
	}
	return string(runes[:2])
}
