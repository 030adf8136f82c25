package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// wordPunct translates word-processor punctuation to plain ASCII before
// any label or header matching.
var wordPunct = strings.NewReplacer(
	"–", "-", // en dash
	"—", "-", // em dash
	"“", `"`, // left smart quote
	"”", `"`, // right smart quote
)

// CleanText trims text, normalizes dashes and smart quotes, and strips
// the " *_" decoration word processors leave around form labels.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	cleaned := wordPunct.Replace(strings.TrimSpace(text))
	return strings.Trim(cleaned, " *_")
}

// stripWhitespace removes every whitespace rune, internal ones included.
func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
