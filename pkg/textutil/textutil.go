// Package textutil provides small text helpers shared by the summarizer
// and the ingestion pipeline.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
)

var nonAlnum = regexp.MustCompile(`[^0-9A-Za-z]+`)

// WordCount counts word-like tokens in text. Leading and trailing
// punctuation is stripped first; if nothing remains the count is zero.
// Tokens are runs of characters separated by non-alphanumerics.
func WordCount(text string) int {
	stripped := strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)
	})
	if stripped == "" {
		return 0
	}
	return len(nonAlnum.Split(stripped, -1))
}

// TruncateWords returns the first n words of text joined by single spaces;
// runs of whitespace between the kept words collapse. If text has n words
// or fewer it is returned unchanged.
func TruncateWords(text string, n int) string {
	if n <= 0 {
		return ""
	}
	fields := strings.Fields(text)
	if len(fields) <= n {
		return text
	}
	return strings.Join(fields[:n], " ")
}

var slugStrip = regexp.MustCompile(`[^\w\s-]`)
var slugDashes = regexp.MustCompile(`[-\s]+`)

// Slugify converts a title into a URL-safe slug: lowercase, alphanumerics
// and hyphens only, runs of whitespace collapsed to single hyphens.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CapitalizeWords uppercases the first letter of every whitespace-separated
// word, used to normalize author bylines.
func CapitalizeWords(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		r := []rune(f)
		r[0] = unicode.ToUpper(r[0])
		fields[i] = string(r)
	}
	return strings.Join(fields, " ")
}
