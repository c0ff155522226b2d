// Package search builds and matches the accent-insensitive searchable text of tasks.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dStroke covers the Vietnamese letter that has no decomposition into base letter plus mark.
var dStroke = strings.NewReplacer("đ", "d", "Đ", "D")

// Normalize lowercases text and strips Vietnamese diacritics, folding đ/Đ to d.
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = dStroke.Replace(text)

	// transformers and casers keep state, so they are built per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		stripped = text
	}

	return cases.Lower(language.Vietnamese).String(stripped)
}

// CollapseSpaces replaces every run of whitespace with a single space and trims the ends.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeQuery prepares a free-text query the same way searchable text is built.
func NormalizeQuery(query string) string {
	return CollapseSpaces(Normalize(query))
}

// Matches reports whether searchable text contains the normalized query. An empty query matches everything.
func Matches(searchableText, query string) bool {
	return strings.Contains(searchableText, NormalizeQuery(query))
}
