// Package text provides the normalization rule applied to every extracted
// text field.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks, so "éclat"
// becomes "eclat" instead of merging with an adjacent word when the
// accent is lost downstream.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize converts non-breaking spaces to ordinary spaces, strips
// Unicode combining marks, collapses whitespace runs, and trims. Every
// text field in the extractor goes through this before it is stored.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, " ", " ")

	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}

	return strings.Join(strings.Fields(s), " ")
}
