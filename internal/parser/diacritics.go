package parser

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripDiacritics decomposes s (NFD) and removes combining marks, turning
// e.g. "colecalcíferol" into "colecalciferol" and "ungüento" into
// "unguento". Used ahead of every INN/form synonym-table lookup.
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
