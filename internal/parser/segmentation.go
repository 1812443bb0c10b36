package parser

import (
	"regexp"
	"strings"

	"github.com/genhospi/bulk-quote-core/internal/concentration"
	"github.com/genhospi/bulk-quote-core/internal/units"
)

var bracketRE = regexp.MustCompile(`\[([^\]]*)\]`)
var parenRE = regexp.MustCompile(`\(([^)]*)\)`)
var collapseWhitespaceRE = regexp.MustCompile(`\s{2,}`)

// extractDelimitedBlocks extracts every [...] and (...) block from text, in
// order of appearance, and returns the remainder with whitespace collapsed.
func extractDelimitedBlocks(text string) (cleaned string, brackets, parens []string) {
	for _, m := range bracketRE.FindAllStringSubmatch(text, -1) {
		brackets = append(brackets, strings.TrimSpace(m[1]))
	}
	for _, m := range parenRE.FindAllStringSubmatch(text, -1) {
		parens = append(parens, strings.TrimSpace(m[1]))
	}
	cleaned = bracketRE.ReplaceAllString(text, " ")
	cleaned = parenRE.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(collapseWhitespaceRE.ReplaceAllString(cleaned, " "))
	return cleaned, brackets, parens
}

// extractTrailingForm identifies and strips a known pharmaceutical form
// from the right end of text, trying candidates longest-first (greedy
// right-anchored match).
func extractTrailingForm(text string) (remaining string, rawForm string, found bool) {
	lower := strings.TrimRight(strings.ToLower(text), " \t\n")
	for _, form := range units.KnownFormsSorted {
		if strings.HasSuffix(lower, form) {
			cut := len(lower) - len(form)
			return strings.TrimSpace(text[:cut]), form, true
		}
	}
	return strings.TrimSpace(text), "", false
}

// splitOnPlusOutsideDelimiters splits text on '+' only when the '+' is not
// inside brackets or parentheses, tracked via nesting depth.
func splitOnPlusOutsideDelimiters(text string) []string {
	var segments []string
	var current strings.Builder
	depth := 0
	for _, ch := range text {
		switch {
		case ch == '(' || ch == '[':
			depth++
			current.WriteRune(ch)
		case ch == ')' || ch == ']':
			if depth > 0 {
				depth--
			}
			current.WriteRune(ch)
		case ch == '+' && depth == 0:
			segments = append(segments, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	if tail := strings.TrimSpace(current.String()); tail != "" {
		segments = append(segments, tail)
	}
	out := segments[:0]
	for _, s := range segments {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// splitInnAndDose locates the first inline dose token in segment.
// Everything before it is the INN text; the dose token and everything
// after it is the raw dose string. A segment may have no dose token at
// all, in which case dosePart is empty and hasDose is false.
func splitInnAndDose(segment string) (innPart, dosePart string, hasDose bool) {
	start, _, ok := concentration.FindInlineDose(segment)
	if !ok {
		return strings.TrimSpace(segment), "", false
	}
	return strings.TrimSpace(segment[:start]), strings.TrimSpace(segment[start:]), true
}

// resolveParenSynonym determines the canonical INN and alias list when a
// parenthetical synonym is present, following this priority:
//  1. paren content is in the INN synonym table -> use it as canonical
//  2. raw INN is in the INN synonym table -> use the table entry
//  3. neither recognized -> keep raw INN as canonical, paren as alias
func resolveParenSynonym(parenContent, rawINN string) (canonical string, aliases []string) {
	parenLower := strings.ToLower(strings.TrimSpace(parenContent))
	rawLower := strings.ToLower(strings.TrimSpace(rawINN))

	if c, ok := units.InnSynonyms[parenLower]; ok {
		if rawLower != c {
			aliases = []string{rawINN}
		}
		return c, aliases
	}
	if c, ok := units.InnSynonyms[rawLower]; ok {
		if parenLower != c {
			aliases = []string{parenContent}
		}
		return c, aliases
	}
	return rawLower, []string{parenContent}
}
