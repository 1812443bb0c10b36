package parser

import (
	"regexp"
	"strings"

	"github.com/genhospi/bulk-quote-core/internal/units"
)

// qualifierRE strips pharmaceutical salt/qualifier suffixes that are not
// part of the INN itself before synonym-table lookup. This is a curated,
// reviewable list, not a heuristic.
var qualifierRE = regexp.MustCompile(`(?i)\b(?:clorhidrato|hidrocloruro|sodico|potasico|calcico|acetato|fosfato|sulfato|bromuro|maleato|fumarato|tartrato|base)\b`)

// normalizeINNText produces a search-normalized INN string: diacritics
// stripped, qualifier suffixes removed, whitespace collapsed, lowercased.
// Layer 0 already lowercases; this additionally strips accents so that
// e.g. "colecalcíferol" and "colecalciferol" resolve to the same table
// entry.
func normalizeINNText(raw string) string {
	ascii := stripDiacritics(raw)
	ascii = qualifierRE.ReplaceAllString(ascii, " ")
	return strings.ToLower(strings.TrimSpace(collapseWhitespaceRE.ReplaceAllString(ascii, " ")))
}

// NormalizeForDict produces the synonym-dictionary lookup key from a raw
// free-text drug name: accent-stripped, lowercased, whitespace collapsed.
// It runs on the whole raw input, never on a parser-resolved INN/form, and
// never strips qualifier suffixes — the dictionary key must stay stable
// and independent of the INN/form synonym tables, so that a later edit to
// those tables can never silently invalidate a previously recorded row.
func NormalizeForDict(raw string) string {
	ascii := stripDiacritics(raw)
	ascii = collapseWhitespaceRE.ReplaceAllString(ascii, " ")
	return strings.ToLower(strings.TrimSpace(ascii))
}

// buildDrugComponent constructs a DrugComponent, resolving the canonical
// INN. Lookup order: paren synonym against the INN table, then raw INN
// against the table, then paren-as-alias/raw-as-canonical, then (nothing
// recognized) raw INN with an INN_NOT_IN_SYNONYM_TABLE warning.
func buildDrugComponent(rawInnText string, parenSynonyms []string, warn func(code WarningCode)) DrugComponent {
	normalizedRaw := normalizeINNText(rawInnText)

	if len(parenSynonyms) > 0 {
		canonical, aliases := resolveParenSynonym(parenSynonyms[0], normalizedRaw)
		return DrugComponent{RawINN: normalizedRaw, CanonicalINN: canonical, Aliases: aliases}
	}

	if canonical, ok := units.InnSynonyms[normalizedRaw]; ok {
		var aliases []string
		if canonical != normalizedRaw {
			aliases = []string{normalizedRaw}
		}
		return DrugComponent{RawINN: normalizedRaw, CanonicalINN: canonical, Aliases: aliases}
	}

	warn(InnNotInSynonymTable)
	return DrugComponent{RawINN: normalizedRaw, CanonicalINN: normalizedRaw}
}

// layer3NormalizeForm maps a raw form string to its canonical form and
// FormGroup, stripping diacritics and collapsing whitespace before
// lookup. Returns hasForm=false when rawForm is empty.
func layer3NormalizeForm(rawForm string, warn func(code WarningCode)) (canonical string, group units.FormGroup, hasGroup bool, hasForm bool) {
	if strings.TrimSpace(rawForm) == "" {
		return "", "", false, false
	}
	ascii := strings.ToLower(strings.TrimSpace(stripDiacritics(rawForm)))
	ascii = collapseWhitespaceRE.ReplaceAllString(ascii, " ")
	// form synonym keys are single-spaced, not double; also collapse
	// single internal whitespace runs of length 1+ consistently.
	ascii = regexp.MustCompile(`\s+`).ReplaceAllString(ascii, " ")

	canon, ok := units.FormSynonyms[ascii]
	if !ok {
		warn(FormNotRecognized)
		return rawForm, units.Other, true, true
	}
	g, ok := units.FormGroupOf[canon]
	if !ok {
		g = units.Other
	}
	return canon, g, true, true
}
