// Package concentration implements the NormalizedConcentration value
// object and the Hard Barrier equality check used throughout the matcher.
// A concentration's Value is a decimal.Decimal rather than a float64
// precisely because the Hard Barrier is an exact-equality check: a 325mg
// tablet must never compare equal to a 500mg tablet, and float rounding
// on ratio simplification (100/5) must never drift the comparison.
package concentration

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/genhospi/bulk-quote-core/internal/units"
)

// Encoding records how a concentration was encoded in the source text.
type Encoding string

const (
	Inline        Encoding = "inline"           // "325mg"
	InlinePercent Encoding = "inline_percent"    // "2%"
	BracketSimple Encoding = "bracket_simple"    // "[500mg]"
	BracketRatio  Encoding = "bracket_ratio"     // "[100mg/5mL]" -> simplified to mg/mL
)

// NormalizedConcentration is an immutable triple (value, unit, encoding)
// plus the verbatim source token it was parsed from.
type NormalizedConcentration struct {
	Raw      string
	Value    decimal.Decimal
	Unit     string
	Encoding Encoding
}

// Matches is the Hard Barrier: exact equality on Value, case-insensitive
// equality on Unit. No tolerance, no unit conversion.
func (c NormalizedConcentration) Matches(other NormalizedConcentration) bool {
	return c.Value.Equal(other.Value) && strings.EqualFold(c.Unit, other.Unit)
}

func (c NormalizedConcentration) String() string {
	return c.Value.String() + " " + c.Unit
}

// ---------------------------------------------------------------------------
// Regex patterns — ported 1:1 from the reference implementation's
// _BRACKET_RATIO_RE / _INLINE_DOSE_RE (same alternation structure, RE2
// syntax instead of Python's re.VERBOSE).
// ---------------------------------------------------------------------------

var bracketRatioRE = regexp.MustCompile(
	`(?i)^(?P<num1>\d+(?:[.,]\d+)?)\s*(?P<unit1>mg|mcg|µg|ug|g\b|UI|IU|mEq|mmol|mL|ml|L\b)\s*/\s*(?P<num2>\d+(?:[.,]\d+)?)\s*(?P<unit2>mL|ml|g\b|L\b)$`,
)

var inlineDoseRE = buildInlineDoseRE()

func buildInlineDoseRE() *regexp.Regexp {
	var compound, simple []string
	for _, e := range units.UnitPatternsOrdered {
		if strings.Contains(e.Source, "/") {
			compound = append(compound, regexp.QuoteMeta(e.Source))
		} else {
			simple = append(simple, regexp.QuoteMeta(e.Source))
		}
	}
	pattern := `(?i)(?P<num>\d+(?:[.,]\d+)?)\s*(?P<unit>` +
		strings.Join(compound, "|") + `|` + strings.Join(simple, "|") +
		`)(?:[^\p{L}\p{N}_]|$)`
	return regexp.MustCompile(pattern)
}

func namedGroup(re *regexp.Regexp, match []string, name string) string {
	for i, n := range re.SubexpNames() {
		if n == name && i < len(match) {
			return match[i]
		}
	}
	return ""
}

// FindInlineDose locates the first inline dose token (number + unit, not
// followed by a further word character) in s. It returns the match bounds
// as byte offsets into s, or ok=false if no dose token is present.
func FindInlineDose(s string) (start, end int, ok bool) {
	loc := inlineDoseRE.FindStringSubmatchIndex(s)
	if loc == nil {
		return 0, 0, false
	}
	// group 1 ("num") start .. group 2 ("unit") end delimit the dose token
	// itself; the optional trailing non-word lookahead is excluded.
	unitEnd := loc[5]
	if unitEnd < 0 {
		unitEnd = loc[1]
	}
	return loc[0], unitEnd, true
}

// ParseInline parses an inline dose string like "325mg", "2%",
// "25,000UI/mL". It appends AMBIGUOUS_DECIMAL (via ResolveDecimalLocale) when
// the numeric locale is ambiguous, but never fails outright except when
// no dose token is found, in which case ok is false.
func ParseInline(doseStr string, warn func(code string)) (NormalizedConcentration, bool) {
	m := inlineDoseRE.FindStringSubmatch(doseStr)
	if m == nil {
		return NormalizedConcentration{}, false
	}
	rawUnit := namedGroup(inlineDoseRE, m, "unit")
	rawNum := namedGroup(inlineDoseRE, m, "num")

	enc := Inline
	if strings.TrimSpace(rawUnit) == "%" {
		enc = InlinePercent
	}
	value := ResolveDecimalLocale(rawNum, warn)
	unit := units.CanonicalUnit(rawUnit)
	return NormalizedConcentration{Raw: doseStr, Value: value, Unit: unit, Encoding: enc}, true
}

// ParseBracket parses the interior of a [...] block, recognizing either a
// ratio form ("100mg/5mL", simplified by division) or a simple form
// ("500mg"). It returns ok=false (after emitting UNPARSEABLE_BRACKET via
// warn) when neither shape matches, or when a ratio's denominator is zero.
func ParseBracket(inner string, warn func(code string)) (NormalizedConcentration, bool) {
	trimmed := strings.TrimSpace(inner)
	if m := bracketRatioRE.FindStringSubmatch(trimmed); m != nil {
		num1 := namedGroup(bracketRatioRE, m, "num1")
		unit1 := namedGroup(bracketRatioRE, m, "unit1")
		num2 := namedGroup(bracketRatioRE, m, "num2")
		unit2 := namedGroup(bracketRatioRE, m, "unit2")

		v1 := ResolveDecimalLocale(num1, warn)
		v2 := ResolveDecimalLocale(num2, warn)
		u1 := units.CanonicalUnit(unit1)
		u2 := units.CanonicalUnit(unit2)

		if v2.IsZero() {
			warn("UNPARSEABLE_BRACKET")
			return NormalizedConcentration{}, false
		}

		simplified := v1.DivRound(v2, 10)
		canonicalUnit := units.CanonicalUnit(u1 + "/" + u2)

		return NormalizedConcentration{
			Raw:      inner,
			Value:    simplified,
			Unit:     canonicalUnit,
			Encoding: BracketRatio,
		}, true
	}

	if m := inlineDoseRE.FindStringSubmatch(trimmed); m != nil {
		num := namedGroup(inlineDoseRE, m, "num")
		unit := namedGroup(inlineDoseRE, m, "unit")
		value := ResolveDecimalLocale(num, warn)
		canonicalUnit := units.CanonicalUnit(unit)
		return NormalizedConcentration{
			Raw:      inner,
			Value:    value,
			Unit:     canonicalUnit,
			Encoding: BracketSimple,
		}, true
	}

	warn("UNPARSEABLE_BRACKET")
	return NormalizedConcentration{}, false
}

// ValidatePercentVsBracket checks the arithmetic consistency between a
// percentage concentration and a simplified bracket ratio for the same
// mono-drug (1% w/v == 10 mg/mL). It only applies when the bracket's
// canonical unit is "mg/mL"; any other unit is left unchecked. A
// discrepancy greater than 1% of the bracket value emits
// BRACKET_RATIO_INCONSISTENT via warn; the bracket form remains canonical
// regardless.
func ValidatePercentVsBracket(pct, bracket NormalizedConcentration, warn func(code string)) {
	if bracket.Unit != "mg/mL" {
		return
	}
	expected := pct.Value.Mul(decimal.NewFromInt(10))
	diff := expected.Sub(bracket.Value).Abs()
	tolerance := decimal.NewFromFloat(0.01).Mul(bracket.Value).Abs()
	if diff.GreaterThan(tolerance) {
		warn("BRACKET_RATIO_INCONSISTENT")
	}
}
