package parser

import (
	"github.com/genhospi/bulk-quote-core/internal/concentration"
	"github.com/genhospi/bulk-quote-core/internal/units"
)

// DrugComponent is one active principle in a (possibly combo) drug. It is
// immutable once constructed.
type DrugComponent struct {
	RawINN       string
	CanonicalINN string
	Aliases      []string
}

// ParsedDrug is the complete, immutable output of the normalization
// pipeline for one input row.
type ParsedDrug struct {
	RawInput       string
	Components     []DrugComponent
	Concentrations []concentration.NormalizedConcentration
	CanonicalForm  string
	RawForm        string
	FormGroup      units.FormGroup
	HasFormGroup   bool
	Warnings       []WarningCode
}

// ComponentCount is len(Components).
func (p ParsedDrug) ComponentCount() int { return len(p.Components) }

// IsCombo is true when the drug has more than one active component.
func (p ParsedDrug) IsCombo() bool { return len(p.Components) > 1 }

// CanonicalConcentration returns the single most precise concentration for
// a mono-component drug, preferring BracketRatio (already simplified) over
// Inline over BracketSimple over InlinePercent. It returns ok=false for
// combo drugs or when no concentration was found.
func (p ParsedDrug) CanonicalConcentration() (concentration.NormalizedConcentration, bool) {
	if p.IsCombo() || len(p.Concentrations) == 0 {
		return concentration.NormalizedConcentration{}, false
	}
	priority := map[concentration.Encoding]int{
		concentration.BracketRatio:  0,
		concentration.Inline:        1,
		concentration.BracketSimple: 2,
		concentration.InlinePercent: 3,
	}
	best := p.Concentrations[0]
	bestRank := rankOf(priority, best.Encoding)
	for _, c := range p.Concentrations[1:] {
		if r := rankOf(priority, c.Encoding); r < bestRank {
			best, bestRank = c, r
		}
	}
	return best, true
}

func rankOf(priority map[concentration.Encoding]int, e concentration.Encoding) int {
	if r, ok := priority[e]; ok {
		return r
	}
	return 99
}

// IsMatchable is false iff Warnings intersects the blocking set
// (COMPONENT_COUNT_MISMATCH, AMBIGUOUS_DECIMAL). A non-matchable
// ParsedDrug must never be sent past the matcher's guard stage.
func (p ParsedDrug) IsMatchable() bool {
	for _, w := range p.Warnings {
		if blockingWarnings[w] {
			return false
		}
	}
	return true
}

// HasWarning reports whether code is present in Warnings.
func (p ParsedDrug) HasWarning(code WarningCode) bool {
	for _, w := range p.Warnings {
		if w == code {
			return true
		}
	}
	return false
}
