package parser

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/genhospi/bulk-quote-core/internal/concentration"
	"github.com/genhospi/bulk-quote-core/internal/units"
)

func TestParseMonoDrugWithForm(t *testing.T) {
	p := Parse("Acetaminofen 500mg Tableta")

	if p.ComponentCount() != 1 {
		t.Fatalf("ComponentCount = %d, want 1", p.ComponentCount())
	}
	if got := p.Components[0].CanonicalINN; got != "acetaminofen" {
		t.Errorf("CanonicalINN = %q, want acetaminofen", got)
	}
	if p.CanonicalForm != "tableta" || p.FormGroup != units.OralSolid {
		t.Errorf("CanonicalForm/FormGroup = %q/%q, want tableta/ORAL_SOLID", p.CanonicalForm, p.FormGroup)
	}
	c, ok := p.CanonicalConcentration()
	if !ok {
		t.Fatalf("CanonicalConcentration returned ok=false")
	}
	if c.Unit != "mg" || !c.Value.Equal(decimalOf(t, "500")) {
		t.Errorf("concentration = %s %s, want 500 mg", c.Value, c.Unit)
	}
	if len(p.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", p.Warnings)
	}
	if !p.IsMatchable() {
		t.Errorf("expected IsMatchable = true")
	}
}

func TestParseComboTwoConcentrationsNoMismatch(t *testing.T) {
	p := Parse("Acetaminofen + Codeina 325mg + 15mg Tableta")

	if !p.IsCombo() || p.ComponentCount() != 2 {
		t.Fatalf("expected a 2-component combo, got %d components", p.ComponentCount())
	}
	wantINNs := []string{"acetaminofen", "codeina"}
	for i, want := range wantINNs {
		if got := p.Components[i].CanonicalINN; got != want {
			t.Errorf("Components[%d].CanonicalINN = %q, want %q", i, got, want)
		}
	}
	if len(p.Concentrations) != 2 {
		t.Fatalf("Concentrations = %d, want 2", len(p.Concentrations))
	}
	if p.HasWarning(ComponentCountMismatch) {
		t.Errorf("a combo with matching component/concentration counts must not warn COMPONENT_COUNT_MISMATCH")
	}
	if !p.IsMatchable() {
		t.Errorf("expected IsMatchable = true")
	}
}

func TestParseComboMissingConcentrationWarnsMismatch(t *testing.T) {
	p := Parse("Acetaminofen + Tramadol 325mg Tableta")

	if p.ComponentCount() != 2 {
		t.Fatalf("ComponentCount = %d, want 2", p.ComponentCount())
	}
	if len(p.Concentrations) != 1 {
		t.Fatalf("Concentrations = %d, want 1", len(p.Concentrations))
	}
	if !p.HasWarning(ComponentCountMismatch) {
		t.Errorf("expected COMPONENT_COUNT_MISMATCH warning")
	}
	if p.IsMatchable() {
		t.Errorf("COMPONENT_COUNT_MISMATCH is blocking; expected IsMatchable = false")
	}
}

func TestParseEuropeanDecimalComma(t *testing.T) {
	p := Parse("Tramadol 37,5mg Tableta")

	c, ok := p.CanonicalConcentration()
	if !ok {
		t.Fatalf("CanonicalConcentration returned ok=false")
	}
	if !c.Value.Equal(decimalOf(t, "37.5")) {
		t.Errorf("Value = %s, want 37.5", c.Value)
	}
	if p.HasWarning(AmbiguousDecimal) {
		t.Errorf("a single digit after the comma is an unambiguous decimal separator")
	}
}

func TestParseAmbiguousDecimalIsBlocking(t *testing.T) {
	p := Parse("Tramadol 1,2345mg Tableta")

	if !p.HasWarning(AmbiguousDecimal) {
		t.Errorf("expected AMBIGUOUS_DECIMAL warning for a 4-digit comma group")
	}
	if p.IsMatchable() {
		t.Errorf("AMBIGUOUS_DECIMAL is blocking; expected IsMatchable = false")
	}
}

func TestParseParentheticalSynonym(t *testing.T) {
	p := Parse("Vitamina D3 (Colecalciferol) 400UI Capsula")

	if p.ComponentCount() != 1 {
		t.Fatalf("ComponentCount = %d, want 1", p.ComponentCount())
	}
	comp := p.Components[0]
	if comp.CanonicalINN != "colecalciferol" {
		t.Errorf("CanonicalINN = %q, want colecalciferol", comp.CanonicalINN)
	}
	if len(comp.Aliases) != 1 || comp.Aliases[0] != "vitamina d3" {
		t.Errorf("Aliases = %v, want [vitamina d3]", comp.Aliases)
	}
	c, ok := p.CanonicalConcentration()
	if !ok || c.Unit != "IU" || !c.Value.Equal(decimalOf(t, "400")) {
		t.Errorf("concentration = %+v, want 400 IU", c)
	}
	if p.CanonicalForm != "capsula" || p.FormGroup != units.OralSolid {
		t.Errorf("CanonicalForm/FormGroup = %q/%q, want capsula/ORAL_SOLID", p.CanonicalForm, p.FormGroup)
	}
}

func TestParseTopicalPercentage(t *testing.T) {
	p := Parse("Aciclovir 5% Crema")

	c, ok := p.CanonicalConcentration()
	if !ok {
		t.Fatalf("CanonicalConcentration returned ok=false")
	}
	if c.Encoding != concentration.InlinePercent {
		t.Errorf("Encoding = %q, want inline_percent", c.Encoding)
	}
	if !c.Value.Equal(decimalOf(t, "5")) {
		t.Errorf("Value = %s, want 5", c.Value)
	}
	if p.FormGroup != units.Topical {
		t.Errorf("FormGroup = %q, want TOPICAL", p.FormGroup)
	}
}

func TestParseVolumeAsConcentration(t *testing.T) {
	p := Parse("Agua Destilada 10mL Solucion Inyectable")

	comp := p.Components[0]
	if comp.CanonicalINN != "agua para preparaciones inyectables" {
		t.Errorf("CanonicalINN = %q, want agua para preparaciones inyectables", comp.CanonicalINN)
	}
	c, ok := p.CanonicalConcentration()
	if !ok || c.Unit != "mL" || !c.Value.Equal(decimalOf(t, "10")) {
		t.Errorf("concentration = %+v, want 10 mL", c)
	}
	if p.FormGroup != units.Injectable {
		t.Errorf("FormGroup = %q, want INJECTABLE", p.FormGroup)
	}
}

func TestHardBarrierRejectsDifferentStrengths(t *testing.T) {
	low := Parse("Acetaminofen 325mg Tableta")
	high := Parse("Acetaminofen 500mg Tableta")

	lowConc, ok := low.CanonicalConcentration()
	if !ok {
		t.Fatalf("low.CanonicalConcentration returned ok=false")
	}
	highConc, ok := high.CanonicalConcentration()
	if !ok {
		t.Fatalf("high.CanonicalConcentration returned ok=false")
	}
	if lowConc.Matches(highConc) {
		t.Errorf("325mg must never match 500mg under the Hard Barrier")
	}
}

func TestParseNoConcentrationFound(t *testing.T) {
	p := Parse("Placebo Tableta")

	if !p.HasWarning(NoConcentrationFound) {
		t.Errorf("expected NO_CONCENTRATION_FOUND warning")
	}
	if !p.HasWarning(InnNotInSynonymTable) {
		t.Errorf("expected INN_NOT_IN_SYNONYM_TABLE warning for an unknown INN")
	}
	if !p.IsMatchable() {
		t.Errorf("neither warning is blocking; expected IsMatchable = true")
	}
}

func TestParseEmptyInput(t *testing.T) {
	p := Parse("   ")

	if len(p.Warnings) != 1 || p.Warnings[0] != NoConcentrationFound {
		t.Errorf("Warnings = %v, want [NO_CONCENTRATION_FOUND]", p.Warnings)
	}
	if p.ComponentCount() != 0 {
		t.Errorf("ComponentCount = %d, want 0", p.ComponentCount())
	}
}

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return d
}
