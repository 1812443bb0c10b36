package concentration

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad fixture %q: %v", s, err)
	}
	return d
}

func TestParseInline(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantVal  string
		wantUnit string
		wantEnc  Encoding
	}{
		{name: "simple mg", input: "325mg", wantVal: "325", wantUnit: "mg", wantEnc: Inline},
		{name: "percent", input: "2%", wantVal: "2", wantUnit: "%", wantEnc: InlinePercent},
		{name: "IU unit", input: "25000UI", wantVal: "25000", wantUnit: "IU", wantEnc: Inline},
		{name: "compound unit", input: "100mg/ml", wantVal: "100", wantUnit: "mg/mL", wantEnc: Inline},
		{name: "spaced value", input: "500 mg", wantVal: "500", wantUnit: "mg", wantEnc: Inline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := ParseInline(tt.input, func(string) {})
			if !ok {
				t.Fatalf("ParseInline(%q) returned ok=false", tt.input)
			}
			if !c.Value.Equal(mustDecimal(t, tt.wantVal)) {
				t.Errorf("Value = %s, want %s", c.Value, tt.wantVal)
			}
			if c.Unit != tt.wantUnit {
				t.Errorf("Unit = %q, want %q", c.Unit, tt.wantUnit)
			}
			if c.Encoding != tt.wantEnc {
				t.Errorf("Encoding = %q, want %q", c.Encoding, tt.wantEnc)
			}
		})
	}

	t.Run("no dose token", func(t *testing.T) {
		if _, ok := ParseInline("tableta", func(string) {}); ok {
			t.Errorf("expected ok=false for a string with no dose token")
		}
	})
}

func TestParseBracketRatio(t *testing.T) {
	c, ok := ParseBracket("100mg/5ml", func(string) {})
	if !ok {
		t.Fatalf("ParseBracket returned ok=false")
	}
	if c.Encoding != BracketRatio {
		t.Errorf("Encoding = %q, want %q", c.Encoding, BracketRatio)
	}
	if c.Unit != "mg/mL" {
		t.Errorf("Unit = %q, want mg/mL", c.Unit)
	}
	if !c.Value.Equal(mustDecimal(t, "20")) {
		t.Errorf("Value = %s, want 20", c.Value)
	}
}

func TestParseBracketSimple(t *testing.T) {
	c, ok := ParseBracket("500mg", func(string) {})
	if !ok {
		t.Fatalf("ParseBracket returned ok=false")
	}
	if c.Encoding != BracketSimple {
		t.Errorf("Encoding = %q, want %q", c.Encoding, BracketSimple)
	}
	if !c.Value.Equal(mustDecimal(t, "500")) {
		t.Errorf("Value = %s, want 500", c.Value)
	}
}

func TestParseBracketZeroDenominator(t *testing.T) {
	var gotWarning string
	_, ok := ParseBracket("100mg/0ml", func(code string) { gotWarning = code })
	if ok {
		t.Fatalf("expected ok=false for a zero denominator")
	}
	if gotWarning != "UNPARSEABLE_BRACKET" {
		t.Errorf("warning = %q, want UNPARSEABLE_BRACKET", gotWarning)
	}
}

func TestParseBracketUnparseable(t *testing.T) {
	var gotWarning string
	_, ok := ParseBracket("whatever", func(code string) { gotWarning = code })
	if ok {
		t.Fatalf("expected ok=false for unparseable bracket content")
	}
	if gotWarning != "UNPARSEABLE_BRACKET" {
		t.Errorf("warning = %q, want UNPARSEABLE_BRACKET", gotWarning)
	}
}

func TestMatchesHardBarrier(t *testing.T) {
	a := NormalizedConcentration{Value: mustDecimal(t, "325"), Unit: "mg"}
	b := NormalizedConcentration{Value: mustDecimal(t, "500"), Unit: "mg"}
	if a.Matches(b) {
		t.Errorf("325mg must never match 500mg")
	}

	c, ok := ParseBracket("100mg/5ml", func(string) {})
	if !ok {
		t.Fatalf("setup: ParseBracket failed")
	}
	d, ok := ParseInline("20mg/ml", func(string) {})
	if !ok {
		t.Fatalf("setup: ParseInline failed")
	}
	if !c.Matches(d) {
		t.Errorf("100mg/5mL simplified to 20mg/mL must match a literal 20mg/mL")
	}

	e := NormalizedConcentration{Value: mustDecimal(t, "325"), Unit: "MG"}
	f := NormalizedConcentration{Value: mustDecimal(t, "325"), Unit: "mg"}
	if !e.Matches(f) {
		t.Errorf("unit comparison must be case-insensitive")
	}
}

func TestValidatePercentVsBracket(t *testing.T) {
	t.Run("consistent", func(t *testing.T) {
		pct, _ := ParseInline("1%", func(string) {})
		bracket, _ := ParseBracket("10mg/1ml", func(string) {})
		var warned bool
		ValidatePercentVsBracket(pct, bracket, func(string) { warned = true })
		if warned {
			t.Errorf("1%% and 10mg/mL must be considered consistent")
		}
	})

	t.Run("inconsistent", func(t *testing.T) {
		pct, _ := ParseInline("5%", func(string) {})
		bracket, _ := ParseBracket("10mg/1ml", func(string) {})
		var gotWarning string
		ValidatePercentVsBracket(pct, bracket, func(code string) { gotWarning = code })
		if gotWarning != "BRACKET_RATIO_INCONSISTENT" {
			t.Errorf("warning = %q, want BRACKET_RATIO_INCONSISTENT", gotWarning)
		}
	})

	t.Run("non mg/mL unit is unchecked", func(t *testing.T) {
		pct, _ := ParseInline("5%", func(string) {})
		bracket, _ := ParseBracket("10mg/1g", func(string) {})
		var warned bool
		ValidatePercentVsBracket(pct, bracket, func(string) { warned = true })
		if warned {
			t.Errorf("units other than mg/mL must never be checked")
		}
	})
}
