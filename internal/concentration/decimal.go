package concentration

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ResolveDecimalLocale resolves European decimal-comma vs. US
// thousands-separator-comma ambiguity in a numeric token.
//
// Rules (ported from the reference implementation's
// _resolve_decimal_locale):
//  1. No comma present -> parse directly (a dot, if present, is a decimal
//     point).
//  2. Comma followed by exactly 3 digits ("25,000") -> thousands
//     separator -> "25000".
//  3. Comma followed by 1 or 2 digits ("37,5") -> decimal separator ->
//     "37.5".
//  4. Comma followed by >= 4 digits -> ambiguous; best-effort decimal
//     interpretation, warn AMBIGUOUS_DECIMAL.
//  5. Multiple commas, or anything else unexpected -> ambiguous; strip
//     commas and best-effort parse, warn AMBIGUOUS_DECIMAL.
func ResolveDecimalLocale(numStr string, warn func(code string)) decimal.Decimal {
	cleaned := strings.ReplaceAll(numStr, " ", "")

	if !strings.Contains(cleaned, ",") {
		d, err := decimal.NewFromString(strings.ReplaceAll(cleaned, ",", "."))
		if err != nil {
			warn("AMBIGUOUS_DECIMAL")
			return decimal.Zero
		}
		return d
	}

	parts := strings.Split(cleaned, ",")
	if len(parts) == 2 {
		before, after := parts[0], parts[1]
		switch {
		case len(after) == 3 && isDigits(after):
			d, err := decimal.NewFromString(before + after)
			if err == nil {
				return d
			}
		case len(after) == 1 || len(after) == 2:
			d, err := decimal.NewFromString(before + "." + after)
			if err == nil {
				return d
			}
		case len(after) >= 4:
			warn("AMBIGUOUS_DECIMAL")
			d, err := decimal.NewFromString(before + "." + after)
			if err == nil {
				return d
			}
			return decimal.Zero
		}
	}

	warn("AMBIGUOUS_DECIMAL")
	d, err := decimal.NewFromString(strings.ReplaceAll(cleaned, ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
