// Package parser implements the deterministic four-layer drug-name
// normalization pipeline: sanitize -> segment -> normalize values ->
// normalize form. Parse never fails — every error condition is encoded as
// a WarningCode on the returned ParsedDrug.
package parser

import (
	"github.com/genhospi/bulk-quote-core/internal/concentration"
)

// Parse runs the full pipeline over one free-text pharmaceutical product
// description, e.g. "Acetaminofen + Codeina 325mg + 15mg Tableta".
func Parse(raw string) ParsedDrug {
	var warnings []WarningCode
	warn := func(code WarningCode) { warnings = append(warnings, code) }

	// Layer 0
	sanitized := layer0Sanitize(raw)
	if sanitized == "" {
		return ParsedDrug{RawInput: raw, Warnings: []WarningCode{NoConcentrationFound}}
	}

	// Layer 1a: delimited blocks
	afterDelimiters, bracketContents, parenContents := extractDelimitedBlocks(sanitized)

	// Layer 1b: trailing form
	afterForm, rawForm, _ := extractTrailingForm(afterDelimiters)

	// Layer 1c: split on +
	segments := splitOnPlusOutsideDelimiters(afterForm)
	if len(segments) == 0 {
		segments = []string{afterForm}
	}

	// Layer 1d: INN / dose split per segment
	var innParts, doseParts []string
	for _, seg := range segments {
		innText, doseText, hasDose := splitInnAndDose(seg)
		if innText != "" {
			innParts = append(innParts, innText)
		}
		if hasDose && doseText != "" {
			doseParts = append(doseParts, doseText)
		}
	}

	// Layer 1e: inline concentrations
	var inlineConcs []concentration.NormalizedConcentration
	for _, doseStr := range doseParts {
		if c, ok := concentration.ParseInline(doseStr, warnFunc(&warnings)); ok {
			inlineConcs = append(inlineConcs, c)
		}
	}

	// Layer 1f: bracket concentrations
	var bracketConcs []concentration.NormalizedConcentration
	for _, bc := range bracketContents {
		if c, ok := concentration.ParseBracket(bc, warnFunc(&warnings)); ok {
			bracketConcs = append(bracketConcs, c)
		}
	}

	// Layer 2a: percent vs. bracket-ratio arithmetic consistency
	var pctConcs []concentration.NormalizedConcentration
	for _, c := range inlineConcs {
		if c.Encoding == concentration.InlinePercent {
			pctConcs = append(pctConcs, c)
		}
	}
	var bracketRatio *concentration.NormalizedConcentration
	for i := range bracketConcs {
		if bracketConcs[i].Encoding == concentration.BracketRatio {
			bracketRatio = &bracketConcs[i]
			break
		}
	}
	if len(pctConcs) > 0 && bracketRatio != nil {
		concentration.ValidatePercentVsBracket(pctConcs[0], *bracketRatio, warnFunc(&warnings))
	}

	// Layer 2b: choose the canonical concentration set
	var allConcs []concentration.NormalizedConcentration
	if len(innParts) > 1 {
		allConcs = inlineConcs
	} else {
		allConcs = append(append([]concentration.NormalizedConcentration{}, bracketConcs...), inlineConcs...)
	}
	if len(allConcs) == 0 {
		warn(NoConcentrationFound)
	}

	// Layer 2c: build components
	var components []DrugComponent
	for i, innRaw := range innParts {
		var parens []string
		if i == 0 {
			parens = parenContents
		}
		components = append(components, buildDrugComponent(innRaw, parens, warn))
	}

	// Layer 2d: combo parity check
	if len(components) > 1 && len(inlineConcs) != len(components) {
		warn(ComponentCountMismatch)
	}

	if len(components) == 0 {
		seed := afterForm
		if seed == "" {
			seed = sanitized
		}
		components = []DrugComponent{buildDrugComponent(seed, parenContents, warn)}
	}

	// Layer 3: form normalization
	canonicalForm, group, hasGroup, _ := layer3NormalizeForm(rawForm, warn)

	return ParsedDrug{
		RawInput:       raw,
		Components:     components,
		Concentrations: allConcs,
		CanonicalForm:  canonicalForm,
		RawForm:        rawForm,
		FormGroup:      group,
		HasFormGroup:   hasGroup,
		Warnings:       warnings,
	}
}

func warnFunc(warnings *[]WarningCode) func(code string) {
	return func(code string) { *warnings = append(*warnings, WarningCode(code)) }
}
