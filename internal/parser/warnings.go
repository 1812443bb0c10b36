package parser

// WarningCode is a machine-readable code attached to ParsedDrug.Warnings.
// The taxonomy is exhaustive: these eight codes are the only ones the
// parser ever emits.
type WarningCode string

const (
	AmbiguousDecimal          WarningCode = "AMBIGUOUS_DECIMAL"
	BracketRatioInconsistent  WarningCode = "BRACKET_RATIO_INCONSISTENT"
	ComponentCountMismatch    WarningCode = "COMPONENT_COUNT_MISMATCH"
	FormNotRecognized         WarningCode = "FORM_NOT_RECOGNIZED"
	InnNotInSynonymTable      WarningCode = "INN_NOT_IN_SYNONYM_TABLE"
	NoConcentrationFound      WarningCode = "NO_CONCENTRATION_FOUND"
	ParenSynonymUnresolved    WarningCode = "PAREN_SYNONYM_UNRESOLVED"
	UnparseableBracket        WarningCode = "UNPARSEABLE_BRACKET"
)

// blockingWarnings is the set of warning codes that make a ParsedDrug
// unsafe to send to the matcher.
var blockingWarnings = map[WarningCode]bool{
	ComponentCountMismatch: true,
	AmbiguousDecimal:       true,
}
