// Package matcher implements the multi-stage safety-gated lookup that maps
// a parsed free-text drug description onto a row in a pharmaceutical
// catalog: an O(1) confirmed-synonym lookup first, then an exact match,
// then a trigram-similarity fuzzy match. A confirmed-synonym hit is
// returned as is. Exact candidates are gated by the concentration Hard
// Barrier; fuzzy candidates by a form-group barrier and the concentration
// Hard Barrier, before a candidate is ever returned as a match.
package matcher

import (
	"context"
	"sort"
	"strings"

	"github.com/genhospi/bulk-quote-core/internal/concentration"
	"github.com/genhospi/bulk-quote-core/internal/parser"
	"github.com/genhospi/bulk-quote-core/internal/units"
)

// Tunable thresholds. Kept as named constants rather than runtime
// configuration: changing the trigram threshold or the candidate limit is
// a deliberate, reviewed release decision, not an operational knob.
const (
	TrgmInnThreshold      = 0.85
	Stage2CandidateLimit  = 20
	FormTrgmSoftThreshold = 0.60
)

// MatchStage records which stage of the pipeline produced the result.
type MatchStage string

const (
	StageSynonymDict MatchStage = "SYNONYM_DICT"
	StageExact       MatchStage = "EXACT"
	StageFuzzy       MatchStage = "FUZZY_INN_SAFE"
	StageNoMatch     MatchStage = "NO_MATCH"
)

// RejectReason is set on MatchResult when Stage is StageNoMatch.
type RejectReason string

const (
	RejectConcentrationMismatch     RejectReason = "CONCENTRATION_MISMATCH"
	RejectConcentrationParseFailed  RejectReason = "CONCENTRATION_PARSE_FAILED"
	RejectFormGroupMismatch         RejectReason = "FORM_GROUP_MISMATCH"
	RejectInnSimilarityTooLow       RejectReason = "INN_SIMILARITY_TOO_LOW"
	RejectDrugInactive              RejectReason = "DRUG_INACTIVE"
	RejectInputNotMatchable         RejectReason = "INPUT_NOT_MATCHABLE"
	RejectNoCandidates              RejectReason = "NO_CANDIDATES"
)

// CatalogRow is one active-principle / form / concentration row in the
// drug catalog, as returned by a CatalogProvider.
type CatalogRow struct {
	CUM                 string
	PrincipioActivo     string
	FormaFarmaceutica   string
	ConcentracionRaw    string
	Activo              bool
	Similarity          float64 // set by fuzzy queries only; zero otherwise
}

// CatalogProvider is the data-access boundary the matcher depends on. A
// production instance talks to Postgres with pg_trgm (see catalogpg);
// tests can supply an in-memory fake.
type CatalogProvider interface {
	// ExactMatch returns active rows whose lowercased principio_activo and
	// forma_farmaceutica equal innQuery and formQuery exactly.
	ExactMatch(ctx context.Context, innQuery, formQuery string) ([]CatalogRow, error)
	// FuzzyMatch returns active rows whose principio_activo similarity to
	// innQuery exceeds threshold, ordered by similarity descending, capped
	// at limit.
	FuzzyMatch(ctx context.Context, innQuery string, threshold float64, limit int) ([]CatalogRow, error)
	// ClosestCandidate returns the single highest-similarity active row for
	// innQuery, for Stage 3 review records. ok is false when the catalog
	// has nothing at all to compare against.
	ClosestCandidate(ctx context.Context, innQuery string) (row CatalogRow, ok bool, err error)
}

// SynonymDict is the O(1) confirmed-resolution lookup consulted before any
// catalog query. A hospital-scoped confirmation bypasses every other stage.
type SynonymDict interface {
	Lookup(ctx context.Context, hospitalID, normalizedKey string) (cum string, confidence float64, ok bool, err error)
}

// MatchResult is the outcome of matching one ParsedDrug against the
// catalog.
type MatchResult struct {
	Stage          MatchStage
	CUM            string
	Confidence     float64
	RejectReason   RejectReason
	ClosestCUM     string
	ClosestHasData bool
}

// Matcher ties a CatalogProvider and a SynonymDict together to run the
// full matching pipeline.
type Matcher struct {
	Catalog CatalogProvider
	Dict    SynonymDict
}

// New constructs a Matcher. Dict may be nil, in which case the synonym-dict
// pre-stage is skipped entirely (useful for catalog-only testing).
func New(catalog CatalogProvider, dict SynonymDict) *Matcher {
	return &Matcher{Catalog: catalog, Dict: dict}
}

// Match runs the guard, pre-stage, Stage 1, Stage 2 and Stage 3 lookup for
// one parsed drug, scoped to hospitalID so synonym-dict confirmations never
// leak across hospitals.
func (m *Matcher) Match(ctx context.Context, p parser.ParsedDrug, hospitalID string) (MatchResult, error) {
	if !p.IsMatchable() {
		return MatchResult{Stage: StageNoMatch, RejectReason: RejectInputNotMatchable}, nil
	}

	normalizedKey := normalizeForDict(p)
	if m.Dict != nil {
		cum, confidence, ok, err := m.Dict.Lookup(ctx, hospitalID, normalizedKey)
		if err != nil {
			return MatchResult{}, err
		}
		if ok {
			return MatchResult{Stage: StageSynonymDict, CUM: cum, Confidence: confidence}, nil
		}
	}

	innQuery := buildInnQuery(p)
	formQuery := strings.ToLower(p.CanonicalForm)

	exactRows, err := m.Catalog.ExactMatch(ctx, innQuery, formQuery)
	if err != nil {
		return MatchResult{}, err
	}
	for _, row := range exactRows {
		if !row.Activo {
			continue
		}
		if ok, _ := concentrationHardBarrier(p, row); ok {
			return MatchResult{Stage: StageExact, CUM: row.CUM, Confidence: 1.0}, nil
		}
	}

	fuzzyRows, err := m.Catalog.FuzzyMatch(ctx, innQuery, TrgmInnThreshold, Stage2CandidateLimit)
	if err != nil {
		return MatchResult{}, err
	}
	var best *CatalogRow
	for i := range fuzzyRows {
		row := fuzzyRows[i]
		if !row.Activo {
			continue
		}
		if !formGroupBarrier(p, row) {
			continue
		}
		if ok, _ := concentrationHardBarrier(p, row); !ok {
			continue
		}
		if best == nil || row.Similarity > best.Similarity {
			best = &row
		}
	}
	if best != nil {
		return MatchResult{Stage: StageFuzzy, CUM: best.CUM, Confidence: best.Similarity}, nil
	}

	closest, ok, err := m.Catalog.ClosestCandidate(ctx, innQuery)
	if err != nil {
		return MatchResult{}, err
	}
	if !ok {
		return MatchResult{Stage: StageNoMatch, RejectReason: RejectNoCandidates}, nil
	}
	return MatchResult{
		Stage:          StageNoMatch,
		RejectReason:   RejectConcentrationMismatch,
		ClosestCUM:     closest.CUM,
		ClosestHasData: true,
	}, nil
}

// buildInnQuery produces the INN search string: a single component's
// canonical INN, or, for a combo, every component's canonical INN sorted
// and joined with " / " so query order never depends on input order.
func buildInnQuery(p parser.ParsedDrug) string {
	names := make([]string, 0, len(p.Components))
	for _, c := range p.Components {
		names = append(names, c.CanonicalINN)
	}
	sort.Strings(names)
	return strings.Join(names, " / ")
}

// normalizeForDict produces the synonym-dictionary lookup key straight
// from the raw input text (accent-stripped, lowercased, whitespace
// collapsed) rather than from any parser-resolved INN/form/concentration.
// This keeps the dictionary a stable, raw-text-keyed bypass: a later edit
// to the INN or form synonym tables can never silently invalidate a
// previously recorded row, and two different raw spellings of the "same"
// canonical drug never collide into one key without an independent human
// confirmation.
func normalizeForDict(p parser.ParsedDrug) string {
	return parser.NormalizeForDict(p.RawInput)
}

// formGroupBarrier returns false only when both sides have a recognized,
// differing form group. An unrecognized query or catalog form group is not
// a rejection — it proceeds cautiously to the concentration barrier, which
// is the actual safety gate.
func formGroupBarrier(p parser.ParsedDrug, row CatalogRow) bool {
	if !p.HasFormGroup || p.FormGroup == units.Other {
		return true
	}
	rowGroup, ok := units.FormGroupOf[normalizeDBForm(row.FormaFarmaceutica)]
	if !ok || rowGroup == units.Other {
		return true
	}
	return rowGroup == p.FormGroup
}

func normalizeDBForm(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// concentrationHardBarrier re-parses the catalog row's raw concentration
// text and compares it against the query's canonical concentration(s).
// An unparseable catalog concentration fails closed: it can never be
// treated as a match. Only the first dose token of the row's
// concentration text is parsed. For a combo drug, the row passes when that
// one value equals any of the query's concentrations; the doses of the
// other components are not compared, and no positional pairing is done.
// For a mono drug, the row's value is compared against the query's
// canonical concentration.
func concentrationHardBarrier(p parser.ParsedDrug, row CatalogRow) (bool, RejectReason) {
	rowConc, ok := parseDBConcentration(row.ConcentracionRaw)
	if !ok {
		return false, RejectConcentrationParseFailed
	}
	if p.IsCombo() {
		if len(p.Concentrations) == 0 {
			return false, RejectConcentrationMismatch
		}
		for _, qc := range p.Concentrations {
			if qc.Matches(rowConc) {
				return true, ""
			}
		}
		return false, RejectConcentrationMismatch
	}
	qc, ok := p.CanonicalConcentration()
	if !ok {
		return false, RejectConcentrationMismatch
	}
	if qc.Matches(rowConc) {
		return true, ""
	}
	return false, RejectConcentrationMismatch
}

// parseDBConcentration re-uses the inline/bracket parser on the catalog's
// free-text concentration column so catalog-side and query-side values go
// through the identical normalization before comparison.
func parseDBConcentration(raw string) (concentration.NormalizedConcentration, bool) {
	trimmed := strings.TrimSpace(strings.ToLower(raw))
	if trimmed == "" {
		return concentration.NormalizedConcentration{}, false
	}
	if c, ok := concentration.ParseBracket(trimmed, func(string) {}); ok {
		return c, true
	}
	return concentration.ParseInline(trimmed, func(string) {})
}
