package bulkquote

import (
	"github.com/genhospi/bulk-quote-core/internal/matcher"
	"github.com/genhospi/bulk-quote-core/internal/pricing"
)

// ExportRow is the flattened, one-row-per-drug shape an adapter can hand
// straight to a CSV or spreadsheet writer: the best price expanded into
// its own columns plus NumSuppliers/WithoutPrice/WithoutMatch flags. No
// file I/O happens in this package.
type ExportRow struct {
	InputText       string
	MatchStatus     string
	MatchConfidence float64
	CUM             string
	CanonicalINN    string
	CanonicalForm   string
	Concentration   string
	BestSupplier    string
	BestPrice       pricing.PriceRow
	HasBestPrice    bool
	NumSuppliers    int
	WithoutPrice    bool
	WithoutMatch    bool
}

// FlattenForExport converts a job's result rows into the flat export
// shape.
func FlattenForExport(job BulkQuoteJob) []ExportRow {
	out := make([]ExportRow, 0, len(job.Results))
	for _, r := range job.Results {
		row := ExportRow{
			InputText:       r.InputText,
			MatchStatus:     string(r.MatchStage),
			MatchConfidence: r.MatchConfidence,
			CUM:             r.CUM,
			CanonicalINN:    r.CanonicalINN,
			CanonicalForm:   r.CanonicalForm,
			Concentration:   r.CanonicalConcentration,
			NumSuppliers:    len(r.Prices),
			WithoutPrice:    r.BestPrice == nil,
			WithoutMatch:    r.MatchStage == matcher.StageNoMatch || r.MatchStage == StageError,
		}
		if r.BestPrice != nil {
			row.BestSupplier = r.BestPrice.SupplierName
			row.BestPrice = *r.BestPrice
			row.HasBestPrice = true
		}
		out = append(out, row)
	}
	return out
}
