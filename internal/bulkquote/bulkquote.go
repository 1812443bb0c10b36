// Package bulkquote orchestrates the parse -> match -> price-fetch
// pipeline over a hospital's free-text drug list and assembles both the
// per-row result records and the job-level summary statistics.
package bulkquote

import (
	"context"
	"log"

	"github.com/genhospi/bulk-quote-core/internal/matcher"
	"github.com/genhospi/bulk-quote-core/internal/parser"
	"github.com/genhospi/bulk-quote-core/internal/pricing"
)

// JobStatus is the lifecycle state of a BulkQuoteJob.
type JobStatus string

const (
	StatusPending    JobStatus = "PENDING"
	StatusProcessing JobStatus = "PROCESSING"
	StatusCompleted  JobStatus = "COMPLETED"
	StatusFailed     JobStatus = "FAILED"
	StatusCancelled  JobStatus = "CANCELLED"
)

// RejectProcessingError marks a row that failed for an operational
// reason (I/O, catalog/price provider failure) rather than reaching a
// matching outcome. It lives here, not in the matcher package, because a
// processing error can occur at the price-fetch step too.
const RejectProcessingError matcher.RejectReason = "PROCESSING_ERROR"

// StageError marks a row that failed for an operational reason instead
// of reaching a matching outcome.
const StageError matcher.MatchStage = "ERROR"

// ResultRow is one input row's full outcome.
type ResultRow struct {
	InputText              string
	ParseWarnings          []parser.WarningCode
	MatchStage             matcher.MatchStage
	MatchConfidence        float64
	CUM                    string
	CanonicalINN           string
	CanonicalForm          string
	CanonicalConcentration string
	RejectReason           matcher.RejectReason
	InnScore               *float64
	Prices                 []pricing.PriceRow
	BestPrice              *pricing.PriceRow
	ProcessingError        string
}

// Summary aggregates per-job statistics over a result set.
type Summary struct {
	Total        int
	WithMatch    int
	WithoutMatch int
	WithPrice    int
	WithoutPrice int
	RateMatch    float64
	RatePrice    float64
}

// BulkQuoteJob is the externally visible handle for one bulk-quote run.
// The identifier is supplied by the caller (see §6's "opaque UUID-like"
// job identifier) — the core never mints its own job IDs.
type BulkQuoteJob struct {
	ID          string
	HospitalID  string
	Status      JobStatus
	CreatedAt   int64
	CompletedAt int64
	Results     []ResultRow
	Summary     Summary
	FailureKind string
	FailureMsg  string
}

// Orchestrator wires a Matcher, a price provider and an optional supplier
// directory into the per-row pipeline.
type Orchestrator struct {
	Matcher      *matcher.Matcher
	PriceFetcher pricing.PriceProvider
	Suppliers    *pricing.SupplierDirectory
	Logger       *log.Logger
}

// New constructs an Orchestrator. logger may be nil, in which case
// log.Default() is used.
func New(m *matcher.Matcher, priceFetcher pricing.PriceProvider, suppliers *pricing.SupplierDirectory, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{Matcher: m, PriceFetcher: priceFetcher, Suppliers: suppliers, Logger: logger}
}

// Run executes the bulk-quote pipeline for names, preserving input order
// in the result list. Rows are processed sequentially so Stage 1 always
// precedes Stage 2 within a row and the output order matches the input
// order, per the ordering guarantee; an implementation may parallelize
// with a bounded worker pool as long as that guarantee is preserved,
// which this straightforward sequential walk trivially satisfies.
//
// now is the job's creation/completion timestamp in unix seconds; the
// caller supplies it so this package never calls time.Now() itself.
func (o *Orchestrator) Run(ctx context.Context, jobID, hospitalID string, names []string, now int64) BulkQuoteJob {
	job := BulkQuoteJob{
		ID:         jobID,
		HospitalID: hospitalID,
		Status:     StatusProcessing,
		CreatedAt:  now,
	}

	o.Logger.Printf("bulkquote: job=%s starting hospital=%s rows=%d", jobID, hospitalID, len(names))

	results := make([]ResultRow, 0, len(names))
	cancelled := false
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			o.Logger.Printf("bulkquote: job=%s cancelled after %d/%d rows", jobID, i, len(names))
			cancelled = true
			break
		}
		results = append(results, o.processRow(ctx, name, hospitalID))
		if (i+1)%50 == 0 || i+1 == len(names) {
			o.Logger.Printf("bulkquote: job=%s progress %d/%d (%.1f%%)", jobID, i+1, len(names), float64(i+1)/float64(len(names))*100)
		}
	}

	job.Results = results
	job.Summary = summarize(results)
	job.CompletedAt = now
	if cancelled {
		job.Status = StatusCancelled
	} else {
		job.Status = StatusCompleted
	}

	o.Logger.Printf("bulkquote: job=%s %s total=%d with_match=%d with_price=%d rate_match=%.4f rate_price=%.4f",
		jobID, job.Status, job.Summary.Total, job.Summary.WithMatch, job.Summary.WithPrice,
		job.Summary.RateMatch, job.Summary.RatePrice)

	return job
}

// processRow runs parse -> match -> price-fetch for one name, containing
// any operational error to this row alone. A panic is never expected
// here: parser and matcher are pure/error-returning, not panicking.
func (o *Orchestrator) processRow(ctx context.Context, name, hospitalID string) ResultRow {
	parsed := parser.Parse(name)

	match, err := o.Matcher.Match(ctx, parsed, hospitalID)
	if err != nil {
		o.Logger.Printf("bulkquote: row %q: %v", name, err)
		return ResultRow{
			InputText:       name,
			ParseWarnings:   parsed.Warnings,
			MatchStage:      StageError,
			RejectReason:    RejectProcessingError,
			ProcessingError: err.Error(),
		}
	}

	row := ResultRow{
		InputText:       name,
		ParseWarnings:   parsed.Warnings,
		MatchStage:      match.Stage,
		MatchConfidence: match.Confidence,
		CUM:             match.CUM,
		CanonicalForm:   parsed.CanonicalForm,
		RejectReason:    match.RejectReason,
	}
	row.CanonicalINN = canonicalINN(parsed)
	if c, ok := parsed.CanonicalConcentration(); ok {
		row.CanonicalConcentration = c.Raw
	}
	if match.Stage == matcher.StageExact || match.Stage == matcher.StageFuzzy {
		score := match.Confidence
		row.InnScore = &score
	}

	if match.CUM == "" {
		return row
	}

	prices, err := pricing.SelectPrices(ctx, o.PriceFetcher, o.Suppliers, match.CUM)
	if err != nil {
		o.Logger.Printf("bulkquote: row %q: price fetch for %s: %v", name, match.CUM, err)
		row.MatchStage = StageError
		row.RejectReason = RejectProcessingError
		row.ProcessingError = err.Error()
		return row
	}
	row.Prices = prices
	if len(prices) > 0 {
		best := prices[0]
		row.BestPrice = &best
	}
	return row
}

// canonicalINN joins every component's canonical INN with " + ", mirroring
// the "+"-separated combo syntax the parser itself accepts on input.
func canonicalINN(p parser.ParsedDrug) string {
	if len(p.Components) == 0 {
		return ""
	}
	out := p.Components[0].CanonicalINN
	for _, c := range p.Components[1:] {
		out += " + " + c.CanonicalINN
	}
	return out
}

// summarize computes job-level aggregate statistics. A row counts as
// matched when its stage is neither NO_MATCH nor ERROR; as priced when it
// produced at least one price row.
func summarize(results []ResultRow) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.MatchStage != matcher.StageNoMatch && r.MatchStage != StageError {
			s.WithMatch++
		}
		if len(r.Prices) > 0 {
			s.WithPrice++
		}
	}
	s.WithoutMatch = s.Total - s.WithMatch
	s.WithoutPrice = s.Total - s.WithPrice
	if s.Total > 0 {
		s.RateMatch = round4(float64(s.WithMatch) / float64(s.Total))
		s.RatePrice = round4(float64(s.WithPrice) / float64(s.Total))
	}
	return s
}

func round4(v float64) float64 {
	return float64(int64(v*10000+0.5)) / 10000
}
