// Package pricing selects candidate supplier prices for a matched CUM
// catalog code. Selection is intentionally simple: every price row the
// provider returns for the code, newest first, capped at a fixed window.
// Several rows from the same supplier are all kept.
// It does not filter by ValidFrom/ValidTo — expired prices are still
// surfaced, carrying their validity dates so a caller can flag them — and
// it does no price negotiation logic.
package pricing

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// MaxPricesPerCUM caps how many supplier prices are returned for a single
// CUM code, newest first.
const MaxPricesPerCUM = 20

// PriceRow is one supplier's published price for a CUM code. ValidFrom and
// ValidTo are carried through uninterpreted: SelectPrices never filters on
// them, it only sorts and caps, so a caller (the bulk quotation job) can
// decide whether an expired price should still be quoted.
type PriceRow struct {
	CUM          string
	SupplierID   string
	SupplierCode string
	SupplierName string
	Price        decimal.Decimal // per-unit list price
	MinUnitPrice decimal.Decimal // minimum price per single unit
	BoxPrice     decimal.Decimal // price for the full box/presentation
	VatFraction  decimal.Decimal // e.g. 0.19 for 19% VAT
	PublishedAt  int64           // unix seconds; caller-supplied, never computed here
	ValidFrom    *int64          // unix seconds; nil when the supplier did not set one
	ValidTo      *int64          // unix seconds; nil when the supplier did not set one
}

// Supplier is the static directory information joined onto a PriceRow.
type Supplier struct {
	ID   string
	Name string
}

// PriceProvider fetches the raw, unordered price rows for a CUM code. A
// production instance is pricingpg.Provider; tests can supply an
// in-memory fake.
type PriceProvider interface {
	PricesForCUM(ctx context.Context, cum string) ([]PriceRow, error)
}

// SupplierDirectory pre-loads every supplier once so price selection never
// performs a per-row lookup (N+1 avoidance for bulk jobs with thousands of
// rows).
type SupplierDirectory struct {
	byID map[string]Supplier
}

// NewSupplierDirectory builds a directory from a flat supplier list.
func NewSupplierDirectory(suppliers []Supplier) *SupplierDirectory {
	d := &SupplierDirectory{byID: make(map[string]Supplier, len(suppliers))}
	for _, s := range suppliers {
		d.byID[s.ID] = s
	}
	return d
}

// Name returns the supplier's name, or the empty string if the supplier ID
// is not in the directory.
func (d *SupplierDirectory) Name(supplierID string) string {
	if d == nil {
		return ""
	}
	return d.byID[supplierID].Name
}

// SelectPrices returns rows for cum ordered by PublishedAt descending,
// capped at MaxPricesPerCUM, with SupplierName filled in from dir.
func SelectPrices(ctx context.Context, provider PriceProvider, dir *SupplierDirectory, cum string) ([]PriceRow, error) {
	rows, err := provider.PricesForCUM(ctx, cum)
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].PublishedAt > rows[j].PublishedAt })
	if len(rows) > MaxPricesPerCUM {
		rows = rows[:MaxPricesPerCUM]
	}
	out := make([]PriceRow, len(rows))
	for i, r := range rows {
		r.SupplierName = dir.Name(r.SupplierID)
		out[i] = r
	}
	return out, nil
}
