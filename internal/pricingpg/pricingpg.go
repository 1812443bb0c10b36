// Package pricingpg implements pricing.PriceProvider and a supplier
// directory loader against Postgres.
package pricingpg

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	_ "github.com/lib/pq"

	"github.com/genhospi/bulk-quote-core/internal/pricing"
)

func decimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// Provider is a pricing.PriceProvider backed by *sql.DB.
type Provider struct {
	db *sql.DB
}

// Open connects to dataSourceName and returns a ready Provider.
func Open(dataSourceName string) (*Provider, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("pricingpg: open: %w", err)
	}
	return &Provider{db: db}, nil
}

// Close releases the underlying connection pool.
func (p *Provider) Close() error {
	return p.db.Close()
}

const pricesForCUMQuery = `
SELECT cum, supplier_id, supplier_code, price, min_unit_price, box_price,
       vat_fraction, extract(epoch from published_at)::bigint,
       extract(epoch from valid_from)::bigint, extract(epoch from valid_to)::bigint
FROM supplier_prices
WHERE cum = $1
ORDER BY published_at DESC
LIMIT 20`

// PricesForCUM implements pricing.PriceProvider. supplier_code,
// min_unit_price, box_price, vat_fraction, valid_from and valid_to may all
// be NULL in the catalog; nullable columns are never filtered out, only
// left unpopulated on the returned PriceRow.
func (p *Provider) PricesForCUM(ctx context.Context, cum string) ([]pricing.PriceRow, error) {
	rows, err := p.db.QueryContext(ctx, pricesForCUMQuery, cum)
	if err != nil {
		return nil, fmt.Errorf("pricingpg: prices for cum: %w", err)
	}
	defer rows.Close()

	var out []pricing.PriceRow
	for rows.Next() {
		var r pricing.PriceRow
		var supplierCode sql.NullString
		var priceStr, minUnitStr, boxStr, vatStr sql.NullString
		var validFrom, validTo sql.NullInt64
		if err := rows.Scan(
			&r.CUM, &r.SupplierID, &supplierCode, &priceStr, &minUnitStr, &boxStr,
			&vatStr, &r.PublishedAt, &validFrom, &validTo,
		); err != nil {
			return nil, fmt.Errorf("pricingpg: scan price row: %w", err)
		}

		r.SupplierCode = supplierCode.String
		if r.Price, err = decimalFromNullString(priceStr); err != nil {
			return nil, fmt.Errorf("pricingpg: parse price: %w", err)
		}
		if r.MinUnitPrice, err = decimalFromNullString(minUnitStr); err != nil {
			return nil, fmt.Errorf("pricingpg: parse min_unit_price: %w", err)
		}
		if r.BoxPrice, err = decimalFromNullString(boxStr); err != nil {
			return nil, fmt.Errorf("pricingpg: parse box_price: %w", err)
		}
		if r.VatFraction, err = decimalFromNullString(vatStr); err != nil {
			return nil, fmt.Errorf("pricingpg: parse vat_fraction: %w", err)
		}
		if validFrom.Valid {
			r.ValidFrom = &validFrom.Int64
		}
		if validTo.Valid {
			r.ValidTo = &validTo.Int64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// decimalFromNullString returns the zero Decimal for a NULL column: a
// missing min_unit_price/box_price/vat_fraction is absence of data, not a
// parse failure.
func decimalFromNullString(s sql.NullString) (decimal.Decimal, error) {
	if !s.Valid {
		return decimal.Decimal{}, nil
	}
	return decimalFromString(s.String)
}

// LoadSupplierDirectory pre-loads every supplier row once, for use across
// an entire bulk quotation job.
func LoadSupplierDirectory(ctx context.Context, db *sql.DB) (*pricing.SupplierDirectory, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name FROM suppliers`)
	if err != nil {
		return nil, fmt.Errorf("pricingpg: load suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []pricing.Supplier
	for rows.Next() {
		var s pricing.Supplier
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("pricingpg: scan supplier row: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pricing.NewSupplierDirectory(suppliers), nil
}
