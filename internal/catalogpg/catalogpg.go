// Package catalogpg implements matcher.CatalogProvider against a Postgres
// drug catalog using raw parameterized SQL and the pg_trgm extension's
// similarity() function for fuzzy matching.
package catalogpg

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/genhospi/bulk-quote-core/internal/matcher"
)

// Provider is a matcher.CatalogProvider backed by *sql.DB. The catalog
// table name and column names are fixed to the CUM catalog schema; Open
// does not attempt to discover them.
type Provider struct {
	db *sql.DB
}

// Open connects to dataSourceName (a postgres:// URL or libpq keyword
// string) and returns a ready Provider.
func Open(dataSourceName string) (*Provider, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("catalogpg: open: %w", err)
	}
	return &Provider{db: db}, nil
}

// Close releases the underlying connection pool.
func (p *Provider) Close() error {
	return p.db.Close()
}

const exactMatchQuery = `
SELECT cum, principio_activo, forma_farmaceutica, concentracion, activo
FROM drug_catalog
WHERE activo = true
  AND lower(principio_activo) = lower($1)
  AND lower(forma_farmaceutica) = lower($2)
LIMIT 10`

// ExactMatch implements matcher.CatalogProvider.
func (p *Provider) ExactMatch(ctx context.Context, innQuery, formQuery string) ([]matcher.CatalogRow, error) {
	rows, err := p.db.QueryContext(ctx, exactMatchQuery, innQuery, formQuery)
	if err != nil {
		return nil, fmt.Errorf("catalogpg: exact match: %w", err)
	}
	defer rows.Close()

	var out []matcher.CatalogRow
	for rows.Next() {
		var r matcher.CatalogRow
		if err := rows.Scan(&r.CUM, &r.PrincipioActivo, &r.FormaFarmaceutica, &r.ConcentracionRaw, &r.Activo); err != nil {
			return nil, fmt.Errorf("catalogpg: scan exact row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const fuzzyMatchQuery = `
SELECT cum, principio_activo, forma_farmaceutica, concentracion, activo,
       similarity(lower(principio_activo), lower($1)) AS score
FROM drug_catalog
WHERE activo = true
  AND similarity(lower(principio_activo), lower($1)) > $2
ORDER BY score DESC
LIMIT $3`

// FuzzyMatch implements matcher.CatalogProvider.
func (p *Provider) FuzzyMatch(ctx context.Context, innQuery string, threshold float64, limit int) ([]matcher.CatalogRow, error) {
	rows, err := p.db.QueryContext(ctx, fuzzyMatchQuery, innQuery, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("catalogpg: fuzzy match: %w", err)
	}
	defer rows.Close()

	var out []matcher.CatalogRow
	for rows.Next() {
		var r matcher.CatalogRow
		if err := rows.Scan(&r.CUM, &r.PrincipioActivo, &r.FormaFarmaceutica, &r.ConcentracionRaw, &r.Activo, &r.Similarity); err != nil {
			return nil, fmt.Errorf("catalogpg: scan fuzzy row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const closestCandidateQuery = `
SELECT cum, principio_activo, forma_farmaceutica, concentracion, activo,
       similarity(lower(principio_activo), lower($1)) AS score
FROM drug_catalog
WHERE activo = true
ORDER BY score DESC
LIMIT 1`

// ClosestCandidate implements matcher.CatalogProvider. It is best-effort
// and informational: any query error is reported, but a query that simply
// returns nothing (empty catalog) is reported as ok=false, not an error.
func (p *Provider) ClosestCandidate(ctx context.Context, innQuery string) (matcher.CatalogRow, bool, error) {
	var r matcher.CatalogRow
	err := p.db.QueryRowContext(ctx, closestCandidateQuery, innQuery).Scan(
		&r.CUM, &r.PrincipioActivo, &r.FormaFarmaceutica, &r.ConcentracionRaw, &r.Activo, &r.Similarity)
	if err == sql.ErrNoRows {
		return matcher.CatalogRow{}, false, nil
	}
	if err != nil {
		return matcher.CatalogRow{}, false, fmt.Errorf("catalogpg: closest candidate: %w", err)
	}
	return r, true, nil
}
