// Package synonympg implements synonymdict.Store against Postgres.
//
// TODO: the drug_synonym_dict table is created ad hoc by initializeSchema
// in the integration test; move it to a real migration once a migration
// tool is wired into this module.
package synonympg

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/genhospi/bulk-quote-core/internal/synonymdict"
)

// Store is a synonymdict.Store backed by *sql.DB.
type Store struct {
	db *sql.DB
}

// Open connects to dataSourceName and returns a ready Store.
func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("synonympg: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Find implements synonymdict.Store.
func (s *Store) Find(ctx context.Context, hospitalID, normalizedKey string) (string, float64, bool, error) {
	var cum string
	var confidence float64
	err := s.db.QueryRowContext(ctx,
		`SELECT cum, confidence FROM drug_synonym_dict WHERE hospital_id = $1 AND normalized_key = $2`,
		hospitalID, normalizedKey).Scan(&cum, &confidence)
	if err == sql.ErrNoRows {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, fmt.Errorf("synonympg: find: %w", err)
	}
	return cum, confidence, true, nil
}

// Upsert implements synonymdict.Store.
func (s *Store) Upsert(ctx context.Context, e synonymdict.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drug_synonym_dict (id, hospital_id, normalized_key, cum, resolved_by, confidence)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (hospital_id, normalized_key) DO UPDATE SET
			cum = EXCLUDED.cum,
			id = EXCLUDED.id,
			resolved_by = EXCLUDED.resolved_by,
			confidence = EXCLUDED.confidence`,
		e.ID, e.HospitalID, e.NormalizedKey, e.CUM, e.ResolvedBy, e.Confidence)
	if err != nil {
		return fmt.Errorf("synonympg: upsert: %w", err)
	}
	return nil
}
