// Package synonymdict implements the hospital-scoped confirmed-resolution
// dictionary consulted before any catalog query. Once a pharmacist
// confirms that a free-text description resolves to a given CUM code,
// every future occurrence of the identical description at that hospital
// resolves instantly, without re-running the matcher pipeline.
package synonymdict

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/genhospi/bulk-quote-core/internal/parser"
)

// Entry is one confirmed human resolution.
type Entry struct {
	ID            string
	HospitalID    string
	NormalizedKey string
	CUM           string
	ResolvedBy    string
	Confidence    float64
}

// Store is the persistence boundary synonymdict depends on. A production
// instance is synonympg.Store; tests can supply an in-memory fake.
type Store interface {
	Find(ctx context.Context, hospitalID, normalizedKey string) (cum string, confidence float64, ok bool, err error)
	Upsert(ctx context.Context, e Entry) error
}

// Dictionary wraps a Store with entry-ID generation.
type Dictionary struct {
	store Store
}

// New wraps store in a Dictionary.
func New(store Store) *Dictionary {
	return &Dictionary{store: store}
}

// Lookup implements matcher.SynonymDict.
func (d *Dictionary) Lookup(ctx context.Context, hospitalID, normalizedKey string) (string, float64, bool, error) {
	return d.store.Find(ctx, hospitalID, normalizedKey)
}

// Record persists a confirmed resolution: resolvedBy (a pharmacist or
// reviewer identifier, typically acting on a Stage 3 NO_MATCH
// closest-candidate record) has determined that rawInput resolves to cum
// at hospitalID with the given confidence. rawInput is normalized into the
// dictionary's lookup key the same way a matcher pre-stage lookup
// normalizes it, so a later Record call for text that normalizes to the
// same key at the same hospital overwrites the prior entry.
func (d *Dictionary) Record(ctx context.Context, hospitalID, rawInput, cum, resolvedBy string, confidence float64) error {
	normalizedKey := parser.NormalizeForDict(rawInput)
	if normalizedKey == "" {
		return fmt.Errorf("synonymdict: rawInput must not be empty")
	}
	entry := Entry{
		ID:            uuid.NewString(),
		HospitalID:    hospitalID,
		NormalizedKey: normalizedKey,
		CUM:           cum,
		ResolvedBy:    resolvedBy,
		Confidence:    confidence,
	}
	return d.store.Upsert(ctx, entry)
}
