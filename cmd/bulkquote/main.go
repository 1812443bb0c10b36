// Command bulkquote is the CLI entry point for running a bulk drug-name
// quotation against the catalog/pricing/synonym-dictionary Postgres
// database. The HTTP/API surface is explicitly out of scope; this
// command is the only adapter the core ships with.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/genhospi/bulk-quote-core/internal/bulkquote"
	"github.com/genhospi/bulk-quote-core/internal/catalogpg"
	"github.com/genhospi/bulk-quote-core/internal/config"
	"github.com/genhospi/bulk-quote-core/internal/matcher"
	"github.com/genhospi/bulk-quote-core/internal/pricingpg"
	"github.com/genhospi/bulk-quote-core/internal/synonymdict"
	"github.com/genhospi/bulk-quote-core/internal/synonympg"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "quote":
		runQuote()
	case "stats":
		runStats()
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  bulkquote quote <file-of-names> <hospital-id>")
	fmt.Fprintln(os.Stderr, "  bulkquote stats")
}

func runQuote() {
	if len(os.Args) < 4 {
		usage()
		os.Exit(1)
	}
	namesFile, hospitalID := os.Args[2], os.Args[3]

	names, err := readNames(namesFile)
	if err != nil {
		log.Fatalf("bulkquote: reading %s: %v", namesFile, err)
	}

	db := config.FromEnv()
	ctx := context.Background()

	catalog, err := catalogpg.Open(db.DataSourceName)
	if err != nil {
		log.Fatalf("bulkquote: connecting to catalog: %v", err)
	}
	defer catalog.Close()

	prices, err := pricingpg.Open(db.DataSourceName)
	if err != nil {
		log.Fatalf("bulkquote: connecting to pricing: %v", err)
	}
	defer prices.Close()

	dictStore, err := synonympg.Open(db.DataSourceName)
	if err != nil {
		log.Fatalf("bulkquote: connecting to synonym dictionary: %v", err)
	}
	defer dictStore.Close()

	suppliersDB, err := sql.Open("postgres", db.DataSourceName)
	if err != nil {
		log.Fatalf("bulkquote: connecting to suppliers: %v", err)
	}
	defer suppliersDB.Close()
	suppliers, err := pricingpg.LoadSupplierDirectory(ctx, suppliersDB)
	if err != nil {
		log.Fatalf("bulkquote: loading supplier directory: %v", err)
	}

	dict := synonymdict.New(dictStore)
	m := matcher.New(catalog, dict)
	orch := bulkquote.New(m, prices, suppliers, log.Default())

	jobID := fmt.Sprintf("cli-%d", time.Now().Unix())
	job := orch.Run(ctx, jobID, hospitalID, names, time.Now().Unix())

	log.Printf("bulkquote: job %s finished with status %s", job.ID, job.Status)
	log.Printf("  total=%d  with_match=%d  without_match=%d  with_price=%d  without_price=%d",
		job.Summary.Total, job.Summary.WithMatch, job.Summary.WithoutMatch,
		job.Summary.WithPrice, job.Summary.WithoutPrice)
	log.Printf("  rate_match=%.4f  rate_price=%.4f", job.Summary.RateMatch, job.Summary.RatePrice)

	for _, r := range job.Results {
		if r.MatchStage == matcher.StageNoMatch || r.MatchStage == bulkquote.StageError {
			log.Printf("  [%s] %q -> %s (%s)", r.MatchStage, r.InputText, r.RejectReason, r.ProcessingError)
			continue
		}
		log.Printf("  [%s] %q -> %s (confidence=%.4f)", r.MatchStage, r.InputText, r.CUM, r.MatchConfidence)
	}
}

func runStats() {
	db := config.FromEnv()
	ctx := context.Background()

	conn, err := sql.Open("postgres", db.DataSourceName)
	if err != nil {
		log.Fatalf("bulkquote: connecting: %v", err)
	}
	defer conn.Close()

	var totalRows, activeRows int
	err = conn.QueryRowContext(ctx, `SELECT count(*), count(*) FILTER (WHERE activo) FROM drug_catalog`).
		Scan(&totalRows, &activeRows)
	if err != nil {
		log.Fatalf("bulkquote: stats query: %v", err)
	}

	log.Println("Catalog Statistics")
	log.Printf("  total rows:  %d", totalRows)
	log.Printf("  active rows: %d", activeRows)
}

// readNames reads one drug name per line from path, skipping blank lines.
// The core itself never touches a file; this is the CLI adapter's own
// ingestion step, standing in for the CSV/Excel upload adapter that is
// out of scope for the core.
func readNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}
