package pricing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

type fakeProvider struct {
	rows []PriceRow
}

func (f *fakeProvider) PricesForCUM(ctx context.Context, cum string) ([]PriceRow, error) {
	return f.rows, nil
}

func TestSelectPricesOrdersNewestFirst(t *testing.T) {
	provider := &fakeProvider{rows: []PriceRow{
		{CUM: "CUM-1", SupplierID: "s1", Price: decimal.NewFromInt(100), PublishedAt: 100},
		{CUM: "CUM-1", SupplierID: "s2", Price: decimal.NewFromInt(90), PublishedAt: 300},
		{CUM: "CUM-1", SupplierID: "s3", Price: decimal.NewFromInt(95), PublishedAt: 200},
	}}
	dir := NewSupplierDirectory([]Supplier{
		{ID: "s1", Name: "Supplier One"},
		{ID: "s2", Name: "Supplier Two"},
		{ID: "s3", Name: "Supplier Three"},
	})

	rows, err := SelectPrices(context.Background(), provider, dir, "CUM-1")
	if err != nil {
		t.Fatalf("SelectPrices returned error: %v", err)
	}
	wantOrder := []string{"s2", "s3", "s1"}
	for i, want := range wantOrder {
		if rows[i].SupplierID != want {
			t.Errorf("rows[%d].SupplierID = %q, want %q", i, rows[i].SupplierID, want)
		}
	}
	if rows[0].SupplierName != "Supplier Two" {
		t.Errorf("SupplierName = %q, want Supplier Two", rows[0].SupplierName)
	}
}

func TestSelectPricesCapsAtMax(t *testing.T) {
	var rows []PriceRow
	for i := 0; i < MaxPricesPerCUM+10; i++ {
		rows = append(rows, PriceRow{CUM: "CUM-1", SupplierID: "s", PublishedAt: int64(i)})
	}
	provider := &fakeProvider{rows: rows}
	dir := NewSupplierDirectory(nil)

	got, err := SelectPrices(context.Background(), provider, dir, "CUM-1")
	if err != nil {
		t.Fatalf("SelectPrices returned error: %v", err)
	}
	if len(got) != MaxPricesPerCUM {
		t.Errorf("len(got) = %d, want %d", len(got), MaxPricesPerCUM)
	}
}

func TestSupplierDirectoryUnknownID(t *testing.T) {
	dir := NewSupplierDirectory(nil)
	if got := dir.Name("missing"); got != "" {
		t.Errorf("Name(missing) = %q, want empty string", got)
	}
}
