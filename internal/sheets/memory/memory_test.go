package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"prestiti/internal/core"
	ports "prestiti/internal/sheets"
)

func TestStore_WriteLoanSummary(t *testing.T) {
	s := New()
	ctx := context.Background()

	exp := ports.LoanExport{
		LoanID:   "loan-1",
		Title:    "Prestito auto",
		Status:   "active",
		Progress: 25,
		Summary: core.PaydownSummary{
			PaidToDate:        decimal.RequireFromString("3000"),
			SumOfInstallments: decimal.RequireFromString("12000"),
		},
	}

	ref, err := s.WriteLoanSummary(ctx, exp)
	if err != nil {
		t.Fatalf("WriteLoanSummary() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("row ref = %q, want mem:1", ref)
	}

	got, ok := s.Get("loan-1")
	if !ok {
		t.Fatal("Get() should find the stored export")
	}
	if got.Title != "Prestito auto" || got.Progress != 25 {
		t.Errorf("stored export = %+v", got)
	}
}

func TestStore_WriteLoanSummary_Upsert(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := ports.LoanExport{LoanID: "loan-1", Status: "active", Progress: 50}
	second := ports.LoanExport{LoanID: "loan-1", Status: "completed", Progress: 100}

	if _, err := s.WriteLoanSummary(ctx, first); err != nil {
		t.Fatalf("first write: %v", err)
	}
	ref, err := s.WriteLoanSummary(ctx, second)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("rewrite should keep the same row ref, got %q", ref)
	}

	got, _ := s.Get("loan-1")
	if got.Status != "completed" || got.Progress != 100 {
		t.Errorf("rewrite should replace the export, got %+v", got)
	}
	if s.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", s.Writes())
	}
}

func TestStore_WriteLoanSummary_RequiresID(t *testing.T) {
	s := New()
	if _, err := s.WriteLoanSummary(context.Background(), ports.LoanExport{}); err == nil {
		t.Error("WriteLoanSummary() should reject an empty loan id")
	}
}
