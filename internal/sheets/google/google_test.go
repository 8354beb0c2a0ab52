package google

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"prestiti/internal/core"
	ports "prestiti/internal/sheets"
)

func TestFindRowByKey(t *testing.T) {
	values := [][]any{
		{"loan_id"},
		{"loan-1"},
		{"loan-2"},
		{"loan-2", "2024"},
		{},
	}

	tests := []struct {
		name string
		key  string
		want int
	}{
		{"plain key", "loan-1", 2},
		{"first match wins", "loan-2", 3},
		{"composite key", "loan-2|2024", 4},
		{"missing key", "loan-9", 0},
		{"header is a normal cell", "loan_id", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findRowByKey(values, tt.key); got != tt.want {
				t.Errorf("findRowByKey(%q) = %d, want %d", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoanRowValues(t *testing.T) {
	exp := ports.LoanExport{
		LoanID:   "loan-1",
		Title:    "Mutuo casa",
		Status:   "active",
		Progress: 42.5,
		Summary: core.PaydownSummary{
			SumOfInstallments:  decimal.RequireFromString("12000"),
			PaidToDate:         decimal.RequireFromString("5100"),
			TotalInterest:      decimal.RequireFromString("312.44"),
			TotalFees:          decimal.RequireFromString("50"),
			RemainingPrincipal: decimal.RequireFromString("7212.44"),
		},
	}
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	row := loanRowValues(exp, now)
	if len(row) != 11 {
		t.Fatalf("loanRowValues() returned %d columns, want 11", len(row))
	}

	want := []any{
		"loan-1", "Mutuo casa", "active", "42.5",
		"12000", "5100", "312.44", "50", "7212.44",
		false, "2026-03-01T10:00:00Z",
	}
	for i := range want {
		if fmt.Sprint(row[i]) != fmt.Sprint(want[i]) {
			t.Errorf("column %d = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestAnnualRowValues(t *testing.T) {
	a := core.AnnualSummaryRow{
		Year:           2025,
		TotalPaid:      decimal.RequireFromString("6000"),
		TotalPrincipal: decimal.RequireFromString("5500.25"),
		TotalInterest:  decimal.RequireFromString("449.75"),
		TotalFees:      decimal.RequireFromString("50"),
	}

	row := annualRowValues("loan-1", a)
	if len(row) != 6 {
		t.Fatalf("annualRowValues() returned %d columns, want 6", len(row))
	}
	if row[0] != "loan-1" || row[1] != 2025 {
		t.Errorf("key columns = %v %v, want loan-1 2025", row[0], row[1])
	}
	if row[2] != "6000" || row[4] != "449.75" {
		t.Errorf("totals = %v %v, want 6000 449.75", row[2], row[4])
	}
}
