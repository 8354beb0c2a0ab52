package report

import (
	"testing"

	"prestiti/internal/core"
)

func TestBuildTimelineInterleavesAnnualSummaries(t *testing.T) {
	raw := core.RawLoanRecord{
		Sdt: "2023-11-01", Edt: "2024-12-31", Fp: "5000", Fr: "0",
	}
	terms, err := core.NormalizeLoan(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	events := core.BuildEvents([]core.RawPaymentRecord{
		{Fdt: "2023-12-01", Fpi: "400"},
		{Fdt: "2024-01-01", Fpi: "400"},
		{Fdt: "2024-02-01", Fpi: "400"},
	})
	asOf, _ := core.ParseWireDate("2024-12-31")
	rows, _ := core.Calculate(terms, events, asOf)
	annuals := core.AggregateAnnual(rows)

	timeline := BuildTimeline(rows, annuals)
	// 3 rows + 2 annual entries
	if len(timeline) != 5 {
		t.Fatalf("timeline length = %d, want 5", len(timeline))
	}

	first, ok := timeline[0].([]any)
	if !ok || len(first) != 9 {
		t.Fatalf("first entry is not a 9-tuple: %#v", timeline[0])
	}
	if first[TuplePosDate] != "2023-12-01" {
		t.Fatalf("tuple date = %v", first[TuplePosDate])
	}
	if first[TuplePosInstallment] != "400" {
		t.Fatalf("tuple installment = %v", first[TuplePosInstallment])
	}
	if first[TuplePosWasPaid] != true {
		t.Fatalf("tuple wasPaid = %v", first[TuplePosWasPaid])
	}

	entry2023, ok := timeline[1].(AnnualEntry)
	if !ok {
		t.Fatalf("expected annual entry after 2023's last row, got %#v", timeline[1])
	}
	if entry2023.Type != "annual_summary" || entry2023.Year != 2023 {
		t.Fatalf("annual entry = %+v", entry2023)
	}
	entry2024, ok := timeline[4].(AnnualEntry)
	if !ok || entry2024.Year != 2024 {
		t.Fatalf("expected 2024 annual entry last, got %#v", timeline[4])
	}
}

func TestBuildSummaryProgress(t *testing.T) {
	raw := core.RawLoanRecord{
		Sdt: "2024-01-01", Edt: "2024-12-31", Fp: "1000", Fr: "0", Fls: "1",
	}
	terms, err := core.NormalizeLoan(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	events := core.BuildEvents([]core.RawPaymentRecord{
		{Fdt: "2024-02-01", Fpi: "250"},
		{Fdt: "2024-03-01", Fpi: "250"},
	})
	asOf, _ := core.ParseWireDate("2024-02-15")
	_, paydown := core.Calculate(terms, events, asOf)

	summary := BuildSummary(terms, paydown)
	if summary.Status != "active" {
		t.Fatalf("status = %s", summary.Status)
	}
	if summary.Progress != 50 {
		t.Fatalf("progress = %v, want 50 (250 of 500)", summary.Progress)
	}
	// The projected March row still reduces the simulated balance.
	if summary.RemainingPrincipal != "500" {
		t.Fatalf("remaining = %s", summary.RemainingPrincipal)
	}
}
