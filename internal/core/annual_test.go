package core

import (
	"testing"
)

func TestAggregateAnnual(t *testing.T) {
	terms := testTerms(t, RawLoanRecord{
		Sdt: "2023-11-01", Edt: "2024-12-31", Fp: "5000", Fr: "10",
	})
	events := BuildEvents([]RawPaymentRecord{
		{Fdt: "2023-12-01", Fpi: "400"},
		{Fdt: "2024-01-01", Fpi: "400", Fpsf: "20"},
		{Fdt: "2024-02-01", Fpi: "400"},
		{Fdt: "2024-03-01", Fpi: "1500", Fisp: 1},
	})
	rows, _ := Calculate(terms, events, date(2024, 12, 31))
	summaries := AggregateAnnual(rows)

	if len(summaries) != 2 {
		t.Fatalf("expected 2 years, got %d", len(summaries))
	}
	if summaries[0].Year != 2023 || summaries[1].Year != 2024 {
		t.Fatalf("years not ascending: %d, %d", summaries[0].Year, summaries[1].Year)
	}
	if !summaries[0].TotalPaid.Equal(dec("400")) {
		t.Fatalf("2023 paid = %s, want 400", summaries[0].TotalPaid)
	}
	// The simulated row stays out of the roll-up.
	if !summaries[1].TotalPaid.Equal(dec("800")) {
		t.Fatalf("2024 paid = %s, want 800", summaries[1].TotalPaid)
	}
	if !summaries[1].TotalFees.Equal(dec("20")) {
		t.Fatalf("2024 fees = %s, want 20", summaries[1].TotalFees)
	}

	// With no clamping in play, each year's principal + interest + fees must
	// add back up to the year's payments.
	for _, s := range summaries {
		if !s.TotalPrincipal.Add(s.TotalInterest).Add(s.TotalFees).Equal(s.TotalPaid) {
			t.Fatalf("year %d: principal %s + interest %s + fees %s != paid %s",
				s.Year, s.TotalPrincipal, s.TotalInterest, s.TotalFees, s.TotalPaid)
		}
	}
}

func TestAggregateAnnualEmpty(t *testing.T) {
	if got := AggregateAnnual(nil); len(got) != 0 {
		t.Fatalf("expected no summaries, got %d", len(got))
	}
}
