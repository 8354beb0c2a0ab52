package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestClassifyStatusFromFlag(t *testing.T) {
	cases := []struct {
		flag string
		want LoanStatus
	}{
		{"0", StatusPending},
		{"pending", StatusPending},
		{"1", StatusActive},
		{"active", StatusActive},
		{"2", StatusCompleted},
		{"completed", StatusCompleted},
		{"closed", StatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.flag, func(t *testing.T) {
			terms := LoanTerms{RawStatus: tc.flag}
			if got := ClassifyStatus(terms, PaydownSummary{}); got != tc.want {
				t.Fatalf("flag %q: got %s, want %s", tc.flag, got, tc.want)
			}
		})
	}
}

func TestClassifyStatusPaidOffBeatsActiveFlag(t *testing.T) {
	terms := LoanTerms{RawStatus: "1"}
	summary := PaydownSummary{Completed: true}
	if got := ClassifyStatus(terms, summary); got != StatusCompleted {
		t.Fatalf("got %s, want completed once balance hits zero", got)
	}
}

func TestClassifyStatusUnknownFlagFallsBackOnPayments(t *testing.T) {
	if got := ClassifyStatus(LoanTerms{RawStatus: "??"}, PaydownSummary{}); got != StatusPending {
		t.Fatalf("no payments: got %s, want pending", got)
	}
	summary := PaydownSummary{PaidToDate: decimal.NewFromInt(100)}
	if got := ClassifyStatus(LoanTerms{RawStatus: "??"}, summary); got != StatusActive {
		t.Fatalf("with payments: got %s, want active", got)
	}
}

func TestComputeProgress(t *testing.T) {
	cases := []struct {
		name   string
		status LoanStatus
		paid   string
		sum    string
		want   float64
	}{
		{"completed pins 100", StatusCompleted, "0", "0", 100},
		{"pending pins 0", StatusPending, "999", "100", 0},
		{"half paid", StatusActive, "500", "1000", 50},
		{"zero denominator", StatusActive, "500", "0", 0},
		{"overpaid clamps", StatusActive, "1500", "1000", 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeProgress(tc.status, decimal.RequireFromString(tc.paid), decimal.RequireFromString(tc.sum))
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
