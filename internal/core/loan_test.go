package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNormalizeLoan(t *testing.T) {
	raw := RawLoanRecord{
		ID:    "loan-1",
		Title: "Car loan",
		Sdt:   "2024-01-01",
		Edt:   "2025-01-01",
		Fp:    "12000,50",
		Fr:    12.5,
		Fif:   "100",
		Pdt:   "2024-02-01",
		Frpd:  "15",
		Fls:   1,
	}
	terms, err := NormalizeLoan(raw)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if !terms.Principal.Equal(decimal.RequireFromString("12000.50")) {
		t.Fatalf("principal = %s", terms.Principal)
	}
	if !terms.AnnualRatePercent.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("rate = %s", terms.AnnualRatePercent)
	}
	if terms.StartDate != time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("start = %v", terms.StartDate)
	}
	if terms.RecurringPaymentDay != 15 {
		t.Fatalf("recurring day = %d", terms.RecurringPaymentDay)
	}
	if terms.RawStatus != "1" {
		t.Fatalf("status = %q", terms.RawStatus)
	}
}

func TestNormalizeLoanErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  RawLoanRecord
		kind ValidationErrorKind
	}{
		{"missing start", RawLoanRecord{Edt: "2025-01-01", Fp: 100}, MissingField},
		{"missing end", RawLoanRecord{Sdt: "2024-01-01", Fp: 100}, MissingField},
		{"missing principal", RawLoanRecord{Sdt: "2024-01-01", Edt: "2025-01-01"}, MissingField},
		{"end before start", RawLoanRecord{Sdt: "2024-01-01", Edt: "2023-01-01", Fp: 100}, InvalidRange},
		{"zero principal", RawLoanRecord{Sdt: "2024-01-01", Edt: "2025-01-01", Fp: 0}, NonPositive},
		{"negative principal", RawLoanRecord{Sdt: "2024-01-01", Edt: "2025-01-01", Fp: "-5"}, NonPositive},
		{"negative rate", RawLoanRecord{Sdt: "2024-01-01", Edt: "2025-01-01", Fp: 100, Fr: -1}, NonPositive},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeLoan(tc.raw)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Kind != tc.kind {
				t.Fatalf("kind = %s, want %s", verr.Kind, tc.kind)
			}
		})
	}
}

func TestNormalizeLoanDefaultsRecurringDayFromFirstDate(t *testing.T) {
	terms, err := NormalizeLoan(RawLoanRecord{
		Sdt: "2024-01-01", Edt: "2025-01-01", Fp: 100, Pdt: "2024-01-20",
	})
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if terms.RecurringPaymentDay != 20 {
		t.Fatalf("recurring day = %d, want 20", terms.RecurringPaymentDay)
	}
}

func TestParseWireDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	cases := []any{
		"2024-03-15",
		"2024-03-15T10:30:00Z",
		"15/03/2024",
		float64(want.Unix()),
		want.UnixMilli(),
	}
	for i, v := range cases {
		got, ok := ParseWireDate(v)
		if !ok || !got.Equal(want) {
			t.Fatalf("case %d: got %v ok=%v", i, got, ok)
		}
	}
	if _, ok := ParseWireDate("not-a-date"); ok {
		t.Fatalf("expected parse failure")
	}
	if _, ok := ParseWireDate(nil); ok {
		t.Fatalf("expected parse failure for nil")
	}
}

func TestParseWireDecimal(t *testing.T) {
	cases := []struct {
		in   any
		want string
		ok   bool
	}{
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{"1,234.56", "1234.56", true},
		{"1.234,56", "1234.56", true},
		{"1,234,567", "1234567", true},
		{"1,234,567.89", "1234567.89", true},
		{float64(7), "7", true},
		{int64(3), "3", true},
		{"", "0", false},
		{"abc", "0", false},
		{nil, "0", false},
	}
	for i, tc := range cases {
		got, ok := ParseWireDecimal(tc.in)
		if ok != tc.ok {
			t.Fatalf("case %d: ok = %v, want %v", i, ok, tc.ok)
		}
		if ok && !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("case %d: got %s, want %s", i, got, tc.want)
		}
	}
}
