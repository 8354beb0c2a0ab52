package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RawLoanRecord is the wire shape of a loan as stored by the remote record
// store. Field names are the wire contract and must not be renamed. All
// value fields are string-or-number tolerant.
type RawLoanRecord struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Sdt   any    `json:"sdt"`  // start date
	Edt   any    `json:"edt"`  // end date
	Fp    any    `json:"fp"`   // principal
	Fr    any    `json:"fr"`   // annual rate percent
	Fif   any    `json:"fif"`  // initial fee
	Pdt   any    `json:"pdt"`  // first recurring payment date
	Frpd  any    `json:"frpd"` // recurring payment day of month
	Fls   any    `json:"fls"`  // status flag
}

// LoanTerms is one loan's immutable contract, produced once per calculation
// by NormalizeLoan and never mutated afterwards.
type LoanTerms struct {
	ID                        string
	Title                     string
	Principal                 decimal.Decimal
	AnnualRatePercent         decimal.Decimal
	StartDate                 time.Time
	EndDate                   time.Time
	InitialFee                decimal.Decimal
	FirstRecurringPaymentDate time.Time // zero when the loan has no recurring plan
	RecurringPaymentDay       int       // 1..31, 0 when the loan has no recurring plan
	RawStatus                 string
}

// ValidationErrorKind discriminates the ways a raw loan record can be
// unusable. A ValidationError is recoverable at the loan granularity: the
// loan renders with no schedule and zero progress, the batch continues.
type ValidationErrorKind int

const (
	MissingField ValidationErrorKind = iota
	InvalidRange
	NonPositive
)

func (k ValidationErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing_field"
	case InvalidRange:
		return "invalid_range"
	case NonPositive:
		return "non_positive"
	}
	return "unknown"
}

// ValidationError reports why a raw loan record could not be normalized.
type ValidationError struct {
	Kind  ValidationErrorKind
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("loan validation: %s %s", e.Kind, e.Field)
}

// NormalizeLoan parses a raw loan record into canonical LoanTerms.
//
// It fails with MissingField when start date, end date or principal is
// absent, InvalidRange when the end date precedes the start date, and
// NonPositive when the principal is not positive or the rate is negative.
func NormalizeLoan(raw RawLoanRecord) (LoanTerms, error) {
	start, ok := ParseWireDate(raw.Sdt)
	if !ok {
		return LoanTerms{}, &ValidationError{Kind: MissingField, Field: "sdt"}
	}
	end, ok := ParseWireDate(raw.Edt)
	if !ok {
		return LoanTerms{}, &ValidationError{Kind: MissingField, Field: "edt"}
	}
	principal, ok := ParseWireDecimal(raw.Fp)
	if !ok {
		return LoanTerms{}, &ValidationError{Kind: MissingField, Field: "fp"}
	}
	if end.Before(start) {
		return LoanTerms{}, &ValidationError{Kind: InvalidRange, Field: "edt"}
	}
	if principal.LessThanOrEqual(decimal.Zero) {
		return LoanTerms{}, &ValidationError{Kind: NonPositive, Field: "fp"}
	}

	rate, ok := ParseWireDecimal(raw.Fr)
	if !ok {
		rate = decimal.Zero
	}
	if rate.IsNegative() {
		return LoanTerms{}, &ValidationError{Kind: NonPositive, Field: "fr"}
	}

	fee, ok := ParseWireDecimal(raw.Fif)
	if !ok || fee.IsNegative() {
		fee = decimal.Zero
	}

	terms := LoanTerms{
		ID:                raw.ID,
		Title:             raw.Title,
		Principal:         principal,
		AnnualRatePercent: rate,
		StartDate:         start,
		EndDate:           end,
		InitialFee:        fee,
		RawStatus:         WireStatus(raw.Fls),
	}

	if first, ok := ParseWireDate(raw.Pdt); ok {
		terms.FirstRecurringPaymentDate = first
		if day, ok := ParseWireInt(raw.Frpd); ok && day >= 1 && day <= 31 {
			terms.RecurringPaymentDay = day
		} else {
			terms.RecurringPaymentDay = first.Day()
		}
	}

	return terms, nil
}

// WireStatus renders the raw status flag as a canonical string, collapsing
// numeric encodings to their integer form.
func WireStatus(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%d", int64(x))
	case int:
		return fmt.Sprintf("%d", x)
	case int64:
		return fmt.Sprintf("%d", x)
	default:
		return fmt.Sprintf("%v", x)
	}
}
