package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LoanStatus is the loan lifecycle state. The flag itself comes from the
// record store; transitions only ever move forward
// (Pending -> Active -> Completed).
type LoanStatus int

const (
	StatusPending LoanStatus = iota
	StatusActive
	StatusCompleted
)

func (s LoanStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	}
	return "unknown"
}

// ClassifyStatus maps the raw status flag to the three-state lifecycle.
// Known flag encodings: 0/"pending", 1/"active", 2/"completed"/"closed".
// An unknown flag falls back on the computed summary: a paid-off balance
// means Completed, any materialized payment means Active.
func ClassifyStatus(terms LoanTerms, summary PaydownSummary) LoanStatus {
	switch strings.ToLower(strings.TrimSpace(terms.RawStatus)) {
	case "0", "pending":
		return StatusPending
	case "1", "active", "open":
		if summary.Completed {
			return StatusCompleted
		}
		return StatusActive
	case "2", "completed", "closed", "done":
		return StatusCompleted
	}

	if summary.Completed {
		return StatusCompleted
	}
	if summary.PaidToDate.IsPositive() {
		return StatusActive
	}
	return StatusPending
}

// ComputeProgress maps a status and paydown figures to a 0-100 progress
// value. Completed pins to 100 and Pending to 0 regardless of the sums; a
// zero denominator yields 0, never a division by zero.
func ComputeProgress(status LoanStatus, paidToDate, sumOfInstallments decimal.Decimal) float64 {
	switch status {
	case StatusCompleted:
		return 100
	case StatusPending:
		return 0
	}

	if !sumOfInstallments.IsPositive() {
		return 0
	}
	progress, _ := paidToDate.Mul(hundred).Div(sumOfInstallments).Float64()
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
