// Package report shapes engine output for presentation: the ordered timeline
// mixing per-period tuples with tagged annual summary objects, exactly as the
// front-end consumes it.
package report

import (
	"prestiti/internal/core"
)

// Tuple positions of a schedule row in the presentation timeline.
// The order is a wire contract: date, rate, installment, principal
// reduction, interest, remaining principal, fee, was-paid, days elapsed.
const (
	TuplePosDate = iota
	TuplePosRate
	TuplePosInstallment
	TuplePosPrincipal
	TuplePosInterest
	TuplePosRemaining
	TuplePosFee
	TuplePosWasPaid
	TuplePosDays
	tupleLen
)

// AnnualEntry is the tagged annual roll-up object interleaved in the
// timeline after each year's last row.
type AnnualEntry struct {
	Type           string `json:"type"`
	Year           int    `json:"year"`
	TotalPaid      string `json:"totalPaid"`
	TotalPrincipal string `json:"totalPrincipal"`
	TotalInterest  string `json:"totalInterest"`
	TotalFees      string `json:"totalFees"`
}

// Summary is the JSON shape of a paydown summary plus the derived
// status/progress pair that drives badges and progress bars.
type Summary struct {
	SumOfInstallments  string  `json:"sumOfInstallments"`
	PaidToDate         string  `json:"paidToDate"`
	TotalInterest      string  `json:"totalInterest"`
	TotalFees          string  `json:"totalFees"`
	RemainingPrincipal string  `json:"remainingPrincipal"`
	Completed          bool    `json:"completed"`
	Status             string  `json:"status"`
	Progress           float64 `json:"progress"`
}

// BuildTimeline interleaves schedule row tuples with annual summary entries:
// each year's summary follows that year's last row. Rows must already be in
// ascending date order, which the calculator guarantees.
func BuildTimeline(rows []core.ScheduleRow, annuals []core.AnnualSummaryRow) []any {
	annualByYear := make(map[int]core.AnnualSummaryRow, len(annuals))
	for _, a := range annuals {
		annualByYear[a.Year] = a
	}

	timeline := make([]any, 0, len(rows)+len(annuals))
	for i, row := range rows {
		timeline = append(timeline, rowTuple(row))

		year := row.Date.Year()
		lastOfYear := i == len(rows)-1 || rows[i+1].Date.Year() != year
		if !lastOfYear {
			continue
		}
		if a, ok := annualByYear[year]; ok {
			timeline = append(timeline, annualEntry(a))
			delete(annualByYear, year)
		}
	}
	return timeline
}

func rowTuple(row core.ScheduleRow) []any {
	tuple := make([]any, tupleLen)
	tuple[TuplePosDate] = row.Date.Format("2006-01-02")
	tuple[TuplePosRate] = row.EffectiveRatePercent.String()
	tuple[TuplePosInstallment] = row.InstallmentAmount.String()
	tuple[TuplePosPrincipal] = row.PrincipalReduction.String()
	tuple[TuplePosInterest] = row.InterestPortion.String()
	tuple[TuplePosRemaining] = row.RemainingPrincipal.String()
	tuple[TuplePosFee] = row.FeeAmount.String()
	tuple[TuplePosWasPaid] = row.WasPaid
	tuple[TuplePosDays] = row.DaysSincePrior
	return tuple
}

func annualEntry(a core.AnnualSummaryRow) AnnualEntry {
	return AnnualEntry{
		Type:           "annual_summary",
		Year:           a.Year,
		TotalPaid:      a.TotalPaid.String(),
		TotalPrincipal: a.TotalPrincipal.String(),
		TotalInterest:  a.TotalInterest.String(),
		TotalFees:      a.TotalFees.String(),
	}
}

// BuildSummary derives the presentation summary, including the lifecycle
// status and the clamped 0-100 progress value.
func BuildSummary(terms core.LoanTerms, summary core.PaydownSummary) Summary {
	status := core.ClassifyStatus(terms, summary)
	return Summary{
		SumOfInstallments:  summary.SumOfInstallments.String(),
		PaidToDate:         summary.PaidToDate.String(),
		TotalInterest:      summary.TotalInterest.String(),
		TotalFees:          summary.TotalFees.String(),
		RemainingPrincipal: summary.RemainingPrincipal.String(),
		Completed:          summary.Completed,
		Status:             status.String(),
		Progress:           core.ComputeProgress(status, summary.PaidToDate, summary.SumOfInstallments),
	}
}
