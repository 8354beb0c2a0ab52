package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AnnualSummaryRow rolls one calendar year of the schedule up into totals.
type AnnualSummaryRow struct {
	Year           int
	TotalPaid      decimal.Decimal
	TotalPrincipal decimal.Decimal
	TotalInterest  decimal.Decimal
	TotalFees      decimal.Decimal
}

// AggregateAnnual folds schedule rows into one summary per calendar year,
// ascending. Simulated rows are projections and stay out of the totals.
func AggregateAnnual(rows []ScheduleRow) []AnnualSummaryRow {
	byYear := make(map[int]*AnnualSummaryRow)
	for _, row := range rows {
		if row.Simulated {
			continue
		}
		year := row.Date.Year()
		acc, ok := byYear[year]
		if !ok {
			acc = &AnnualSummaryRow{
				Year:           year,
				TotalPaid:      decimal.Zero,
				TotalPrincipal: decimal.Zero,
				TotalInterest:  decimal.Zero,
				TotalFees:      decimal.Zero,
			}
			byYear[year] = acc
		}
		acc.TotalPaid = acc.TotalPaid.Add(row.InstallmentAmount)
		acc.TotalPrincipal = acc.TotalPrincipal.Add(row.PrincipalReduction)
		acc.TotalInterest = acc.TotalInterest.Add(row.InterestPortion)
		acc.TotalFees = acc.TotalFees.Add(row.FeeAmount)
	}

	summaries := make([]AnnualSummaryRow, 0, len(byYear))
	for _, acc := range byYear {
		summaries = append(summaries, *acc)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Year < summaries[j].Year
	})
	return summaries
}
