package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Interest accrues simple (non-compounding) on an actual/365 day count:
// interest = balance * rate/100 * days/365, rounded half-up to 2 decimals.
// The initial fee is charged as a same-day fee at the start date and is
// reporting-only: the balance starts at the bare principal and fees never
// reduce it nor accrue interest. Completion cuts the event stream in full:
// a fee dated after the completing installment is dropped along with the
// remaining schedule and never reaches TotalFees, while an unbundled fee
// before completion still surfaces as its own trailing row.
var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)
)

// ScheduleRow is one emitted period of the paydown schedule. Rows are
// read-only once emitted. RemainingPrincipal is non-increasing across the
// real (non-simulated) row sequence, clamped at zero.
type ScheduleRow struct {
	Date                 time.Time
	EffectiveRatePercent decimal.Decimal
	DaysSincePrior       int
	InstallmentAmount    decimal.Decimal
	PrincipalReduction   decimal.Decimal
	InterestPortion      decimal.Decimal
	RemainingPrincipal   decimal.Decimal
	FeeAmount            decimal.Decimal
	WasPaid              bool
	Simulated            bool
}

// PaydownSummary aggregates the schedule for progress reporting.
// SumOfInstallments covers the loan's full nominal term regardless of
// early completion; it is the progress denominator.
type PaydownSummary struct {
	SumOfInstallments  decimal.Decimal
	PaidToDate         decimal.Decimal
	TotalInterest      decimal.Decimal
	TotalFees          decimal.Decimal
	RemainingPrincipal decimal.Decimal
	Completed          bool
	CompletedOn        time.Time
}

// calcState is the calculator's mutable state. Simulated payments run
// against a value copy so their isolation from the real balance is
// structural, not a dry-run flag.
type calcState struct {
	balance         decimal.Decimal
	ratePercent     decimal.Decimal
	recurringAmount decimal.Decimal
	lastInstallment time.Time
}

// installment applies one payment of amount plus bundled fees to the state
// and returns the emitted row. Negative amortization clamps the principal
// reduction at zero; overpayment clamps it at the remaining balance.
func (st *calcState) installment(date time.Time, amount, fees decimal.Decimal, asOf time.Time, simulated bool) ScheduleRow {
	days := daysBetween(st.lastInstallment, date)
	if days < 0 {
		days = 0
	}

	interest := decimal.Zero
	if st.ratePercent.IsPositive() && st.balance.IsPositive() && days > 0 {
		interest = st.balance.
			Mul(st.ratePercent).Div(hundred).
			Mul(decimal.NewFromInt(int64(days))).Div(daysPerYear).
			Round(2)
	}

	reduction := amount.Sub(interest).Sub(fees)
	if reduction.IsNegative() {
		reduction = decimal.Zero
	}
	if reduction.GreaterThan(st.balance) {
		reduction = st.balance
	}

	st.balance = st.balance.Sub(reduction)
	st.lastInstallment = date

	return ScheduleRow{
		Date:                 date,
		EffectiveRatePercent: st.ratePercent,
		DaysSincePrior:       days,
		InstallmentAmount:    amount,
		PrincipalReduction:   reduction,
		InterestPortion:      interest,
		RemainingPrincipal:   st.balance,
		FeeAmount:            fees,
		WasPaid:              !date.After(asOf),
		Simulated:            simulated,
	}
}

// Calculate replays the event stream over the loan terms and returns the
// full schedule plus its paydown summary. asOf separates materialized
// payments (wasPaid) from projected ones; it is an explicit parameter so
// the engine stays deterministic.
//
// Events dated outside [StartDate, EndDate] are ignored. Once the balance
// reaches zero the loan is complete and no further real rows are emitted,
// even if scheduled dates remain.
func Calculate(terms LoanTerms, events []PaymentEvent, asOf time.Time) ([]ScheduleRow, PaydownSummary) {
	merged := mergeWithRecurring(terms, events)

	summary := PaydownSummary{
		SumOfInstallments:  sumOfInstallments(merged),
		PaidToDate:         decimal.Zero,
		TotalInterest:      decimal.Zero,
		TotalFees:          decimal.Zero,
		RemainingPrincipal: terms.Principal,
	}

	st := calcState{
		balance:         terms.Principal,
		ratePercent:     terms.AnnualRatePercent,
		recurringAmount: decimal.Zero,
		lastInstallment: terms.StartDate,
	}

	rows := make([]ScheduleRow, 0, len(merged))
	pendingFees := decimal.Zero
	lastFeeDate := terms.StartDate
	if terms.InitialFee.IsPositive() {
		pendingFees = terms.InitialFee
	}

	for _, ev := range merged {
		switch ev.Kind {
		case EventRateChange:
			if !summary.Completed {
				st.ratePercent = ev.NewRatePercent
			}

		case EventRecurringAmountChange:
			st.recurringAmount = ev.Amount

		case EventSingleFee:
			if !summary.Completed {
				pendingFees = pendingFees.Add(ev.Amount)
				lastFeeDate = ev.Date
			}

		case EventScheduledInstallment:
			if summary.Completed {
				continue
			}
			amount := ev.Amount
			if ev.implicit {
				amount = st.recurringAmount
			}
			if !amount.IsPositive() && !pendingFees.IsPositive() {
				continue
			}
			fees := pendingFees
			pendingFees = decimal.Zero

			row := st.installment(ev.Date, amount, fees, asOf, false)
			rows = append(rows, row)

			summary.TotalInterest = summary.TotalInterest.Add(row.InterestPortion)
			summary.TotalFees = summary.TotalFees.Add(row.FeeAmount)
			if row.WasPaid {
				summary.PaidToDate = summary.PaidToDate.Add(row.InstallmentAmount)
			}
			if st.balance.LessThanOrEqual(decimal.Zero) {
				st.balance = decimal.Zero
				summary.Completed = true
				summary.CompletedOn = ev.Date
			}

		case EventSimulatedPayment:
			// Clone the state: what-if rows must never leak into the real
			// balance or into the rows that follow them.
			scratch := st
			row := scratch.installment(ev.Date, ev.Amount, decimal.Zero, asOf, true)
			rows = append(rows, row)
		}
	}

	// Fees that never met an installment (fee-only loans, or a fee after the
	// last payment) still have to surface somewhere in the schedule. They
	// carry no interest and touch no principal.
	if pendingFees.IsPositive() && !summary.Completed {
		rows = append(rows, ScheduleRow{
			Date:                 lastFeeDate,
			EffectiveRatePercent: st.ratePercent,
			DaysSincePrior:       0,
			InstallmentAmount:    decimal.Zero,
			PrincipalReduction:   decimal.Zero,
			InterestPortion:      decimal.Zero,
			RemainingPrincipal:   st.balance,
			FeeAmount:            pendingFees,
			WasPaid:              !lastFeeDate.After(asOf),
		})
		summary.TotalFees = summary.TotalFees.Add(pendingFees)
	}

	summary.RemainingPrincipal = st.balance
	return rows, summary
}

// mergeWithRecurring folds the loan's implicit recurring installments into
// the explicit event stream. An implicit date is suppressed when a stored
// installment already exists on that date.
func mergeWithRecurring(terms LoanTerms, events []PaymentEvent) []PaymentEvent {
	explicit := make([]PaymentEvent, 0, len(events))
	installmentDates := make(map[time.Time]bool)
	for _, ev := range events {
		if ev.Date.Before(terms.StartDate) || ev.Date.After(terms.EndDate) {
			continue
		}
		if ev.Kind == EventScheduledInstallment {
			installmentDates[ev.Date] = true
		}
		explicit = append(explicit, ev)
	}

	merged := explicit
	for _, date := range recurringDates(terms) {
		if installmentDates[date] {
			continue
		}
		merged = append(merged, PaymentEvent{
			Kind:     EventScheduledInstallment,
			Date:     date,
			implicit: true,
		})
	}

	sortEvents(merged)
	return merged
}

// recurringDates expands the recurring plan into concrete monthly dates on
// the configured day of month, clamped to shorter months, from the first
// recurring payment date through the end of the loan.
func recurringDates(terms LoanTerms) []time.Time {
	if terms.FirstRecurringPaymentDate.IsZero() || terms.RecurringPaymentDay < 1 {
		return nil
	}

	var dates []time.Time
	year, month := terms.FirstRecurringPaymentDate.Year(), terms.FirstRecurringPaymentDate.Month()
	first := true
	for {
		var date time.Time
		if first {
			date = terms.FirstRecurringPaymentDate
			first = false
		} else {
			month++
			if month > time.December {
				month = time.January
				year++
			}
			date = clampedMonthDay(year, month, terms.RecurringPaymentDay)
		}
		if date.After(terms.EndDate) {
			break
		}
		if !date.Before(terms.StartDate) {
			dates = append(dates, date)
		}
		year, month = date.Year(), date.Month()
	}
	return dates
}

func clampedMonthDay(year int, month time.Month, day int) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// sumOfInstallments totals every scheduled installment over the full
// nominal term, resolving implicit amounts through the recurring-amount
// timeline and ignoring completion. It is never NaN: a loan with no
// installments sums to zero.
func sumOfInstallments(merged []PaymentEvent) decimal.Decimal {
	sum := decimal.Zero
	recurring := decimal.Zero
	for _, ev := range merged {
		switch ev.Kind {
		case EventRecurringAmountChange:
			recurring = ev.Amount
		case EventScheduledInstallment:
			if ev.implicit {
				sum = sum.Add(recurring)
			} else {
				sum = sum.Add(ev.Amount)
			}
		}
	}
	return sum
}
