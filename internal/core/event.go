package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RawPaymentRecord is the wire shape of one payment row. A single row can
// decompose into several events (an installment plus a same-date fee, rate
// change or recurring-amount change). Field names are the wire contract.
type RawPaymentRecord struct {
	Title string `json:"title"`
	Fdt   any    `json:"fdt"`  // date
	Fpi   any    `json:"fpi"`  // installment amount
	Fpsf  any    `json:"fpsf"` // single fee amount
	Fnra  any    `json:"fnra"` // new recurring amount
	Fr    any    `json:"fr"`   // new rate percent
	Fisp  any    `json:"fisp"` // simulated-payment flag
}

// EventKind identifies a PaymentEvent variant. The declaration order is the
// same-day tie-break order: a rate must be current before interest is
// computed and amendments apply before the payment they affect; simulated
// projections sort after the real installment of their date.
type EventKind int

const (
	EventRateChange EventKind = iota
	EventRecurringAmountChange
	EventSingleFee
	EventScheduledInstallment
	EventSimulatedPayment
)

func (k EventKind) String() string {
	switch k {
	case EventRateChange:
		return "rate_change"
	case EventRecurringAmountChange:
		return "recurring_amount_change"
	case EventSingleFee:
		return "single_fee"
	case EventScheduledInstallment:
		return "scheduled_installment"
	case EventSimulatedPayment:
		return "simulated_payment"
	}
	return "unknown"
}

// PaymentEvent is one element of the typed, date-ordered event stream fed to
// the calculator. Amount holds the installment, fee, simulated or new
// recurring amount depending on Kind; NewRatePercent is set for rate changes.
type PaymentEvent struct {
	Kind           EventKind
	Date           time.Time
	Amount         decimal.Decimal
	NewRatePercent decimal.Decimal
	Title          string

	// implicit marks installments generated from the loan's recurring plan
	// rather than from a stored payment row; their amount is resolved from
	// the recurring amount current at processing time.
	implicit bool
}

// BuildEvents classifies raw payment rows into a sorted event stream.
//
// Rows with an unparsable date are skipped, never fatal. A truthy simulated
// flag turns the row into a single SimulatedPayment; the row's other fields
// are ignored because simulated rows are read-only projections, not real
// amendments. The stream is sorted ascending by date with the EventKind
// declaration order as the same-day tie break.
func BuildEvents(rows []RawPaymentRecord) []PaymentEvent {
	events := make([]PaymentEvent, 0, len(rows))
	for _, row := range rows {
		date, ok := ParseWireDate(row.Fdt)
		if !ok {
			continue
		}

		if ParseWireBool(row.Fisp) {
			amount, ok := ParseWireDecimal(row.Fpi)
			if !ok || !amount.IsPositive() {
				continue
			}
			events = append(events, PaymentEvent{
				Kind:   EventSimulatedPayment,
				Date:   date,
				Amount: amount,
				Title:  row.Title,
			})
			continue
		}

		if rate, ok := ParseWireDecimal(row.Fr); ok && !rate.IsNegative() {
			events = append(events, PaymentEvent{
				Kind:           EventRateChange,
				Date:           date,
				NewRatePercent: rate,
				Title:          row.Title,
			})
		}
		if amount, ok := ParseWireDecimal(row.Fnra); ok && !amount.IsNegative() {
			events = append(events, PaymentEvent{
				Kind:   EventRecurringAmountChange,
				Date:   date,
				Amount: amount,
				Title:  row.Title,
			})
		}
		if fee, ok := ParseWireDecimal(row.Fpsf); ok && fee.IsPositive() {
			events = append(events, PaymentEvent{
				Kind:   EventSingleFee,
				Date:   date,
				Amount: fee,
				Title:  row.Title,
			})
		}
		if amount, ok := ParseWireDecimal(row.Fpi); ok && amount.IsPositive() {
			events = append(events, PaymentEvent{
				Kind:   EventScheduledInstallment,
				Date:   date,
				Amount: amount,
				Title:  row.Title,
			})
		}
	}

	sortEvents(events)
	return events
}

func sortEvents(events []PaymentEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].Kind < events[j].Kind
	})
}
