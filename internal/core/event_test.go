package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBuildEventsClassification(t *testing.T) {
	rows := []RawPaymentRecord{
		{Fdt: "2024-02-01", Fpi: "500", Fpsf: "25", Fr: "9.5", Fnra: "450"},
	}
	events := BuildEvents(rows)
	if len(events) != 4 {
		t.Fatalf("expected 4 events from one combined row, got %d", len(events))
	}
	// Same-day tie break: rate, recurring amount, fee, installment.
	wantKinds := []EventKind{
		EventRateChange,
		EventRecurringAmountChange,
		EventSingleFee,
		EventScheduledInstallment,
	}
	for i, want := range wantKinds {
		if events[i].Kind != want {
			t.Fatalf("event %d kind = %s, want %s", i, events[i].Kind, want)
		}
	}
	if !events[0].NewRatePercent.Equal(decimal.RequireFromString("9.5")) {
		t.Fatalf("rate = %s", events[0].NewRatePercent)
	}
	if !events[3].Amount.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("installment = %s", events[3].Amount)
	}
}

func TestBuildEventsSimulatedSuppressesAmendments(t *testing.T) {
	rows := []RawPaymentRecord{
		{Fdt: "2024-06-01", Fpi: "5000", Fr: "1", Fpsf: "10", Fnra: "100", Fisp: 1},
	}
	events := BuildEvents(rows)
	if len(events) != 1 {
		t.Fatalf("expected single simulated event, got %d", len(events))
	}
	if events[0].Kind != EventSimulatedPayment {
		t.Fatalf("kind = %s", events[0].Kind)
	}
}

func TestBuildEventsSkipsMalformedRows(t *testing.T) {
	rows := []RawPaymentRecord{
		{Fdt: "garbage", Fpi: "500"},
		{Fdt: "2024-01-10", Fpi: "not-a-number"},
		{Fdt: "2024-01-10", Fpi: "250"},
	}
	events := BuildEvents(rows)
	if len(events) != 1 {
		t.Fatalf("expected 1 surviving event, got %d", len(events))
	}
	if !events[0].Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("amount = %s", events[0].Amount)
	}
}

func TestBuildEventsSortedAscending(t *testing.T) {
	rows := []RawPaymentRecord{
		{Fdt: "2024-03-01", Fpi: "100"},
		{Fdt: "2024-01-01", Fpi: "100"},
		{Fdt: "2024-02-01", Fpi: "100"},
	}
	events := BuildEvents(rows)
	for i := 1; i < len(events); i++ {
		if events[i].Date.Before(events[i-1].Date) {
			t.Fatalf("events not sorted: %v before %v", events[i].Date, events[i-1].Date)
		}
	}
	if !events[0].Date.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first event date = %v", events[0].Date)
	}
}

func TestBuildEventsSimulatedSortsAfterRealInstallment(t *testing.T) {
	rows := []RawPaymentRecord{
		{Fdt: "2024-06-01", Fpi: "5000", Fisp: "1"},
		{Fdt: "2024-06-01", Fpi: "500"},
	}
	events := BuildEvents(rows)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != EventScheduledInstallment || events[1].Kind != EventSimulatedPayment {
		t.Fatalf("order = %s, %s", events[0].Kind, events[1].Kind)
	}
}
