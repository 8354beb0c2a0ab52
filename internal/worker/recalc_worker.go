// Package worker recomputes loan schedules off the request path. It consumes
// recalc messages from AMQP, runs the engine through the schedule service and
// mirrors the results to the configured summary sheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"prestiti/internal/amqp"
	"prestiti/internal/core"
	"prestiti/internal/sheets"
	"prestiti/internal/storage"
)

// Exporter recomputes one loan and shapes it for export.
type Exporter interface {
	ExportForLoan(ctx context.Context, loanID string, asOf time.Time) (sheets.LoanExport, error)
}

// LoanLister enumerates live loans for the periodic sweep.
type LoanLister interface {
	ListLoans(ctx context.Context) ([]core.RawLoanRecord, error)
}

// RecalcWorker handles recalc messages and the periodic full sweep.
type RecalcWorker struct {
	exporter Exporter
	store    LoanLister
	writer   sheets.SummaryWriter
	interval time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func NewRecalcWorker(exporter Exporter, store LoanLister, writer sheets.SummaryWriter, interval time.Duration) *RecalcWorker {
	return &RecalcWorker{
		exporter: exporter,
		store:    store,
		writer:   writer,
		interval: interval,
		now:      time.Now,
	}
}

// HandleRecalcMessage processes a single recalc message from AMQP.
//
// A loan that disappeared between publish and delivery is not an error; the
// message is acknowledged and dropped so it never poisons the queue.
func (w *RecalcWorker) HandleRecalcMessage(ctx context.Context, msg *amqp.LoanRecalcMessage) error {
	slog.InfoContext(ctx, "Processing recalc message",
		"loan_id", msg.LoanID,
		"reason", msg.Reason,
		"message_id", msg.MessageID)

	if msg.Reason == amqp.ReasonLoanDeleted {
		slog.InfoContext(ctx, "Loan deleted, nothing to export", "loan_id", msg.LoanID)
		return nil
	}

	exp, err := w.exporter.ExportForLoan(ctx, msg.LoanID, w.now())
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Loan vanished before recalc, dropping message",
			"loan_id", msg.LoanID, "message_id", msg.MessageID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("recompute loan %s: %w", msg.LoanID, err)
	}

	return w.export(ctx, exp)
}

// RunPeriodicSweep recomputes every live loan on the configured interval
// until the context ends. It is the backstop for lost messages.
func (w *RecalcWorker) RunPeriodicSweep(ctx context.Context) error {
	if w.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping periodic sweep", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.SweepAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sweep failed", "error", err)
			}
		}
	}
}

// SweepAll recomputes and exports every live loan, running each through
// the same path as a queued message under the periodic sweep reason.
// Per-loan failures are logged and skipped; one broken loan never stops
// the sweep.
func (w *RecalcWorker) SweepAll(ctx context.Context) error {
	loans, err := w.store.ListLoans(ctx)
	if err != nil {
		return fmt.Errorf("list loans for sweep: %w", err)
	}

	handled := 0
	failed := 0
	for _, loan := range loans {
		msg := amqp.NewLoanRecalcMessage(loan.ID, amqp.ReasonPeriodicSweep)
		if err := w.HandleRecalcMessage(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Sweep recompute failed", "loan_id", loan.ID, "error", err)
			failed++
			continue
		}
		handled++
	}

	slog.InfoContext(ctx, "Sweep completed",
		"total", len(loans), "handled", handled, "errors", failed)
	return nil
}

func (w *RecalcWorker) export(ctx context.Context, exp sheets.LoanExport) error {
	if w.writer == nil {
		slog.WarnContext(ctx, "No summary writer configured, skipping export",
			"loan_id", exp.LoanID)
		return nil
	}

	ref, err := w.writer.WriteLoanSummary(ctx, exp)
	if err != nil {
		return fmt.Errorf("write loan summary: %w", err)
	}

	slog.InfoContext(ctx, "Loan summary written",
		"loan_id", exp.LoanID,
		"status", exp.Status,
		"row_ref", ref)
	return nil
}
