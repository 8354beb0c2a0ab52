// Package services orchestrates the amortization engine across storage,
// caching and the recompute queue. The engine itself stays pure; everything
// stateful lives here.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"prestiti/internal/amqp"
	"prestiti/internal/cache"
	"prestiti/internal/core"
	"prestiti/internal/report"
	"prestiti/internal/sheets"
)

// RecordStore is the slice of the repository the service needs.
type RecordStore interface {
	CreateLoan(ctx context.Context, raw core.RawLoanRecord) error
	GetLoan(ctx context.Context, id string) (core.RawLoanRecord, error)
	ListLoans(ctx context.Context) ([]core.RawLoanRecord, error)
	SoftDeleteLoan(ctx context.Context, id string) error
	CreatePayment(ctx context.Context, loanID string, raw core.RawPaymentRecord) (int64, error)
	ListPayments(ctx context.Context, loanID string) ([]core.RawPaymentRecord, error)
	SoftDeletePayment(ctx context.Context, loanID string, paymentID int64) error
}

// RecalcPublisher publishes recompute requests for the worker.
type RecalcPublisher interface {
	PublishLoanRecalc(ctx context.Context, loanID, reason string) error
}

// LoanOverview is one loan in the list view: identity plus the computed
// summary. Invalid loans carry a zero-progress summary and a non-empty
// Problem.
type LoanOverview struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Summary report.Summary `json:"summary"`
	Problem string         `json:"problem,omitempty"`
}

// ScheduleView is the full schedule payload for one loan: the interleaved
// timeline plus the paydown summary.
type ScheduleView struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	AsOf     string         `json:"asOf"`
	Timeline []any          `json:"timeline"`
	Summary  report.Summary `json:"summary"`
	Problem  string         `json:"problem,omitempty"`
}

// ScheduleService computes loan schedules on demand, memoizes them, and
// keeps the recompute queue fed on mutations.
type ScheduleService struct {
	store     RecordStore
	publisher RecalcPublisher
	memo      cache.Cache[ScheduleView]
	shared    *cache.RedisCache
	batchSize int
}

func NewScheduleService(store RecordStore, publisher RecalcPublisher, memo cache.Cache[ScheduleView], shared *cache.RedisCache, batchSize int) *ScheduleService {
	if batchSize < 1 {
		batchSize = 1
	}
	return &ScheduleService{
		store:     store,
		publisher: publisher,
		memo:      memo,
		shared:    shared,
		batchSize: batchSize,
	}
}

// GetSchedule computes one loan's schedule as of the given date, serving
// from the memo cache when the underlying records have not changed.
func (s *ScheduleService) GetSchedule(ctx context.Context, loanID string, asOf time.Time) (ScheduleView, error) {
	raw, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return ScheduleView{}, fmt.Errorf("fetch loan: %w", err)
	}
	payments, err := s.store.ListPayments(ctx, loanID)
	if err != nil {
		return ScheduleView{}, fmt.Errorf("fetch payments: %w", err)
	}

	key := scheduleKey(raw, payments, asOf)
	if s.memo != nil {
		if view, ok := s.memo.Get(key); ok {
			return view, nil
		}
	}
	if s.shared != nil {
		if body, ok := s.shared.Get(ctx, key); ok {
			var view ScheduleView
			if err := json.Unmarshal([]byte(body), &view); err == nil {
				return view, nil
			}
		}
	}

	view := buildScheduleView(raw, payments, asOf)
	if s.memo != nil {
		s.memo.Set(key, view)
	}
	if s.shared != nil {
		if body, err := json.Marshal(view); err == nil {
			if err := s.shared.Set(ctx, key, string(body)); err != nil {
				slog.WarnContext(ctx, "Shared cache write failed", "loan_id", loanID, "error", err)
			}
		}
	}
	return view, nil
}

// ListLoans computes the overview for every live loan. A loan that fails
// validation degrades to zero progress; it never aborts the batch. Loans are
// computed in parallel, output order follows storage order.
func (s *ScheduleService) ListLoans(ctx context.Context, asOf time.Time) ([]LoanOverview, error) {
	raws, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}

	overviews := make([]LoanOverview, len(raws))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchSize)
	for i, raw := range raws {
		g.Go(func() error {
			payments, err := s.store.ListPayments(gctx, raw.ID)
			if err != nil {
				return fmt.Errorf("payments for loan %s: %w", raw.ID, err)
			}
			view := buildScheduleView(raw, payments, asOf)
			overviews[i] = LoanOverview{
				ID:      raw.ID,
				Title:   raw.Title,
				Summary: view.Summary,
				Problem: view.Problem,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return overviews, nil
}

// CreateLoan stores the raw record and asks the worker to recompute. Cache
// keys hash the raw inputs, so mutations age stale entries out on their own.
// Publish failures are logged, never surfaced: the record is saved.
func (s *ScheduleService) CreateLoan(ctx context.Context, raw core.RawLoanRecord) error {
	if raw.ID == "" {
		return errors.New("loan id is required")
	}
	if err := s.store.CreateLoan(ctx, raw); err != nil {
		return err
	}
	s.publish(ctx, raw.ID, amqp.ReasonLoanUpserted)
	return nil
}

// DeleteLoan soft-deletes the loan and its payments.
func (s *ScheduleService) DeleteLoan(ctx context.Context, loanID string) error {
	if err := s.store.SoftDeleteLoan(ctx, loanID); err != nil {
		return err
	}
	s.publish(ctx, loanID, amqp.ReasonLoanDeleted)
	return nil
}

// AddPayment appends a payment row to a loan and triggers recomputation.
func (s *ScheduleService) AddPayment(ctx context.Context, loanID string, raw core.RawPaymentRecord) (int64, error) {
	if _, err := s.store.GetLoan(ctx, loanID); err != nil {
		return 0, err
	}
	id, err := s.store.CreatePayment(ctx, loanID, raw)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, loanID, amqp.ReasonPaymentAdded)
	return id, nil
}

// DeletePayment soft-deletes one payment row.
func (s *ScheduleService) DeletePayment(ctx context.Context, loanID string, paymentID int64) error {
	if err := s.store.SoftDeletePayment(ctx, loanID, paymentID); err != nil {
		return err
	}
	s.publish(ctx, loanID, amqp.ReasonPaymentDeleted)
	return nil
}

// ExportForLoan recomputes one loan and shapes it for the sheets writer.
func (s *ScheduleService) ExportForLoan(ctx context.Context, loanID string, asOf time.Time) (sheets.LoanExport, error) {
	raw, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return sheets.LoanExport{}, fmt.Errorf("fetch loan: %w", err)
	}
	payments, err := s.store.ListPayments(ctx, loanID)
	if err != nil {
		return sheets.LoanExport{}, fmt.Errorf("fetch payments: %w", err)
	}
	return buildExport(raw, payments, asOf), nil
}

func (s *ScheduleService) publish(ctx context.Context, loanID, reason string) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Recalc publisher not available, skipping message", "loan_id", loanID)
		return
	}
	if err := s.publisher.PublishLoanRecalc(ctx, loanID, reason); err != nil {
		slog.ErrorContext(ctx, "Failed to publish recalc message",
			"loan_id", loanID, "reason", reason, "error", err)
	}
}

// buildScheduleView runs the engine over one loan's records. Validation
// failures produce the degraded view: empty timeline, zero progress, the
// stored status flag still honored.
func buildScheduleView(raw core.RawLoanRecord, payments []core.RawPaymentRecord, asOf time.Time) ScheduleView {
	view := ScheduleView{
		ID:    raw.ID,
		Title: raw.Title,
		AsOf:  asOf.Format("2006-01-02"),
	}

	terms, err := core.NormalizeLoan(raw)
	if err != nil {
		degraded := core.LoanTerms{ID: raw.ID, Title: raw.Title, RawStatus: core.WireStatus(raw.Fls)}
		view.Timeline = []any{}
		view.Summary = report.BuildSummary(degraded, core.PaydownSummary{})
		view.Problem = err.Error()
		return view
	}

	events := core.BuildEvents(payments)
	rows, summary := core.Calculate(terms, events, asOf)
	annuals := core.AggregateAnnual(rows)

	view.Timeline = report.BuildTimeline(rows, annuals)
	view.Summary = report.BuildSummary(terms, summary)
	return view
}

func buildExport(raw core.RawLoanRecord, payments []core.RawPaymentRecord, asOf time.Time) sheets.LoanExport {
	exp := sheets.LoanExport{
		LoanID: raw.ID,
		Title:  raw.Title,
	}

	terms, err := core.NormalizeLoan(raw)
	if err != nil {
		degraded := core.LoanTerms{ID: raw.ID, Title: raw.Title, RawStatus: core.WireStatus(raw.Fls)}
		status := core.ClassifyStatus(degraded, core.PaydownSummary{})
		exp.Status = status.String()
		return exp
	}

	events := core.BuildEvents(payments)
	rows, summary := core.Calculate(terms, events, asOf)
	status := core.ClassifyStatus(terms, summary)

	exp.Status = status.String()
	exp.Progress = core.ComputeProgress(status, summary.PaidToDate, summary.SumOfInstallments)
	exp.Summary = summary
	exp.Annuals = core.AggregateAnnual(rows)
	return exp
}

// scheduleKey fingerprints the computation inputs. Any change to the loan,
// its payments or the asOf date yields a different key.
func scheduleKey(raw core.RawLoanRecord, payments []core.RawPaymentRecord, asOf time.Time) string {
	h := fnv.New64a()
	enc := json.NewEncoder(h)
	enc.Encode(raw)
	enc.Encode(payments)
	h.Write([]byte(asOf.Format("2006-01-02")))
	return fmt.Sprintf("schedule:%s:%x", raw.ID, h.Sum64())
}
