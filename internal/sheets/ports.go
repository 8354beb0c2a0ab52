package sheets

import (
	"context"

	"prestiti/internal/core"
)

// LoanExport is the flattened view of one loan that gets mirrored to a
// spreadsheet: the lifecycle summary plus the per-year roll-ups.
type LoanExport struct {
	LoanID   string
	Title    string
	Status   string
	Progress float64
	Summary  core.PaydownSummary
	Annuals  []core.AnnualSummaryRow
}

// Ports for outbound adapters.
type (
	// SummaryWriter mirrors a loan's computed summary to an external sheet.
	// Writes are idempotent per loan id.
	SummaryWriter interface {
		WriteLoanSummary(ctx context.Context, exp LoanExport) (rowRef string, err error)
	}
)
