// Package memory is an in-process SummaryWriter used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "prestiti/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	byLoan map[string]ports.LoanExport
	order  []string
	writes int
}

func New() *Store {
	return &Store{byLoan: make(map[string]ports.LoanExport)}
}

var _ ports.SummaryWriter = (*Store)(nil)

// WriteLoanSummary stores the export, replacing any prior export for the
// same loan, and returns a synthetic row reference.
func (s *Store) WriteLoanSummary(_ context.Context, exp ports.LoanExport) (string, error) {
	if exp.LoanID == "" {
		return "", errors.New("loan id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byLoan[exp.LoanID]; !ok {
		s.order = append(s.order, exp.LoanID)
	}
	s.byLoan[exp.LoanID] = exp
	s.writes++
	return fmt.Sprintf("mem:%d", len(s.order)), nil
}

// Get returns the last export written for a loan.
func (s *Store) Get(loanID string) (ports.LoanExport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.byLoan[loanID]
	return exp, ok
}

// Writes returns the total number of writes, rewrites included.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
