// Package backend selects where the worker mirrors computed loan summaries.
package backend

import (
	"context"

	"prestiti/internal/sheets"
)

// Type identifies a summary export backend.
type Type string

const (
	// AutoBackend resolves to SheetsBackend when a spreadsheet is
	// configured and to NoneBackend otherwise.
	AutoBackend   Type = "auto"
	SheetsBackend Type = "sheets"
	MemoryBackend Type = "memory"
	NoneBackend   Type = "none"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case AutoBackend, SheetsBackend, MemoryBackend, NoneBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the writer instance and optional cleanup function.
// Writer is nil for the none backend.
type Result struct {
	Writer  sheets.SummaryWriter
	Cleanup CleanupFunc
}

// Factory creates summary writers based on configuration
type Factory interface {
	// CreateWriter creates a writer instance based on the provided config
	CreateWriter(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for writer creation
type Config struct {
	// Backend type, already resolved (never auto)
	Type Type

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleLoansSheet    string
	GoogleAnnualSheet   string
}
