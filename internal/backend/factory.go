package backend

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "prestiti/internal/sheets/google"
	"prestiti/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new writer factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateWriter implements Factory.CreateWriter
func (f *DefaultFactory) CreateWriter(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SheetsBackend:
		cli, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Summary export to Google Sheets enabled",
			"spreadsheet_id", config.GoogleSpreadsheetID)
		return &Result{Writer: cli}, nil

	case MemoryBackend:
		f.logger.Info("Summary export to in-memory store enabled")
		return &Result{Writer: memory.New()}, nil

	case NoneBackend:
		f.logger.Info("Summary export disabled")
		return &Result{}, nil

	default:
		return nil, fmt.Errorf("unsupported export backend: %s", config.Type)
	}
}
