// Package google mirrors loan summaries to a Google Spreadsheet using a
// service account. One row per loan on the loans sheet, one row per loan
// year on the annual sheet, both upserted in place.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"prestiti/internal/core"
	ports "prestiti/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	loansSheet    string
	annualSheet   string
}

// Ensure interface conformance
var _ ports.SummaryWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_LOANS_SHEET_NAME (default "Loans"),
// GOOGLE_ANNUAL_SHEET_NAME (default "Annual").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	loansSheet := strings.TrimSpace(os.Getenv("GOOGLE_LOANS_SHEET_NAME"))
	if loansSheet == "" {
		loansSheet = "Loans"
	}
	annualSheet := strings.TrimSpace(os.Getenv("GOOGLE_ANNUAL_SHEET_NAME"))
	if annualSheet == "" {
		annualSheet = "Annual"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		loansSheet:    loansSheet,
		annualSheet:   annualSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// WriteLoanSummary upserts the loan's summary row and its annual rows.
func (c *Client) WriteLoanSummary(ctx context.Context, exp ports.LoanExport) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if exp.LoanID == "" {
		return "", errors.New("loan id is required")
	}

	ref, err := c.upsertLoanRow(ctx, exp)
	if err != nil {
		return "", err
	}
	if err := c.upsertAnnualRows(ctx, exp); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Loan summary exported",
		"loan_id", exp.LoanID, "row", ref, "years", len(exp.Annuals))
	return ref, nil
}

func (c *Client) upsertLoanRow(ctx context.Context, exp ports.LoanExport) (string, error) {
	rng := fmt.Sprintf("%s!A:A", c.loansSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", rng, err)
	}

	row := findRowByKey(resp.Values, exp.LoanID)
	if row == 0 {
		row = len(resp.Values) + 1
	}

	dataRange := fmt.Sprintf("%s!A%d:K%d", c.loansSheet, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{loanRowValues(exp, time.Now().UTC())}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}
	return dataRange, nil
}

func (c *Client) upsertAnnualRows(ctx context.Context, exp ports.LoanExport) error {
	if len(exp.Annuals) == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A:B", c.annualSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	nextRow := len(resp.Values) + 1
	for _, a := range exp.Annuals {
		row := findRowByKey(resp.Values, exp.LoanID+"|"+strconv.Itoa(a.Year))
		if row == 0 {
			row = nextRow
			nextRow++
		}
		dataRange := fmt.Sprintf("%s!A%d:F%d", c.annualSheet, row, row)
		vr := &gsheet.ValueRange{Values: [][]any{annualRowValues(exp.LoanID, a)}}
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
			ValueInputOption("USER_ENTERED").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update %s: %w", dataRange, err)
		}
	}
	return nil
}

// findRowByKey returns the 1-based row whose first cell, joined with any
// second cell by "|", equals key. Zero means not found.
func findRowByKey(values [][]any, key string) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(fmt.Sprint(row[0]))
		if len(row) > 1 {
			second := strings.TrimSpace(fmt.Sprint(row[1]))
			if cell+"|"+second == key {
				return i + 1
			}
		}
		if cell == key {
			return i + 1
		}
	}
	return 0
}

func loanRowValues(exp ports.LoanExport, now time.Time) []any {
	s := exp.Summary
	return []any{
		exp.LoanID,
		exp.Title,
		exp.Status,
		fmt.Sprintf("%.1f", exp.Progress),
		s.SumOfInstallments.String(),
		s.PaidToDate.String(),
		s.TotalInterest.String(),
		s.TotalFees.String(),
		s.RemainingPrincipal.String(),
		s.Completed,
		now.Format(time.RFC3339),
	}
}

func annualRowValues(loanID string, a core.AnnualSummaryRow) []any {
	return []any{
		loanID,
		a.Year,
		a.TotalPaid.String(),
		a.TotalPrincipal.String(),
		a.TotalInterest.String(),
		a.TotalFees.String(),
	}
}
