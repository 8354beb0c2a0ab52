// Package storage persists raw loan and payment records in SQLite. Wire
// field values are stored as opaque text; parsing and validation belong to
// the engine, which is tolerant of string-or-number encodings.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"prestiti/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested loan does not exist or was
// soft-deleted.
var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateLoan inserts a raw loan record, replacing any prior record with the
// same id.
func (r *SQLiteRepository) CreateLoan(ctx context.Context, raw core.RawLoanRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO loans (id, title, sdt, edt, fp, fr, fif, pdt, frpd, fls)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title, sdt = excluded.sdt, edt = excluded.edt,
			fp = excluded.fp, fr = excluded.fr, fif = excluded.fif,
			pdt = excluded.pdt, frpd = excluded.frpd, fls = excluded.fls,
			updated_at = CURRENT_TIMESTAMP, deleted_at = NULL`,
		raw.ID, raw.Title,
		wireText(raw.Sdt), wireText(raw.Edt), wireText(raw.Fp), wireText(raw.Fr),
		wireText(raw.Fif), wireText(raw.Pdt), wireText(raw.Frpd), wireText(raw.Fls))
	if err != nil {
		return fmt.Errorf("create loan: %w", err)
	}

	slog.InfoContext(ctx, "Loan saved", "id", raw.ID, "title", raw.Title)
	return nil
}

// GetLoan returns one raw loan record by id.
func (r *SQLiteRepository) GetLoan(ctx context.Context, id string) (core.RawLoanRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, sdt, edt, fp, fr, fif, pdt, frpd, fls
		FROM loans WHERE id = ? AND deleted_at IS NULL`, id)
	raw, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RawLoanRecord{}, ErrNotFound
	}
	if err != nil {
		return core.RawLoanRecord{}, fmt.Errorf("get loan %s: %w", id, err)
	}
	return raw, nil
}

// ListLoans returns all live raw loan records ordered by creation.
func (r *SQLiteRepository) ListLoans(ctx context.Context) ([]core.RawLoanRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, sdt, edt, fp, fr, fif, pdt, frpd, fls
		FROM loans WHERE deleted_at IS NULL ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []core.RawLoanRecord
	for rows.Next() {
		raw, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		loans = append(loans, raw)
	}
	return loans, rows.Err()
}

// SoftDeleteLoan marks a loan and its payments as deleted.
func (r *SQLiteRepository) SoftDeleteLoan(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE loans SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete loan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	_, err = r.db.ExecContext(ctx,
		`UPDATE payments SET deleted_at = CURRENT_TIMESTAMP WHERE loan_id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete loan payments: %w", err)
	}

	slog.InfoContext(ctx, "Loan soft deleted", "id", id)
	return nil
}

// CreatePayment appends a raw payment row for a loan.
func (r *SQLiteRepository) CreatePayment(ctx context.Context, loanID string, raw core.RawPaymentRecord) (int64, error) {
	fisp := 0
	if core.ParseWireBool(raw.Fisp) {
		fisp = 1
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (loan_id, title, fdt, fpi, fpsf, fnra, fr, fisp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		loanID, raw.Title,
		wireText(raw.Fdt), wireText(raw.Fpi), wireText(raw.Fpsf),
		wireText(raw.Fnra), wireText(raw.Fr), fisp)
	if err != nil {
		return 0, fmt.Errorf("create payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("payment insert id: %w", err)
	}

	slog.InfoContext(ctx, "Payment saved", "loan_id", loanID, "payment_id", id)
	return id, nil
}

// ListPayments returns a loan's live raw payment rows in insertion order.
// The engine sorts them by date itself.
func (r *SQLiteRepository) ListPayments(ctx context.Context, loanID string) ([]core.RawPaymentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT title, fdt, fpi, fpsf, fnra, fr, fisp
		FROM payments WHERE loan_id = ? AND deleted_at IS NULL ORDER BY id`, loanID)
	if err != nil {
		return nil, fmt.Errorf("list payments for loan %s: %w", loanID, err)
	}
	defer rows.Close()

	var payments []core.RawPaymentRecord
	for rows.Next() {
		var (
			title                    string
			fdt, fpi, fpsf, fnra, fr sql.NullString
			fisp                     int
		)
		if err := rows.Scan(&title, &fdt, &fpi, &fpsf, &fnra, &fr, &fisp); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, core.RawPaymentRecord{
			Title: title,
			Fdt:   nullableWire(fdt),
			Fpi:   nullableWire(fpi),
			Fpsf:  nullableWire(fpsf),
			Fnra:  nullableWire(fnra),
			Fr:    nullableWire(fr),
			Fisp:  fisp,
		})
	}
	return payments, rows.Err()
}

// SoftDeletePayment marks one payment row as deleted.
func (r *SQLiteRepository) SoftDeletePayment(ctx context.Context, loanID string, paymentID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments SET deleted_at = CURRENT_TIMESTAMP
		WHERE id = ? AND loan_id = ? AND deleted_at IS NULL`, paymentID, loanID)
	if err != nil {
		return fmt.Errorf("soft delete payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (core.RawLoanRecord, error) {
	var (
		id, title                              string
		sdt, edt, fp, fr, fif, pdt, frpd, fls sql.NullString
	)
	if err := row.Scan(&id, &title, &sdt, &edt, &fp, &fr, &fif, &pdt, &frpd, &fls); err != nil {
		return core.RawLoanRecord{}, err
	}
	return core.RawLoanRecord{
		ID:    id,
		Title: title,
		Sdt:   nullableWire(sdt),
		Edt:   nullableWire(edt),
		Fp:    nullableWire(fp),
		Fr:    nullableWire(fr),
		Fif:   nullableWire(fif),
		Pdt:   nullableWire(pdt),
		Frpd:  nullableWire(frpd),
		Fls:   nullableWire(fls),
	}, nil
}

// wireText flattens a string-or-number wire value to TEXT for storage.
// Nil stays NULL.
func wireText(v any) any {
	if v == nil {
		return nil
	}
	return fmt.Sprintf("%v", v)
}

func nullableWire(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}
