// Package report computes sales summaries from the audit log.
//
// The log itself stays a flat CSV; this package imports it into a SQLite
// index (on disk or in memory) and answers the grouping queries that a
// flat scan would make tedious. The index is derived data, never the
// source of truth: it can be dropped and rebuilt from the log at any
// time, and importing never mutates the log.
package report

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/NickH0dges/CS-445/internal/ledger"
	"github.com/NickH0dges/CS-445/internal/money"
)

//go:embed schema.sql
var schemaSQL string

// Report is a SQLite-backed view over imported transaction records.
type Report struct {
	db *sql.DB
}

// Open creates or opens the index database at path. Pass ":memory:" for
// a throwaway index. Applies the required pragmas and schema; idempotent.
func Open(path string) (*Report, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open report index: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open report index: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY (and keeps :memory: databases coherent).
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("open report index: %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("open report index: apply schema: %w", err)
	}

	return &Report{db: db}, nil
}

// Close releases the database.
func (r *Report) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Import replaces the index content with the current state of the log.
// Returns the number of records imported, or ledger.ErrNoData when the
// log does not exist yet.
func (r *Report) Import(ctx context.Context, l *ledger.Ledger) (int, error) {
	it, err := l.Iterate()
	if err != nil {
		return 0, err
	}
	defer it.Close()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("import log: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return 0, fmt.Errorf("import log: reset: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions
		(ts, day, cashier_id, cashier_name, payment_type, card_txn, subtotal_cents, tax_cents, total_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("import log: prepare: %w", err)
	}
	defer stmt.Close()

	count := 0
	for it.Next() {
		rec := it.Record()
		day := rec.Timestamp
		if len(day) >= 10 {
			day = day[:10]
		}
		if _, err := stmt.ExecContext(ctx,
			rec.Timestamp,
			day,
			rec.CashierID,
			rec.CashierName,
			rec.PaymentType,
			rec.CardReference,
			rec.Subtotal.Cents(),
			rec.Tax.Cents(),
			rec.Total.Cents(),
		); err != nil {
			return 0, fmt.Errorf("import log: insert: %w", err)
		}
		count++
	}
	if err := it.Err(); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("import log: commit: %w", err)
	}
	return count, nil
}

// Summary is an aggregate over a group of transactions.
type Summary struct {
	Count int
	Tax   money.Amount
	Total money.Amount
}

// CashierTotal is the aggregate for one cashier.
type CashierTotal struct {
	CashierID   string
	CashierName string
	Summary
}

// PaymentTotal is the aggregate for one payment type.
type PaymentTotal struct {
	PaymentType string
	Summary
}

// DayTotal is the aggregate for one calendar day.
type DayTotal struct {
	Day string
	Summary
}

// Overall returns the aggregate over every imported transaction.
func (r *Report) Overall(ctx context.Context) (Summary, error) {
	var s Summary
	var taxCents, totalCents int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(tax_cents), 0), COALESCE(SUM(total_cents), 0)
		FROM transactions
	`).Scan(&s.Count, &taxCents, &totalCents)
	if err != nil {
		return Summary{}, fmt.Errorf("overall summary: %w", err)
	}
	s.Tax = money.FromCents(taxCents)
	s.Total = money.FromCents(totalCents)
	return s, nil
}

// ByCashier returns per-cashier aggregates in ascending cashier ID order.
func (r *Report) ByCashier(ctx context.Context) ([]CashierTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cashier_id, cashier_name, COUNT(*), SUM(tax_cents), SUM(total_cents)
		FROM transactions
		GROUP BY cashier_id, cashier_name
		ORDER BY cashier_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("summary by cashier: %w", err)
	}
	defer rows.Close()

	var out []CashierTotal
	for rows.Next() {
		var ct CashierTotal
		var taxCents, totalCents int64
		if err := rows.Scan(&ct.CashierID, &ct.CashierName, &ct.Count, &taxCents, &totalCents); err != nil {
			return nil, fmt.Errorf("summary by cashier: %w", err)
		}
		ct.Tax = money.FromCents(taxCents)
		ct.Total = money.FromCents(totalCents)
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summary by cashier: %w", err)
	}
	return out, nil
}

// ByPaymentType returns per-payment-type aggregates, cash before card.
func (r *Report) ByPaymentType(ctx context.Context) ([]PaymentTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT payment_type, COUNT(*), SUM(tax_cents), SUM(total_cents)
		FROM transactions
		GROUP BY payment_type
		ORDER BY payment_type DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("summary by payment type: %w", err)
	}
	defer rows.Close()

	var out []PaymentTotal
	for rows.Next() {
		var pt PaymentTotal
		var taxCents, totalCents int64
		if err := rows.Scan(&pt.PaymentType, &pt.Count, &taxCents, &totalCents); err != nil {
			return nil, fmt.Errorf("summary by payment type: %w", err)
		}
		pt.Tax = money.FromCents(taxCents)
		pt.Total = money.FromCents(totalCents)
		out = append(out, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summary by payment type: %w", err)
	}
	return out, nil
}

// ByDay returns per-day aggregates in ascending date order.
func (r *Report) ByDay(ctx context.Context) ([]DayTotal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT day, COUNT(*), SUM(tax_cents), SUM(total_cents)
		FROM transactions
		GROUP BY day
		ORDER BY day ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("summary by day: %w", err)
	}
	defer rows.Close()

	var out []DayTotal
	for rows.Next() {
		var dt DayTotal
		var taxCents, totalCents int64
		if err := rows.Scan(&dt.Day, &dt.Count, &taxCents, &totalCents); err != nil {
			return nil, fmt.Errorf("summary by day: %w", err)
		}
		dt.Tax = money.FromCents(taxCents)
		dt.Total = money.FromCents(totalCents)
		out = append(out, dt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("summary by day: %w", err)
	}
	return out, nil
}
