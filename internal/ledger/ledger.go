// Package ledger provides the append-only audit log of committed sales.
//
// The log is a CSV file, one transaction per row, with a fixed header
// written once when the file is created. Rows are never rewritten or
// deleted. Each append is flushed and synced before success is reported,
// so a sale the caller believes recorded is on disk.
package ledger

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"github.com/NickH0dges/CS-445/internal/money"
)

// Payment types recorded in the log.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// ErrNoData indicates the log file does not exist yet. Distinct from an
// I/O failure: there is simply nothing to read or export.
var ErrNoData = errors.New("no transactions recorded yet")

// header is the fixed first row of the log file. The column set and order
// are part of the on-disk contract and never change.
var header = []string{
	"timestamp", "cashier_id", "cashier_name", "payment_type",
	"card_txn", "subtotal", "tax", "total", "lines_json",
}

// Line is one line-item snapshot inside a transaction record. The JSON
// field names match the lines_json column of the existing log files.
type Line struct {
	SKU       string       `json:"sku"`
	Name      string       `json:"name"`
	UnitPrice money.Amount `json:"price"`
	Qty       int          `json:"qty"`
}

// Record is one committed sale. Immutable once appended.
type Record struct {
	// Timestamp is ISO-8601 local time at second precision.
	Timestamp string

	CashierID   string
	CashierName string

	// PaymentType is PaymentCash or PaymentCard.
	PaymentType string

	// CardReference is the operator-attested terminal reference;
	// empty for cash, and possibly empty for card (soft-confirmed).
	CardReference string

	Subtotal money.Amount
	Tax      money.Amount
	Total    money.Amount

	// Lines is the cart snapshot at commit time.
	Lines []Line
}

// Ledger is the audit log for one register. Single-writer; not safe for
// concurrent use.
type Ledger struct {
	path string
}

// Open returns a ledger over the given file path. The file is created
// lazily on the first append, so "no data" stays observable to readers.
func Open(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the backing file path.
func (l *Ledger) Path() string {
	return l.path
}

// Append durably writes one record to the end of the log. The header row
// is written first if the file is new. The row is flushed and synced
// before Append returns nil; prior rows are never touched.
func (l *Ledger) Append(rec Record) error {
	row, err := encodeRow(rec)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("append transaction: write header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("append transaction: sync: %w", err)
	}
	return nil
}

// Iterate opens a lazy read-only pass over the log in append order.
// Returns ErrNoData if the log does not exist yet. Call Iterate again to
// restart from the beginning. The caller must Close the iterator.
func (l *Ledger) Iterate() (*Iterator, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	head, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read log: header: %w", err)
	}
	if !slices.Equal(head, header) {
		f.Close()
		return nil, fmt.Errorf("read log: unrecognized header %v", head)
	}

	return &Iterator{f: f, r: r}, nil
}

// Records reads the whole log into memory, in append order.
// Returns ErrNoData if the log does not exist yet.
func (l *Ledger) Records() ([]Record, error) {
	it, err := l.Iterate()
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var recs []Record
	for it.Next() {
		recs = append(recs, it.Record())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

// Iterator walks the log row by row. Usage follows the sql.Rows shape:
//
//	for it.Next() { rec := it.Record(); ... }
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	f   *os.File
	r   *csv.Reader
	cur Record
	err error
}

// Next advances to the next record. Returns false at end of log or on
// error; check Err afterwards.
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}
	row, err := it.r.Read()
	if errors.Is(err, io.EOF) {
		return false
	}
	if err != nil {
		it.err = fmt.Errorf("read log: %w", err)
		return false
	}
	rec, err := decodeRow(row)
	if err != nil {
		it.err = fmt.Errorf("read log: %w", err)
		return false
	}
	it.cur = rec
	return true
}

// Record returns the record produced by the last successful Next.
func (it *Iterator) Record() Record {
	return it.cur
}

// Err returns the first error hit while iterating, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Close releases the underlying file.
func (it *Iterator) Close() error {
	return it.f.Close()
}

func encodeRow(rec Record) ([]string, error) {
	if rec.PaymentType != PaymentCash && rec.PaymentType != PaymentCard {
		return nil, fmt.Errorf("invalid payment type %q", rec.PaymentType)
	}
	linesJSON, err := json.Marshal(rec.Lines)
	if err != nil {
		return nil, fmt.Errorf("encode line items: %w", err)
	}
	return []string{
		rec.Timestamp,
		rec.CashierID,
		rec.CashierName,
		rec.PaymentType,
		rec.CardReference,
		rec.Subtotal.String(),
		rec.Tax.String(),
		rec.Total.String(),
		string(linesJSON),
	}, nil
}

func decodeRow(row []string) (Record, error) {
	rec := Record{
		Timestamp:     row[0],
		CashierID:     row[1],
		CashierName:   row[2],
		PaymentType:   row[3],
		CardReference: row[4],
	}
	var err error
	if rec.Subtotal, err = money.Parse(row[5]); err != nil {
		return Record{}, fmt.Errorf("subtotal: %w", err)
	}
	if rec.Tax, err = money.Parse(row[6]); err != nil {
		return Record{}, fmt.Errorf("tax: %w", err)
	}
	if rec.Total, err = money.Parse(row[7]); err != nil {
		return Record{}, fmt.Errorf("total: %w", err)
	}
	if err := json.Unmarshal([]byte(row[8]), &rec.Lines); err != nil {
		return Record{}, fmt.Errorf("line items: %w", err)
	}
	return rec, nil
}
