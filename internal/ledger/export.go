package ledger

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ExportText writes a human-readable report of every transaction, in
// append order, to dst. Returns ErrNoData (and writes nothing) when the
// log does not exist yet.
func (l *Ledger) ExportText(dst string) error {
	report, err := l.RenderText()
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, []byte(report), 0o644); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	return nil
}

// RenderText produces the report text without writing it anywhere.
// One block per transaction:
//
//	==================================================
//	Time: 2024-03-01T09:30:00
//	Cashier: Admin (0001)
//	Payment: CASH  CardTxn:
//	Items:
//	  - 2 x Chips @ $1.50
//	Subtotal: $3.00  Tax: $0.25  Total: $3.25
func (l *Ledger) RenderText() (string, error) {
	it, err := l.Iterate()
	if err != nil {
		return "", err
	}
	defer it.Close()

	var out []string
	for it.Next() {
		rec := it.Record()
		out = append(out,
			strings.Repeat("=", 50),
			fmt.Sprintf("Time: %s", rec.Timestamp),
			fmt.Sprintf("Cashier: %s (%s)", rec.CashierName, rec.CashierID),
			fmt.Sprintf("Payment: %s  CardTxn: %s", strings.ToUpper(rec.PaymentType), rec.CardReference),
			"Items:",
		)
		for _, line := range rec.Lines {
			out = append(out, fmt.Sprintf("  - %d x %s @ $%s", line.Qty, line.Name, line.UnitPrice))
		}
		out = append(out,
			fmt.Sprintf("Subtotal: $%s  Tax: $%s  Total: $%s", rec.Subtotal, rec.Tax, rec.Total),
			"",
		)
	}
	if err := it.Err(); err != nil {
		return "", err
	}
	return strings.Join(out, "\n"), nil
}

// ExportCopy duplicates the log file byte-for-byte to dst. Returns
// ErrNoData (and writes nothing) when the log does not exist yet.
func (l *Ledger) ExportCopy(dst string) error {
	src, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return ErrNoData
	}
	if err != nil {
		return fmt.Errorf("export log copy: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("export log copy: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("export log copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("export log copy: %w", err)
	}
	return nil
}
