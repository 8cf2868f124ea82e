package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NickH0dges/CS-445/internal/ledger"
	"github.com/NickH0dges/CS-445/internal/report"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
	GroupBy  string
}

// Valid --by groupings.
var validGroupings = []string{"overall", "cashier", "payment", "day"}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the transaction log",
		Long: `Summarize the transaction log: transaction count, collected tax, and
gross total, overall or grouped by cashier, payment type, or day.

The log is loaded into a SQLite index for querying; by default the
index lives in memory and is discarded afterwards.

Example:
  ezpos report
  ezpos report --by cashier
  ezpos report --by day --db ./sales-index.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", ":memory:", "path to the SQLite index")
	cmd.Flags().StringVar(&opts.GroupBy, "by", "overall", "grouping (overall|cashier|payment|day)")

	return cmd
}

// summaryRow is the JSON shape for one summary line.
type summaryRow struct {
	Group string `json:"group,omitempty"`
	Count int    `json:"count"`
	Tax   string `json:"tax"`
	Total string `json:"total"`
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	valid := false
	for _, g := range validGroupings {
		if opts.GroupBy == g {
			valid = true
		}
	}
	if !valid {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid grouping %q: must be one of %v", opts.GroupBy, validGroupings))
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}

	rep, err := report.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open report index", err)
	}
	defer func() {
		if closeErr := rep.Close(); closeErr != nil {
			slog.Error("error closing report index", "error", closeErr)
		}
	}()

	f := formatter(opts.RootOptions, cmd)

	ctx := cmd.Context()
	led := ledger.Open(cfg.LedgerPath())
	n, err := rep.Import(ctx, led)
	if err != nil {
		if errors.Is(err, ledger.ErrNoData) {
			return WrapExitError(ExitFailure, "no transactions to report on", err)
		}
		return WrapExitError(ExitCommandError, "failed to index transactions", err)
	}
	f.VerboseLog("indexed %d transaction(s) from %s", n, led.Path())

	rows, err := collectRows(opts, rep, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "report query failed", err)
	}
	if opts.Format == "json" {
		return f.Success(rows)
	}

	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		if r.Group != "" {
			fmt.Fprintf(&b, "%-12s  ", r.Group)
		}
		fmt.Fprintf(&b, "%d transaction(s)  Tax: $%s  Total: $%s", r.Count, r.Tax, r.Total)
	}
	return f.Success(b.String())
}

func collectRows(opts *ReportOptions, rep *report.Report, cmd *cobra.Command) ([]summaryRow, error) {
	ctx := cmd.Context()
	switch opts.GroupBy {
	case "cashier":
		groups, err := rep.ByCashier(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]summaryRow, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, summaryRow{
				Group: fmt.Sprintf("%s (%s)", g.CashierName, g.CashierID),
				Count: g.Count, Tax: g.Tax.String(), Total: g.Total.String(),
			})
		}
		return rows, nil
	case "payment":
		groups, err := rep.ByPaymentType(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]summaryRow, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, summaryRow{
				Group: g.PaymentType,
				Count: g.Count, Tax: g.Tax.String(), Total: g.Total.String(),
			})
		}
		return rows, nil
	case "day":
		groups, err := rep.ByDay(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]summaryRow, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, summaryRow{
				Group: g.Day,
				Count: g.Count, Tax: g.Tax.String(), Total: g.Total.String(),
			})
		}
		return rows, nil
	default:
		sum, err := rep.Overall(ctx)
		if err != nil {
			return nil, err
		}
		return []summaryRow{{Count: sum.Count, Tax: sum.Tax.String(), Total: sum.Total.String()}}, nil
	}
}
