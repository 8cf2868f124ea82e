package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NickH0dges/CS-445/internal/ledger"
)

// NewExportCommand creates the export command group.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the transaction log",
	}

	report := &cobra.Command{
		Use:           "report <dst>",
		Short:         "Write a human-readable report of every transaction",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, cmd, args[0], (*ledger.Ledger).ExportText)
		},
	}

	logCopy := &cobra.Command{
		Use:           "log <dst>",
		Short:         "Copy the raw transaction log byte for byte",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, cmd, args[0], (*ledger.Ledger).ExportCopy)
		},
	}

	cmd.AddCommand(report, logCopy)
	return cmd
}

func runExport(opts *RootOptions, cmd *cobra.Command, dst string, export func(*ledger.Ledger, string) error) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	led := ledger.Open(cfg.LedgerPath())
	if err := export(led, dst); err != nil {
		if errors.Is(err, ledger.ErrNoData) {
			return WrapExitError(ExitFailure, "no transactions to export", err)
		}
		return WrapExitError(ExitCommandError, "export failed", err)
	}

	return formatter(opts, cmd).Success(fmt.Sprintf("exported to %s", dst))
}
