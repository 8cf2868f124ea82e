// Package cli implements the ezpos command tree: catalog and user
// management, ringing up sales, exporting the transaction log, and
// sales reports.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Config  string // path to the CUE config file
	DataDir string // overrides the config's data directory when set
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ezpos CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ezpos",
		Short: "EZ-POS - a single-register point of sale",
		Long: `A single-register point of sale: catalog and cashier management,
cart-based checkout with cash or card payment, and an append-only
transaction log with text and CSV export.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "ezpos.cue", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides config)")

	cmd.AddCommand(NewItemsCommand(opts))
	cmd.AddCommand(NewUsersCommand(opts))
	cmd.AddCommand(NewSellCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	decorateErrors(opts, cmd)

	return cmd
}

// decorateErrors wraps every subcommand so failures are presented
// through the OutputFormatter in the configured format before the exit
// code propagates. In JSON mode this keeps the output machine-readable
// on error paths, not just on success.
func decorateErrors(opts *RootOptions, cmd *cobra.Command) {
	for _, sub := range cmd.Commands() {
		decorateErrors(opts, sub)
	}
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		err := run(c, args)
		if err != nil {
			_ = formatter(opts, c).Error(errorCode(err), err.Error(), nil)
		}
		return err
	}
}

// configureLogging routes diagnostics to stderr; --verbose lowers the
// level to debug.
func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
