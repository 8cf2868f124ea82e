package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NickH0dges/CS-445/internal/checkout"
	"github.com/NickH0dges/CS-445/internal/money"
)

// SellOptions holds flags for the sell command.
type SellOptions struct {
	*RootOptions
	User  string
	PIN   string
	Items []string
	Cash  string
	Card  string
}

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Ring up one sale and print the receipt",
		Long: `Ring up one complete sale: sign in, scan items, take payment, and
append the transaction to the log.

Items are given as SKU or SKU:QTY. Pay with --cash AMOUNT or
--card REFERENCE; an empty --card "" records a card sale without a
transaction reference.

Example:
  ezpos sell --user 0001 --pin 1234 --item 100001 --item 100002:3 --cash 10.00
  ezpos sell --user 0001 --pin 1234 --item 100002 --card AUTH-1234`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSell(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "", "cashier user ID (required)")
	cmd.Flags().StringVar(&opts.PIN, "pin", "", "cashier PIN (required)")
	cmd.Flags().StringArrayVar(&opts.Items, "item", nil, "item to sell, as SKU or SKU:QTY (repeatable)")
	cmd.Flags().StringVar(&opts.Cash, "cash", "", "pay cash with this amount")
	cmd.Flags().StringVar(&opts.Card, "card", "", "pay card with this transaction reference")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pin")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}

// receiptView is the JSON shape of a committed sale.
type receiptView struct {
	Timestamp   string `json:"timestamp"`
	Cashier     string `json:"cashier"`
	PaymentType string `json:"payment_type"`
	CardTxn     string `json:"card_txn,omitempty"`
	Subtotal    string `json:"subtotal"`
	Tax         string `json:"tax"`
	Total       string `json:"total"`
	ChangeDue   string `json:"change_due"`
}

func runSell(opts *SellOptions, cmd *cobra.Command) error {
	payCash := cmd.Flags().Changed("cash")
	payCard := cmd.Flags().Changed("card")
	if payCash == payCard {
		return NewExitError(ExitCommandError, "exactly one of --cash or --card is required")
	}

	sess, _, err := openRegister(opts.RootOptions)
	if err != nil {
		return err
	}
	if err := signIn(sess, opts.User, opts.PIN); err != nil {
		return err
	}
	defer sess.SignOut()

	for _, spec := range opts.Items {
		sku, qty, err := parseItemSpec(spec)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --item %q", spec), err)
		}
		if err := sess.AddItem(sku, qty); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("cannot sell %s", sku), err)
		}
	}

	if _, err := sess.BeginCheckout(); err != nil {
		return WrapExitError(ExitFailure, "checkout refused", err)
	}

	var receipt *checkout.Receipt
	switch {
	case payCash:
		received, err := money.Parse(opts.Cash)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("invalid --cash %q", opts.Cash), err)
		}
		receipt, err = sess.SubmitCash(received)
		if err != nil {
			return WrapExitError(ExitFailure, "payment refused", err)
		}
	case opts.Card == "":
		receipt, err = sess.ConfirmCardWithoutReference()
		if err != nil {
			return WrapExitError(ExitFailure, "payment refused", err)
		}
	default:
		receipt, err = sess.SubmitCard(opts.Card)
		if err != nil {
			return WrapExitError(ExitFailure, "payment refused", err)
		}
	}

	return printReceipt(opts.RootOptions, cmd, receipt)
}

// parseItemSpec splits "SKU" or "SKU:QTY" into its parts. A bare SKU
// means quantity one.
func parseItemSpec(spec string) (sku string, qty int, err error) {
	sku, qtyStr, found := strings.Cut(spec, ":")
	if sku == "" {
		return "", 0, fmt.Errorf("empty SKU")
	}
	if !found {
		return sku, 1, nil
	}
	qty, err = strconv.Atoi(qtyStr)
	if err != nil {
		return "", 0, fmt.Errorf("quantity %q: %w", qtyStr, err)
	}
	return sku, qty, nil
}

func printReceipt(opts *RootOptions, cmd *cobra.Command, receipt *checkout.Receipt) error {
	rec := receipt.Record
	f := formatter(opts, cmd)

	if opts.Format == "json" {
		return f.Success(receiptView{
			Timestamp:   rec.Timestamp,
			Cashier:     rec.CashierID,
			PaymentType: rec.PaymentType,
			CardTxn:     rec.CardReference,
			Subtotal:    rec.Subtotal.String(),
			Tax:         rec.Tax.String(),
			Total:       rec.Total.String(),
			ChangeDue:   receipt.ChangeDue.String(),
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sale committed at %s by %s (%s)\n", rec.Timestamp, rec.CashierName, rec.CashierID)
	for _, line := range rec.Lines {
		fmt.Fprintf(&b, "  %d x %s @ $%s\n", line.Qty, line.Name, line.UnitPrice)
	}
	fmt.Fprintf(&b, "Subtotal: $%s  Tax: $%s  Total: $%s\n", rec.Subtotal, rec.Tax, rec.Total)
	if rec.PaymentType == "cash" {
		fmt.Fprintf(&b, "Paid cash, change due $%s", receipt.ChangeDue)
	} else {
		fmt.Fprintf(&b, "Paid card (%s)", rec.CardReference)
	}
	return f.Success(b.String())
}
