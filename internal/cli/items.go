package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NickH0dges/CS-445/internal/catalog"
	"github.com/NickH0dges/CS-445/internal/money"
)

// ItemsOptions holds flags for the items subcommands. Listing and
// searching are open; mutations change reference data and require an
// admin account, authenticated with --user/--pin.
type ItemsOptions struct {
	*RootOptions
	AuthUser string
	AuthPIN  string

	Name  string
	Price string
}

// NewItemsCommand creates the items command group.
func NewItemsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ItemsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage the product catalog",
	}

	list := &cobra.Command{
		Use:           "list",
		Short:         "List every catalog item in SKU order",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listItems(opts, cmd, "")
		},
	}

	search := &cobra.Command{
		Use:           "search <query>",
		Short:         "Search items by name, case- and accent-insensitively",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listItems(opts, cmd, args[0])
		},
	}

	add := &cobra.Command{
		Use:           "add <sku>",
		Short:         "Add a new catalog item (admin only)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return upsertItem(opts, cmd, args[0], false)
		},
	}
	addItemFlags(add, opts)

	edit := &cobra.Command{
		Use:           "edit <sku>",
		Short:         "Replace an existing item's name and price (admin only)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return upsertItem(opts, cmd, args[0], true)
		},
	}
	addItemFlags(edit, opts)

	del := &cobra.Command{
		Use:           "delete <sku>",
		Short:         "Remove an item from the catalog (admin only)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteItem(opts, cmd, args[0])
		},
	}
	addAuthFlags(del, opts)

	cmd.AddCommand(list, search, add, edit, del)
	return cmd
}

func addAuthFlags(cmd *cobra.Command, opts *ItemsOptions) {
	cmd.Flags().StringVar(&opts.AuthUser, "user", "", "acting admin user ID (required)")
	cmd.Flags().StringVar(&opts.AuthPIN, "pin", "", "acting admin PIN (required)")
}

func addItemFlags(cmd *cobra.Command, opts *ItemsOptions) {
	addAuthFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.Name, "name", "", "item name (required)")
	cmd.Flags().StringVar(&opts.Price, "price", "", "unit price, e.g. 1.50 (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
}

// itemRow is the JSON shape for one catalog entry.
type itemRow struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

func listItems(opts *ItemsOptions, cmd *cobra.Command, query string) error {
	sess, _, err := openRegister(opts.RootOptions)
	if err != nil {
		return err
	}

	entries := sess.Catalog().Search(query)
	f := formatter(opts.RootOptions, cmd)

	if opts.Format == "json" {
		rows := make([]itemRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, itemRow{SKU: e.SKU, Name: e.Item.Name, Price: e.Item.Price.String()})
		}
		return f.Success(rows)
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s  %-20s $%s\n", e.SKU, e.Item.Name, e.Item.Price)
	}
	fmt.Fprintf(&b, "%d item(s)", len(entries))
	return f.Success(b.String())
}

func upsertItem(opts *ItemsOptions, cmd *cobra.Command, sku string, existing bool) error {
	sess, err := adminSession(opts.RootOptions, opts.AuthUser, opts.AuthPIN)
	if err != nil {
		return err
	}
	defer sess.SignOut()

	price, err := money.Parse(opts.Price)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid price %q", opts.Price), err)
	}
	item := catalog.Item{Name: opts.Name, Price: price}

	if existing {
		err = sess.Catalog().Edit(sku, item)
	} else {
		err = sess.Catalog().Add(sku, item)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "catalog update refused", err)
	}

	return formatter(opts.RootOptions, cmd).Success(itemRow{SKU: sku, Name: opts.Name, Price: price.String()})
}

func deleteItem(opts *ItemsOptions, cmd *cobra.Command, sku string) error {
	sess, err := adminSession(opts.RootOptions, opts.AuthUser, opts.AuthPIN)
	if err != nil {
		return err
	}
	defer sess.SignOut()

	if err := sess.Catalog().Remove(sku); err != nil {
		return WrapExitError(ExitFailure, "catalog update refused", err)
	}
	return formatter(opts.RootOptions, cmd).Success(fmt.Sprintf("removed %s", sku))
}
