package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NickH0dges/CS-445/internal/directory"
)

// UsersOptions holds flags for the users subcommands. User management
// requires an admin account, so every subcommand authenticates with
// --user/--pin first.
type UsersOptions struct {
	*RootOptions
	AuthUser string
	AuthPIN  string

	Name    string
	NewPIN  string
	IsAdmin bool
}

// NewUsersCommand creates the users command group.
func NewUsersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UsersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage cashier accounts (admin only)",
	}
	cmd.PersistentFlags().StringVar(&opts.AuthUser, "user", "", "acting admin user ID (required)")
	cmd.PersistentFlags().StringVar(&opts.AuthPIN, "pin", "", "acting admin PIN (required)")

	list := &cobra.Command{
		Use:           "list",
		Short:         "List every account",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listUsers(opts, cmd)
		},
	}

	add := &cobra.Command{
		Use:           "add <id>",
		Short:         "Create a new account",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return upsertUser(opts, cmd, args[0], false)
		},
	}
	addUserFlags(add, opts)

	edit := &cobra.Command{
		Use:           "edit <id>",
		Short:         "Replace an existing account's name, PIN, and role",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return upsertUser(opts, cmd, args[0], true)
		},
	}
	addUserFlags(edit, opts)

	del := &cobra.Command{
		Use:           "delete <id>",
		Short:         "Remove an account",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return deleteUser(opts, cmd, args[0])
		},
	}

	cmd.AddCommand(list, add, edit, del)
	return cmd
}

func addUserFlags(cmd *cobra.Command, opts *UsersOptions) {
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name (required)")
	cmd.Flags().StringVar(&opts.NewPIN, "new-pin", "", "account PIN (required)")
	cmd.Flags().BoolVar(&opts.IsAdmin, "admin", false, "grant admin rights")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("new-pin")
}

// userRow is the JSON shape for one account. PINs never leave the
// directory.
type userRow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Admin bool   `json:"admin"`
}

func listUsers(opts *UsersOptions, cmd *cobra.Command) error {
	sess, err := adminSession(opts.RootOptions, opts.AuthUser, opts.AuthPIN)
	if err != nil {
		return err
	}
	defer sess.SignOut()

	entries := sess.Directory().List()
	f := formatter(opts.RootOptions, cmd)

	if opts.Format == "json" {
		rows := make([]userRow, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, userRow{ID: e.ID, Name: e.User.Name, Admin: e.User.IsAdmin})
		}
		return f.Success(rows)
	}

	var b strings.Builder
	for _, e := range entries {
		role := "cashier"
		if e.User.IsAdmin {
			role = "admin"
		}
		fmt.Fprintf(&b, "%s  %-20s %s\n", e.ID, e.User.Name, role)
	}
	fmt.Fprintf(&b, "%d account(s)", len(entries))
	return f.Success(b.String())
}

func upsertUser(opts *UsersOptions, cmd *cobra.Command, id string, existing bool) error {
	sess, err := adminSession(opts.RootOptions, opts.AuthUser, opts.AuthPIN)
	if err != nil {
		return err
	}
	defer sess.SignOut()

	u := directory.User{Name: opts.Name, PIN: opts.NewPIN, IsAdmin: opts.IsAdmin}
	if existing {
		err = sess.Directory().Edit(id, u)
	} else {
		err = sess.Directory().Add(id, u)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "directory update refused", err)
	}

	return formatter(opts.RootOptions, cmd).Success(userRow{ID: id, Name: opts.Name, Admin: opts.IsAdmin})
}

func deleteUser(opts *UsersOptions, cmd *cobra.Command, id string) error {
	sess, err := adminSession(opts.RootOptions, opts.AuthUser, opts.AuthPIN)
	if err != nil {
		return err
	}
	defer sess.SignOut()

	if actingID, _, ok := sess.User(); ok && actingID == id {
		return NewExitError(ExitFailure, "cannot delete the signed-in account")
	}
	if err := sess.Directory().Remove(id); err != nil {
		return WrapExitError(ExitFailure, "directory update refused", err)
	}
	return formatter(opts.RootOptions, cmd).Success(fmt.Sprintf("removed %s", id))
}
