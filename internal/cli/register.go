package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/NickH0dges/CS-445/internal/catalog"
	"github.com/NickH0dges/CS-445/internal/checkout"
	"github.com/NickH0dges/CS-445/internal/config"
	"github.com/NickH0dges/CS-445/internal/directory"
	"github.com/NickH0dges/CS-445/internal/ledger"
	"github.com/NickH0dges/CS-445/internal/session"
	"github.com/NickH0dges/CS-445/internal/store"
)

// loadConfig resolves the effective configuration: the config file if
// present, schema defaults otherwise, with --data-dir taking precedence
// over both.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	return cfg, nil
}

// openRegister opens the catalog, user directory, and transaction log
// and binds them into a session. A quarantined data file is logged and
// reported but does not stop the register: the store has already
// fallen back to seed data.
func openRegister(opts *RootOptions) (*session.Session, config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, config.Config{}, err
	}

	slog.Debug("opening data files", "dir", cfg.DataDir)

	cat, err := catalog.Open(cfg.ItemsPath())
	if err != nil && !warnIntegrity(err) {
		return nil, config.Config{}, WrapExitError(ExitCommandError, "failed to open catalog", err)
	}
	dir, err := directory.Open(cfg.UsersPath())
	if err != nil && !warnIntegrity(err) {
		return nil, config.Config{}, WrapExitError(ExitCommandError, "failed to open user directory", err)
	}
	led := ledger.Open(cfg.LedgerPath())

	sess := session.New(cat, dir, led, cfg.Rate(), checkout.SystemClock)
	return sess, cfg, nil
}

// warnIntegrity reports quarantined data files and tells the caller
// whether the error was just that.
func warnIntegrity(err error) bool {
	var ie *store.IntegrityError
	if errors.As(err, &ie) {
		slog.Warn("data file was corrupt and has been quarantined",
			"path", ie.Path, "quarantine", ie.QuarantinePath)
		return true
	}
	return false
}

// signIn authenticates the cashier named by --user/--pin on the
// session, failing with ExitFailure on bad credentials.
func signIn(sess *session.Session, userID, pin string) error {
	if err := sess.SignIn(userID, pin); err != nil {
		return WrapExitError(ExitFailure, "sign-in failed", err)
	}
	return nil
}

// adminSession opens the register, signs the acting operator in, and
// verifies the admin role. Reference-data mutations go through here.
func adminSession(opts *RootOptions, userID, pin string) (*session.Session, error) {
	sess, _, err := openRegister(opts)
	if err != nil {
		return nil, err
	}
	if err := signIn(sess, userID, pin); err != nil {
		return nil, err
	}
	if err := sess.RequireAdmin(); err != nil {
		return nil, WrapExitError(ExitFailure, "admin rights required", err)
	}
	return sess, nil
}

// errorCode maps a command failure to the machine-readable code of the
// JSON error envelope. Domain refusals keep their domain codes so
// callers can branch on them.
func errorCode(err error) string {
	var ce *checkout.Error
	switch {
	case errors.As(err, &ce):
		return string(ce.Code)
	case errors.Is(err, ledger.ErrNoData):
		return "NO_DATA"
	case errors.Is(err, catalog.ErrNotFound) || errors.Is(err, directory.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, catalog.ErrExists) || errors.Is(err, directory.ErrExists):
		return "ALREADY_EXISTS"
	case errors.Is(err, session.ErrBadCredentials):
		return "BAD_CREDENTIALS"
	case errors.Is(err, session.ErrNotAdmin):
		return "ADMIN_REQUIRED"
	case GetExitCode(err) == ExitCommandError:
		return "COMMAND_ERROR"
	default:
		return "FAILURE"
	}
}

// formatter builds the output formatter for a command invocation.
func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
