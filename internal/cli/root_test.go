package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NickH0dges/CS-445/internal/catalog"
	"github.com/NickH0dges/CS-445/internal/checkout"
	"github.com/NickH0dges/CS-445/internal/ledger"
	"github.com/NickH0dges/CS-445/internal/session"
)

// execute runs the CLI with the given args against a fresh command
// tree, capturing stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "ezpos", cmd.Use)
	assert.Contains(t, cmd.Long, "point of sale")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"items", "users", "sell", "export", "report"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dataDirFlag := cmd.PersistentFlags().Lookup("data-dir")
	require.NotNil(t, dataDirFlag)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "ezpos.cue", configFlag.DefValue)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := execute(t, "--format", "invalid", "items", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestFailure_JSONErrorEnvelope(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "--data-dir", dir, "--format", "json", "sell",
		"--user", "0001", "--pin", "1234",
		"--item", "100002",
		"--cash", "1.00")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNDERPAYMENT", resp.Error.Code)
}

func TestFailure_JSONNoData(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "--data-dir", dir, "--format", "json",
		"export", "report", filepath.Join(dir, "report.txt"))
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_DATA", resp.Error.Code)
}

func TestFailure_JSONBadCredentials(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "--data-dir", dir, "--format", "json", "users", "list",
		"--user", "0001", "--pin", "9999")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "BAD_CREDENTIALS", resp.Error.Code)
}

func TestFailure_TextError(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "--data-dir", dir, "sell",
		"--user", "0001", "--pin", "1234",
		"--item", "999999",
		"--cash", "5.00")
	require.Error(t, err)
	assert.Contains(t, out, "Error [NOT_FOUND]:")
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "NO_DATA", errorCode(WrapExitError(ExitFailure, "x", ledger.ErrNoData)))
	assert.Equal(t, "ADMIN_REQUIRED", errorCode(WrapExitError(ExitFailure, "x", session.ErrNotAdmin)))
	assert.Equal(t, "ALREADY_EXISTS", errorCode(WrapExitError(ExitFailure, "x", catalog.ErrExists)))
	assert.Equal(t, "COMMAND_ERROR", errorCode(NewExitError(ExitCommandError, "bad flags")))
	assert.Equal(t, "FAILURE", errorCode(NewExitError(ExitFailure, "other")))
	assert.Equal(t, "UNDERPAYMENT",
		errorCode(WrapExitError(ExitFailure, "x",
			&checkout.Error{Code: checkout.CodeUnderpayment, Message: "short"})))
}

func TestReportCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	reportCmd, _, err := cmd.Find([]string{"report"})
	require.NoError(t, err)

	dbFlag := reportCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, ":memory:", dbFlag.DefValue)

	byFlag := reportCmd.Flags().Lookup("by")
	require.NotNil(t, byFlag)
	assert.Equal(t, "overall", byFlag.DefValue)
}

func TestSellCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	sellCmd, _, err := cmd.Find([]string{"sell"})
	require.NoError(t, err)

	for _, name := range []string{"user", "pin", "item", "cash", "card"} {
		require.NotNil(t, sellCmd.Flags().Lookup(name), "flag --%s should exist", name)
	}
}
