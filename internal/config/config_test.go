package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ezpos.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".", cfg.DataDir)
	assert.Equal(t, "pos_users.json", cfg.UsersFile)
	assert.Equal(t, "pos_items.json", cfg.ItemsFile)
	assert.Equal(t, "pos_transactions.csv", cfg.LedgerFile)
	assert.Equal(t, "0.0825", cfg.TaxRate)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialOverride(t *testing.T) {
	path := writeConfig(t, `
data_dir: "/var/lib/ezpos"
tax_rate: "0.07"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ezpos", cfg.DataDir)
	assert.Equal(t, "0.07", cfg.TaxRate)
	// Fields the file does not mention keep their defaults.
	assert.Equal(t, "pos_items.json", cfg.ItemsFile)
}

func TestLoad_RejectsWrongType(t *testing.T) {
	path := writeConfig(t, `tax_rate: 0.07`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsUnparseableRate(t *testing.T) {
	path := writeConfig(t, `tax_rate: "eight percent"`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsNegativeRate(t *testing.T) {
	path := writeConfig(t, `tax_rate: "-0.05"`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsRateAtOrAboveOne(t *testing.T) {
	path := writeConfig(t, `tax_rate: "1.00"`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_SyntaxError(t *testing.T) {
	path := writeConfig(t, `data_dir: {{{{`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data"
	assert.Equal(t, filepath.Join("/data", "pos_users.json"), cfg.UsersPath())
	assert.Equal(t, filepath.Join("/data", "pos_items.json"), cfg.ItemsPath())
	assert.Equal(t, filepath.Join("/data", "pos_transactions.csv"), cfg.LedgerPath())
}

func TestRate(t *testing.T) {
	assert.Equal(t, "0.08", Default().Rate().Round2().String())
}
