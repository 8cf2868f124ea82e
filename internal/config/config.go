// Package config loads register configuration from an optional CUE file.
//
// The schema carries defaults for every field, so a missing or empty
// config file yields a fully usable configuration. A present file is
// unified against the schema and validated before use, which catches
// wrong types and out-of-range tax rates at startup rather than at
// checkout time.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/NickH0dges/CS-445/internal/money"
)

// schema is the authoritative shape of a config file. Every field has a
// default, so partial files are fine.
const schema = `
data_dir:    string | *"."
users_file:  string | *"pos_users.json"
items_file:  string | *"pos_items.json"
ledger_file: string | *"pos_transactions.csv"
tax_rate:    string | *"0.0825"
`

// Config is the resolved register configuration.
type Config struct {
	DataDir    string `json:"data_dir"`
	UsersFile  string `json:"users_file"`
	ItemsFile  string `json:"items_file"`
	LedgerFile string `json:"ledger_file"`
	TaxRate    string `json:"tax_rate"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	cfg, err := build("")
	if err != nil {
		// The empty unification against the schema cannot fail.
		panic(err)
	}
	return cfg
}

// Load reads the CUE config file at path. A missing file is not an
// error: the schema defaults apply.
func Load(path string) (Config, error) {
	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := build(string(src))
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func build(src string) (Config, error) {
	ctx := cuecontext.New()

	v := ctx.CompileString(schema)
	if err := v.Err(); err != nil {
		return Config{}, fmt.Errorf("compiling schema: %w", err)
	}
	if src != "" {
		file := ctx.CompileString(src)
		if err := file.Err(); err != nil {
			return Config{}, fmt.Errorf("parsing: %w", err)
		}
		v = v.Unify(file)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("validating: %w", err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding: %w", err)
	}
	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// check enforces constraints CUE's type system does not express.
func (c Config) check() error {
	rate, err := money.Parse(c.TaxRate)
	if err != nil {
		return fmt.Errorf("tax_rate %q: %w", c.TaxRate, err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("tax_rate %q: must not be negative", c.TaxRate)
	}
	if rate.Cmp(money.MustParse("1")) >= 0 {
		return fmt.Errorf("tax_rate %q: must be a fraction below 1", c.TaxRate)
	}
	return nil
}

// Rate returns the tax rate as an exact decimal.
func (c Config) Rate() money.Amount {
	return money.MustParse(c.TaxRate)
}

// UsersPath is the user directory file under the data directory.
func (c Config) UsersPath() string { return filepath.Join(c.DataDir, c.UsersFile) }

// ItemsPath is the catalog file under the data directory.
func (c Config) ItemsPath() string { return filepath.Join(c.DataDir, c.ItemsFile) }

// LedgerPath is the transaction log under the data directory.
func (c Config) LedgerPath() string { return filepath.Join(c.DataDir, c.LedgerFile) }
