// Package harness runs YAML-described register scenarios end to end:
// seed data files, a signed-in cashier, cart edits, payment, and the
// exported transaction report. Tests compare the report against golden
// files, so a change to totals, rounding, or report layout shows up as
// a diff instead of a silent regression.
package harness

import (
	"fmt"
	"path/filepath"

	"github.com/NickH0dges/CS-445/internal/catalog"
	"github.com/NickH0dges/CS-445/internal/checkout"
	"github.com/NickH0dges/CS-445/internal/config"
	"github.com/NickH0dges/CS-445/internal/directory"
	"github.com/NickH0dges/CS-445/internal/ledger"
	"github.com/NickH0dges/CS-445/internal/money"
	"github.com/NickH0dges/CS-445/internal/session"
)

// Result captures everything a scenario produced.
type Result struct {
	// Receipts holds one receipt per sale, in execution order.
	Receipts []*checkout.Receipt

	// Report is the rendered text of the full transaction log.
	Report string
}

// Run executes a scenario against a fresh data directory. The clock
// controls receipt timestamps; pass a fixed clock for deterministic
// output.
func Run(sc *Scenario, dataDir string, clock checkout.Clock) (*Result, error) {
	cfg := config.Default()
	cfg.DataDir = dataDir

	cat, err := catalog.Open(cfg.ItemsPath())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	dir, err := directory.Open(cfg.UsersPath())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	led := ledger.Open(cfg.LedgerPath())

	for _, item := range sc.Items {
		err := cat.Add(item.SKU, catalog.Item{Name: item.Name, Price: money.MustParse(item.Price)})
		if err != nil {
			return nil, fmt.Errorf("scenario %s: seed item %s: %w", sc.Name, item.SKU, err)
		}
	}
	for _, u := range sc.Users {
		err := dir.Add(u.ID, directory.User{Name: u.Name, PIN: u.PIN, IsAdmin: u.Admin})
		if err != nil {
			return nil, fmt.Errorf("scenario %s: seed user %s: %w", sc.Name, u.ID, err)
		}
	}

	rate := cfg.Rate()
	if sc.TaxRate != "" {
		rate = money.MustParse(sc.TaxRate)
	}
	sess := session.New(cat, dir, led, rate, clock)

	creds := sc.Cashier
	if creds.ID == "" {
		creds = Credentials{ID: "0001", PIN: "1234"}
	}
	if err := sess.SignIn(creds.ID, creds.PIN); err != nil {
		return nil, fmt.Errorf("scenario %s: sign in %s: %w", sc.Name, creds.ID, err)
	}
	defer sess.SignOut()

	res := &Result{}
	for i, sale := range sc.Sales {
		receipt, err := runSale(sess, sale)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: sale %d: %w", sc.Name, i, err)
		}
		res.Receipts = append(res.Receipts, receipt)
	}

	report, err := led.RenderText()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: render report: %w", sc.Name, err)
	}
	res.Report = report
	return res, nil
}

func runSale(sess *session.Session, sale Sale) (*checkout.Receipt, error) {
	for _, step := range sale.Steps {
		switch {
		case step.Add != nil:
			if err := sess.AddItem(step.Add.SKU, step.Add.Qty); err != nil {
				return nil, fmt.Errorf("add %s: %w", step.Add.SKU, err)
			}
		case step.SetQty != nil:
			sess.Cart().SetQuantity(step.SetQty.Index, step.SetQty.Qty)
		case step.Remove != nil:
			sess.Cart().RemoveAt(step.Remove.Index)
		}
	}

	if _, err := sess.BeginCheckout(); err != nil {
		return nil, fmt.Errorf("begin checkout: %w", err)
	}

	switch sale.Payment.Type {
	case ledger.PaymentCash:
		return sess.SubmitCash(money.MustParse(sale.Payment.Amount))
	case ledger.PaymentCard:
		if sale.Payment.Reference == "" {
			return sess.ConfirmCardWithoutReference()
		}
		return sess.SubmitCard(sale.Payment.Reference)
	}
	return nil, fmt.Errorf("unknown payment type %q", sale.Payment.Type)
}

// RunFile loads the scenario at path and runs it.
func RunFile(path, dataDir string, clock checkout.Clock) (*Result, error) {
	sc, err := LoadScenario(path)
	if err != nil {
		return nil, err
	}
	return Run(sc, dataDir, clock)
}

// ScenarioFiles returns every .yaml scenario under dir, sorted.
func ScenarioFiles(dir string) ([]string, error) {
	return filepath.Glob(filepath.Join(dir, "*.yaml"))
}
