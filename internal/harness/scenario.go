package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NickH0dges/CS-445/internal/ledger"
	"github.com/NickH0dges/CS-445/internal/money"
)

// Scenario defines an end-to-end register session: the catalog and user
// seed data, the cashier signing in, and one or more sales rung up
// against a fresh data directory.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// TaxRate overrides the default rate. Written as a decimal string
	// so the amount stays exact.
	TaxRate string `yaml:"tax_rate,omitempty"`

	// Items seeds the catalog before the session starts.
	Items []SeedItem `yaml:"items,omitempty"`

	// Users seeds the directory beyond the built-in admin.
	Users []SeedUser `yaml:"users,omitempty"`

	// Cashier signs in for the whole scenario. Defaults to the
	// built-in admin account when empty.
	Cashier Credentials `yaml:"cashier,omitempty"`

	// Sales are rung up in order, each one a full cart-to-payment flow.
	Sales []Sale `yaml:"sales"`
}

// SeedItem adds one product to the catalog before the flow runs.
type SeedItem struct {
	SKU   string `yaml:"sku"`
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
}

// SeedUser adds one account to the user directory before the flow runs.
type SeedUser struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	PIN   string `yaml:"pin"`
	Admin bool   `yaml:"admin,omitempty"`
}

// Credentials identify the cashier running the scenario.
type Credentials struct {
	ID  string `yaml:"id"`
	PIN string `yaml:"pin"`
}

// Sale is one complete transaction: cart edits followed by payment.
type Sale struct {
	Steps   []Step  `yaml:"steps"`
	Payment Payment `yaml:"payment"`
}

// Step is a single cart edit. Exactly one of the fields is set.
type Step struct {
	Add    *AddStep    `yaml:"add,omitempty"`
	SetQty *SetQtyStep `yaml:"set_qty,omitempty"`
	Remove *RemoveStep `yaml:"remove,omitempty"`
}

// AddStep scans an item into the cart.
type AddStep struct {
	SKU string `yaml:"sku"`
	Qty int    `yaml:"qty"`
}

// SetQtyStep changes the quantity of an existing cart line.
type SetQtyStep struct {
	Index int `yaml:"index"`
	Qty   int `yaml:"qty"`
}

// RemoveStep voids a cart line.
type RemoveStep struct {
	Index int `yaml:"index"`
}

// Payment settles the sale. Cash needs an amount, card a reference.
type Payment struct {
	Type      string `yaml:"type"`
	Amount    string `yaml:"amount,omitempty"`
	Reference string `yaml:"reference,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields
// are rejected so a typo fails loudly instead of silently skipping a
// step.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

func validateScenario(sc *Scenario) error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if sc.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(sc.Sales) == 0 {
		return fmt.Errorf("sales list is required and must be non-empty")
	}
	if sc.TaxRate != "" {
		if _, err := money.Parse(sc.TaxRate); err != nil {
			return fmt.Errorf("tax_rate %q: %w", sc.TaxRate, err)
		}
	}
	for i, item := range sc.Items {
		if item.SKU == "" || item.Name == "" {
			return fmt.Errorf("items[%d]: sku and name are required", i)
		}
		if _, err := money.Parse(item.Price); err != nil {
			return fmt.Errorf("items[%d] price %q: %w", i, item.Price, err)
		}
	}
	for i, sale := range sc.Sales {
		for j, step := range sale.Steps {
			if err := validateStep(step); err != nil {
				return fmt.Errorf("sales[%d].steps[%d]: %w", i, j, err)
			}
		}
		if err := validatePayment(sale.Payment); err != nil {
			return fmt.Errorf("sales[%d].payment: %w", i, err)
		}
	}
	return nil
}

func validateStep(st Step) error {
	n := 0
	if st.Add != nil {
		n++
	}
	if st.SetQty != nil {
		n++
	}
	if st.Remove != nil {
		n++
	}
	if n != 1 {
		return fmt.Errorf("exactly one of add, set_qty, remove must be set")
	}
	return nil
}

func validatePayment(p Payment) error {
	switch p.Type {
	case ledger.PaymentCash:
		if _, err := money.Parse(p.Amount); err != nil {
			return fmt.Errorf("cash amount %q: %w", p.Amount, err)
		}
	case ledger.PaymentCard:
		// Reference may be empty; the flow then confirms without one.
	default:
		return fmt.Errorf("unknown payment type %q", p.Type)
	}
	return nil
}
