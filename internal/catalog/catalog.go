// Package catalog maintains the sellable items, keyed by SKU.
//
// The catalog is a typed wrapper over the JSON record store: every mutating
// operation persists synchronously, and the in-memory mapping only takes a
// mutation once the durable write has succeeded.
package catalog

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/NickH0dges/CS-445/internal/money"
	"github.com/NickH0dges/CS-445/internal/store"
)

// ErrNotFound indicates an unknown SKU on lookup or edit.
var ErrNotFound = errors.New("item not found")

// ErrExists indicates a duplicate SKU on add.
var ErrExists = errors.New("item already exists")

// Item is one sellable item. The SKU lives as the mapping key, not a field.
type Item struct {
	Name  string       `json:"name"`
	Price money.Amount `json:"price"`
}

// Entry pairs an Item with its SKU, for listings and search results.
type Entry struct {
	SKU string
	Item
}

// DefaultItems returns the bootstrap inventory seeded on first run.
func DefaultItems() map[string]Item {
	return map[string]Item{
		"100001": {Name: "Bottle Water", Price: money.MustParse("1.00")},
		"100002": {Name: "Chips", Price: money.MustParse("1.50")},
	}
}

// Catalog is the item reference data for one register. Single-writer; not
// safe for concurrent use.
type Catalog struct {
	store *store.Store[Item]
	items map[string]Item
}

// Open loads the catalog from path, bootstrapping the default items on
// first run. If the backing file was unreadable the returned error carries
// a *store.IntegrityError and the catalog is still usable (on defaults).
func Open(path string) (*Catalog, error) {
	st := store.New[Item](path)
	items, err := st.Load(DefaultItems())
	if err != nil && !store.IsIntegrityError(err) {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return &Catalog{store: st, items: items}, err
}

// Lookup returns the item for an exact SKU.
func (c *Catalog) Lookup(sku string) (Item, bool) {
	it, ok := c.items[sku]
	return it, ok
}

// Add inserts a new item. Fails with ErrExists if the SKU is taken and
// with a validation error on a negative price.
func (c *Catalog) Add(sku string, it Item) error {
	if err := validate(sku, it); err != nil {
		return err
	}
	if _, ok := c.items[sku]; ok {
		return fmt.Errorf("add item %s: %w", sku, ErrExists)
	}
	return c.apply(func(items map[string]Item) {
		items[sku] = it
	})
}

// Edit replaces an existing item. Fails with ErrNotFound if the SKU is
// absent.
func (c *Catalog) Edit(sku string, it Item) error {
	if err := validate(sku, it); err != nil {
		return err
	}
	if _, ok := c.items[sku]; !ok {
		return fmt.Errorf("edit item %s: %w", sku, ErrNotFound)
	}
	return c.apply(func(items map[string]Item) {
		items[sku] = it
	})
}

// Remove deletes an item. Removing an absent SKU is a no-op.
func (c *Catalog) Remove(sku string) error {
	if _, ok := c.items[sku]; !ok {
		return nil
	}
	return c.apply(func(items map[string]Item) {
		delete(items, sku)
	})
}

// Search returns all items whose name contains the query, case-insensitive
// over NFC-normalized text. An empty query matches everything. Results are
// in ascending SKU order.
func (c *Catalog) Search(query string) []Entry {
	q := fold(query)
	var out []Entry
	for sku, it := range c.items {
		if q != "" && !strings.Contains(fold(it.Name), q) {
			continue
		}
		out = append(out, Entry{SKU: sku, Item: it})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

// List returns every item in ascending SKU order.
func (c *Catalog) List() []Entry {
	return c.Search("")
}

// apply runs a mutation against a copy of the mapping, persists the copy,
// and only then swaps it in. A failed save leaves memory and disk on the
// prior consistent state.
func (c *Catalog) apply(mutate func(map[string]Item)) error {
	next := maps.Clone(c.items)
	mutate(next)
	if err := c.store.Save(next); err != nil {
		return err
	}
	c.items = next
	return nil
}

func validate(sku string, it Item) error {
	if strings.TrimSpace(sku) == "" {
		return fmt.Errorf("item: empty SKU")
	}
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("item %s: empty name", sku)
	}
	if it.Price.IsNegative() {
		return fmt.Errorf("item %s: negative price", sku)
	}
	return nil
}

// fold prepares a string for case-insensitive matching: NFC-normalize so
// composed and decomposed forms compare equal, then lower-case.
func fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
