// Package cart holds the working set of one in-progress sale.
//
// Totals are pure functions of the current lines, recomputed on every
// call; nothing is cached. Tax rounds once, after summation, never per
// line.
package cart

import (
	"errors"
	"fmt"
	"slices"

	"github.com/NickH0dges/CS-445/internal/money"
)

// ErrQuantity indicates a non-positive quantity passed to Add.
var ErrQuantity = errors.New("quantity must be at least 1")

// Line is one cart line. UnitPrice is snapshotted at add time so a later
// catalog edit cannot reprice a sale in progress.
type Line struct {
	SKU       string
	Name      string
	UnitPrice money.Amount
	Qty       int
}

// Cart is an ordered sequence of lines, insertion order. Owned by exactly
// one session at a time; not safe for concurrent use.
type Cart struct {
	rate  money.Amount
	lines []Line
}

// New creates an empty cart taxed at the given rate (e.g. 0.0825).
func New(taxRate money.Amount) *Cart {
	return &Cart{rate: taxRate}
}

// Add appends qty of an item, or bumps the quantity of the existing line
// when the SKU is already in the cart. At most one line ever exists per
// SKU. A quantity below 1 is rejected.
func (c *Cart) Add(sku, name string, unitPrice money.Amount, qty int) error {
	if qty < 1 {
		return fmt.Errorf("add %s: %w (got %d)", sku, ErrQuantity, qty)
	}
	for i := range c.lines {
		if c.lines[i].SKU == sku {
			c.lines[i].Qty += qty
			return nil
		}
	}
	c.lines = append(c.lines, Line{SKU: sku, Name: name, UnitPrice: unitPrice, Qty: qty})
	return nil
}

// RemoveAt removes the line at index. Out of range is a no-op: the index
// came from a screen row that may have just been removed, which is not a
// bug worth surfacing.
func (c *Cart) RemoveAt(index int) {
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines = slices.Delete(c.lines, index, index+1)
}

// SetQuantity sets the quantity of the line at index, clamped to a
// minimum of 1. Out of range is a no-op, as with RemoveAt.
func (c *Cart) SetQuantity(index, qty int) {
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines[index].Qty = max(1, qty)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	return slices.Clone(c.lines)
}

// Subtotal is the exact sum of unit price times quantity over all lines.
func (c *Cart) Subtotal() money.Amount {
	var sum money.Amount
	for _, l := range c.lines {
		sum = sum.Add(l.UnitPrice.MulInt(l.Qty))
	}
	return sum
}

// Tax is the subtotal times the tax rate, rounded to cents.
func (c *Cart) Tax() money.Amount {
	return c.Subtotal().Mul(c.rate).Round2()
}

// Total is subtotal plus tax, rounded to cents.
func (c *Cart) Total() money.Amount {
	return c.Subtotal().Add(c.Tax()).Round2()
}
