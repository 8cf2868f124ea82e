// Package checkout implements the payment workflow that turns the cart of
// an in-progress sale into a committed audit record.
//
// A workflow is born awaiting payment details and moves exactly once to
// committed or aborted. The commit is the terminal, atomic step: the sale
// exists if and only if the audit append succeeded. A failed append leaves
// the workflow awaiting payment so the operator can retry or cancel, with
// the cart untouched.
package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/NickH0dges/CS-445/internal/cart"
	"github.com/NickH0dges/CS-445/internal/ledger"
	"github.com/NickH0dges/CS-445/internal/money"
)

// State is the workflow lifecycle position.
type State int

const (
	// StateAwaitingPayment accepts payment submissions and cancellation.
	StateAwaitingPayment State = iota

	// StateCommitted is terminal: the sale is in the audit log.
	StateCommitted

	// StateAborted is terminal: the operator abandoned the checkout.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateAwaitingPayment:
		return "awaiting-payment"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// timestampFormat is ISO-8601 local time at second precision, matching the
// rows already in existing log files.
const timestampFormat = "2006-01-02T15:04:05"

// Clock supplies commit timestamps. Injected so tests produce stable
// records.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Appender is the audit log dependency. Satisfied by *ledger.Ledger.
type Appender interface {
	Append(ledger.Record) error
}

// Cashier identifies the operator committing the sale.
type Cashier struct {
	ID   string
	Name string
}

// Receipt is the outcome of a committed sale.
type Receipt struct {
	Record ledger.Record

	// ChangeDue is the cash to hand back; always 0.00 for card.
	ChangeDue money.Amount
}

// Workflow is one checkout attempt over one cart. It reads the cart but
// never mutates it; clearing the cart after commit is the session's job.
type Workflow struct {
	state   State
	cart    *cart.Cart
	cashier Cashier
	log     Appender
	clock   Clock
}

// New starts a checkout over a non-empty cart. An empty cart is rejected
// with CodeEmptyCart.
func New(c *cart.Cart, cashier Cashier, log Appender, clock Clock) (*Workflow, error) {
	if c.Len() == 0 {
		return nil, newError(CodeEmptyCart, "cannot start checkout on an empty cart")
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Workflow{state: StateAwaitingPayment, cart: c, cashier: cashier, log: log, clock: clock}, nil
}

// State returns the current lifecycle position.
func (w *Workflow) State() State {
	return w.state
}

// SubmitCash validates a cash payment and commits the sale.
//
// Received below the total is rejected with CodeUnderpayment and the
// workflow keeps awaiting payment. Amounts are exact decimals, so the
// comparison needs no epsilon: received equal to the total is accepted.
func (w *Workflow) SubmitCash(received money.Amount) (*Receipt, error) {
	if err := w.requireAwaiting(); err != nil {
		return nil, err
	}
	total := w.cart.Total()
	if received.Cmp(total) < 0 {
		return nil, newError(CodeUnderpayment,
			fmt.Sprintf("cash received %s is less than the total %s", received, total))
	}
	change := received.Sub(total).Round2()
	if change.IsNegative() {
		change = money.Amount{}
	}
	return w.commit(ledger.PaymentCash, "", change)
}

// SubmitCard commits a card sale with the operator-attested terminal
// reference. An empty reference is not a hard block, but it does demand
// the explicit ConfirmCardWithoutReference step; here it is rejected with
// CodeReferenceMissing and the workflow keeps awaiting payment.
func (w *Workflow) SubmitCard(reference string) (*Receipt, error) {
	if err := w.requireAwaiting(); err != nil {
		return nil, err
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, newError(CodeReferenceMissing,
			"no card transaction reference entered; confirm explicitly to record without one")
	}
	return w.commit(ledger.PaymentCard, reference, money.Amount{})
}

// ConfirmCardWithoutReference commits a card sale with no terminal
// reference. This is the acknowledgement step behind CodeReferenceMissing.
func (w *Workflow) ConfirmCardWithoutReference() (*Receipt, error) {
	if err := w.requireAwaiting(); err != nil {
		return nil, err
	}
	return w.commit(ledger.PaymentCard, "", money.Amount{})
}

// Cancel abandons the checkout before commit, leaving the cart and every
// store unchanged. Cancelling an already-aborted workflow is a no-op;
// cancelling after commit reports CodeDone.
func (w *Workflow) Cancel() error {
	switch w.state {
	case StateAborted:
		return nil
	case StateCommitted:
		return newError(CodeDone, "sale already committed")
	}
	w.state = StateAborted
	return nil
}

func (w *Workflow) requireAwaiting() error {
	if w.state != StateAwaitingPayment {
		return newError(CodeDone, fmt.Sprintf("checkout already %s", w.state))
	}
	return nil
}

// commit snapshots the cart, appends the record, and only then moves to
// StateCommitted. If the append fails the state does not change and the
// sale is not complete.
func (w *Workflow) commit(paymentType, cardReference string, change money.Amount) (*Receipt, error) {
	lines := w.cart.Lines()
	rec := ledger.Record{
		Timestamp:     w.clock.Now().Format(timestampFormat),
		CashierID:     w.cashier.ID,
		CashierName:   w.cashier.Name,
		PaymentType:   paymentType,
		CardReference: cardReference,
		Subtotal:      w.cart.Subtotal(),
		Tax:           w.cart.Tax(),
		Total:         w.cart.Total(),
		Lines:         make([]ledger.Line, len(lines)),
	}
	for i, l := range lines {
		rec.Lines[i] = ledger.Line{SKU: l.SKU, Name: l.Name, UnitPrice: l.UnitPrice, Qty: l.Qty}
	}

	if err := w.log.Append(rec); err != nil {
		return nil, wrapError(CodeAppendFailed, "sale not recorded", err)
	}
	w.state = StateCommitted
	return &Receipt{Record: rec, ChangeDue: change}, nil
}
