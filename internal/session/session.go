// Package session ties one signed-in operator to the cart, the reference
// data, and the audit log.
//
// The session owns the cart exclusively: sign-out and a committed sale
// both clear it, and at most one checkout workflow is in flight at a time.
// The stores are explicit handles passed in at construction; nothing in
// the process is package-global.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/NickH0dges/CS-445/internal/cart"
	"github.com/NickH0dges/CS-445/internal/catalog"
	"github.com/NickH0dges/CS-445/internal/checkout"
	"github.com/NickH0dges/CS-445/internal/directory"
	"github.com/NickH0dges/CS-445/internal/ledger"
	"github.com/NickH0dges/CS-445/internal/money"
)

// ErrNotSignedIn indicates an operation that needs an active operator.
var ErrNotSignedIn = errors.New("no operator signed in")

// ErrSignedIn indicates a sign-in attempt over an active session.
var ErrSignedIn = errors.New("an operator is already signed in")

// ErrBadCredentials indicates an unknown user ID or wrong PIN. The two
// cases are deliberately indistinguishable.
var ErrBadCredentials = errors.New("unknown user ID or wrong PIN")

// ErrNotAdmin indicates a reference-data edit by a non-admin operator.
var ErrNotAdmin = errors.New("operation requires an admin user")

// ErrNoCheckout indicates a payment call with no checkout in progress.
var ErrNoCheckout = errors.New("no checkout in progress")

// Session is the single active register session. Single-threaded by
// design; one operator action runs to completion before the next.
type Session struct {
	catalog   *catalog.Catalog
	directory *directory.Directory
	ledger    *ledger.Ledger
	clock     checkout.Clock

	token    string
	userID   string
	user     directory.User
	signedIn bool

	cart *cart.Cart
	wf   *checkout.Workflow
}

// New wires a session over its stores. taxRate is the fixed process-wide
// rate (e.g. 0.0825). A nil clock means the system clock.
func New(cat *catalog.Catalog, dir *directory.Directory, led *ledger.Ledger, taxRate money.Amount, clock checkout.Clock) *Session {
	if clock == nil {
		clock = checkout.SystemClock
	}
	return &Session{
		catalog:   cat,
		directory: dir,
		ledger:    led,
		clock:     clock,
		cart:      cart.New(taxRate),
	}
}

// SignIn authenticates the operator and opens the session. The session
// token is a fresh UUIDv7 per sign-in.
func (s *Session) SignIn(userID, pin string) error {
	if s.signedIn {
		return ErrSignedIn
	}
	u, ok := s.directory.Authenticate(userID, pin)
	if !ok {
		return ErrBadCredentials
	}
	tok, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	s.token = tok.String()
	s.userID = userID
	s.user = u
	s.signedIn = true
	return nil
}

// SignOut closes the session. The cart is cleared, not kept, and any open
// checkout is discarded.
func (s *Session) SignOut() {
	if s.wf != nil {
		_ = s.wf.Cancel()
		s.wf = nil
	}
	s.cart.Clear()
	s.token = ""
	s.userID = ""
	s.user = directory.User{}
	s.signedIn = false
}

// Active reports whether an operator is signed in.
func (s *Session) Active() bool {
	return s.signedIn
}

// Token returns the session token, empty when signed out.
func (s *Session) Token() string {
	return s.token
}

// User returns the active operator.
func (s *Session) User() (id string, u directory.User, ok bool) {
	return s.userID, s.user, s.signedIn
}

// RequireAdmin fails unless the active operator has the admin flag.
// Reference data is only ever edited through callers that hold this check.
func (s *Session) RequireAdmin() error {
	if !s.signedIn {
		return ErrNotSignedIn
	}
	if !s.user.IsAdmin {
		return ErrNotAdmin
	}
	return nil
}

// Catalog returns the item store handle.
func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

// Directory returns the user store handle.
func (s *Session) Directory() *directory.Directory {
	return s.directory
}

// Ledger returns the audit log handle.
func (s *Session) Ledger() *ledger.Ledger {
	return s.ledger
}

// Cart returns the in-progress sale. Valid only while signed in; line
// mutations during an open checkout are the operator's own lookout, as
// the commit snapshots the cart at payment time.
func (s *Session) Cart() *cart.Cart {
	return s.cart
}

// AddItem looks a SKU up in the catalog and adds it to the cart with the
// unit price snapshotted now. Unknown SKUs fail with catalog.ErrNotFound.
// This backs both direct entry and pick-from-search-result, which resolve
// to a SKU either way.
func (s *Session) AddItem(sku string, qty int) error {
	if !s.signedIn {
		return ErrNotSignedIn
	}
	it, ok := s.catalog.Lookup(sku)
	if !ok {
		return fmt.Errorf("add to cart: SKU %s: %w", sku, catalog.ErrNotFound)
	}
	return s.cart.Add(sku, it.Name, it.Price, qty)
}

// BeginCheckout opens the payment workflow for the current cart.
//
// Rejected with CodeEmptyCart on an empty cart and with CodeAlreadyOpen
// while another checkout is awaiting payment; the open workflow is left
// uninterrupted in that case.
func (s *Session) BeginCheckout() (*checkout.Workflow, error) {
	if !s.signedIn {
		return nil, ErrNotSignedIn
	}
	if s.wf != nil && s.wf.State() == checkout.StateAwaitingPayment {
		return nil, &checkout.Error{Code: checkout.CodeAlreadyOpen, Message: "a checkout is already in progress"}
	}
	wf, err := checkout.New(s.cart, checkout.Cashier{ID: s.userID, Name: s.user.Name}, s.ledger, s.clock)
	if err != nil {
		return nil, err
	}
	s.wf = wf
	return wf, nil
}

// SubmitCash pays the open checkout in cash. On success the cart is
// cleared and the session is ready for the next sale.
func (s *Session) SubmitCash(received money.Amount) (*checkout.Receipt, error) {
	return s.finish(func(wf *checkout.Workflow) (*checkout.Receipt, error) {
		return wf.SubmitCash(received)
	})
}

// SubmitCard pays the open checkout by card reference. On success the
// cart is cleared.
func (s *Session) SubmitCard(reference string) (*checkout.Receipt, error) {
	return s.finish(func(wf *checkout.Workflow) (*checkout.Receipt, error) {
		return wf.SubmitCard(reference)
	})
}

// ConfirmCardWithoutReference commits the open checkout by card with no
// terminal reference, after the operator explicitly acknowledged the
// missing reference. On success the cart is cleared.
func (s *Session) ConfirmCardWithoutReference() (*checkout.Receipt, error) {
	return s.finish((*checkout.Workflow).ConfirmCardWithoutReference)
}

// CancelCheckout abandons the open checkout, leaving the cart and all
// stores unchanged. A no-op when no checkout is in progress.
func (s *Session) CancelCheckout() {
	if s.wf == nil {
		return
	}
	_ = s.wf.Cancel()
	s.wf = nil
}

// finish runs one payment submission and, on commit, clears the cart and
// retires the workflow. A failed submission leaves both alone.
func (s *Session) finish(submit func(*checkout.Workflow) (*checkout.Receipt, error)) (*checkout.Receipt, error) {
	if !s.signedIn {
		return nil, ErrNotSignedIn
	}
	if s.wf == nil {
		return nil, ErrNoCheckout
	}
	receipt, err := submit(s.wf)
	if err != nil {
		return nil, err
	}
	s.cart.Clear()
	s.wf = nil
	return receipt, nil
}
