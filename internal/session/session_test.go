package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NickH0dges/CS-445/internal/catalog"
	"github.com/NickH0dges/CS-445/internal/checkout"
	"github.com/NickH0dges/CS-445/internal/directory"
	"github.com/NickH0dges/CS-445/internal/ledger"
	"github.com/NickH0dges/CS-445/internal/money"
	"github.com/NickH0dges/CS-445/internal/testutil"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	dir := t.TempDir()

	cat, err := catalog.Open(filepath.Join(dir, "pos_items.json"))
	require.NoError(t, err)
	users, err := directory.Open(filepath.Join(dir, "pos_users.json"))
	require.NoError(t, err)
	led := ledger.Open(filepath.Join(dir, "pos_transactions.csv"))

	return New(cat, users, led, money.MustParse("0.0825"), testutil.NewClock(testutil.FixedTime))
}

func signIn(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.SignIn("0001", "1234"))
}

func TestSignIn(t *testing.T) {
	s := newSession(t)

	assert.ErrorIs(t, s.SignIn("0001", "9999"), ErrBadCredentials)
	assert.ErrorIs(t, s.SignIn("0404", "1234"), ErrBadCredentials)
	assert.False(t, s.Active())

	require.NoError(t, s.SignIn("0001", "1234"))
	assert.True(t, s.Active())
	assert.NotEmpty(t, s.Token())
	_, u, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "Admin", u.Name)

	assert.ErrorIs(t, s.SignIn("0001", "1234"), ErrSignedIn)
}

func TestSignIn_FreshTokenPerSession(t *testing.T) {
	s := newSession(t)
	signIn(t, s)
	first := s.Token()
	s.SignOut()
	signIn(t, s)
	assert.NotEqual(t, first, s.Token())
}

func TestSignOut_ClearsCartAndCheckout(t *testing.T) {
	s := newSession(t)
	signIn(t, s)
	require.NoError(t, s.AddItem("100001", 2))
	_, err := s.BeginCheckout()
	require.NoError(t, err)

	s.SignOut()
	assert.False(t, s.Active())
	assert.Empty(t, s.Token())
	assert.Equal(t, 0, s.Cart().Len())

	// The discarded workflow is gone: next sign-in starts clean.
	signIn(t, s)
	require.NoError(t, s.AddItem("100001", 1))
	_, err = s.BeginCheckout()
	assert.NoError(t, err)
}

func TestAddItem(t *testing.T) {
	s := newSession(t)

	assert.ErrorIs(t, s.AddItem("100001", 1), ErrNotSignedIn)

	signIn(t, s)
	require.NoError(t, s.AddItem("100001", 1))
	assert.ErrorIs(t, s.AddItem("999999", 1), catalog.ErrNotFound)

	lines := s.Cart().Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "Bottle Water", lines[0].Name)
	assert.Equal(t, "1.00", lines[0].UnitPrice.String())
}

func TestAddItem_PriceSnapshotSurvivesCatalogEdit(t *testing.T) {
	s := newSession(t)
	signIn(t, s)
	require.NoError(t, s.AddItem("100001", 1))

	require.NoError(t, s.Catalog().Edit("100001", catalog.Item{Name: "Bottle Water", Price: money.MustParse("9.99")}))

	assert.Equal(t, "1.00", s.Cart().Lines()[0].UnitPrice.String(), "cart keeps the add-time price")
}

func TestBeginCheckout_EmptyCart(t *testing.T) {
	s := newSession(t)
	signIn(t, s)
	_, err := s.BeginCheckout()
	assert.True(t, checkout.HasCode(err, checkout.CodeEmptyCart))
}

func TestBeginCheckout_SingleFlight(t *testing.T) {
	s := newSession(t)
	signIn(t, s)
	require.NoError(t, s.AddItem("100002", 1))

	first, err := s.BeginCheckout()
	require.NoError(t, err)

	_, err = s.BeginCheckout()
	assert.True(t, checkout.IsConflict(err))
	assert.Equal(t, checkout.StateAwaitingPayment, first.State(), "first checkout uninterrupted")

	// The conflicted attempt did not break the open one.
	_, err = s.SubmitCash(money.MustParse("5.00"))
	assert.NoError(t, err)
}

func TestBeginCheckout_AllowedAgainAfterCancel(t *testing.T) {
	s := newSession(t)
	signIn(t, s)
	require.NoError(t, s.AddItem("100002", 1))

	_, err := s.BeginCheckout()
	require.NoError(t, err)
	s.CancelCheckout()

	assert.Equal(t, 1, s.Cart().Len(), "cancel leaves the cart unchanged")
	_, err = s.BeginCheckout()
	assert.NoError(t, err)
}

func TestSubmitCash_CommitClearsCartAndAppendsOneRecord(t *testing.T) {
	s := newSession(t)
	signIn(t, s)
	require.NoError(t, s.AddItem("100001", 1))
	require.NoError(t, s.AddItem("100002", 1))
	wantLines := s.Cart().Lines()

	_, err := s.BeginCheckout()
	require.NoError(t, err)
	receipt, err := s.SubmitCash(money.MustParse("5.00"))
	require.NoError(t, err)

	assert.Equal(t, 0, s.Cart().Len(), "cart cleared after commit")
	assert.Equal(t, "2.29", receipt.ChangeDue.String())

	recs, err := s.Ledger().Records()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Len(t, recs[0].Lines, len(wantLines))
	for i, l := range wantLines {
		assert.Equal(t, l.SKU, recs[0].Lines[i].SKU)
		assert.Equal(t, l.Qty, recs[0].Lines[i].Qty)
	}
}

func TestSubmit_NoCheckout(t *testing.T) {
	s := newSession(t)
	signIn(t, s)
	_, err := s.SubmitCash(money.MustParse("5.00"))
	assert.ErrorIs(t, err, ErrNoCheckout)
	_, err = s.SubmitCard("TXN-1")
	assert.ErrorIs(t, err, ErrNoCheckout)
}

func TestSubmitCard_MissingReferenceFlow(t *testing.T) {
	s := newSession(t)
	signIn(t, s)
	require.NoError(t, s.AddItem("100001", 1))
	_, err := s.BeginCheckout()
	require.NoError(t, err)

	_, err = s.SubmitCard("")
	require.True(t, checkout.IsReferenceMissing(err))
	assert.Equal(t, 1, s.Cart().Len(), "cart untouched until commit")

	receipt, err := s.ConfirmCardWithoutReference()
	require.NoError(t, err)
	assert.Empty(t, receipt.Record.CardReference)
	assert.Equal(t, 0, s.Cart().Len())
}

func TestRequireAdmin(t *testing.T) {
	s := newSession(t)
	assert.ErrorIs(t, s.RequireAdmin(), ErrNotSignedIn)

	require.NoError(t, s.Directory().Add("0002", directory.User{Name: "Casey", PIN: "0000"}))
	require.NoError(t, s.SignIn("0002", "0000"))
	assert.ErrorIs(t, s.RequireAdmin(), ErrNotAdmin)
	s.SignOut()

	signIn(t, s)
	assert.NoError(t, s.RequireAdmin())
}
