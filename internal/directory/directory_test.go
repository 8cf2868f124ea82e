package directory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Directory {
	t.Helper()
	d, err := Open(filepath.Join(t.TempDir(), "pos_users.json"))
	require.NoError(t, err)
	return d
}

func TestOpen_SeedsBootstrapAdmin(t *testing.T) {
	d := openTemp(t)

	admin, ok := d.Lookup("0001")
	require.True(t, ok)
	assert.Equal(t, "Admin", admin.Name)
	assert.True(t, admin.IsAdmin)
}

func TestAuthenticate(t *testing.T) {
	d := openTemp(t)

	u, ok := d.Authenticate("0001", "1234")
	require.True(t, ok)
	assert.Equal(t, "Admin", u.Name)

	_, ok = d.Authenticate("0001", "9999")
	assert.False(t, ok, "wrong PIN must fail")

	_, ok = d.Authenticate("0002", "1234")
	assert.False(t, ok, "unknown user must fail")
}

func TestAddEditRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos_users.json")
	d, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, d.Add("0002", User{Name: "Casey", PIN: "0000"}))
	assert.ErrorIs(t, d.Add("0002", User{Name: "Casey Again", PIN: "1111"}), ErrExists)

	require.NoError(t, d.Edit("0002", User{Name: "Casey", PIN: "4321", IsAdmin: true}))
	assert.ErrorIs(t, d.Edit("0009", User{Name: "Nobody", PIN: "1"}), ErrNotFound)

	// Absent removal is a documented no-op.
	assert.NoError(t, d.Remove("0009"))

	// Mutations survive a reopen.
	d2, err := Open(path)
	require.NoError(t, err)
	u, ok := d2.Authenticate("0002", "4321")
	require.True(t, ok)
	assert.True(t, u.IsAdmin)

	require.NoError(t, d2.Remove("0002"))
	_, ok = d2.Lookup("0002")
	assert.False(t, ok)
}

func TestValidation(t *testing.T) {
	d := openTemp(t)
	assert.Error(t, d.Add("", User{Name: "X", PIN: "1"}))
	assert.Error(t, d.Add("0003", User{Name: "", PIN: "1"}))
	assert.Error(t, d.Add("0003", User{Name: "X", PIN: ""}))
}

func TestList_Sorted(t *testing.T) {
	d := openTemp(t)
	require.NoError(t, d.Add("0100", User{Name: "Late", PIN: "1"}))
	require.NoError(t, d.Add("0002", User{Name: "Early", PIN: "2"}))

	got := d.List()
	require.Len(t, got, 3)
	assert.Equal(t, "0001", got[0].ID)
	assert.Equal(t, "0002", got[1].ID)
	assert.Equal(t, "0100", got[2].ID)
}
