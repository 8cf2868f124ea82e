// Package directory maintains the authorized users, keyed by user ID.
//
// PINs are stored and compared in the clear. That is a known weakness kept
// for compatibility with the existing data files; the directory is an
// access roster, not a security boundary.
package directory

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"

	"github.com/NickH0dges/CS-445/internal/store"
)

// ErrNotFound indicates an unknown user ID on lookup or edit.
var ErrNotFound = errors.New("user not found")

// ErrExists indicates a duplicate user ID on add.
var ErrExists = errors.New("user already exists")

// User is one authorized operator. The ID lives as the mapping key.
type User struct {
	Name    string `json:"name"`
	PIN     string `json:"pin"`
	IsAdmin bool   `json:"is_admin"`
}

// Entry pairs a User with its ID, for listings.
type Entry struct {
	ID string
	User
}

// DefaultUsers returns the bootstrap admin seeded on first run.
func DefaultUsers() map[string]User {
	return map[string]User{
		"0001": {Name: "Admin", PIN: "1234", IsAdmin: true},
	}
}

// Directory is the user reference data for one register. Single-writer;
// not safe for concurrent use.
type Directory struct {
	store *store.Store[User]
	users map[string]User
}

// Open loads the directory from path, bootstrapping the default admin on
// first run. If the backing file was unreadable the returned error carries
// a *store.IntegrityError and the directory is still usable (on defaults).
func Open(path string) (*Directory, error) {
	st := store.New[User](path)
	users, err := st.Load(DefaultUsers())
	if err != nil && !store.IsIntegrityError(err) {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	return &Directory{store: st, users: users}, err
}

// Lookup returns the user for an exact ID.
func (d *Directory) Lookup(id string) (User, bool) {
	u, ok := d.users[id]
	return u, ok
}

// Authenticate checks an ID and PIN by exact equality. A missing user and
// a wrong PIN are indistinguishable to the caller.
func (d *Directory) Authenticate(id, pin string) (User, bool) {
	u, ok := d.users[id]
	if !ok || u.PIN != pin {
		return User{}, false
	}
	return u, true
}

// Add inserts a new user. Fails with ErrExists if the ID is taken.
func (d *Directory) Add(id string, u User) error {
	if err := validate(id, u); err != nil {
		return err
	}
	if _, ok := d.users[id]; ok {
		return fmt.Errorf("add user %s: %w", id, ErrExists)
	}
	return d.apply(func(users map[string]User) {
		users[id] = u
	})
}

// Edit replaces an existing user. Fails with ErrNotFound if the ID is
// absent.
func (d *Directory) Edit(id string, u User) error {
	if err := validate(id, u); err != nil {
		return err
	}
	if _, ok := d.users[id]; !ok {
		return fmt.Errorf("edit user %s: %w", id, ErrNotFound)
	}
	return d.apply(func(users map[string]User) {
		users[id] = u
	})
}

// Remove deletes a user. Removing an absent ID is a no-op.
func (d *Directory) Remove(id string) error {
	if _, ok := d.users[id]; !ok {
		return nil
	}
	return d.apply(func(users map[string]User) {
		delete(users, id)
	})
}

// List returns every user in ascending ID order.
func (d *Directory) List() []Entry {
	out := make([]Entry, 0, len(d.users))
	for id, u := range d.users {
		out = append(out, Entry{ID: id, User: u})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// apply mirrors the catalog's mutate-copy-save-swap discipline: the
// in-memory mapping only changes after the durable write succeeds.
func (d *Directory) apply(mutate func(map[string]User)) error {
	next := maps.Clone(d.users)
	mutate(next)
	if err := d.store.Save(next); err != nil {
		return err
	}
	d.users = next
	return nil
}

func validate(id string, u User) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("user: empty ID")
	}
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("user %s: empty name", id)
	}
	if u.PIN == "" {
		return fmt.Errorf("user %s: empty PIN", id)
	}
	return nil
}
