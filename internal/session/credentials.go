// Package session owns the client's authentication state: the stored token,
// the cached user, and the validation policy deciding when that state must be
// destroyed.
package session

import (
	"aquaflow-client/internal/domain"
	"aquaflow-client/internal/storage"
)

// Credentials is the single mutation point for the stored token and cached
// user. Every other component reads through it; nothing else writes them.
type Credentials struct {
	store storage.Store
}

// NewCredentials wraps the persistent store.
func NewCredentials(store storage.Store) *Credentials {
	return &Credentials{store: store}
}

// Token returns the stored token, satisfying the API client's TokenSource.
func (c *Credentials) Token() (string, bool) {
	token, _, ok := c.store.Credentials()
	return token, ok
}

// User returns the cached user record.
func (c *Credentials) User() (*domain.User, bool) {
	_, user, ok := c.store.Credentials()
	if !ok {
		return nil, false
	}
	return user, true
}

// LoggedIn reports whether a token and user are present.
func (c *Credentials) LoggedIn() bool {
	_, _, ok := c.store.Credentials()
	return ok
}

// Set stores a token and user together.
func (c *Credentials) Set(token string, user domain.User) error {
	return c.store.SetCredentials(token, user)
}

// Evict purges token and user together. Used as the API client's 401 hook, so
// it swallows storage errors: cleanup must not fail the request further.
func (c *Credentials) Evict() {
	_ = c.store.EvictCredentials()
}
