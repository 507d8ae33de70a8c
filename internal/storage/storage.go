// Package storage is the client-side persistent state: the session token, the
// cached user record, and an optional cart snapshot for offline display. It is
// the Go counterpart of the browser's localStorage, with the same last-write-
// wins single-writer assumptions.
package storage

import "aquaflow-client/internal/domain"

// State is everything persisted between runs.
type State struct {
	Token string            `json:"token,omitempty"`
	User  *domain.User      `json:"user,omitempty"`
	Cart  []domain.CartLine `json:"cart,omitempty"`
}

// Store owns the persisted client state. Token and user move through the store
// as one unit: they are set together and evicted together, never independently.
type Store interface {
	Credentials() (token string, user *domain.User, ok bool)
	SetCredentials(token string, user domain.User) error
	EvictCredentials() error

	CartSnapshot() []domain.CartLine
	SetCartSnapshot(lines []domain.CartLine) error

	// Clear wipes everything: logout semantics.
	Clear() error
}
