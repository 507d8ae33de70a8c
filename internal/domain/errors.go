package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthenticated indicates no usable session credentials are present.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrCartLineNotFound indicates an operation referenced a cart line that is
	// not part of the currently loaded cart.
	ErrCartLineNotFound = errors.New("cart item not found")
)
