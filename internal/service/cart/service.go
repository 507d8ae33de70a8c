// Package cart keeps the in-memory cart in lockstep with the server-side cart.
// The server is the owner of record: every mutation is a round-trip, and local
// state is only ever replaced wholesale with what the server returned.
package cart

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"aquaflow-client/internal/api"
	"aquaflow-client/internal/domain"
	"aquaflow-client/internal/session"
)

type backend interface {
	GetWithRetry(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, body, out any) error
}

type snapshotStore interface {
	CartSnapshot() []domain.CartLine
	SetCartSnapshot(lines []domain.CartLine) error
}

// Synchronizer owns the in-memory cart for the active session. All mutating
// operations serialize through one mutex, so a slow response can never
// overwrite the state left by a later operation.
type Synchronizer struct {
	api       backend
	creds     *session.Credentials
	snapshots snapshotStore
	logger    *slog.Logger

	mu      sync.Mutex
	lines   []domain.CartLine
	loaded  bool
	lastErr string
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithSnapshots persists the cart locally after every successful sync, so a
// fresh start can show something before the backend answers.
func WithSnapshots(store snapshotStore) Option {
	return func(s *Synchronizer) { s.snapshots = store }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) { s.logger = logger }
}

// New creates a Synchronizer. If a snapshot store is configured, its saved
// cart seeds the initial view; it is replaced on the first load.
func New(client backend, creds *session.Credentials, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		api:    client,
		creds:  creds,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.snapshots != nil {
		s.lines = normalize(s.snapshots.CartSnapshot(), s.logger)
	}
	return s
}

type cartResponse struct {
	Success   bool              `json:"success"`
	CartItems []domain.CartLine `json:"cart_items"`
}

// Load replaces the in-memory cart with the server's current cart. On any
// failure the cart resets to empty and an error state is recorded: stale or
// partial data must never be shown as if it were valid.
func (s *Synchronizer) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Synchronizer) loadLocked(ctx context.Context) error {
	userID, err := s.userID()
	if err != nil {
		s.lines = nil
		s.loaded = false
		s.lastErr = "Please login first."
		return err
	}

	query := url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
	var resp cartResponse
	if err := s.api.GetWithRetry(ctx, "/cartItems", query, &resp); err != nil {
		s.lines = nil
		s.loaded = false
		s.lastErr = api.UserMessage(err)
		return err
	}

	s.adopt(resp.CartItems)
	return nil
}

// Add requests an add-to-cart; the server decides whether that creates a line
// or increments an existing one, and its returned cart replaces local state.
func (s *Synchronizer) Add(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, err := s.userID()
	if err != nil {
		s.lastErr = "Please login first."
		return err
	}

	body := map[string]any{
		"user_id":   userID,
		"gallon_id": productID,
		"quantity":  quantity,
	}
	var resp cartResponse
	if err := s.api.Post(ctx, "/cartItems", body, &resp); err != nil {
		s.lastErr = api.UserMessage(err)
		return err
	}

	s.adopt(resp.CartItems)
	return nil
}

// Remove deletes the given lines, then reloads the full cart so local state is
// guaranteed to match the server.
func (s *Synchronizer) Remove(ctx context.Context, lineIDs ...int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(ctx, lineIDs)
}

func (s *Synchronizer) removeLocked(ctx context.Context, lineIDs []int64) error {
	if len(lineIDs) == 0 {
		return nil
	}

	userID, err := s.userID()
	if err != nil {
		s.lastErr = "Please login first."
		return err
	}

	body := map[string]any{
		"user_id":       userID,
		"cart_item_ids": lineIDs,
	}
	if err := s.api.Delete(ctx, "/cartItems", body, nil); err != nil {
		s.lastErr = api.UserMessage(err)
		return err
	}

	return s.loadLocked(ctx)
}

// UpdateQuantity sets a line to newQuantity. Zero routes to removal. The
// backend only exposes increment/decrement primitives, so the delta against
// the last known quantity decides how many calls to issue and in which
// direction; the quantity is never re-derived from a reload mid-operation.
func (s *Synchronizer) UpdateQuantity(ctx context.Context, lineID int64, newQuantity int) error {
	if newQuantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if newQuantity == 0 {
		return s.removeLocked(ctx, []int64{lineID})
	}

	current, ok := s.findLocked(lineID)
	if !ok {
		s.lastErr = "Cart item not found."
		return domain.ErrCartLineNotFound
	}

	userID, err := s.userID()
	if err != nil {
		s.lastErr = "Please login first."
		return err
	}

	delta := newQuantity - current.Quantity
	if delta == 0 {
		return nil
	}
	path := "/cartItems/increase"
	if delta < 0 {
		path = "/cartItems/decrease"
		delta = -delta
	}

	body := map[string]any{
		"user_id":      userID,
		"cart_item_id": lineID,
	}
	var resp cartResponse
	for i := 0; i < delta; i++ {
		// On a mid-sequence failure the in-memory cart stays untouched;
		// the next load reconciles whatever the server applied.
		if err := s.api.Put(ctx, path, body, &resp); err != nil {
			s.lastErr = api.UserMessage(err)
			return err
		}
	}

	s.adopt(resp.CartItems)
	return nil
}

// Clear removes every line for the user. Local state is cleared only after the
// server confirms the bulk delete.
func (s *Synchronizer) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.lines))
	for _, l := range s.lines {
		ids = append(ids, l.LineID)
	}
	return s.removeLocked(ctx, ids)
}

// ToggleSelect flips a line's local selection flag. Selection never reaches
// the server.
func (s *Synchronizer) ToggleSelect(lineID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if s.lines[i].LineID == lineID {
			s.lines[i].Selected = !s.lines[i].Selected
			return nil
		}
	}
	return domain.ErrCartLineNotFound
}

// ToggleSelectAll sets every line's selection flag.
func (s *Synchronizer) ToggleSelectAll(selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		s.lines[i].Selected = selected
	}
}

// Lines returns a copy of the current cart lines.
func (s *Synchronizer) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

// TotalItems is the sum of quantities over all lines, recomputed per call.
func (s *Synchronizer) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

// TotalCents is the sum of unit price times quantity over all lines.
func (s *Synchronizer) TotalCents() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, l := range s.lines {
		total += l.LineTotalCents()
	}
	return total
}

// SelectedTotalCents is TotalCents restricted to selected lines.
func (s *Synchronizer) SelectedTotalCents() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, l := range s.lines {
		if l.Selected {
			total += l.LineTotalCents()
		}
	}
	return total
}

// SelectedCount is the number of selected lines.
func (s *Synchronizer) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, l := range s.lines {
		if l.Selected {
			count++
		}
	}
	return count
}

// Loaded reports whether the current lines came from a successful backend
// sync, as opposed to a locally persisted snapshot.
func (s *Synchronizer) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Err returns the user-visible message of the last failed operation, cleared
// by the next successful sync.
func (s *Synchronizer) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// adopt replaces local state with a server cart. Caller holds s.mu.
func (s *Synchronizer) adopt(lines []domain.CartLine) {
	s.lines = normalize(lines, s.logger)
	s.loaded = true
	s.lastErr = ""

	if s.snapshots != nil {
		if err := s.snapshots.SetCartSnapshot(s.lines); err != nil {
			s.logger.Warn("failed to persist cart snapshot", "error", err)
		}
	}
}

func (s *Synchronizer) findLocked(lineID int64) (domain.CartLine, bool) {
	for _, l := range s.lines {
		if l.LineID == lineID {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

func (s *Synchronizer) userID() (int64, error) {
	user, ok := s.creds.User()
	if !ok {
		return 0, domain.ErrNotAuthenticated
	}
	return user.ID, nil
}

// normalize reconciles server lines: totals are recomputed rather than
// trusted, zero-quantity lines are dropped, and selection resets because the
// server has no notion of it.
func normalize(lines []domain.CartLine, logger *slog.Logger) []domain.CartLine {
	out := make([]domain.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			logger.Warn("dropping cart line with non-positive quantity",
				"cart_item_id", l.LineID, "quantity", l.Quantity)
			continue
		}
		expected := l.LineTotalCents()
		if l.TotalCents != 0 && l.TotalCents != expected {
			logger.Warn("server line total disagrees with unit price, recomputed",
				"cart_item_id", l.LineID, "server", l.TotalCents, "computed", expected)
		}
		l.TotalCents = expected
		l.Selected = false
		out = append(out, l)
	}
	return out
}
