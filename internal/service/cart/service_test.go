package cart

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"aquaflow-client/internal/api"
	"aquaflow-client/internal/domain"
	"aquaflow-client/internal/session"
	"aquaflow-client/internal/storage"
)

type call struct {
	method string
	path   string
	body   any
}

// stubBackend mimics the server's cart contract: it holds authoritative lines
// and answers every endpoint with the full cart, the way the real backend does.
type stubBackend struct {
	calls []call
	lines []domain.CartLine
	err   error
}

func (s *stubBackend) respond(out any) {
	if resp, ok := out.(*cartResponse); ok {
		resp.Success = true
		resp.CartItems = append([]domain.CartLine(nil), s.lines...)
	}
}

func (s *stubBackend) GetWithRetry(_ context.Context, path string, _ url.Values, out any) error {
	s.calls = append(s.calls, call{method: http.MethodGet, path: path})
	if s.err != nil {
		return s.err
	}
	s.respond(out)
	return nil
}

func (s *stubBackend) Post(_ context.Context, path string, body, out any) error {
	s.calls = append(s.calls, call{method: http.MethodPost, path: path, body: body})
	if s.err != nil {
		return s.err
	}
	s.respond(out)
	return nil
}

func (s *stubBackend) Put(_ context.Context, path string, body, out any) error {
	s.calls = append(s.calls, call{method: http.MethodPut, path: path, body: body})
	if s.err != nil {
		return s.err
	}

	lineID := body.(map[string]any)["cart_item_id"].(int64)
	delta := 1
	if strings.HasSuffix(path, "/decrease") {
		delta = -1
	}
	for i := range s.lines {
		if s.lines[i].LineID != lineID {
			continue
		}
		s.lines[i].Quantity += delta
		if s.lines[i].Quantity <= 0 {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
		} else {
			s.lines[i].TotalCents = s.lines[i].LineTotalCents()
		}
		break
	}
	s.respond(out)
	return nil
}

func (s *stubBackend) Delete(_ context.Context, path string, body, out any) error {
	s.calls = append(s.calls, call{method: http.MethodDelete, path: path, body: body})
	if s.err != nil {
		return s.err
	}

	drop := map[int64]bool{}
	for _, id := range body.(map[string]any)["cart_item_ids"].([]int64) {
		drop[id] = true
	}
	var kept []domain.CartLine
	for _, l := range s.lines {
		if !drop[l.LineID] {
			kept = append(kept, l)
		}
	}
	s.lines = kept
	s.respond(out)
	return nil
}

func (s *stubBackend) callsTo(method, path string) int {
	n := 0
	for _, c := range s.calls {
		if c.method == method && c.path == path {
			n++
		}
	}
	return n
}

func newTestSync(t *testing.T, stub *stubBackend, opts ...Option) *Synchronizer {
	t.Helper()
	creds := session.NewCredentials(storage.NewMemory())
	if err := creds.Set("tok-1", domain.User{ID: 7, Role: domain.RoleCustomer}); err != nil {
		t.Fatalf("seed credentials: %v", err)
	}
	return New(stub, creds, opts...)
}

func TestAddComputesTotalsFromServerCart(t *testing.T) {
	stub := &stubBackend{lines: []domain.CartLine{
		{LineID: 1, ProductID: 7, Name: "Round Gallon", PriceCents: 5000, Quantity: 2},
	}}
	sync := newTestSync(t, stub)

	if err := sync.Add(context.Background(), 7, 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := sync.TotalItems(); got != 2 {
		t.Fatalf("expected 2 total items, got %d", got)
	}
	if got := sync.TotalCents(); got != 10000 {
		t.Fatalf("expected total 10000, got %d", got)
	}
	if n := stub.callsTo(http.MethodPost, "/cartItems"); n != 1 {
		t.Fatalf("expected one add call, got %d", n)
	}
}

func TestLoadAdoptsServerCartWholesale(t *testing.T) {
	stub := &stubBackend{lines: []domain.CartLine{
		{LineID: 1, ProductID: 1, PriceCents: 3000, Quantity: 2},
		{LineID: 2, ProductID: 2, PriceCents: 3500, Quantity: 1},
	}}
	sync := newTestSync(t, stub)

	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := len(sync.Lines()); got != 2 {
		t.Fatalf("expected 2 lines, got %d", got)
	}
	if got := sync.TotalCents(); got != 9500 {
		t.Fatalf("expected total 9500, got %d", got)
	}
	if !sync.Loaded() {
		t.Fatal("expected loaded flag after a successful sync")
	}
	if msg := sync.Err(); msg != "" {
		t.Fatalf("expected no error message, got %q", msg)
	}
}

func TestUpdateQuantityIssuesOneDecrementPerStep(t *testing.T) {
	stub := &stubBackend{lines: []domain.CartLine{
		{LineID: 1, ProductID: 1, PriceCents: 3000, Quantity: 3},
	}}
	sync := newTestSync(t, stub)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := sync.UpdateQuantity(context.Background(), 1, 1); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if n := stub.callsTo(http.MethodPut, "/cartItems/decrease"); n != 2 {
		t.Fatalf("expected exactly 2 decrease calls for 3 -> 1, got %d", n)
	}
	if n := stub.callsTo(http.MethodPut, "/cartItems/increase"); n != 0 {
		t.Fatalf("expected no increase calls, got %d", n)
	}
	lines := sync.Lines()
	if len(lines) != 1 || lines[0].Quantity != 1 {
		t.Fatalf("expected quantity 1 after update, got %+v", lines)
	}
}

func TestUpdateQuantityIssuesIncrements(t *testing.T) {
	stub := &stubBackend{lines: []domain.CartLine{
		{LineID: 1, ProductID: 1, PriceCents: 3000, Quantity: 1},
	}}
	sync := newTestSync(t, stub)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := sync.UpdateQuantity(context.Background(), 1, 4); err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if n := stub.callsTo(http.MethodPut, "/cartItems/increase"); n != 3 {
		t.Fatalf("expected 3 increase calls for 1 -> 4, got %d", n)
	}
	if got := sync.TotalItems(); got != 4 {
		t.Fatalf("expected 4 items, got %d", got)
	}
}

func TestUpdateQuantityToZeroRemovesLine(t *testing.T) {
	stub := &stubBackend{lines: []domain.CartLine{
		{LineID: 1, ProductID: 1, PriceCents: 3000, Quantity: 2},
	}}
	sync := newTestSync(t, stub)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := sync.UpdateQuantity(context.Background(), 1, 0); err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if n := stub.callsTo(http.MethodDelete, "/cartItems"); n != 1 {
		t.Fatalf("expected a removal, got %d delete calls", n)
	}
	if got := len(sync.Lines()); got != 0 {
		t.Fatalf("expected empty cart, got %d lines", got)
	}
}

func TestUpdateQuantityRejectsNegative(t *testing.T) {
	stub := &stubBackend{}
	sync := newTestSync(t, stub)

	if err := sync.UpdateQuantity(context.Background(), 1, -1); err == nil {
		t.Fatal("expected an error for a negative quantity")
	}
	if len(stub.calls) != 0 {
		t.Fatalf("expected no backend calls, got %d", len(stub.calls))
	}
}

func TestFailedMutationLeavesStateUntouched(t *testing.T) {
	stub := &stubBackend{lines: []domain.CartLine{
		{LineID: 1, ProductID: 1, PriceCents: 3000, Quantity: 2},
	}}
	sync := newTestSync(t, stub)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	before := sync.Lines()

	stub.err = &api.HTTPError{Status: http.StatusInternalServerError}
	if err := sync.Remove(context.Background(), 1); err == nil {
		t.Fatal("expected remove to fail")
	}

	after := sync.Lines()
	if len(after) != len(before) || after[0] != before[0] {
		t.Fatalf("expected lines untouched after failed mutation, got %+v", after)
	}
	if msg := sync.Err(); msg != "Server error. Please try again later." {
		t.Fatalf("unexpected error message: %q", msg)
	}
}

func TestLoadFailureResetsToEmpty(t *testing.T) {
	stub := &stubBackend{lines: []domain.CartLine{
		{LineID: 1, ProductID: 1, PriceCents: 3000, Quantity: 2},
	}}
	sync := newTestSync(t, stub)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	stub.err = &api.HTTPError{Status: http.StatusInternalServerError}
	if err := sync.Load(context.Background()); err == nil {
		t.Fatal("expected load to fail")
	}
	if got := len(sync.Lines()); got != 0 {
		t.Fatalf("expected stale lines discarded, got %d", got)
	}
	if sync.Loaded() {
		t.Fatal("expected loaded flag dropped after a failed load")
	}
	if msg := sync.Err(); msg == "" {
		t.Fatal("expected a user-visible error message")
	}
}

func TestOperationsRequireLogin(t *testing.T) {
	stub := &stubBackend{}
	sync := New(stub, session.NewCredentials(storage.NewMemory()))

	if err := sync.Add(context.Background(), 1, 1); err == nil {
		t.Fatal("expected add without login to fail")
	}
	if len(stub.calls) != 0 {
		t.Fatalf("expected no backend calls, got %d", len(stub.calls))
	}
	if msg := sync.Err(); msg != "Please login first." {
		t.Fatalf("unexpected error message: %q", msg)
	}
}

func TestSelectionStaysLocal(t *testing.T) {
	stub := &stubBackend{lines: []domain.CartLine{
		{LineID: 1, ProductID: 1, PriceCents: 3000, Quantity: 2},
		{LineID: 2, ProductID: 2, PriceCents: 3500, Quantity: 1},
	}}
	sync := newTestSync(t, stub)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	callsAfterLoad := len(stub.calls)

	if err := sync.ToggleSelect(1); err != nil {
		t.Fatalf("toggle select: %v", err)
	}
	if got := sync.SelectedCount(); got != 1 {
		t.Fatalf("expected 1 selected line, got %d", got)
	}
	if got := sync.SelectedTotalCents(); got != 6000 {
		t.Fatalf("expected selected total 6000, got %d", got)
	}
	if len(stub.calls) != callsAfterLoad {
		t.Fatal("selection must never reach the backend")
	}

	sync.ToggleSelectAll(true)
	if got := sync.SelectedCount(); got != 2 {
		t.Fatalf("expected all lines selected, got %d", got)
	}

	// A reload wipes selection: the server has no notion of it.
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := sync.SelectedCount(); got != 0 {
		t.Fatalf("expected selection reset after reload, got %d", got)
	}
}

func TestClearRemovesEveryLine(t *testing.T) {
	stub := &stubBackend{lines: []domain.CartLine{
		{LineID: 1, ProductID: 1, PriceCents: 3000, Quantity: 2},
		{LineID: 2, ProductID: 2, PriceCents: 3500, Quantity: 1},
	}}
	sync := newTestSync(t, stub)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := sync.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := len(sync.Lines()); got != 0 {
		t.Fatalf("expected empty cart, got %d lines", got)
	}
	if n := stub.callsTo(http.MethodDelete, "/cartItems"); n != 1 {
		t.Fatalf("expected one bulk delete, got %d", n)
	}
}

func TestNormalizeDropsAndRecomputes(t *testing.T) {
	stub := &stubBackend{lines: []domain.CartLine{
		{LineID: 1, ProductID: 1, PriceCents: 3000, Quantity: 2, TotalCents: 99999},
		{LineID: 2, ProductID: 2, PriceCents: 3500, Quantity: 0},
	}}
	sync := newTestSync(t, stub)
	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	lines := sync.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected zero-quantity line dropped, got %d lines", len(lines))
	}
	if lines[0].TotalCents != 6000 {
		t.Fatalf("expected line total recomputed to 6000, got %d", lines[0].TotalCents)
	}
}

func TestSnapshotSeedsAndPersists(t *testing.T) {
	store := storage.NewMemory()
	if err := store.SetCartSnapshot([]domain.CartLine{
		{LineID: 1, ProductID: 1, PriceCents: 3000, Quantity: 2},
	}); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}

	creds := session.NewCredentials(store)
	if err := creds.Set("tok-1", domain.User{ID: 7}); err != nil {
		t.Fatalf("seed credentials: %v", err)
	}

	stub := &stubBackend{lines: []domain.CartLine{
		{LineID: 2, ProductID: 2, PriceCents: 3500, Quantity: 1},
	}}
	sync := New(stub, creds, WithSnapshots(store))

	// Before the first load, the persisted snapshot is what the user sees.
	if got := sync.TotalItems(); got != 2 {
		t.Fatalf("expected snapshot to seed the cart, got %d items", got)
	}
	if sync.Loaded() {
		t.Fatal("a snapshot-seeded cart is not a loaded cart")
	}

	if err := sync.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	snap := store.CartSnapshot()
	if len(snap) != 1 || snap[0].LineID != 2 {
		t.Fatalf("expected snapshot replaced by the server cart, got %+v", snap)
	}
}
