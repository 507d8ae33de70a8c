package storage

import (
	"os"
	"path/filepath"
	"testing"

	"aquaflow-client/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	store, err := NewFile(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	user := domain.User{ID: 7, Role: domain.RoleCustomer, Email: "carlo@aquaflow.test"}
	if err := store.SetCredentials("tok-1", user); err != nil {
		t.Fatalf("set credentials: %v", err)
	}
	if err := store.SetCartSnapshot([]domain.CartLine{{LineID: 1, ProductID: 2, Quantity: 3, PriceCents: 3500}}); err != nil {
		t.Fatalf("set snapshot: %v", err)
	}

	reopened, err := NewFile(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	token, got, ok := reopened.Credentials()
	if !ok {
		t.Fatal("expected credentials to survive reopen")
	}
	if token != "tok-1" || got.Email != user.Email {
		t.Fatalf("unexpected credentials after reopen: %q %+v", token, got)
	}
	cart := reopened.CartSnapshot()
	if len(cart) != 1 || cart[0].Quantity != 3 {
		t.Fatalf("unexpected cart snapshot: %+v", cart)
	}
}

func TestCredentialsMoveAsOneUnit(t *testing.T) {
	store := NewMemory()
	if err := store.SetCredentials("tok-1", domain.User{ID: 7}); err != nil {
		t.Fatalf("set credentials: %v", err)
	}
	if err := store.EvictCredentials(); err != nil {
		t.Fatalf("evict: %v", err)
	}
	if token, user, ok := store.Credentials(); ok || token != "" || user != nil {
		t.Fatalf("expected token and user both gone, got %q %+v", token, user)
	}
}

func TestClearWipesEverything(t *testing.T) {
	store := NewMemory()
	if err := store.SetCredentials("tok-1", domain.User{ID: 7}); err != nil {
		t.Fatalf("set credentials: %v", err)
	}
	if err := store.SetCartSnapshot([]domain.CartLine{{LineID: 1, Quantity: 1}}); err != nil {
		t.Fatalf("set snapshot: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, _, ok := store.Credentials(); ok {
		t.Fatal("expected credentials cleared")
	}
	if cart := store.CartSnapshot(); len(cart) != 0 {
		t.Fatalf("expected empty cart snapshot, got %+v", cart)
	}
}

func TestCorruptStateFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store, err := NewFile(path)
	if err != nil {
		t.Fatalf("open store over corrupt file: %v", err)
	}
	if _, _, ok := store.Credentials(); ok {
		t.Fatal("expected empty state from a corrupt file")
	}
}

func TestMissingFileStartsEmpty(t *testing.T) {
	store, err := NewFile(filepath.Join(t.TempDir(), "missing", "state.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, _, ok := store.Credentials(); ok {
		t.Fatal("expected empty state on first run")
	}
	// First write must create the directory.
	if err := store.SetCredentials("tok-1", domain.User{ID: 1}); err != nil {
		t.Fatalf("first write: %v", err)
	}
}
