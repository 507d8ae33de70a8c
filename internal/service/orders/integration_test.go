package orders_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"aquaflow-client/internal/api"
	"aquaflow-client/internal/domain"
	"aquaflow-client/internal/mockbackend"
	"aquaflow-client/internal/service/auth"
	"aquaflow-client/internal/service/orders"
	"aquaflow-client/internal/session"
	"aquaflow-client/internal/storage"
)

func loginAs(t *testing.T, baseURL, identifier, password string) *api.Client {
	t.Helper()
	state := storage.NewMemory()
	creds := session.NewCredentials(state)
	client := api.New(baseURL,
		api.WithTokenSource(creds),
		api.WithUnauthorizedHook(creds.Evict),
		api.WithRetryConfig(api.RetryConfig{MaxAttempts: 1}))
	accounts := auth.New(client, creds, state, nil)
	if _, err := accounts.Login(context.Background(), identifier, password); err != nil {
		t.Fatalf("login as %s: %v", identifier, err)
	}
	return client
}

func TestAdminOrderPanelAgainstBackend(t *testing.T) {
	backend := mockbackend.NewStore()
	srv := httptest.NewServer(mockbackend.NewRouter(backend, nil))
	defer srv.Close()

	client := loginAs(t, srv.URL, "admin", "admin123")
	panel := orders.New(client, orders.WithMessageTTL(time.Hour))

	ctx := context.Background()
	if err := panel.Load(ctx); err != nil {
		t.Fatalf("load orders: %v", err)
	}
	if got := len(panel.Orders()); got != 4 {
		t.Fatalf("expected 4 seeded orders, got %d", got)
	}

	// The seeded order 41 is pending: approve it.
	if err := panel.PerformAction(ctx, 41, domain.ActionApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := panel.Message(); got != "Order #41 is now To Pick-Up." {
		t.Fatalf("expected the server's confirmation verbatim, got %q", got)
	}
	for _, o := range panel.Orders() {
		if o.ID == 41 && o.Status != domain.StatusToPickup {
			t.Fatalf("expected order 41 approved, got status %q", o.Status)
		}
	}

	// Approving again is illegal; the order list stays as loaded.
	before := panel.Orders()
	if err := panel.PerformAction(ctx, 41, domain.ActionApprove); err == nil {
		t.Fatal("expected a second approve to fail")
	}
	if got := panel.Orders(); len(got) != len(before) {
		t.Fatalf("expected the list untouched after a rejected action, got %d orders", len(got))
	}
}

func TestOrderPanelForbiddenForCustomers(t *testing.T) {
	backend := mockbackend.NewStore()
	srv := httptest.NewServer(mockbackend.NewRouter(backend, nil))
	defer srv.Close()

	client := loginAs(t, srv.URL, "carlo", "customer123")
	panel := orders.New(client)

	if err := panel.Load(context.Background()); err == nil {
		t.Fatal("expected a customer to be rejected")
	}
	if got := panel.Message(); got != "You don't have permission to view orders." {
		t.Fatalf("unexpected message: %q", got)
	}
}
