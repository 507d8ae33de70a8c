package orders

import (
	"strings"
	"testing"

	"aquaflow-client/internal/domain"
)

func TestAvailableActions(t *testing.T) {
	cases := []struct {
		status string
		want   []string
	}{
		{"pending", []string{domain.ActionApprove, domain.ActionCancel}},
		{"picked_up", []string{domain.ActionMarkPreparing}},
		{"picked up", []string{domain.ActionMarkPreparing}},
		{"Picked Up", []string{domain.ActionMarkPreparing}},
		{"preparing", []string{domain.ActionMarkToDeliver}},
		{"to_pickup", nil},
		{"to_deliver", nil},
		{"completed", nil},
		{"cancelled", nil},
		{"unknown_status", nil},
	}
	for _, tc := range cases {
		got := AvailableActions(tc.status)
		if len(got) != len(tc.want) {
			t.Fatalf("AvailableActions(%q) = %v, want %v", tc.status, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("AvailableActions(%q) = %v, want %v", tc.status, got, tc.want)
			}
		}
	}
}

func TestActionDisplayName(t *testing.T) {
	if got := ActionDisplayName(domain.ActionMarkToDeliver); got != "Mark for Delivery" {
		t.Fatalf("unexpected display name: %q", got)
	}
	if got := ActionDisplayName("custom_action"); got != "custom_action" {
		t.Fatalf("unknown action should pass through, got %q", got)
	}
}

func TestConfirmDescribesTheTransition(t *testing.T) {
	pending := Confirm(41, domain.ActionCancel, "pending")
	if pending.OrderID != 41 || pending.Action != domain.ActionCancel {
		t.Fatalf("unexpected pending action: %+v", pending)
	}
	if !pending.RequiresConfirm {
		t.Fatal("cancel must require confirmation")
	}
	if !strings.Contains(pending.Confirmation, "CANCEL Order #41") {
		t.Fatalf("unexpected confirmation text: %q", pending.Confirmation)
	}
	if !strings.Contains(pending.Confirmation, "cannot be undone") {
		t.Fatalf("cancel confirmation must warn about irreversibility: %q", pending.Confirmation)
	}

	deliver := Confirm(42, domain.ActionMarkToDeliver, "preparing")
	if !strings.Contains(deliver.Confirmation, `"Preparing" to "To Deliver"`) {
		t.Fatalf("unexpected confirmation text: %q", deliver.Confirmation)
	}
}
