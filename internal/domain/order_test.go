package domain

import "testing"

func TestNormalizeStatus(t *testing.T) {
	cases := map[string]string{
		"pending":    StatusPending,
		"Picked Up":  StatusPickedUp,
		"picked_up":  StatusPickedUp,
		"picked up":  StatusPickedUp,
		"to_pick_up": StatusToPickup,
		"TO_DELIVER": StatusToDeliver,
		" completed": StatusCompleted,
	}
	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDisplayStatus(t *testing.T) {
	if got := DisplayStatus("to_pickup"); got != "To Pick-Up" {
		t.Fatalf("expected To Pick-Up, got %q", got)
	}
	if got := DisplayStatus("picked up"); got != "Picked Up" {
		t.Fatalf("expected Picked Up, got %q", got)
	}
}

func TestDisplayStatusUnknownPassesThrough(t *testing.T) {
	if got := DisplayStatus("on_hold"); got != "on_hold" {
		t.Fatalf("unknown status should render literally, got %q", got)
	}
}

func TestCartLineTotal(t *testing.T) {
	line := CartLine{PriceCents: 3500, Quantity: 3}
	if got := line.LineTotalCents(); got != 10500 {
		t.Fatalf("expected 10500, got %d", got)
	}
}
