package domain

import (
	"strings"
	"time"
)

// Order statuses as the backend reports them. Historical snapshots of the
// backend emitted a few spelling variants; NormalizeStatus folds them.
const (
	StatusPending   = "pending"
	StatusToPickup  = "to_pickup"
	StatusPickedUp  = "picked_up"
	StatusPreparing = "preparing"
	StatusToDeliver = "to_deliver"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Admin actions. The client sends an action, never a target status; the server
// computes the resulting status.
const (
	ActionApprove       = "approve"
	ActionCancel        = "cancel"
	ActionMarkPreparing = "mark_preparing"
	ActionMarkToDeliver = "mark_to_deliver"
)

// Order is a server-owned aggregate the client reads and transitions.
type Order struct {
	ID           int64     `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	Products     string    `json:"products"`
	TotalCents   int64     `json:"total_price"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// NormalizeStatus lower-cases a status and replaces spaces with underscores so
// "picked up" and "picked_up" are treated identically. "to_pick_up" is an old
// spelling of to_pickup.
func NormalizeStatus(status string) string {
	s := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(status)), " ", "_")
	if s == "to_pick_up" {
		return StatusToPickup
	}
	return s
}

var displayStatus = map[string]string{
	StatusPending:   "Pending",
	StatusToPickup:  "To Pick-Up",
	StatusPickedUp:  "Picked Up",
	StatusPreparing: "Preparing",
	StatusToDeliver: "To Deliver",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

// DisplayStatus maps a status to its customer-facing name. Unknown statuses
// pass through unchanged so new backend statuses render literally instead of
// crashing the view.
func DisplayStatus(status string) string {
	if name, ok := displayStatus[NormalizeStatus(status)]; ok {
		return name
	}
	return status
}
