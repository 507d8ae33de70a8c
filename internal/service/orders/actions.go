package orders

import (
	"fmt"

	"aquaflow-client/internal/domain"
)

// AvailableActions returns the admin actions legal for an order status. The
// status is normalized first, so "picked up" and "picked_up" yield the same
// set. to_deliver, completed and cancelled are terminal for admin actions.
func AvailableActions(status string) []string {
	switch domain.NormalizeStatus(status) {
	case domain.StatusPending:
		return []string{domain.ActionApprove, domain.ActionCancel}
	case domain.StatusPickedUp:
		return []string{domain.ActionMarkPreparing}
	case domain.StatusPreparing:
		return []string{domain.ActionMarkToDeliver}
	default:
		return nil
	}
}

var actionNames = map[string]string{
	domain.ActionApprove:       "Approve",
	domain.ActionCancel:        "Cancel",
	domain.ActionMarkPreparing: "Mark as Preparing",
	domain.ActionMarkToDeliver: "Mark for Delivery",
}

// ActionDisplayName maps an action to its button label; unknown actions pass
// through unchanged.
func ActionDisplayName(action string) string {
	if name, ok := actionNames[action]; ok {
		return name
	}
	return action
}

// PendingAction describes an action awaiting user confirmation. The controller
// decides what needs confirming; how the confirmation is shown is the caller's
// concern.
type PendingAction struct {
	OrderID         int64
	Action          string
	DisplayName     string
	Confirmation    string
	RequiresConfirm bool
}

// Confirm builds the pending-action descriptor for an order in its current
// status.
func Confirm(orderID int64, action, currentStatus string) PendingAction {
	from := domain.DisplayStatus(currentStatus)
	var text string
	switch action {
	case domain.ActionApprove:
		text = fmt.Sprintf("Are you sure you want to APPROVE Order #%d? This will change status from %q to \"To Pick-Up\".", orderID, from)
	case domain.ActionCancel:
		text = fmt.Sprintf("Are you sure you want to CANCEL Order #%d? This will change status from %q to \"Cancelled\". This action cannot be undone.", orderID, from)
	case domain.ActionMarkPreparing:
		text = fmt.Sprintf("Are you sure you want to mark Order #%d as PREPARING? This will change status from %q to \"Preparing\".", orderID, from)
	case domain.ActionMarkToDeliver:
		text = fmt.Sprintf("Are you sure you want to mark Order #%d as READY FOR DELIVERY? This will change status from %q to \"To Deliver\".", orderID, from)
	default:
		text = fmt.Sprintf("Are you sure you want to perform this action on Order #%d?", orderID)
	}
	return PendingAction{
		OrderID:         orderID,
		Action:          action,
		DisplayName:     ActionDisplayName(action),
		Confirmation:    text,
		RequiresConfirm: true,
	}
}
