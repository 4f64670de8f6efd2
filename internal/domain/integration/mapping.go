package integration

import (
	"strings"

	"github.com/orderhub/backend/internal/domain/order"
)

// MarketplaceAction is the action executed against the marketplace when an
// internal status change is pushed outbound
type MarketplaceAction string

const (
	ActionNone    MarketplaceAction = ""
	ActionApprove MarketplaceAction = "approve"
	ActionShip    MarketplaceAction = "ship"
	ActionReject  MarketplaceAction = "reject"
)

// marketplaceActions is the single owned mapping from internal status to
// marketplace action. Statuses absent from the table map to ActionNone,
// which is a deliberate no-op, not an error.
var marketplaceActions = map[order.OrderStatus]MarketplaceAction{
	order.StatusConfirmed: ActionApprove,
	order.StatusShipped:   ActionShip,
	order.StatusCancelled: ActionReject,
	order.StatusFailed:    ActionReject,
}

// ActionForStatus returns the marketplace action for an internal status
func ActionForStatus(status order.OrderStatus) MarketplaceAction {
	return marketplaceActions[status]
}

// remoteStatuses is the single owned mapping from a marketplace's reported
// status string to the internal enumeration. It is shared by inbound order
// sync and by reconciliation so the two can never drift apart.
var remoteStatuses = map[string]order.OrderStatus{
	"created":   order.StatusPending,
	"pending":   order.StatusPending,
	"approved":  order.StatusConfirmed,
	"confirmed": order.StatusConfirmed,
	"packed":    order.StatusProcessing,
	"shipped":   order.StatusShipped,
	"delivered": order.StatusDelivered,
	"cancelled": order.StatusCancelled,
	"returned":  order.StatusRefunded,
	"failed":    order.StatusFailed,
}

// MapRemoteStatus maps a provider status string to the internal enumeration.
// Unknown strings default to pending.
func MapRemoteStatus(remote string) order.OrderStatus {
	if status, ok := remoteStatuses[strings.ToLower(strings.TrimSpace(remote))]; ok {
		return status
	}
	return order.StatusPending
}
