package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Actor identifiers recorded in status history entries
const (
	ActorSystem          = "system"
	ActorMarketplaceSync = "marketplace-sync"
	ActorReconciler      = "reconciler"
)

// StatusHistoryEntry is one immutable line of the order audit trail. An entry
// is written by the same operation that mutates the order and is never
// updated or deleted afterwards.
type StatusHistoryEntry struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	TenantID          uuid.UUID
	FromStatus        *OrderStatus
	ToStatus          OrderStatus
	FromPaymentStatus *PaymentStatus
	ToPaymentStatus   PaymentStatus
	Note              string
	ChangedBy         string
	ChangedAt         time.Time
}

// NewStatusHistoryEntry creates a history entry for a status change on the
// given order. from captures the state before the change.
func NewStatusHistoryEntry(before, after *Order, note, changedBy string) *StatusHistoryEntry {
	if changedBy == "" {
		changedBy = ActorSystem
	}
	entry := &StatusHistoryEntry{
		ID:              uuid.New(),
		OrderID:         after.ID,
		TenantID:        after.TenantID,
		ToStatus:        after.Status,
		ToPaymentStatus: after.PaymentStatus,
		Note:            note,
		ChangedBy:       changedBy,
		ChangedAt:       time.Now(),
	}
	if before != nil {
		from := before.Status
		fromPay := before.PaymentStatus
		entry.FromStatus = &from
		entry.FromPaymentStatus = &fromPay
	}
	return entry
}

// StatusHistoryRepository is the append-only ledger of status changes.
// No update or delete is exposed.
type StatusHistoryRepository interface {
	// Append persists a new entry. Fails only on persistence errors;
	// validation happens upstream.
	Append(ctx context.Context, entry *StatusHistoryEntry) error

	// ListByOrder returns all entries for an order, most recent first.
	ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]StatusHistoryEntry, error)
}
