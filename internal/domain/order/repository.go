package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for the Order aggregate. The implementation
// is expected to provide per-row atomic read-modify-write semantics; the
// domain layer assumes but does not implement that guarantee.
type Repository interface {
	// FindByID returns the order or ErrNotFound
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// FindByExternalOrderID returns the order linked to the given
	// marketplace order, or ErrNotFound
	FindByExternalOrderID(ctx context.Context, tenantID uuid.UUID, externalOrderID string) (*Order, error)

	// FindLinked returns all orders carrying a marketplace link for the tenant
	FindLinked(ctx context.Context, tenantID uuid.UUID) ([]Order, error)

	// FindNeedingStatusPush returns orders flagged for an outbound status push
	FindNeedingStatusPush(ctx context.Context, tenantID uuid.UUID) ([]Order, error)

	// Save creates or updates the order row
	Save(ctx context.Context, o *Order) error
}
