package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
)

// UpdateStatusRequest asks for one lifecycle transition plus the fan-out to
// run after it succeeds
type UpdateStatusRequest struct {
	TenantID  uuid.UUID
	OrderID   uuid.UUID
	NewStatus order.OrderStatus
	Note      string
	// ChangedBy identifies the actor; defaults to "system"
	ChangedBy string
	Flags     integration.DispatchFlags
}

// UpdateStatusResult is the structured outcome of a status update. Callers
// inspect Success and ErrorCode instead of unwrapping errors.
type UpdateStatusResult struct {
	Success          bool     `json:"success"`
	OrderID          string   `json:"order_id"`
	PreviousStatus   string   `json:"previous_status,omitempty"`
	NewStatus        string   `json:"new_status,omitempty"`
	TriggeredActions []string `json:"triggered_actions,omitempty"`
	Errors           []string `json:"errors,omitempty"`
	ErrorCode        string   `json:"error_code,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// ReconcileScope selects which orders a reconciliation pass covers
type ReconcileScope struct {
	TenantID uuid.UUID
	// Provider restricts the pass to one marketplace provider when set
	Provider string
}

// ProvisionOptions selects the optional provisioning steps
type ProvisionOptions struct {
	WithInvoice  bool
	WithDelivery bool
}

// ProvisionResult is the structured outcome of an ERP provisioning run
type ProvisionResult struct {
	Success         bool   `json:"success"`
	SaleOrderID     string `json:"sale_order_id,omitempty"`
	InvoiceID       string `json:"invoice_id,omitempty"`
	DeliveryOrderID string `json:"delivery_order_id,omitempty"`
	ErrorCode       string `json:"error_code,omitempty"`
	Error           string `json:"error,omitempty"`
}

// HistoryEntryDTO is the outward representation of one ledger entry
type HistoryEntryDTO struct {
	ID                string    `json:"id"`
	FromStatus        string    `json:"from_status,omitempty"`
	ToStatus          string    `json:"to_status"`
	FromPaymentStatus string    `json:"from_payment_status,omitempty"`
	ToPaymentStatus   string    `json:"to_payment_status"`
	Note              string    `json:"note,omitempty"`
	ChangedBy         string    `json:"changed_by"`
	ChangedAt         time.Time `json:"changed_at"`
}

// historyEntryToDTO converts a ledger entry for the outward surface
func historyEntryToDTO(e *order.StatusHistoryEntry) HistoryEntryDTO {
	dto := HistoryEntryDTO{
		ID:              e.ID.String(),
		ToStatus:        e.ToStatus.String(),
		ToPaymentStatus: e.ToPaymentStatus.String(),
		Note:            e.Note,
		ChangedBy:       e.ChangedBy,
		ChangedAt:       e.ChangedAt,
	}
	if e.FromStatus != nil {
		dto.FromStatus = e.FromStatus.String()
	}
	if e.FromPaymentStatus != nil {
		dto.FromPaymentStatus = e.FromPaymentStatus.String()
	}
	return dto
}
