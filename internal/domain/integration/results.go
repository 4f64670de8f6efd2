package integration

import (
	"time"

	"github.com/google/uuid"

	"github.com/orderhub/backend/internal/domain/order"
)

// DispatchFlags selects which destinations a dispatch fans out to. A flag
// that is enabled but whose destination has no configuration wired is
// silently skipped.
type DispatchFlags struct {
	Marketplace  bool
	ERP          bool
	Workflow     bool
	Notification bool
	// WorkflowID selects the workflow run to trigger when Workflow is set
	WorkflowID string
}

// AllDestinations enables every destination
func AllDestinations() DispatchFlags {
	return DispatchFlags{Marketplace: true, ERP: true, Workflow: true, Notification: true}
}

// DispatchResult is the composite outcome of one fan-out. TriggeredActions
// holds a human-readable label per destination that fired; Errors holds one
// "<destination> failed: <message>" string per destination that did not.
type DispatchResult struct {
	TriggeredActions []string
	Errors           []string
	Duration         time.Duration
}

// OK returns true when no destination failed
func (r *DispatchResult) OK() bool {
	return len(r.Errors) == 0
}

// SyncResult is the per-operation outcome of a batch sync
type SyncResult struct {
	Processed   int
	Succeeded   int
	Failed      int
	FailedItems []SyncFailure
	Duration    time.Duration
}

// SyncFailure identifies one failed item in a batch sync
type SyncFailure struct {
	ItemID       string
	ErrorMessage string
}

// ResolutionPolicy decides how a status conflict between the internal record
// and the marketplace record is resolved
type ResolutionPolicy string

const (
	// PolicyMarketplaceWins adopts the remote-mapped status
	PolicyMarketplaceWins ResolutionPolicy = "marketplace_wins"
	// PolicyInternalWins keeps the internal status and re-pushes it outbound
	PolicyInternalWins ResolutionPolicy = "internal_wins"
	// PolicyManual records the conflict without mutating anything
	PolicyManual ResolutionPolicy = "manual"
)

// IsValid returns true if the policy is known
func (p ResolutionPolicy) IsValid() bool {
	switch p {
	case PolicyMarketplaceWins, PolicyInternalWins, PolicyManual:
		return true
	}
	return false
}

// ConflictRecord is the transient record of one detected disagreement. It is
// surfaced to the caller; a correction that gets applied also lands in the
// status history ledger.
type ConflictRecord struct {
	OrderID        uuid.UUID
	InternalStatus order.OrderStatus
	RemoteStatus   string
	MappedStatus   order.OrderStatus
	Resolution     ResolutionPolicy
	DetectedAt     time.Time
}

// ReconcileResult is the outcome of one reconciliation pass
type ReconcileResult struct {
	FromRemoteCount int
	ToRemoteCount   int
	Conflicts       []ConflictRecord
	Errors          []string
	Duration        time.Duration
}
