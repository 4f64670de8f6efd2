package order

import "fmt"

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
	StatusFailed     OrderStatus = "failed"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusConfirmed, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is allowed from this status
func (s OrderStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// PaymentStatus represents the financial status of an order,
// independent of the lifecycle status
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded, PaymentPartiallyRefunded:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// statusTransitions is the single source of truth for legal lifecycle
// transitions. A status absent from a target set is not reachable; a
// same-state transition is never legal.
var statusTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
	StatusFailed:     {StatusProcessing},
}

// CanTransitionTo checks if the status can legally transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from this status
func (s OrderStatus) AllowedTransitions() []OrderStatus {
	allowed := statusTransitions[s]
	out := make([]OrderStatus, len(allowed))
	copy(out, allowed)
	return out
}

// transitionNotes maps a target status to the default human-readable note
// recorded in the status history when the caller supplies none.
var transitionNotes = map[OrderStatus]string{
	StatusProcessing: "Order moved to processing",
	StatusConfirmed:  "Order confirmed",
	StatusShipped:    "Order shipped to customer",
	StatusDelivered:  "Order delivered",
	StatusCancelled:  "Order cancelled",
	StatusRefunded:   "Order refunded",
	StatusFailed:     "Order failed",
}

// TransitionNote returns the default note for a transition into target.
// Falls back to a generic "<old> → <new>" message for unmapped targets.
func TransitionNote(from, target OrderStatus) string {
	if note, ok := transitionNotes[target]; ok {
		return note
	}
	return fmt.Sprintf("Status changed from %s to %s", from, target)
}
