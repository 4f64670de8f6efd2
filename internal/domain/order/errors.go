package order

import "fmt"

// DomainError represents a domain-level error with a stable code
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound           = NewDomainError("NOT_FOUND", "Order not found")
	ErrValidation         = NewDomainError("VALIDATION", "Invalid order data")
	ErrAlreadyProvisioned = NewDomainError("ALREADY_PROVISIONED", "Order is already provisioned in the ERP")
	ErrNoMarketplaceLink  = NewDomainError("NO_MARKETPLACE_LINK", "Order has no marketplace link")
)

// InvalidTransitionError is returned when a requested status change is not
// legal from the order's current status
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

// Error implements the error interface
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// NewInvalidTransitionError creates a new invalid transition error
func NewInvalidTransitionError(from, to OrderStatus) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to}
}
