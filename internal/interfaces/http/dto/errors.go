package dto

import "net/http"

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeValidation is used when request data fails validation
	ErrCodeValidation = "VALIDATION"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
)

// Order lifecycle error codes
const (
	// ErrCodeInvalidTransition is used when a status change is not legal
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	// ErrCodeAlreadyProvisioned is used when the order already has ERP linkage
	ErrCodeAlreadyProvisioned = "ALREADY_PROVISIONED"
	// ErrCodeInProgress is used when a concurrent run holds the fence
	ErrCodeInProgress = "IN_PROGRESS"
	// ErrCodeNoMarketplaceLink is used when the order has no external link
	ErrCodeNoMarketplaceLink = "NO_MARKETPLACE_LINK"
	// ErrCodeERPNotConfigured is used when no ERP adapter is wired
	ErrCodeERPNotConfigured = "ERP_NOT_CONFIGURED"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,

	ErrCodeInvalidTransition:  http.StatusUnprocessableEntity,
	ErrCodeAlreadyProvisioned: http.StatusConflict,
	ErrCodeInProgress:         http.StatusConflict,
	ErrCodeNoMarketplaceLink:  http.StatusUnprocessableEntity,
	ErrCodeERPNotConfigured:   http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
