package integration

import (
	"context"

	"github.com/google/uuid"
)

// ProviderCode identifies a marketplace sales channel provider
type ProviderCode string

const (
	// ProviderZid represents the Zid storefront platform
	ProviderZid ProviderCode = "ZID"
	// ProviderSalla represents the Salla storefront platform
	ProviderSalla ProviderCode = "SALLA"
	// ProviderWoo represents a WooCommerce store
	ProviderWoo ProviderCode = "WOOCOMMERCE"
)

// IsValid returns true if the provider code is known
func (c ProviderCode) IsValid() bool {
	switch c {
	case ProviderZid, ProviderSalla, ProviderWoo:
		return true
	}
	return false
}

// String returns the string representation of ProviderCode
func (c ProviderCode) String() string {
	return string(c)
}

// ShipmentInfo carries the tracking data pushed to the marketplace when an
// order ships
type ShipmentInfo struct {
	TrackingNumber string
	Carrier        string
	TrackingURL    string
}

// MarketplaceAdapter is the port to a marketplace sales channel. Adapters
// return an error value for every failure; nothing panics past this boundary.
type MarketplaceAdapter interface {
	// ProviderCode returns the provider this adapter handles
	ProviderCode() ProviderCode

	// TestConnection verifies the connection credentials
	TestConnection(ctx context.Context, tenantID uuid.UUID) error

	// ApproveOrder confirms the order on the marketplace
	ApproveOrder(ctx context.Context, tenantID uuid.UUID, externalOrderID string) error

	// RejectOrder rejects or cancels the order on the marketplace
	RejectOrder(ctx context.Context, tenantID uuid.UUID, externalOrderID, reason string) error

	// CreateShipment registers a shipment with tracking data on the marketplace
	CreateShipment(ctx context.Context, tenantID uuid.UUID, externalOrderID string, shipment ShipmentInfo) error

	// GetOrderStatus returns the provider's raw status string for the order
	GetOrderStatus(ctx context.Context, tenantID uuid.UUID, externalOrderID string) (string, error)
}

// MarketplaceRegistry resolves a provider code to its adapter. A provider is
// either registered with a full adapter implementation or absent, in which
// case Get returns ErrUnsupportedProvider; there are no partial stubs.
type MarketplaceRegistry interface {
	// Get returns the adapter for the provider code
	Get(code ProviderCode) (MarketplaceAdapter, error)

	// List returns all registered adapters
	List() []MarketplaceAdapter
}
