package integration

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartnerData is the customer record created in the ERP
type PartnerData struct {
	Name    string
	Email   string
	Phone   string
	Street  string
	City    string
	Country string
	Zip     string
}

// SaleOrderLine is one line of an ERP sale order
type SaleOrderLine struct {
	Name      string
	SKU       string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// SaleOrderData is the sale order created in the ERP. Totals carry the
// amounts the customer was actually charged; the ERP must not recompute them
// from the lines.
type SaleOrderData struct {
	PartnerID   string
	OrderNumber string
	Currency    string
	Lines       []SaleOrderLine
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
	Note        string
}

// InvoiceData is the invoice derived from a sale order
type InvoiceData struct {
	PartnerID   string
	SaleOrderID string
	Currency    string
	Lines       []SaleOrderLine
	Total       decimal.Decimal
}

// StockPickingData is the delivery record created in the ERP
type StockPickingData struct {
	PartnerID   string
	SaleOrderID string
	Lines       []SaleOrderLine
}

// ERPAdapter is the port to the ERP back office
type ERPAdapter interface {
	// FindPartnerByEmail returns the partner ID for the e-mail, or
	// ErrPartnerNotFound
	FindPartnerByEmail(ctx context.Context, tenantID uuid.UUID, email string) (string, error)

	// CreatePartner creates a partner and returns its ID
	CreatePartner(ctx context.Context, tenantID uuid.UUID, data PartnerData) (string, error)

	// CreateSaleOrder creates a sale order and returns its ID
	CreateSaleOrder(ctx context.Context, tenantID uuid.UUID, data SaleOrderData) (string, error)

	// CreateInvoice creates an invoice and returns its ID
	CreateInvoice(ctx context.Context, tenantID uuid.UUID, data InvoiceData) (string, error)

	// CreateStockPicking creates a delivery record and returns its ID
	CreateStockPicking(ctx context.Context, tenantID uuid.UUID, data StockPickingData) (string, error)
}
