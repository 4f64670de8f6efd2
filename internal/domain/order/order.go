package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem represents a line item in an order
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	SKU         string
	ProductName string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// NewOrderItem creates a new order line item
func NewOrderItem(orderID uuid.UUID, sku, productName string, quantity, unitPrice decimal.Decimal) (*OrderItem, error) {
	if productName == "" {
		return nil, NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		SKU:         sku,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       quantity.Mul(unitPrice),
	}, nil
}

// ShippingInfo holds the delivery destination and carrier data for an order
type ShippingInfo struct {
	Name           string
	Phone          string
	AddressLine    string
	City           string
	Country        string
	PostalCode     string
	CarrierName    string
	TrackingNumber string
	TrackingURL    string
}

// HasTracking returns true if carrier tracking data is present
func (s ShippingInfo) HasTracking() bool {
	return s.CarrierName != "" && s.TrackingNumber != ""
}

// Order is the order aggregate. Mutating operations return a new copy so a
// caller always holds a consistent snapshot; the repository owns the
// authoritative row.
type Order struct {
	ID              uuid.UUID
	TenantID        uuid.UUID
	OrderNumber     string
	ExternalOrderID string
	ConnectionID    *uuid.UUID
	// Provider is the marketplace provider code for the linked sales channel,
	// empty when the order was created directly
	Provider string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Shipping      ShippingInfo

	Items    []OrderItem
	Currency string
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Freight  decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal

	Status        OrderStatus
	PaymentStatus PaymentStatus

	// ERP linkage, set step by step as provisioning succeeds
	ERPSaleOrderID *string
	ERPInvoiceID   *string
	ERPDeliveryID  *string

	WorkflowTriggered bool
	NeedsStatusPush   bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder creates a new order in pending/pending state
func NewOrder(tenantID uuid.UUID, orderNumber, customerName, customerEmail, currency string) (*Order, error) {
	if orderNumber == "" {
		return nil, NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if tenantID == uuid.Nil {
		return nil, NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if currency == "" {
		return nil, NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}

	now := time.Now()
	return &Order{
		ID:            uuid.New(),
		TenantID:      tenantID,
		OrderNumber:   orderNumber,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Items:         make([]OrderItem, 0),
		Currency:      currency,
		Subtotal:      decimal.Zero,
		Tax:           decimal.Zero,
		Freight:       decimal.Zero,
		Discount:      decimal.Zero,
		Total:         decimal.Zero,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// clone returns a deep copy of the order. All With-style updates go through
// this single copy so the field list lives in exactly one place.
func (o *Order) clone() *Order {
	cp := *o
	cp.Items = make([]OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	if o.ConnectionID != nil {
		id := *o.ConnectionID
		cp.ConnectionID = &id
	}
	if o.ERPSaleOrderID != nil {
		v := *o.ERPSaleOrderID
		cp.ERPSaleOrderID = &v
	}
	if o.ERPInvoiceID != nil {
		v := *o.ERPInvoiceID
		cp.ERPInvoiceID = &v
	}
	if o.ERPDeliveryID != nil {
		v := *o.ERPDeliveryID
		cp.ERPDeliveryID = &v
	}
	return &cp
}

// WithStatus returns a copy of the order with the lifecycle status replaced.
// It does not validate the transition; use ApplyTransition for that.
func (o *Order) WithStatus(status OrderStatus) *Order {
	cp := o.clone()
	cp.Status = status
	cp.UpdatedAt = time.Now()
	return cp
}

// WithPaymentStatus returns a copy of the order with the payment status replaced
func (o *Order) WithPaymentStatus(status PaymentStatus) *Order {
	cp := o.clone()
	cp.PaymentStatus = status
	cp.UpdatedAt = time.Now()
	return cp
}

// WithERPLinkage returns a copy with the given ERP record IDs attached.
// Nil arguments leave the corresponding field untouched so provisioning can
// record progress one step at a time.
func (o *Order) WithERPLinkage(saleOrderID, invoiceID, deliveryID *string) *Order {
	cp := o.clone()
	if saleOrderID != nil {
		cp.ERPSaleOrderID = saleOrderID
	}
	if invoiceID != nil {
		cp.ERPInvoiceID = invoiceID
	}
	if deliveryID != nil {
		cp.ERPDeliveryID = deliveryID
	}
	cp.UpdatedAt = time.Now()
	return cp
}

// WithWorkflowTriggered returns a copy with the workflow-triggered flag set
func (o *Order) WithWorkflowTriggered() *Order {
	cp := o.clone()
	cp.WorkflowTriggered = true
	cp.UpdatedAt = time.Now()
	return cp
}

// WithNeedsStatusPush returns a copy with the outbound push flag set
func (o *Order) WithNeedsStatusPush(needs bool) *Order {
	cp := o.clone()
	cp.NeedsStatusPush = needs
	cp.UpdatedAt = time.Now()
	return cp
}

// WithTracking returns a copy with carrier tracking data attached
func (o *Order) WithTracking(carrier, trackingNumber, trackingURL string) *Order {
	cp := o.clone()
	cp.Shipping.CarrierName = carrier
	cp.Shipping.TrackingNumber = trackingNumber
	cp.Shipping.TrackingURL = trackingURL
	cp.UpdatedAt = time.Now()
	return cp
}

// AddItem returns a copy of the order with the item appended and totals
// recalculated from the line items
func (o *Order) AddItem(item OrderItem) *Order {
	cp := o.clone()
	cp.Items = append(cp.Items, item)
	cp.recalculateTotals()
	cp.UpdatedAt = time.Now()
	return cp
}

// recalculateTotals recomputes subtotal and total from the line items
func (o *Order) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(item.Total)
	}
	o.Subtotal = subtotal
	o.Total = subtotal.Add(o.Tax).Add(o.Freight).Sub(o.Discount)
	if o.Total.IsNegative() {
		o.Total = decimal.Zero
	}
}

// Validate checks the aggregate invariants: enum membership, non-negative
// line totals, one shared currency
func (o *Order) Validate() error {
	if !o.Status.IsValid() {
		return NewDomainError("INVALID_STATUS", "Unknown order status: "+o.Status.String())
	}
	if !o.PaymentStatus.IsValid() {
		return NewDomainError("INVALID_PAYMENT_STATUS", "Unknown payment status: "+o.PaymentStatus.String())
	}
	if o.Currency == "" {
		return NewDomainError("INVALID_CURRENCY", "Currency cannot be empty")
	}
	for _, item := range o.Items {
		if item.Total.IsNegative() {
			return NewDomainError("INVALID_ITEM_TOTAL", "Line item total cannot be negative")
		}
	}
	return nil
}

// CanBeCancelled returns true while the order has not progressed past confirmation
func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case StatusPending, StatusProcessing, StatusConfirmed:
		return true
	}
	return false
}

// CanBeRefunded returns true once the order is shipped or delivered and paid for
func (o *Order) CanBeRefunded() bool {
	if o.Status != StatusShipped && o.Status != StatusDelivered {
		return false
	}
	return o.PaymentStatus == PaymentPaid
}

// HasMarketplaceLink returns true if the order is linked to a marketplace order
func (o *Order) HasMarketplaceLink() bool {
	return o.ExternalOrderID != "" && o.ConnectionID != nil
}

// IsProvisioned returns true once the ERP sale order exists
func (o *Order) IsProvisioned() bool {
	return o.ERPSaleOrderID != nil && *o.ERPSaleOrderID != ""
}

// ApplyTransition validates the requested transition and returns a new order
// copy in the target status together with the note to record. The empty note
// is replaced by the default note for the target status. The receiver is
// never mutated.
func (o *Order) ApplyTransition(target OrderStatus, note string) (*Order, string, error) {
	if !target.IsValid() {
		return nil, "", NewDomainError("INVALID_STATUS", "Unknown order status: "+target.String())
	}
	if !o.Status.CanTransitionTo(target) {
		return nil, "", NewInvalidTransitionError(o.Status, target)
	}
	if note == "" {
		note = TransitionNote(o.Status, target)
	}
	return o.WithStatus(target), note, nil
}

// ForceStatus returns a copy in the target status without consulting the
// transition table. Reserved for remote-driven reconciliation corrections;
// regular callers go through ApplyTransition.
func (o *Order) ForceStatus(target OrderStatus, note string) (*Order, string, error) {
	if !target.IsValid() {
		return nil, "", NewDomainError("INVALID_STATUS", "Unknown order status: "+target.String())
	}
	if note == "" {
		note = TransitionNote(o.Status, target)
	}
	return o.WithStatus(target), note, nil
}
