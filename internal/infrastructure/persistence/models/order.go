package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhub/backend/internal/domain/order"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key"`
	TenantID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_orders_tenant_number,priority:1;index:idx_orders_tenant_external,priority:1"`
	OrderNumber     string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_orders_tenant_number,priority:2"`
	ExternalOrderID string           `gorm:"type:varchar(100);index:idx_orders_tenant_external,priority:2"`
	ConnectionID    *uuid.UUID       `gorm:"type:uuid;index"`
	Provider        string           `gorm:"type:varchar(30)"`
	CustomerName    string           `gorm:"type:varchar(200)"`
	CustomerEmail   string           `gorm:"type:varchar(200)"`
	CustomerPhone   string           `gorm:"type:varchar(50)"`
	ShipName        string           `gorm:"type:varchar(200)"`
	ShipPhone       string           `gorm:"type:varchar(50)"`
	ShipAddressLine string           `gorm:"type:varchar(500)"`
	ShipCity        string           `gorm:"type:varchar(100)"`
	ShipCountry     string           `gorm:"type:varchar(100)"`
	ShipPostalCode  string           `gorm:"type:varchar(20)"`
	CarrierName     string           `gorm:"type:varchar(100)"`
	TrackingNumber  string           `gorm:"type:varchar(100)"`
	TrackingURL     string           `gorm:"type:varchar(500)"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID;references:ID"`
	Currency        string           `gorm:"type:varchar(10);not null"`
	Subtotal        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Tax             decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Freight         decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Discount        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Total           decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Status          string           `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentStatus   string           `gorm:"type:varchar(20);not null;default:'pending'"`
	ERPSaleOrderID  *string          `gorm:"type:varchar(100)"`
	ERPInvoiceID    *string          `gorm:"type:varchar(100)"`
	ERPDeliveryID   *string          `gorm:"type:varchar(100)"`

	WorkflowTriggered bool `gorm:"not null;default:false"`
	NeedsStatusPush   bool `gorm:"not null;default:false;index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		ID:              m.ID,
		TenantID:        m.TenantID,
		OrderNumber:     m.OrderNumber,
		ExternalOrderID: m.ExternalOrderID,
		ConnectionID:    m.ConnectionID,
		Provider:        m.Provider,
		CustomerName:    m.CustomerName,
		CustomerEmail:   m.CustomerEmail,
		CustomerPhone:   m.CustomerPhone,
		Shipping: order.ShippingInfo{
			Name:           m.ShipName,
			Phone:          m.ShipPhone,
			AddressLine:    m.ShipAddressLine,
			City:           m.ShipCity,
			Country:        m.ShipCountry,
			PostalCode:     m.ShipPostalCode,
			CarrierName:    m.CarrierName,
			TrackingNumber: m.TrackingNumber,
			TrackingURL:    m.TrackingURL,
		},
		Currency:          m.Currency,
		Subtotal:          m.Subtotal,
		Tax:               m.Tax,
		Freight:           m.Freight,
		Discount:          m.Discount,
		Total:             m.Total,
		Status:            order.OrderStatus(m.Status),
		PaymentStatus:     order.PaymentStatus(m.PaymentStatus),
		ERPSaleOrderID:    m.ERPSaleOrderID,
		ERPInvoiceID:      m.ERPInvoiceID,
		ERPDeliveryID:     m.ERPDeliveryID,
		WorkflowTriggered: m.WorkflowTriggered,
		NeedsStatusPush:   m.NeedsStatusPush,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		Items:             make([]order.OrderItem, len(m.Items)),
	}
	for i, item := range m.Items {
		o.Items[i] = *item.ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *order.Order) {
	m.ID = o.ID
	m.TenantID = o.TenantID
	m.OrderNumber = o.OrderNumber
	m.ExternalOrderID = o.ExternalOrderID
	m.ConnectionID = o.ConnectionID
	m.Provider = o.Provider
	m.CustomerName = o.CustomerName
	m.CustomerEmail = o.CustomerEmail
	m.CustomerPhone = o.CustomerPhone
	m.ShipName = o.Shipping.Name
	m.ShipPhone = o.Shipping.Phone
	m.ShipAddressLine = o.Shipping.AddressLine
	m.ShipCity = o.Shipping.City
	m.ShipCountry = o.Shipping.Country
	m.ShipPostalCode = o.Shipping.PostalCode
	m.CarrierName = o.Shipping.CarrierName
	m.TrackingNumber = o.Shipping.TrackingNumber
	m.TrackingURL = o.Shipping.TrackingURL
	m.Currency = o.Currency
	m.Subtotal = o.Subtotal
	m.Tax = o.Tax
	m.Freight = o.Freight
	m.Discount = o.Discount
	m.Total = o.Total
	m.Status = o.Status.String()
	m.PaymentStatus = o.PaymentStatus.String()
	m.ERPSaleOrderID = o.ERPSaleOrderID
	m.ERPInvoiceID = o.ERPInvoiceID
	m.ERPDeliveryID = o.ERPDeliveryID
	m.WorkflowTriggered = o.WorkflowTriggered
	m.NeedsStatusPush = o.NeedsStatusPush
	m.CreatedAt = o.CreatedAt
	m.UpdatedAt = o.UpdatedAt
	m.Items = make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(&item)
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order.
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line item.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU         string          `gorm:"type:varchar(100)"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() *order.OrderItem {
	return &order.OrderItem{
		ID:          m.ID,
		OrderID:     m.OrderID,
		SKU:         m.SKU,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Total:       m.Total,
	}
}

// OrderItemModelFromDomain creates a new persistence model from a domain OrderItem.
func OrderItemModelFromDomain(i *order.OrderItem) *OrderItemModel {
	return &OrderItemModel{
		ID:          i.ID,
		OrderID:     i.OrderID,
		SKU:         i.SKU,
		ProductName: i.ProductName,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		Total:       i.Total,
	}
}

// StatusHistoryModel is the persistence model for one status history entry.
// Rows are insert-only; there is no update path.
type StatusHistoryModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID           uuid.UUID `gorm:"type:uuid;not null;index:idx_status_history_order"`
	TenantID          uuid.UUID `gorm:"type:uuid;not null;index"`
	FromStatus        *string   `gorm:"type:varchar(20)"`
	ToStatus          string    `gorm:"type:varchar(20);not null"`
	FromPaymentStatus *string   `gorm:"type:varchar(20)"`
	ToPaymentStatus   string    `gorm:"type:varchar(20);not null"`
	Note              string    `gorm:"type:text"`
	ChangedBy         string    `gorm:"type:varchar(100);not null"`
	ChangedAt         time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StatusHistoryModel) TableName() string {
	return "order_status_history"
}

// ToDomain converts the persistence model to a domain StatusHistoryEntry.
func (m *StatusHistoryModel) ToDomain() *order.StatusHistoryEntry {
	entry := &order.StatusHistoryEntry{
		ID:              m.ID,
		OrderID:         m.OrderID,
		TenantID:        m.TenantID,
		ToStatus:        order.OrderStatus(m.ToStatus),
		ToPaymentStatus: order.PaymentStatus(m.ToPaymentStatus),
		Note:            m.Note,
		ChangedBy:       m.ChangedBy,
		ChangedAt:       m.ChangedAt,
	}
	if m.FromStatus != nil {
		from := order.OrderStatus(*m.FromStatus)
		entry.FromStatus = &from
	}
	if m.FromPaymentStatus != nil {
		from := order.PaymentStatus(*m.FromPaymentStatus)
		entry.FromPaymentStatus = &from
	}
	return entry
}

// StatusHistoryModelFromDomain creates a new persistence model from a domain entry.
func StatusHistoryModelFromDomain(e *order.StatusHistoryEntry) *StatusHistoryModel {
	m := &StatusHistoryModel{
		ID:              e.ID,
		OrderID:         e.OrderID,
		TenantID:        e.TenantID,
		ToStatus:        e.ToStatus.String(),
		ToPaymentStatus: e.ToPaymentStatus.String(),
		Note:            e.Note,
		ChangedBy:       e.ChangedBy,
		ChangedAt:       e.ChangedAt,
	}
	if e.FromStatus != nil {
		from := e.FromStatus.String()
		m.FromStatus = &from
	}
	if e.FromPaymentStatus != nil {
		from := e.FromPaymentStatus.String()
		m.FromPaymentStatus = &from
	}
	return m
}
