package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/domain/shared"
)

// provisionFenceTTL bounds how long one provisioning attempt may hold the
// per-order fence before another attempt is allowed through
const provisionFenceTTL = 5 * time.Minute

// ProvisioningFlow creates an order's counterpart records in the ERP the
// first time the order is synced: partner, sale order, then optionally
// invoice and delivery. Each step's linkage is persisted as soon as it
// succeeds, so a failed run resumes from the first missing artifact instead
// of rolling back or duplicating earlier ones.
type ProvisioningFlow struct {
	erp     integration.ERPAdapter
	repo    order.Repository
	history order.StatusHistoryRepository
	fence   shared.IdempotencyStore
	logger  *zap.Logger
}

// NewProvisioningFlow creates a new ERP provisioning flow
func NewProvisioningFlow(
	erp integration.ERPAdapter,
	repo order.Repository,
	history order.StatusHistoryRepository,
	fence shared.IdempotencyStore,
	logger *zap.Logger,
) *ProvisioningFlow {
	return &ProvisioningFlow{
		erp:     erp,
		repo:    repo,
		history: history,
		fence:   fence,
		logger:  logger,
	}
}

// Provision runs the provisioning sequence for the order. The idempotency
// guard fails fast once the sale-order linkage exists; the concurrency fence
// keeps two racing calls from provisioning the same order twice. Step errors
// abort the remaining steps and surface in the result.
func (p *ProvisioningFlow) Provision(ctx context.Context, tenantID, orderID uuid.UUID, opts ProvisionOptions) *ProvisionResult {
	if p.erp == nil {
		return provisionFailure("ERP_NOT_CONFIGURED", integration.ErrProviderNotConfigured)
	}

	o, err := p.repo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return provisionFailure(order.ErrNotFound.Code, err)
	}

	if o.IsProvisioned() && !needsRemainingSteps(o, opts) {
		return provisionFailure(order.ErrAlreadyProvisioned.Code, order.ErrAlreadyProvisioned)
	}

	if p.fence != nil {
		key := "provision:" + orderID.String()
		acquired, err := p.fence.MarkProcessed(ctx, key, provisionFenceTTL)
		if err != nil {
			return provisionFailure("FENCE", fmt.Errorf("provisioning fence: %w", err))
		}
		if !acquired {
			return provisionFailure("IN_PROGRESS", errors.New("provisioning already in progress for this order"))
		}
		defer func() {
			if err := p.fence.Release(ctx, key); err != nil {
				p.logger.Warn("Failed to release provisioning fence",
					zap.String("order_id", orderID.String()),
					zap.Error(err),
				)
			}
		}()
	}

	result := &ProvisionResult{}

	// Step 1: find or create the partner
	partnerID, err := p.ensurePartner(ctx, o)
	if err != nil {
		return provisionFailure("ERP_PARTNER", integration.NewExternalServiceError(destERP, err))
	}

	// Step 2: create the sale order, carrying the order's own totals so the
	// ERP shows exactly what the customer was charged
	if !o.IsProvisioned() {
		saleOrderID, err := p.erp.CreateSaleOrder(ctx, tenantID, integration.SaleOrderData{
			PartnerID:   partnerID,
			OrderNumber: o.OrderNumber,
			Currency:    o.Currency,
			Lines:       saleOrderLines(o),
			Subtotal:    o.Subtotal,
			Tax:         o.Tax,
			Total:       o.Total,
			Note:        fmt.Sprintf("Imported from order %s", o.OrderNumber),
		})
		if err != nil {
			return provisionFailure("ERP_SALE_ORDER", integration.NewExternalServiceError(destERP, err))
		}
		o = o.WithERPLinkage(&saleOrderID, nil, nil)
		if err := p.repo.Save(ctx, o); err != nil {
			return provisionFailure("PERSISTENCE", err)
		}
	}
	result.SaleOrderID = *o.ERPSaleOrderID

	// Step 3: optional invoice derived from the sale order lines
	if opts.WithInvoice && o.ERPInvoiceID == nil {
		invoiceID, err := p.erp.CreateInvoice(ctx, tenantID, integration.InvoiceData{
			PartnerID:   partnerID,
			SaleOrderID: *o.ERPSaleOrderID,
			Currency:    o.Currency,
			Lines:       saleOrderLines(o),
			Total:       o.Total,
		})
		if err != nil {
			return provisionFailure("ERP_INVOICE", integration.NewExternalServiceError(destERP, err))
		}
		o = o.WithERPLinkage(nil, &invoiceID, nil)
		if err := p.repo.Save(ctx, o); err != nil {
			return provisionFailure("PERSISTENCE", err)
		}
	}
	if o.ERPInvoiceID != nil {
		result.InvoiceID = *o.ERPInvoiceID
	}

	// Step 4: optional delivery record
	if opts.WithDelivery && o.ERPDeliveryID == nil {
		deliveryID, err := p.erp.CreateStockPicking(ctx, tenantID, integration.StockPickingData{
			PartnerID:   partnerID,
			SaleOrderID: *o.ERPSaleOrderID,
			Lines:       saleOrderLines(o),
		})
		if err != nil {
			return provisionFailure("ERP_DELIVERY", integration.NewExternalServiceError(destERP, err))
		}
		o = o.WithERPLinkage(nil, nil, &deliveryID)
		if err := p.repo.Save(ctx, o); err != nil {
			return provisionFailure("PERSISTENCE", err)
		}
	}
	if o.ERPDeliveryID != nil {
		result.DeliveryOrderID = *o.ERPDeliveryID
	}

	entry := order.NewStatusHistoryEntry(nil, o, provisionNote(result), order.ActorSystem)
	if err := p.history.Append(ctx, entry); err != nil {
		p.logger.Error("Failed to record provisioning in status history",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
	}

	p.logger.Info("Order provisioned in ERP",
		zap.String("order_id", orderID.String()),
		zap.String("sale_order_id", result.SaleOrderID),
	)

	result.Success = true
	return result
}

// ensurePartner returns the ERP partner for the order's customer, creating
// it when the e-mail is unknown
func (p *ProvisioningFlow) ensurePartner(ctx context.Context, o *order.Order) (string, error) {
	partnerID, err := p.erp.FindPartnerByEmail(ctx, o.TenantID, o.CustomerEmail)
	if err == nil {
		return partnerID, nil
	}
	if !errors.Is(err, integration.ErrPartnerNotFound) {
		return "", err
	}

	return p.erp.CreatePartner(ctx, o.TenantID, integration.PartnerData{
		Name:    o.CustomerName,
		Email:   o.CustomerEmail,
		Phone:   o.CustomerPhone,
		Street:  o.Shipping.AddressLine,
		City:    o.Shipping.City,
		Country: o.Shipping.Country,
		Zip:     o.Shipping.PostalCode,
	})
}

// needsRemainingSteps reports whether the options ask for an artifact the
// order does not carry yet, which lets a retry resume past the guard
func needsRemainingSteps(o *order.Order, opts ProvisionOptions) bool {
	if opts.WithInvoice && o.ERPInvoiceID == nil {
		return true
	}
	if opts.WithDelivery && o.ERPDeliveryID == nil {
		return true
	}
	return false
}

// saleOrderLines converts the order items into ERP sale order lines
func saleOrderLines(o *order.Order) []integration.SaleOrderLine {
	lines := make([]integration.SaleOrderLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, integration.SaleOrderLine{
			Name:      item.ProductName,
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return lines
}

// provisionNote builds the ledger note for a completed provisioning run
func provisionNote(r *ProvisionResult) string {
	note := "Provisioned in ERP: sale order " + r.SaleOrderID
	if r.InvoiceID != "" {
		note += ", invoice " + r.InvoiceID
	}
	if r.DeliveryOrderID != "" {
		note += ", delivery " + r.DeliveryOrderID
	}
	return note
}

// provisionFailure builds a failed result from an error
func provisionFailure(code string, err error) *ProvisionResult {
	return &ProvisionResult{
		Success:   false,
		ErrorCode: code,
		Error:     err.Error(),
	}
}
