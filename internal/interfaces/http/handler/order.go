package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ordersapp "github.com/orderhub/backend/internal/application/orders"
	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
)

// OrderHandler handles order lifecycle API endpoints
type OrderHandler struct {
	BaseHandler
	statusService *ordersapp.StatusService
	provisioner   *ordersapp.ProvisioningFlow
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(statusService *ordersapp.StatusService, provisioner *ordersapp.ProvisioningFlow) *OrderHandler {
	return &OrderHandler{
		statusService: statusService,
		provisioner:   provisioner,
	}
}

// UpdateStatusRequest represents a request to change an order's status
// @Description Request body for an order status change
type UpdateStatusRequest struct {
	Status    string `json:"status" binding:"required" example:"confirmed"`
	Note      string `json:"note" binding:"max=500" example:"Payment verified"`
	ChangedBy string `json:"changed_by" binding:"max=100" example:"ops-user"`

	// Destination toggles; all default to true
	SyncMarketplace *bool  `json:"sync_marketplace"`
	SyncERP         *bool  `json:"sync_erp"`
	SyncWorkflow    *bool  `json:"sync_workflow"`
	SendNotify      *bool  `json:"send_notification"`
	WorkflowID      string `json:"workflow_id" binding:"max=100"`
}

// ProvisionRequest represents a request to provision an order into the ERP
// @Description Request body for ERP provisioning
type ProvisionRequest struct {
	WithInvoice  bool `json:"with_invoice"`
	WithDelivery bool `json:"with_delivery"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID          string  `json:"id"`
	SKU         string  `json:"sku,omitempty"`
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              string              `json:"id"`
	TenantID        string              `json:"tenant_id"`
	OrderNumber     string              `json:"order_number"`
	ExternalOrderID string              `json:"external_order_id,omitempty"`
	Provider        string              `json:"provider,omitempty"`
	CustomerName    string              `json:"customer_name"`
	CustomerEmail   string              `json:"customer_email,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	Currency        string              `json:"currency"`
	Subtotal        float64             `json:"subtotal"`
	Tax             float64             `json:"tax"`
	Total           float64             `json:"total"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	ERPSaleOrderID  *string             `json:"erp_sale_order_id,omitempty"`
	ERPInvoiceID    *string             `json:"erp_invoice_id,omitempty"`
	ERPDeliveryID   *string             `json:"erp_delivery_id,omitempty"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// toOrderResponse converts an order aggregate to its API representation
func toOrderResponse(o *order.Order) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID.String(),
		TenantID:        o.TenantID.String(),
		OrderNumber:     o.OrderNumber,
		ExternalOrderID: o.ExternalOrderID,
		Provider:        o.Provider,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		Items:           make([]OrderItemResponse, 0, len(o.Items)),
		Currency:        o.Currency,
		Subtotal:        o.Subtotal.InexactFloat64(),
		Tax:             o.Tax.InexactFloat64(),
		Total:           o.Total.InexactFloat64(),
		Status:          o.Status.String(),
		PaymentStatus:   o.PaymentStatus.String(),
		ERPSaleOrderID:  o.ERPSaleOrderID,
		ERPInvoiceID:    o.ERPInvoiceID,
		ERPDeliveryID:   o.ERPDeliveryID,
		TrackingNumber:  o.Shipping.TrackingNumber,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:          item.ID.String(),
			SKU:         item.SKU,
			ProductName: item.ProductName,
			Quantity:    item.Quantity.InexactFloat64(),
			UnitPrice:   item.UnitPrice.InexactFloat64(),
			Total:       item.Total.InexactFloat64(),
		})
	}
	return resp
}

// GetByID godoc
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	o, err := h.statusService.GetOrder(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, toOrderResponse(o))
}

// UpdateStatus godoc
// @Summary      Change order status
// @Description  Apply one lifecycle transition and fan the change out to the
// @Description  configured destinations. A transition that is not legal from
// @Description  the current status is rejected; destination failures are
// @Description  reported per destination without rolling back the change.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body UpdateStatusRequest true "Status change"
// @Success      200 {object} dto.Response{data=orders.UpdateStatusResult}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id}/status [post]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	newStatus := order.OrderStatus(req.Status)
	if !newStatus.IsValid() {
		h.BadRequest(c, "Unknown order status: "+req.Status)
		return
	}

	result := h.statusService.UpdateStatus(c.Request.Context(), ordersapp.UpdateStatusRequest{
		TenantID:  tenantID,
		OrderID:   orderID,
		NewStatus: newStatus,
		Note:      req.Note,
		ChangedBy: req.ChangedBy,
		Flags:     dispatchFlags(&req),
	})
	if !result.Success {
		h.ErrorWithCode(c, result.ErrorCode, result.Error)
		return
	}

	h.Success(c, result)
}

// dispatchFlags builds the fan-out flags, defaulting every destination on
func dispatchFlags(req *UpdateStatusRequest) integration.DispatchFlags {
	enabled := func(v *bool) bool { return v == nil || *v }
	return integration.DispatchFlags{
		Marketplace:  enabled(req.SyncMarketplace),
		ERP:          enabled(req.SyncERP),
		Workflow:     enabled(req.SyncWorkflow),
		Notification: enabled(req.SendNotify),
		WorkflowID:   req.WorkflowID,
	}
}

// GetHistory godoc
// @Summary      Get order status history
// @Description  Returns the append-only audit trail, most recent entry first
// @Tags         orders
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]orders.HistoryEntryDTO}
// @Router       /orders/{id}/history [get]
func (h *OrderHandler) GetHistory(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	entries, err := h.statusService.GetHistory(c.Request.Context(), tenantID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}

// Provision godoc
// @Summary      Provision order into the ERP
// @Description  Creates the partner, sale order and optional invoice and
// @Description  delivery records. Re-running resumes from the first missing
// @Description  step; a fully provisioned order is rejected.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        X-Tenant-ID header string false "Tenant ID"
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body ProvisionRequest true "Provisioning options"
// @Success      200 {object} dto.Response{data=orders.ProvisionResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /orders/{id}/provision [post]
func (h *OrderHandler) Provision(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return
	}

	var req ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result := h.provisioner.Provision(c.Request.Context(), tenantID, orderID, ordersapp.ProvisionOptions{
		WithInvoice:  req.WithInvoice,
		WithDelivery: req.WithDelivery,
	})
	if !result.Success {
		h.ErrorWithCode(c, result.ErrorCode, result.Error)
		return
	}

	h.Success(c, result)
}

// RegisterRoutes registers order routes on the group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("/:id", h.GetByID)
		orders.GET("/:id/history", h.GetHistory)
		orders.POST("/:id/status", h.UpdateStatus)
		orders.POST("/:id/provision", h.Provision)
	}
}
