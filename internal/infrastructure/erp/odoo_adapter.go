package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/orderhub/backend/internal/domain/integration"
)

// maxOdooResponseSize limits the response body size to prevent memory exhaustion
const maxOdooResponseSize = 10 * 1024 * 1024 // 10MB max response

// Odoo model names used by the provisioning flow
const (
	odooModelPartner = "res.partner"
	odooModelSale    = "sale.order"
	odooModelInvoice = "account.move"
	odooModelPicking = "stock.picking"
)

// OdooAdapter implements the ERPAdapter interface over Odoo's JSON-RPC API
type OdooAdapter struct {
	config     *OdooConfig
	httpClient *http.Client

	// uid is the authenticated user ID, resolved lazily on first call
	uid    int64
	authMu sync.Mutex

	requestID atomic.Int64
}

// NewOdooAdapter creates a new Odoo adapter with the given configuration
func NewOdooAdapter(config *OdooConfig) (*OdooAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &OdooAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// jsonRPCRequest is the JSON-RPC 2.0 request envelope
type jsonRPCRequest struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
	ID      int64          `json:"id"`
}

// jsonRPCResponse is the JSON-RPC 2.0 response envelope
type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *jsonRPCError   `json:"error"`
}

// jsonRPCError is the error object returned by Odoo
type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

func (e *jsonRPCError) String() string {
	if e.Data.Message != "" {
		return e.Data.Message
	}
	return e.Message
}

// FindPartnerByEmail looks up a partner by e-mail address
func (a *OdooAdapter) FindPartnerByEmail(ctx context.Context, tenantID uuid.UUID, email string) (string, error) {
	domain := []any{[]any{"email", "=", email}}
	kwargs := map[string]any{"fields": []string{"id"}, "limit": 1}

	result, err := a.executeKw(ctx, odooModelPartner, "search_read", []any{domain}, kwargs)
	if err != nil {
		return "", err
	}

	var records []struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(result, &records); err != nil {
		return "", fmt.Errorf("odoo: failed to parse search result: %w", err)
	}

	if len(records) == 0 {
		return "", integration.ErrPartnerNotFound
	}
	return strconv.FormatInt(records[0].ID, 10), nil
}

// CreatePartner creates a res.partner record and returns its ID
func (a *OdooAdapter) CreatePartner(ctx context.Context, tenantID uuid.UUID, data integration.PartnerData) (string, error) {
	values := map[string]any{
		"name":  data.Name,
		"email": data.Email,
	}
	if data.Phone != "" {
		values["phone"] = data.Phone
	}
	if data.Street != "" {
		values["street"] = data.Street
	}
	if data.City != "" {
		values["city"] = data.City
	}
	if data.Zip != "" {
		values["zip"] = data.Zip
	}

	return a.createRecord(ctx, odooModelPartner, values)
}

// CreateSaleOrder creates a sale.order with its lines and returns its ID.
// Line amounts are sent as charged; nothing is recomputed on the Odoo side.
func (a *OdooAdapter) CreateSaleOrder(ctx context.Context, tenantID uuid.UUID, data integration.SaleOrderData) (string, error) {
	partnerID, err := strconv.ParseInt(data.PartnerID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("odoo: invalid partner ID %q: %w", data.PartnerID, err)
	}

	lines := make([]any, 0, len(data.Lines))
	for _, line := range data.Lines {
		lines = append(lines, []any{0, 0, map[string]any{
			"name":            line.Name,
			"default_code":    line.SKU,
			"product_uom_qty": line.Quantity.InexactFloat64(),
			"price_unit":      line.UnitPrice.InexactFloat64(),
		}})
	}

	values := map[string]any{
		"partner_id":       partnerID,
		"client_order_ref": data.OrderNumber,
		"order_line":       lines,
	}
	if data.Note != "" {
		values["note"] = data.Note
	}

	return a.createRecord(ctx, odooModelSale, values)
}

// CreateInvoice creates a customer invoice for the sale order
func (a *OdooAdapter) CreateInvoice(ctx context.Context, tenantID uuid.UUID, data integration.InvoiceData) (string, error) {
	partnerID, err := strconv.ParseInt(data.PartnerID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("odoo: invalid partner ID %q: %w", data.PartnerID, err)
	}

	lines := make([]any, 0, len(data.Lines))
	for _, line := range data.Lines {
		lines = append(lines, []any{0, 0, map[string]any{
			"name":       line.Name,
			"quantity":   line.Quantity.InexactFloat64(),
			"price_unit": line.UnitPrice.InexactFloat64(),
		}})
	}

	values := map[string]any{
		"move_type":        "out_invoice",
		"partner_id":       partnerID,
		"invoice_origin":   data.SaleOrderID,
		"invoice_line_ids": lines,
	}

	return a.createRecord(ctx, odooModelInvoice, values)
}

// CreateStockPicking creates an outgoing delivery record
func (a *OdooAdapter) CreateStockPicking(ctx context.Context, tenantID uuid.UUID, data integration.StockPickingData) (string, error) {
	partnerID, err := strconv.ParseInt(data.PartnerID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("odoo: invalid partner ID %q: %w", data.PartnerID, err)
	}

	moves := make([]any, 0, len(data.Lines))
	for _, line := range data.Lines {
		moves = append(moves, []any{0, 0, map[string]any{
			"name":            line.Name,
			"product_uom_qty": line.Quantity.InexactFloat64(),
		}})
	}

	values := map[string]any{
		"partner_id": partnerID,
		"origin":     data.SaleOrderID,
		"move_ids":   moves,
	}

	return a.createRecord(ctx, odooModelPicking, values)
}

// createRecord calls create on the model and returns the new record ID
func (a *OdooAdapter) createRecord(ctx context.Context, model string, values map[string]any) (string, error) {
	result, err := a.executeKw(ctx, model, "create", []any{values}, nil)
	if err != nil {
		return "", err
	}

	var id int64
	if err := json.Unmarshal(result, &id); err != nil {
		return "", fmt.Errorf("odoo: failed to parse create result: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// executeKw performs a JSON-RPC execute_kw call against the object service
func (a *OdooAdapter) executeKw(ctx context.Context, model, method string, args []any, kwargs map[string]any) (json.RawMessage, error) {
	uid, err := a.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	if kwargs == nil {
		kwargs = map[string]any{}
	}

	params := map[string]any{
		"service": "object",
		"method":  "execute_kw",
		"args":    []any{a.config.Database, uid, a.config.APIKey, model, method, args, kwargs},
	}

	return a.call(ctx, params)
}

// authenticate resolves and caches the integration user ID
func (a *OdooAdapter) authenticate(ctx context.Context) (int64, error) {
	a.authMu.Lock()
	defer a.authMu.Unlock()

	if a.uid != 0 {
		return a.uid, nil
	}

	params := map[string]any{
		"service": "common",
		"method":  "login",
		"args":    []any{a.config.Database, a.config.Username, a.config.APIKey},
	}

	result, err := a.call(ctx, params)
	if err != nil {
		return 0, err
	}

	var uid int64
	if err := json.Unmarshal(result, &uid); err != nil {
		return 0, fmt.Errorf("odoo: failed to parse login result: %w", err)
	}
	if uid == 0 {
		return 0, fmt.Errorf("odoo: authentication rejected for user %q", a.config.Username)
	}

	a.uid = uid
	return uid, nil
}

// call performs one JSON-RPC round trip to the /jsonrpc endpoint
func (a *OdooAdapter) call(ctx context.Context, params map[string]any) (json.RawMessage, error) {
	request := jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  "call",
		Params:  params,
		ID:      a.requestID.Add(1),
	}

	bodyBytes, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("odoo: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/jsonrpc", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("odoo: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxOdooResponseSize))
	if err != nil {
		return nil, fmt.Errorf("odoo: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrRequestFailed, resp.StatusCode)
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("odoo: failed to parse response: %w", err)
	}

	if rpcResp.Error != nil {
		return nil, fmt.Errorf("odoo: %s", rpcResp.Error.String())
	}

	return rpcResp.Result, nil
}

// Ensure OdooAdapter implements ERPAdapter interface
var _ integration.ERPAdapter = (*OdooAdapter)(nil)
