package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/orderhub/backend/internal/domain/integration"
)

// maxZidResponseSize limits the response body size to prevent memory exhaustion
const maxZidResponseSize = 10 * 1024 * 1024 // 10MB max response

// Zid order status codes sent on status change requests
const (
	zidStatusApproved = "approved"
	zidStatusRejected = "rejected"
)

// ZidAdapter implements the MarketplaceAdapter interface for the Zid platform
type ZidAdapter struct {
	config     *ZidConfig
	httpClient *http.Client

	// tenantConfigs stores per-tenant configurations
	// In production, this would be loaded from database
	tenantConfigs map[uuid.UUID]*ZidConfig
	mu            sync.RWMutex // Protects tenantConfigs map access
}

// NewZidAdapter creates a new Zid adapter with the given configuration
func NewZidAdapter(config *ZidConfig) (*ZidAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ZidAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		tenantConfigs: make(map[uuid.UUID]*ZidConfig),
	}, nil
}

// SetTenantConfig sets the configuration for a specific tenant
func (a *ZidAdapter) SetTenantConfig(tenantID uuid.UUID, config *ZidConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tenantConfigs[tenantID] = config
	return nil
}

// getTenantConfig retrieves the configuration for a tenant
func (a *ZidAdapter) getTenantConfig(tenantID uuid.UUID) (*ZidConfig, error) {
	a.mu.RLock()
	config, ok := a.tenantConfigs[tenantID]
	a.mu.RUnlock()
	if ok {
		return config, nil
	}
	// Fall back to default config
	if a.config != nil {
		return a.config, nil
	}
	return nil, integration.ErrProviderNotConfigured
}

// ProviderCode returns the provider code this adapter handles
func (a *ZidAdapter) ProviderCode() integration.ProviderCode {
	return integration.ProviderZid
}

// TestConnection verifies the stored credentials against the account endpoint
func (a *ZidAdapter) TestConnection(ctx context.Context, tenantID uuid.UUID) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}

	respBody, err := a.doRequest(ctx, config, http.MethodGet, "/account/profile", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrConnectionFailed, err)
	}

	var resp ZidProfileResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("zid: failed to parse response: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("%w: %s", integration.ErrConnectionFailed, resp.Message)
	}

	return nil
}

// ApproveOrder confirms the order on Zid
func (a *ZidAdapter) ApproveOrder(ctx context.Context, tenantID uuid.UUID, externalOrderID string) error {
	return a.changeOrderStatus(ctx, tenantID, externalOrderID, zidStatusApproved, "")
}

// RejectOrder rejects the order on Zid with the given reason
func (a *ZidAdapter) RejectOrder(ctx context.Context, tenantID uuid.UUID, externalOrderID, reason string) error {
	return a.changeOrderStatus(ctx, tenantID, externalOrderID, zidStatusRejected, reason)
}

// changeOrderStatus posts a status change to the order status endpoint
func (a *ZidAdapter) changeOrderStatus(ctx context.Context, tenantID uuid.UUID, externalOrderID, status, reason string) error {
	if externalOrderID == "" {
		return integration.ErrOrderNotLinked
	}

	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}

	body := zidStatusChangeRequest{
		Status: status,
		Reason: reason,
	}

	path := fmt.Sprintf("/orders/%s/status", url.PathEscape(externalOrderID))
	respBody, err := a.doRequest(ctx, config, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	var resp ZidEnvelope
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("zid: failed to parse response: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("zid: status change rejected: %s", resp.Message)
	}

	return nil
}

// CreateShipment registers tracking data for the order on Zid
func (a *ZidAdapter) CreateShipment(ctx context.Context, tenantID uuid.UUID, externalOrderID string, shipment integration.ShipmentInfo) error {
	if externalOrderID == "" {
		return integration.ErrOrderNotLinked
	}

	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}

	body := zidShipmentRequest{
		TrackingNumber: shipment.TrackingNumber,
		Carrier:        shipment.Carrier,
		TrackingURL:    shipment.TrackingURL,
	}

	path := fmt.Sprintf("/orders/%s/shipment", url.PathEscape(externalOrderID))
	respBody, err := a.doRequest(ctx, config, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	var resp ZidEnvelope
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("zid: failed to parse response: %w", err)
	}

	if !resp.IsSuccess() {
		return fmt.Errorf("zid: shipment rejected: %s", resp.Message)
	}

	return nil
}

// GetOrderStatus returns Zid's raw status name for the order
func (a *ZidAdapter) GetOrderStatus(ctx context.Context, tenantID uuid.UUID, externalOrderID string) (string, error) {
	if externalOrderID == "" {
		return "", integration.ErrOrderNotLinked
	}

	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("/orders/%s", url.PathEscape(externalOrderID))
	respBody, err := a.doRequest(ctx, config, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}

	var resp ZidOrderDetailResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("zid: failed to parse response: %w", err)
	}

	if !resp.IsSuccess() {
		return "", fmt.Errorf("zid: order lookup failed: %s", resp.Message)
	}

	if resp.Order == nil {
		return "", integration.ErrInvalidResponse
	}

	return resp.Order.OrderStatus.Name, nil
}

// doRequest performs an HTTP request to the Zid API
func (a *ZidAdapter) doRequest(ctx context.Context, config *ZidConfig, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("zid: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	requestURL := fmt.Sprintf("%s%s", config.APIBaseURL, path)

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("zid: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+config.AccessToken)
	req.Header.Set("Store-Id", config.StoreID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxZidResponseSize))
	if err != nil {
		return nil, fmt.Errorf("zid: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

// Ensure ZidAdapter implements MarketplaceAdapter interface
var _ integration.MarketplaceAdapter = (*ZidAdapter)(nil)
