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

// Salla slug values for order status changes
const (
	sallaStatusInProgress = "in_progress"
	sallaStatusCanceled   = "canceled"
)

// sallaEnvelope is the common response wrapper for the Salla admin API
type sallaEnvelope struct {
	Success bool `json:"success"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// sallaOrderResponse is the response of GET /orders/{id}
type sallaOrderResponse struct {
	sallaEnvelope
	Data struct {
		ID     int64 `json:"id"`
		Status struct {
			Slug string `json:"slug"`
			Name string `json:"name"`
		} `json:"status"`
	} `json:"data"`
}

// SallaAdapter implements the MarketplaceAdapter interface for the Salla platform
type SallaAdapter struct {
	config     *SallaConfig
	httpClient *http.Client

	tenantConfigs map[uuid.UUID]*SallaConfig
	mu            sync.RWMutex
}

// NewSallaAdapter creates a new Salla adapter with the given configuration
func NewSallaAdapter(config *SallaConfig) (*SallaAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &SallaAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		tenantConfigs: make(map[uuid.UUID]*SallaConfig),
	}, nil
}

// SetTenantConfig sets the configuration for a specific tenant
func (a *SallaAdapter) SetTenantConfig(tenantID uuid.UUID, config *SallaConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tenantConfigs[tenantID] = config
	return nil
}

func (a *SallaAdapter) getTenantConfig(tenantID uuid.UUID) (*SallaConfig, error) {
	a.mu.RLock()
	config, ok := a.tenantConfigs[tenantID]
	a.mu.RUnlock()
	if ok {
		return config, nil
	}
	if a.config != nil {
		return a.config, nil
	}
	return nil, integration.ErrProviderNotConfigured
}

// ProviderCode returns the provider code this adapter handles
func (a *SallaAdapter) ProviderCode() integration.ProviderCode {
	return integration.ProviderSalla
}

// TestConnection verifies the stored credentials against the store info endpoint
func (a *SallaAdapter) TestConnection(ctx context.Context, tenantID uuid.UUID) error {
	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}

	respBody, err := a.doRequest(ctx, config, http.MethodGet, "/store/info", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrConnectionFailed, err)
	}

	var resp sallaEnvelope
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("salla: failed to parse response: %w", err)
	}

	if !resp.Success {
		return fmt.Errorf("%w: %s", integration.ErrConnectionFailed, resp.Error.Message)
	}

	return nil
}

// ApproveOrder moves the order to in_progress on Salla
func (a *SallaAdapter) ApproveOrder(ctx context.Context, tenantID uuid.UUID, externalOrderID string) error {
	return a.changeOrderStatus(ctx, tenantID, externalOrderID, sallaStatusInProgress, "")
}

// RejectOrder cancels the order on Salla with the given reason
func (a *SallaAdapter) RejectOrder(ctx context.Context, tenantID uuid.UUID, externalOrderID, reason string) error {
	return a.changeOrderStatus(ctx, tenantID, externalOrderID, sallaStatusCanceled, reason)
}

func (a *SallaAdapter) changeOrderStatus(ctx context.Context, tenantID uuid.UUID, externalOrderID, slug, note string) error {
	if externalOrderID == "" {
		return integration.ErrOrderNotLinked
	}

	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}

	body := map[string]string{"slug": slug}
	if note != "" {
		body["note"] = note
	}

	path := fmt.Sprintf("/orders/%s/status", url.PathEscape(externalOrderID))
	respBody, err := a.doRequest(ctx, config, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	var resp sallaEnvelope
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("salla: failed to parse response: %w", err)
	}

	if !resp.Success {
		return fmt.Errorf("salla: status change rejected: %s", resp.Error.Message)
	}

	return nil
}

// CreateShipment registers tracking data for the order on Salla
func (a *SallaAdapter) CreateShipment(ctx context.Context, tenantID uuid.UUID, externalOrderID string, shipment integration.ShipmentInfo) error {
	if externalOrderID == "" {
		return integration.ErrOrderNotLinked
	}

	config, err := a.getTenantConfig(tenantID)
	if err != nil {
		return err
	}

	body := map[string]string{
		"tracking_number": shipment.TrackingNumber,
		"shipping_company": shipment.Carrier,
	}
	if shipment.TrackingURL != "" {
		body["tracking_link"] = shipment.TrackingURL
	}

	path := fmt.Sprintf("/orders/%s/shipments", url.PathEscape(externalOrderID))
	respBody, err := a.doRequest(ctx, config, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	var resp sallaEnvelope
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return fmt.Errorf("salla: failed to parse response: %w", err)
	}

	if !resp.Success {
		return fmt.Errorf("salla: shipment rejected: %s", resp.Error.Message)
	}

	return nil
}

// GetOrderStatus returns Salla's status slug for the order
func (a *SallaAdapter) GetOrderStatus(ctx context.Context, tenantID uuid.UUID, externalOrderID string) (string, error) {
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

	var resp sallaOrderResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("salla: failed to parse response: %w", err)
	}

	if !resp.Success {
		return "", fmt.Errorf("salla: order lookup failed: %s", resp.Error.Message)
	}

	return resp.Data.Status.Slug, nil
}

// doRequest performs an HTTP request to the Salla admin API
func (a *SallaAdapter) doRequest(ctx context.Context, config *SallaConfig, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("salla: failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	requestURL := fmt.Sprintf("%s%s", config.APIBaseURL, path)

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return nil, fmt.Errorf("salla: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+config.AccessToken)
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
		return nil, fmt.Errorf("salla: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

// Ensure SallaAdapter implements MarketplaceAdapter interface
var _ integration.MarketplaceAdapter = (*SallaAdapter)(nil)
