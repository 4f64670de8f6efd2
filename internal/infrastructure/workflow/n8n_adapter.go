package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/orderhub/backend/internal/domain/integration"
)

// maxN8NResponseSize limits the response body size read from the automation host
const maxN8NResponseSize = 1 * 1024 * 1024 // 1MB max response

// defaultN8NTimeoutSeconds is the request timeout used when none is configured
const defaultN8NTimeoutSeconds = 15

var (
	// ErrN8NConfigMissingBaseURL indicates the automation host URL is not set
	ErrN8NConfigMissingBaseURL = errors.New("n8n: base URL is required")
)

// N8NConfig holds the configuration for the n8n automation host
type N8NConfig struct {
	// BaseURL is the n8n instance URL
	BaseURL string
	// APIKey authenticates webhook calls, optional for open instances
	APIKey string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Validate checks the configuration and fills in defaults
func (c *N8NConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrN8NConfigMissingBaseURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultN8NTimeoutSeconds
	}
	return nil
}

// N8NAdapter implements the WorkflowAdapter interface against an n8n instance.
// Workflows are addressed by their webhook path; the run payload is posted
// as JSON.
type N8NAdapter struct {
	config     *N8NConfig
	httpClient *http.Client
}

// NewN8NAdapter creates a new n8n adapter with the given configuration
func NewN8NAdapter(config *N8NConfig) (*N8NAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &N8NAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// TestConnection verifies the automation host answers its health endpoint
func (a *N8NAdapter) TestConnection(ctx context.Context, tenantID uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("n8n: failed to create request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxN8NResponseSize))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d", integration.ErrConnectionFailed, resp.StatusCode)
	}
	return nil
}

// TriggerWorkflow posts the payload to the workflow's webhook endpoint
func (a *N8NAdapter) TriggerWorkflow(ctx context.Context, tenantID uuid.UUID, workflowID string, payload map[string]any) error {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("n8n: failed to marshal payload: %w", err)
	}

	webhookURL := fmt.Sprintf("%s/webhook/%s", a.config.BaseURL, url.PathEscape(workflowID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("n8n: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.config.APIKey != "" {
		req.Header.Set("X-N8N-API-KEY", a.config.APIKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxN8NResponseSize))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d", integration.ErrRequestFailed, resp.StatusCode)
	}
	return nil
}

// Ensure N8NAdapter implements WorkflowAdapter interface
var _ integration.WorkflowAdapter = (*N8NAdapter)(nil)
