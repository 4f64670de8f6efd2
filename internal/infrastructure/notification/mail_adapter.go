package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
)

// maxMailResponseSize limits the response body read from the mail service
const maxMailResponseSize = 1 * 1024 * 1024 // 1MB max response

// defaultMailTimeoutSeconds is the request timeout used when none is configured
const defaultMailTimeoutSeconds = 15

var (
	// ErrMailConfigMissingBaseURL indicates the mail service URL is not set
	ErrMailConfigMissingBaseURL = errors.New("mail: base URL is required")
	// ErrMailConfigMissingFromAddr indicates the sender address is not set
	ErrMailConfigMissingFromAddr = errors.New("mail: from address is required")
)

// statusSubjects maps order status to the customer-facing subject line
var statusSubjects = map[order.OrderStatus]string{
	order.StatusProcessing: "Your order %s is being prepared",
	order.StatusConfirmed:  "Your order %s has been confirmed",
	order.StatusShipped:    "Your order %s is on its way",
	order.StatusDelivered:  "Your order %s has been delivered",
	order.StatusCancelled:  "Your order %s has been cancelled",
	order.StatusRefunded:   "Your order %s has been refunded",
}

// MailConfig holds the configuration for the transactional mail service
type MailConfig struct {
	// BaseURL is the mail service endpoint
	BaseURL string
	// APIKey authenticates mail service calls
	APIKey string
	// FromName is the sender display name
	FromName string
	// FromAddr is the sender address
	FromAddr string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// Validate checks the configuration and fills in defaults
func (c *MailConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrMailConfigMissingBaseURL
	}
	if c.FromAddr == "" {
		return ErrMailConfigMissingFromAddr
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultMailTimeoutSeconds
	}
	return nil
}

// mailSendRequest is the body posted to the mail service send endpoint
type mailSendRequest struct {
	FromName string `json:"from_name"`
	FromAddr string `json:"from_addr"`
	ToName   string `json:"to_name"`
	ToAddr   string `json:"to_addr"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// MailAdapter implements the NotificationAdapter interface over an HTTP mail
// service. Orders without a customer e-mail are skipped silently.
type MailAdapter struct {
	config     *MailConfig
	httpClient *http.Client
}

// NewMailAdapter creates a new mail adapter with the given configuration
func NewMailAdapter(config *MailConfig) (*MailAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &MailAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// TestConnection verifies the mail service answers its health endpoint
func (a *MailAdapter) TestConnection(ctx context.Context, tenantID uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("mail: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxMailResponseSize))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d", integration.ErrConnectionFailed, resp.StatusCode)
	}
	return nil
}

// SendOrderStatusUpdateEmail notifies the customer of a status change
func (a *MailAdapter) SendOrderStatusUpdateEmail(ctx context.Context, o *order.Order, newStatus order.OrderStatus) error {
	if o.CustomerEmail == "" {
		return nil
	}

	subjectFormat, ok := statusSubjects[newStatus]
	if !ok {
		// Internal statuses like pending or failed carry no customer mail
		return nil
	}

	send := mailSendRequest{
		FromName: a.config.FromName,
		FromAddr: a.config.FromAddr,
		ToName:   o.CustomerName,
		ToAddr:   o.CustomerEmail,
		Subject:  fmt.Sprintf(subjectFormat, o.OrderNumber),
		Body:     buildStatusBody(o, newStatus),
	}

	bodyBytes, err := json.Marshal(send)
	if err != nil {
		return fmt.Errorf("mail: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.BaseURL+"/v1/send", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("mail: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.config.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", integration.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxMailResponseSize))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d", integration.ErrRequestFailed, resp.StatusCode)
	}
	return nil
}

// buildStatusBody renders the plain-text mail body for a status change
func buildStatusBody(o *order.Order, newStatus order.OrderStatus) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Hello %s,\n\n", o.CustomerName)
	fmt.Fprintf(&buf, "The status of your order %s is now: %s.\n", o.OrderNumber, newStatus)

	if newStatus == order.StatusShipped && o.Shipping.TrackingNumber != "" {
		fmt.Fprintf(&buf, "\nTracking number: %s\n", o.Shipping.TrackingNumber)
		if o.Shipping.TrackingURL != "" {
			fmt.Fprintf(&buf, "Track your shipment: %s\n", o.Shipping.TrackingURL)
		}
	}

	buf.WriteString("\nThank you for your order.\n")
	return buf.String()
}

// Ensure MailAdapter implements NotificationAdapter interface
var _ integration.NotificationAdapter = (*MailAdapter)(nil)
