package orders

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
)

// Destination names as they appear in dispatch error strings
const (
	destMarketplace  = "marketplace"
	destERP          = "erp"
	destWorkflow     = "workflow"
	destNotification = "notification"
)

// DispatcherConfig holds fan-out tuning
type DispatcherConfig struct {
	// CallTimeout bounds every single adapter call
	CallTimeout time.Duration
}

// DefaultDispatcherConfig returns the default dispatcher configuration
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{CallTimeout: 30 * time.Second}
}

// Dispatcher fans one status change out to the enabled destinations. Each
// destination is attempted independently: one destination's failure never
// prevents another's attempt. A nil adapter means the destination is not
// wired for this deployment and is silently skipped.
type Dispatcher struct {
	marketplaces integration.MarketplaceRegistry
	workflow     integration.WorkflowAdapter
	notifier     integration.NotificationAdapter
	provisioner  *ProvisioningFlow
	history      order.StatusHistoryRepository
	logger       *zap.Logger
	callTimeout  time.Duration
}

// NewDispatcher creates a new dispatcher. Any adapter may be nil.
func NewDispatcher(
	cfg DispatcherConfig,
	marketplaces integration.MarketplaceRegistry,
	workflow integration.WorkflowAdapter,
	notifier integration.NotificationAdapter,
	provisioner *ProvisioningFlow,
	history order.StatusHistoryRepository,
	logger *zap.Logger,
) *Dispatcher {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultDispatcherConfig().CallTimeout
	}
	return &Dispatcher{
		marketplaces: marketplaces,
		workflow:     workflow,
		notifier:     notifier,
		provisioner:  provisioner,
		history:      history,
		logger:       logger,
		callTimeout:  timeout,
	}
}

// Dispatch pushes the order's new status to every destination enabled in
// flags. Destinations run concurrently; results accumulate into one
// composite DispatchResult. After all destinations return, exactly one
// summarizing ledger entry is appended.
func (d *Dispatcher) Dispatch(ctx context.Context, o *order.Order, newStatus order.OrderStatus, flags integration.DispatchFlags, actor string) *integration.DispatchResult {
	start := time.Now()
	result := &integration.DispatchResult{
		TriggeredActions: make([]string, 0),
		Errors:           make([]string, 0),
	}

	var mu sync.Mutex
	addAction := func(label string) {
		mu.Lock()
		result.TriggeredActions = append(result.TriggeredActions, label)
		mu.Unlock()
	}
	addError := func(dest string, err error) {
		mu.Lock()
		result.Errors = append(result.Errors, fmt.Sprintf("%s failed: %v", dest, err))
		mu.Unlock()
	}

	var wg sync.WaitGroup
	run := func(dest string, fn func(context.Context) (string, bool, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
			defer cancel()

			label, fired, err := fn(callCtx)
			if err != nil {
				d.logger.Warn("Dispatch destination failed",
					zap.String("destination", dest),
					zap.String("order_id", o.ID.String()),
					zap.Error(err),
				)
				addError(dest, err)
				return
			}
			if fired {
				addAction(label)
			}
		}()
	}

	if flags.Marketplace && d.marketplaces != nil && o.HasMarketplaceLink() {
		run(destMarketplace, func(ctx context.Context) (string, bool, error) {
			return d.PushMarketplaceStatus(ctx, o, newStatus)
		})
	}

	if flags.ERP && d.provisioner != nil && !o.IsProvisioned() {
		run(destERP, func(ctx context.Context) (string, bool, error) {
			return d.provisionERP(ctx, o)
		})
	}

	if flags.Workflow && d.workflow != nil && flags.WorkflowID != "" && !o.WorkflowTriggered {
		run(destWorkflow, func(ctx context.Context) (string, bool, error) {
			return d.triggerWorkflow(ctx, o, newStatus, flags.WorkflowID)
		})
	}

	if flags.Notification && d.notifier != nil && o.CustomerEmail != "" {
		run(destNotification, func(ctx context.Context) (string, bool, error) {
			err := d.notifier.SendOrderStatusUpdateEmail(ctx, o, newStatus)
			if err != nil {
				return "", false, err
			}
			return "notification: status email sent", true, nil
		})
	}

	wg.Wait()
	result.Duration = time.Since(start)

	d.appendSummary(ctx, o, newStatus, result, actor)

	return result
}

// PushMarketplaceStatus executes the marketplace action mapped from the
// internal status. Returns the action label and whether an action fired; a
// status that maps to no action is a deliberate no-op, not an error.
func (d *Dispatcher) PushMarketplaceStatus(ctx context.Context, o *order.Order, newStatus order.OrderStatus) (string, bool, error) {
	if !o.HasMarketplaceLink() {
		return "", false, integration.ErrOrderNotLinked
	}
	action := integration.ActionForStatus(newStatus)
	if action == integration.ActionNone {
		return "", false, nil
	}

	adapter, err := d.marketplaces.Get(integration.ProviderCode(o.Provider))
	if err != nil {
		return "", false, err
	}

	switch action {
	case integration.ActionApprove:
		if err := adapter.ApproveOrder(ctx, o.TenantID, o.ExternalOrderID); err != nil {
			return "", false, err
		}
		return "marketplace: order approved", true, nil

	case integration.ActionReject:
		reason := fmt.Sprintf("order %s", newStatus)
		if err := adapter.RejectOrder(ctx, o.TenantID, o.ExternalOrderID, reason); err != nil {
			return "", false, err
		}
		return "marketplace: order rejected", true, nil

	case integration.ActionShip:
		shipment := integration.ShipmentInfo{
			TrackingNumber: o.Shipping.TrackingNumber,
			Carrier:        o.Shipping.CarrierName,
			TrackingURL:    o.Shipping.TrackingURL,
		}
		label := "marketplace: shipment created"
		if !o.Shipping.HasTracking() {
			// The provider requires tracking data; without carrier input a
			// synthetic identifier is generated and recorded in the label so
			// the ledger shows exactly what was sent.
			shipment.TrackingNumber = syntheticTrackingNumber(o)
			shipment.Carrier = "unspecified"
			label = fmt.Sprintf("marketplace: shipment created (generated tracking %s)", shipment.TrackingNumber)
		}
		if err := adapter.CreateShipment(ctx, o.TenantID, o.ExternalOrderID, shipment); err != nil {
			return "", false, err
		}
		return label, true, nil
	}

	return "", false, nil
}

// syntheticTrackingNumber derives a stable placeholder tracking number from
// the order identity, so retries send the same value
func syntheticTrackingNumber(o *order.Order) string {
	id := strings.ReplaceAll(o.ID.String(), "-", "")
	return "GEN-" + strings.ToUpper(id[:8])
}

// provisionERP runs first-sync provisioning for the ERP destination
func (d *Dispatcher) provisionERP(ctx context.Context, o *order.Order) (string, bool, error) {
	res := d.provisioner.Provision(ctx, o.TenantID, o.ID, ProvisionOptions{})
	if !res.Success {
		if res.ErrorCode == order.ErrAlreadyProvisioned.Code {
			// Raced with another provisioning path; nothing to do
			return "", false, nil
		}
		return "", false, fmt.Errorf("%s", res.Error)
	}
	return fmt.Sprintf("erp: order provisioned (sale order %s)", res.SaleOrderID), true, nil
}

// triggerWorkflow starts the configured workflow run with the order context
func (d *Dispatcher) triggerWorkflow(ctx context.Context, o *order.Order, newStatus order.OrderStatus, workflowID string) (string, bool, error) {
	payload := map[string]any{
		"order_id":     o.ID.String(),
		"order_number": o.OrderNumber,
		"status":       newStatus.String(),
		"tenant_id":    o.TenantID.String(),
	}
	if err := d.workflow.TriggerWorkflow(ctx, o.TenantID, workflowID, payload); err != nil {
		return "", false, err
	}
	return "workflow: run triggered", true, nil
}

// appendSummary writes the single ledger entry describing the fan-out outcome
func (d *Dispatcher) appendSummary(ctx context.Context, o *order.Order, newStatus order.OrderStatus, result *integration.DispatchResult, actor string) {
	summary := fmt.Sprintf("Synced status %s: no destinations triggered", newStatus)
	if len(result.TriggeredActions) > 0 {
		summary = fmt.Sprintf("Synced status %s: %s", newStatus, strings.Join(result.TriggeredActions, "; "))
	}
	if len(result.Errors) > 0 {
		summary += fmt.Sprintf(" (%d destination(s) failed)", len(result.Errors))
	}

	entry := order.NewStatusHistoryEntry(nil, o, summary, actor)
	if err := d.history.Append(ctx, entry); err != nil {
		d.logger.Error("Failed to append dispatch summary to status history",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
		result.Errors = append(result.Errors, fmt.Sprintf("history failed: %v", err))
	}
}
