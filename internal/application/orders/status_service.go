package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderhub/backend/internal/domain/order"
)

// StatusService is the use case entry for order status changes: validate the
// transition, persist the aggregate, append the ledger entry, then fan the
// change out to the enabled destinations. All failures come back inside the
// structured result; the method itself never returns an error.
type StatusService struct {
	repo       order.Repository
	history    order.StatusHistoryRepository
	dispatcher *Dispatcher
	logger     *zap.Logger
}

// NewStatusService creates a new status service
func NewStatusService(repo order.Repository, history order.StatusHistoryRepository, dispatcher *Dispatcher, logger *zap.Logger) *StatusService {
	return &StatusService{
		repo:       repo,
		history:    history,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// UpdateStatus applies one lifecycle transition and runs the fan-out
func (s *StatusService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) *UpdateStatusResult {
	result := &UpdateStatusResult{OrderID: req.OrderID.String()}

	current, err := s.repo.FindByID(ctx, req.TenantID, req.OrderID)
	if err != nil {
		return failResult(result, err)
	}
	result.PreviousStatus = current.Status.String()

	updated, note, err := current.ApplyTransition(req.NewStatus, req.Note)
	if err != nil {
		return failResult(result, err)
	}

	if err := s.repo.Save(ctx, updated); err != nil {
		return failResult(result, err)
	}

	entry := order.NewStatusHistoryEntry(current, updated, note, req.ChangedBy)
	if err := s.history.Append(ctx, entry); err != nil {
		// The status is already persisted; a missing ledger line is a
		// failure the caller must see even though the row changed.
		return failResult(result, err)
	}

	dispatch := s.dispatcher.Dispatch(ctx, updated, req.NewStatus, req.Flags, req.ChangedBy)
	result.TriggeredActions = dispatch.TriggeredActions
	result.Errors = dispatch.Errors

	if workflowFired(dispatch.TriggeredActions) {
		flagged := updated.WithWorkflowTriggered()
		if err := s.repo.Save(ctx, flagged); err != nil {
			s.logger.Warn("Failed to persist workflow-triggered flag",
				zap.String("order_id", updated.ID.String()),
				zap.Error(err),
			)
			result.Errors = append(result.Errors, "workflow flag persistence failed: "+err.Error())
		}
	}

	result.Success = true
	result.NewStatus = updated.Status.String()

	s.logger.Info("Order status updated",
		zap.String("order_id", updated.ID.String()),
		zap.String("from", result.PreviousStatus),
		zap.String("to", result.NewStatus),
		zap.Strings("actions", result.TriggeredActions),
		zap.Int("destination_errors", len(result.Errors)),
	)

	return result
}

// GetOrder returns the order aggregate for the tenant
func (s *StatusService) GetOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*order.Order, error) {
	return s.repo.FindByID(ctx, tenantID, orderID)
}

// GetHistory returns the order's full audit trail, most recent first
func (s *StatusService) GetHistory(ctx context.Context, tenantID, orderID uuid.UUID) ([]HistoryEntryDTO, error) {
	entries, err := s.history.ListByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntryDTO, 0, len(entries))
	for i := range entries {
		out = append(out, historyEntryToDTO(&entries[i]))
	}
	return out, nil
}

// failResult fills the error fields from the taxonomy
func failResult(result *UpdateStatusResult, err error) *UpdateStatusResult {
	result.Success = false
	result.Error = err.Error()

	var domainErr *order.DomainError
	var transitionErr *order.InvalidTransitionError
	switch {
	case errors.As(err, &transitionErr):
		result.ErrorCode = "INVALID_TRANSITION"
	case errors.As(err, &domainErr):
		result.ErrorCode = domainErr.Code
	default:
		result.ErrorCode = "INTERNAL"
	}
	return result
}

// workflowFired reports whether the workflow destination triggered a run
func workflowFired(actions []string) bool {
	for _, a := range actions {
		if a == "workflow: run triggered" {
			return true
		}
	}
	return false
}
