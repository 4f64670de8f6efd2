package integration

import (
	"context"

	"github.com/google/uuid"

	"github.com/orderhub/backend/internal/domain/order"
)

// NotificationAdapter is the port to the customer notification channel
type NotificationAdapter interface {
	// TestConnection verifies the notification channel is reachable
	TestConnection(ctx context.Context, tenantID uuid.UUID) error

	// SendOrderStatusUpdateEmail notifies the customer of a status change
	SendOrderStatusUpdateEmail(ctx context.Context, o *order.Order, newStatus order.OrderStatus) error
}
