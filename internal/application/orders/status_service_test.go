package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
)

func newStatusServiceFixture(t *testing.T, o *order.Order) (*StatusService, *MockOrderRepository, *MockHistoryRepository) {
	t.Helper()
	repo := new(MockOrderRepository)
	history := new(MockHistoryRepository)
	dispatcher := NewDispatcher(DefaultDispatcherConfig(), nil, nil, nil, nil, history, zap.NewNop())
	svc := NewStatusService(repo, history, dispatcher, zap.NewNop())
	if o != nil {
		repo.On("FindByID", mock.Anything, o.TenantID, o.ID).Return(o, nil)
	}
	return svc, repo, history
}

func TestStatusService_UpdateStatus(t *testing.T) {
	o, err := order.NewOrder(uuid.New(), "SO-1", "Jane", "jane@example.com", "USD")
	require.NoError(t, err)

	svc, repo, history := newStatusServiceFixture(t, o)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(saved *order.Order) bool {
		return saved.Status == order.StatusProcessing
	})).Return(nil)
	// One transition entry plus one dispatch summary
	history.On("Append", mock.Anything, mock.Anything).Return(nil).Times(2)

	result := svc.UpdateStatus(context.Background(), UpdateStatusRequest{
		TenantID:  o.TenantID,
		OrderID:   o.ID,
		NewStatus: order.StatusProcessing,
	})

	require.True(t, result.Success, "errors: %v / %s", result.Errors, result.Error)
	assert.Equal(t, "pending", result.PreviousStatus)
	assert.Equal(t, "processing", result.NewStatus)
	repo.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestStatusService_UpdateStatus_IllegalTransition(t *testing.T) {
	o, err := order.NewOrder(uuid.New(), "SO-1", "Jane", "jane@example.com", "USD")
	require.NoError(t, err)

	svc, repo, _ := newStatusServiceFixture(t, o)

	result := svc.UpdateStatus(context.Background(), UpdateStatusRequest{
		TenantID:  o.TenantID,
		OrderID:   o.ID,
		NewStatus: order.StatusDelivered,
	})

	assert.False(t, result.Success)
	assert.Equal(t, "INVALID_TRANSITION", result.ErrorCode)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStatusService_UpdateStatus_OrderNotFound(t *testing.T) {
	svc, repo, _ := newStatusServiceFixture(t, nil)
	tenantID, orderID := uuid.New(), uuid.New()
	repo.On("FindByID", mock.Anything, tenantID, orderID).Return(nil, order.ErrNotFound)

	result := svc.UpdateStatus(context.Background(), UpdateStatusRequest{
		TenantID:  tenantID,
		OrderID:   orderID,
		NewStatus: order.StatusProcessing,
	})

	assert.False(t, result.Success)
	assert.Equal(t, order.ErrNotFound.Code, result.ErrorCode)
}

func TestStatusService_UpdateStatus_RecordsTransitionEntry(t *testing.T) {
	o, err := order.NewOrder(uuid.New(), "SO-1", "Jane", "jane@example.com", "USD")
	require.NoError(t, err)

	var entries []*order.StatusHistoryEntry
	svc, repo, history := newStatusServiceFixture(t, o)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	history.On("Append", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			entries = append(entries, args.Get(1).(*order.StatusHistoryEntry))
		}).
		Return(nil)

	result := svc.UpdateStatus(context.Background(), UpdateStatusRequest{
		TenantID:  o.TenantID,
		OrderID:   o.ID,
		NewStatus: order.StatusCancelled,
		Note:      "customer request",
		ChangedBy: "user-42",
	})

	require.True(t, result.Success)
	require.Len(t, entries, 2)

	transition := entries[0]
	require.NotNil(t, transition.FromStatus)
	assert.Equal(t, order.StatusPending, *transition.FromStatus)
	assert.Equal(t, order.StatusCancelled, transition.ToStatus)
	assert.Equal(t, "customer request", transition.Note)
	assert.Equal(t, "user-42", transition.ChangedBy)
}

func TestStatusService_UpdateStatus_FlagsResultOnDispatchErrors(t *testing.T) {
	o, err := order.NewOrder(uuid.New(), "SO-1", "Jane", "jane@example.com", "USD")
	require.NoError(t, err)
	connID := uuid.New()
	o.ExternalOrderID = "EXT-1"
	o.ConnectionID = &connID
	o.Provider = string(integration.ProviderZid)
	o = o.WithStatus(order.StatusProcessing)

	repo := new(MockOrderRepository)
	history := new(MockHistoryRepository)
	marketplace := NewMockMarketplaceAdapter(integration.ProviderZid)
	marketplace.On("ApproveOrder", mock.Anything, o.TenantID, "EXT-1").
		Return(errors.New("marketplace down"))
	dispatcher := NewDispatcher(DefaultDispatcherConfig(), &stubRegistry{adapter: marketplace}, nil, nil, nil, history, zap.NewNop())
	svc := NewStatusService(repo, history, dispatcher, zap.NewNop())

	repo.On("FindByID", mock.Anything, o.TenantID, o.ID).Return(o, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)
	history.On("Append", mock.Anything, mock.Anything).Return(nil)

	result := svc.UpdateStatus(context.Background(), UpdateStatusRequest{
		TenantID:  o.TenantID,
		OrderID:   o.ID,
		NewStatus: order.StatusConfirmed,
		Flags:     integration.DispatchFlags{Marketplace: true},
	})

	// The transition itself succeeded; the destination failure is surfaced
	assert.True(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "marketplace failed: marketplace down")
}
