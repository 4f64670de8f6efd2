package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/orderhub/backend/internal/domain/integration"
	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/domain/shared"
)

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByExternalOrderID(ctx context.Context, tenantID uuid.UUID, externalOrderID string) (*order.Order, error) {
	args := m.Called(ctx, tenantID, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindLinked(ctx context.Context, tenantID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindNeedingStatusPush(ctx context.Context, tenantID uuid.UUID) ([]order.Order, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

var _ order.Repository = (*MockOrderRepository)(nil)

// MockHistoryRepository is a mock implementation of order.StatusHistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Append(ctx context.Context, entry *order.StatusHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]order.StatusHistoryEntry, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.StatusHistoryEntry), args.Error(1)
}

var _ order.StatusHistoryRepository = (*MockHistoryRepository)(nil)

// MockMarketplaceAdapter is a mock implementation of integration.MarketplaceAdapter
type MockMarketplaceAdapter struct {
	mock.Mock
	code integration.ProviderCode
}

func NewMockMarketplaceAdapter(code integration.ProviderCode) *MockMarketplaceAdapter {
	return &MockMarketplaceAdapter{code: code}
}

func (m *MockMarketplaceAdapter) ProviderCode() integration.ProviderCode {
	return m.code
}

func (m *MockMarketplaceAdapter) TestConnection(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockMarketplaceAdapter) ApproveOrder(ctx context.Context, tenantID uuid.UUID, externalOrderID string) error {
	args := m.Called(ctx, tenantID, externalOrderID)
	return args.Error(0)
}

func (m *MockMarketplaceAdapter) RejectOrder(ctx context.Context, tenantID uuid.UUID, externalOrderID, reason string) error {
	args := m.Called(ctx, tenantID, externalOrderID, reason)
	return args.Error(0)
}

func (m *MockMarketplaceAdapter) CreateShipment(ctx context.Context, tenantID uuid.UUID, externalOrderID string, shipment integration.ShipmentInfo) error {
	args := m.Called(ctx, tenantID, externalOrderID, shipment)
	return args.Error(0)
}

func (m *MockMarketplaceAdapter) GetOrderStatus(ctx context.Context, tenantID uuid.UUID, externalOrderID string) (string, error) {
	args := m.Called(ctx, tenantID, externalOrderID)
	return args.String(0), args.Error(1)
}

var _ integration.MarketplaceAdapter = (*MockMarketplaceAdapter)(nil)

// stubRegistry resolves every known code to the single configured adapter
type stubRegistry struct {
	adapter integration.MarketplaceAdapter
}

func (r *stubRegistry) Get(code integration.ProviderCode) (integration.MarketplaceAdapter, error) {
	if r.adapter == nil || r.adapter.ProviderCode() != code {
		return nil, integration.ErrUnsupportedProvider
	}
	return r.adapter, nil
}

func (r *stubRegistry) List() []integration.MarketplaceAdapter {
	if r.adapter == nil {
		return nil
	}
	return []integration.MarketplaceAdapter{r.adapter}
}

var _ integration.MarketplaceRegistry = (*stubRegistry)(nil)

// MockERPAdapter is a mock implementation of integration.ERPAdapter
type MockERPAdapter struct {
	mock.Mock
}

func (m *MockERPAdapter) FindPartnerByEmail(ctx context.Context, tenantID uuid.UUID, email string) (string, error) {
	args := m.Called(ctx, tenantID, email)
	return args.String(0), args.Error(1)
}

func (m *MockERPAdapter) CreatePartner(ctx context.Context, tenantID uuid.UUID, data integration.PartnerData) (string, error) {
	args := m.Called(ctx, tenantID, data)
	return args.String(0), args.Error(1)
}

func (m *MockERPAdapter) CreateSaleOrder(ctx context.Context, tenantID uuid.UUID, data integration.SaleOrderData) (string, error) {
	args := m.Called(ctx, tenantID, data)
	return args.String(0), args.Error(1)
}

func (m *MockERPAdapter) CreateInvoice(ctx context.Context, tenantID uuid.UUID, data integration.InvoiceData) (string, error) {
	args := m.Called(ctx, tenantID, data)
	return args.String(0), args.Error(1)
}

func (m *MockERPAdapter) CreateStockPicking(ctx context.Context, tenantID uuid.UUID, data integration.StockPickingData) (string, error) {
	args := m.Called(ctx, tenantID, data)
	return args.String(0), args.Error(1)
}

var _ integration.ERPAdapter = (*MockERPAdapter)(nil)

// MockWorkflowAdapter is a mock implementation of integration.WorkflowAdapter
type MockWorkflowAdapter struct {
	mock.Mock
}

func (m *MockWorkflowAdapter) TestConnection(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockWorkflowAdapter) TriggerWorkflow(ctx context.Context, tenantID uuid.UUID, workflowID string, payload map[string]any) error {
	args := m.Called(ctx, tenantID, workflowID, payload)
	return args.Error(0)
}

var _ integration.WorkflowAdapter = (*MockWorkflowAdapter)(nil)

// MockNotificationAdapter is a mock implementation of integration.NotificationAdapter
type MockNotificationAdapter struct {
	mock.Mock
}

func (m *MockNotificationAdapter) TestConnection(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockNotificationAdapter) SendOrderStatusUpdateEmail(ctx context.Context, o *order.Order, newStatus order.OrderStatus) error {
	args := m.Called(ctx, o, newStatus)
	return args.Error(0)
}

var _ integration.NotificationAdapter = (*MockNotificationAdapter)(nil)

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ shared.IdempotencyStore = (*MockIdempotencyStore)(nil)
