package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/orderhub/backend/internal/domain/order"
	"github.com/orderhub/backend/internal/infrastructure/persistence/models"
)

// GormStatusHistoryRepository implements order.StatusHistoryRepository using
// GORM. The table is insert-only; no update or delete is ever issued.
type GormStatusHistoryRepository struct {
	db *gorm.DB
}

// NewGormStatusHistoryRepository creates a new GormStatusHistoryRepository
func NewGormStatusHistoryRepository(db *gorm.DB) *GormStatusHistoryRepository {
	return &GormStatusHistoryRepository{db: db}
}

var _ order.StatusHistoryRepository = (*GormStatusHistoryRepository)(nil)

// Append inserts a new history entry
func (r *GormStatusHistoryRepository) Append(ctx context.Context, entry *order.StatusHistoryEntry) error {
	model := models.StatusHistoryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// ListByOrder returns all entries for an order, most recent first
func (r *GormStatusHistoryRepository) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]order.StatusHistoryEntry, error) {
	var rows []models.StatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("changed_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]order.StatusHistoryEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}
