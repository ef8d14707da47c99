package repository

import (
	"context"

	"backoffice/internal/app/catalog/entity"
	"backoffice/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository создает новый репозиторий магазинов
func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

// GetAll получает все магазины
func (r *storeRepository) GetAll(ctx context.Context) ([]entity.Store, error) {
	defer metrics.NewDBTimer(serviceName, "select", "stores").ObserveDuration()

	var stores []entity.Store
	result := r.db.WithContext(ctx).Order("name ASC").Find(&stores)

	if result.Error != nil {
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(result.Error)
	}

	return stores, nil
}

// CountByIDs считает существующие магазины из списка.
// Используется для проверки ссылок перед записью остатков.
func (r *storeRepository) CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	defer metrics.NewDBTimer(serviceName, "select", "stores").ObserveDuration()

	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Store{}).Where("id IN ?", ids).Count(&count)

	if result.Error != nil {
		metrics.RecordDBError(serviceName, "select")
		return 0, wrapDBError(result.Error)
	}

	return count, nil
}
