package repository

import (
	"context"
	"errors"

	"backoffice/internal/app/catalog/entity"
	"backoffice/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// Create создает новую категорию
func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	defer metrics.NewDBTimer(serviceName, "insert", "categories").ObserveDuration()

	result := r.db.WithContext(ctx).Create(category)
	if result.Error != nil {
		metrics.RecordDBError(serviceName, "insert")
		return wrapDBError(result.Error)
	}

	return nil
}

// GetByID получает категорию по ID
func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	defer metrics.NewDBTimer(serviceName, "select", "categories").ObserveDuration()

	var category entity.Category
	result := r.db.WithContext(ctx).First(&category, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(result.Error)
	}

	return &category, nil
}

// GetAll получает все категории
func (r *categoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	defer metrics.NewDBTimer(serviceName, "select", "categories").ObserveDuration()

	var categories []entity.Category
	result := r.db.WithContext(ctx).Order("created_at DESC").Find(&categories)

	if result.Error != nil {
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(result.Error)
	}

	return categories, nil
}

// Update обновляет категорию
func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	defer metrics.NewDBTimer(serviceName, "update", "categories").ObserveDuration()

	result := r.db.WithContext(ctx).Model(category).Where("id = ?", category.ID).Updates(map[string]interface{}{
		"name":        category.Name,
		"description": category.Description,
		"parent_id":   category.ParentID,
	})

	if result.Error != nil {
		metrics.RecordDBError(serviceName, "update")
		return wrapDBError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete удаляет категорию
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer metrics.NewDBTimer(serviceName, "delete", "categories").ObserveDuration()

	result := r.db.WithContext(ctx).Delete(&entity.Category{}, "id = ?", id)

	if result.Error != nil {
		metrics.RecordDBError(serviceName, "delete")
		return wrapDBError(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// CountChildren считает дочерние категории (guard перед удалением)
func (r *categoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	defer metrics.NewDBTimer(serviceName, "select", "categories").ObserveDuration()

	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Category{}).Where("parent_id = ?", id).Count(&count)

	if result.Error != nil {
		metrics.RecordDBError(serviceName, "select")
		return 0, wrapDBError(result.Error)
	}

	return count, nil
}

// CountProducts считает товары, ссылающиеся на категорию (guard перед удалением)
func (r *categoryRepository) CountProducts(ctx context.Context, id uuid.UUID) (int64, error) {
	defer metrics.NewDBTimer(serviceName, "select", "products").ObserveDuration()

	var count int64
	result := r.db.WithContext(ctx).Model(&entity.Product{}).Where("category_id = ?", id).Count(&count)

	if result.Error != nil {
		metrics.RecordDBError(serviceName, "select")
		return 0, wrapDBError(result.Error)
	}

	return count, nil
}
