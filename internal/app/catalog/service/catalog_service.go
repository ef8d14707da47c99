package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backoffice/internal/app/catalog/entity"
	"backoffice/internal/app/catalog/repository"

	"github.com/google/uuid"
)

// CatalogService обрабатывает бизнес-логику каталога товаров:
// валидацию ссылок, guards на удаление категорий и согласованность остатков.
type CatalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	storeRepo    repository.StoreRepository
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		storeRepo:    storeRepo,
	}
}

// === CATEGORIES ===

// CreateCategory создает новую категорию.
// Родительская категория, если указана, должна существовать.
func (s *CatalogService) CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	if req.ParentID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, storageErr("verify parent category", err)
		}
	}

	category := &entity.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, storageErr("create category", err)
	}

	return category, nil
}

// GetCategory получает категорию по ID
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, storageErr("get category", err)
	}

	return category, nil
}

// GetAllCategories получает все категории
func (s *CatalogService) GetAllCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, storageErr("get categories", err)
	}

	return categories, nil
}

// UpdateCategory обновляет переданные поля категории.
// Смена родителя проверяется так же, как при создании;
// нулевой UUID в parent_id снимает родителя (категория становится корневой).
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, storageErr("get category", err)
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	if req.ParentID != nil {
		switch {
		case *req.ParentID == uuid.Nil:
			category.ParentID = nil
		case *req.ParentID == id:
			return nil, ErrSelfParent
		default:
			if _, err := s.categoryRepo.GetByID(ctx, *req.ParentID); err != nil {
				if errors.Is(err, repository.ErrCategoryNotFound) {
					return nil, ErrParentNotFound
				}
				return nil, storageErr("verify parent category", err)
			}
			category.ParentID = req.ParentID
		}
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, storageErr("update category", err)
	}

	return category, nil
}

// DeleteCategory удаляет категорию с двумя guards:
// нельзя удалить категорию с дочерними категориями или с товарами.
// Нарушение guard - это ошибка операции, а не тихий no-op.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	children, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return storageErr("count child categories", err)
	}
	if children > 0 {
		return ErrCategoryHasChildren
	}

	products, err := s.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return storageErr("count category products", err)
	}
	if products > 0 {
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return storageErr("delete category", err)
	}

	return nil
}

// === PRODUCTS ===

// CreateProduct создает товар вместе с его остатками.
// Категория и все магазины из stock проверяются до открытия транзакции;
// строка склада создается всегда (0, если количество не передано).
func (s *CatalogService) CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.ProductDetail, error) {
	if req.Price == nil || req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	if _, err := s.categoryRepo.GetByID(ctx, req.CategoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, storageErr("verify category", err)
	}

	stock, err := s.resolveStock(ctx, req.Stock)
	if err != nil {
		return nil, err
	}

	warehouseQty := 0
	if stock != nil && stock.Warehouse != nil {
		warehouseQty = *stock.Warehouse
	}
	storeQty := map[uuid.UUID]int{}
	if stock != nil && stock.Stores != nil {
		storeQty = stock.Stores
	}

	product := &entity.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		CategoryID:  req.CategoryID,
		Image:       req.Image,
		SKU:         req.SKU,
		CreatedAt:   time.Now(),
	}

	if err := s.productRepo.CreateWithStock(ctx, product, warehouseQty, storeQty); err != nil {
		return nil, storageErr("create product", err)
	}

	detail, err := s.productRepo.GetDetail(ctx, product.ID)
	if err != nil {
		return nil, storageErr("get created product", err)
	}

	return detail, nil
}

// GetProduct получает товар с категорией и остатками
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error) {
	detail, err := s.productRepo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storageErr("get product", err)
	}

	return detail, nil
}

// GetAllProducts получает все товары, опционально отфильтрованные по категории
func (s *CatalogService) GetAllProducts(ctx context.Context, categoryID *uuid.UUID) ([]entity.ProductDetail, error) {
	details, err := s.productRepo.GetAllDetails(ctx, categoryID)
	if err != nil {
		return nil, storageErr("get products", err)
	}

	return details, nil
}

// UpdateProduct обновляет переданные поля товара и применяет изменения остатков.
// Магазины, не упомянутые в stock.stores, сохраняют свои количества.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.ProductDetail, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storageErr("get product", err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, ErrInvalidPrice
		}
		product.Price = *req.Price
	}
	if req.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, *req.CategoryID); err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, storageErr("verify category", err)
		}
		product.CategoryID = *req.CategoryID
	}
	if req.Image != nil {
		product.Image = *req.Image
	}
	if req.SKU != nil {
		product.SKU = *req.SKU
	}

	stock, err := s.resolveStock(ctx, req.Stock)
	if err != nil {
		return nil, err
	}

	if err := s.productRepo.UpdateWithStock(ctx, product, stock); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, storageErr("update product", err)
	}

	detail, err := s.productRepo.GetDetail(ctx, id)
	if err != nil {
		return nil, storageErr("get updated product", err)
	}

	return detail, nil
}

// DeleteProduct удаляет товар вместе со всеми строками остатков
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.DeleteWithStock(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return storageErr("delete product", err)
	}

	return nil
}

// === STORES ===

// GetAllStores получает список магазинов для адресации остатков
func (s *CatalogService) GetAllStores(ctx context.Context) ([]entity.Store, error) {
	stores, err := s.storeRepo.GetAll(ctx)
	if err != nil {
		return nil, storageErr("get stores", err)
	}

	return stores, nil
}

// resolveStock разбирает остатки из запроса и проверяет ссылки на магазины.
// Возвращает nil, если остатки в запросе отсутствуют.
func (s *CatalogService) resolveStock(ctx context.Context, input *entity.StockInput) (*entity.StockChange, error) {
	if input == nil {
		return nil, nil
	}

	if input.Warehouse != nil && *input.Warehouse < 0 {
		return nil, ErrInvalidQuantity
	}

	change := &entity.StockChange{
		Warehouse: input.Warehouse,
		Stores:    make(map[uuid.UUID]int, len(input.Stores)),
	}

	storeIDs := make([]uuid.UUID, 0, len(input.Stores))
	for key, qty := range input.Stores {
		if qty < 0 {
			return nil, ErrInvalidQuantity
		}
		storeID, err := uuid.Parse(key)
		if err != nil {
			return nil, ErrInvalidStoreID
		}
		change.Stores[storeID] = qty
		storeIDs = append(storeIDs, storeID)
	}

	if len(storeIDs) > 0 {
		count, err := s.storeRepo.CountByIDs(ctx, storeIDs)
		if err != nil {
			return nil, storageErr("verify stores", err)
		}
		if count != int64(len(storeIDs)) {
			return nil, ErrStoreNotFound
		}
	}

	return change, nil
}

// storageErr оборачивает ошибку репозитория, поднимая недоступность хранилища
// в ErrUnavailable для маппинга в 503
func storageErr(op string, err error) error {
	if errors.Is(err, repository.ErrUnavailable) {
		return ErrUnavailable
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
