package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"backoffice/internal/app/catalog/entity"
	"backoffice/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// storeStockRow - строка store_inventory, соединенная с именем магазина
type storeStockRow struct {
	ProductID uuid.UUID
	StoreID   uuid.UUID
	Name      string
	Quantity  int
}

// CreateWithStock создает товар вместе со строками остатков в одной транзакции.
// Строка склада создается всегда, даже если количество не передано:
// "нет строки" - невалидное состояние, которое иначе пришлось бы чинить задним числом.
func (r *productRepository) CreateWithStock(ctx context.Context, product *entity.Product, warehouseQty int, storeQty map[uuid.UUID]int) error {
	defer metrics.NewDBTimer(serviceName, "insert", "products").ObserveDuration()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}

		warehouse := &entity.WarehouseStock{
			ID:        uuid.New(),
			ProductID: product.ID,
			Quantity:  warehouseQty,
		}
		if err := tx.Create(warehouse).Error; err != nil {
			return err
		}

		for _, storeID := range sortedStoreIDs(storeQty) {
			row := &entity.StoreStock{
				ID:        uuid.New(),
				StoreID:   storeID,
				ProductID: product.ID,
				Quantity:  storeQty[storeID],
			}
			if err := tx.Create(row).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		metrics.RecordDBError(serviceName, "insert")
		return wrapDBError(err)
	}

	return nil
}

// UpdateWithStock обновляет поля товара и применяет переданные изменения остатков
// в одной транзакции. Остатки магазинов, не упомянутые в stock, не трогаются.
func (r *productRepository) UpdateWithStock(ctx context.Context, product *entity.Product, stock *entity.StockChange) error {
	defer metrics.NewDBTimer(serviceName, "update", "products").ObserveDuration()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"category_id": product.CategoryID,
			"image":       product.Image,
			"sku":         product.SKU,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		if stock == nil {
			return nil
		}

		now := time.Now()

		if stock.Warehouse != nil {
			warehouse := &entity.WarehouseStock{
				ID:        uuid.New(),
				ProductID: product.ID,
				Quantity:  *stock.Warehouse,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity":     *stock.Warehouse,
					"last_updated": now,
				}),
			}).Create(warehouse).Error
			if err != nil {
				return err
			}
		}

		for _, storeID := range sortedStoreIDs(stock.Stores) {
			row := &entity.StoreStock{
				ID:        uuid.New(),
				StoreID:   storeID,
				ProductID: product.ID,
				Quantity:  stock.Stores[storeID],
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "store_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity":     stock.Stores[storeID],
					"last_updated": now,
				}),
			}).Create(row).Error
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		metrics.RecordDBError(serviceName, "update")
		return wrapDBError(err)
	}

	return nil
}

// DeleteWithStock удаляет товар и все его строки остатков в одной транзакции.
// Порядок фиксирован (магазины -> склад -> товар), чтобы ссылочная целостность
// соблюдалась независимо от настроек каскадов в самой БД.
func (r *productRepository) DeleteWithStock(ctx context.Context, id uuid.UUID) error {
	defer metrics.NewDBTimer(serviceName, "delete", "products").ObserveDuration()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&entity.StoreStock{}).Error; err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", id).Delete(&entity.WarehouseStock{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		metrics.RecordDBError(serviceName, "delete")
		return wrapDBError(err)
	}

	return nil
}

// GetByID получает товар по ID без остатков
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	defer metrics.NewDBTimer(serviceName, "select", "products").ObserveDuration()

	var product entity.Product
	result := r.db.WithContext(ctx).First(&product, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(result.Error)
	}

	return &product, nil
}

// GetDetail получает товар с именем категории и собранными остатками
func (r *productRepository) GetDetail(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error) {
	defer metrics.NewDBTimer(serviceName, "select", "products").ObserveDuration()

	db := r.db.WithContext(ctx)

	var product entity.Product
	result := db.First(&product, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(result.Error)
	}

	var category entity.Category
	if err := db.First(&category, "id = ?", product.CategoryID).Error; err != nil {
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(err)
	}

	var warehouse entity.WarehouseStock
	if err := db.First(&warehouse, "product_id = ?", id).Error; err != nil {
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(err)
	}

	var rows []storeStockRow
	err := db.Table("store_inventory").
		Select("store_inventory.product_id AS product_id, store_inventory.store_id AS store_id, stores.name AS name, store_inventory.quantity AS quantity").
		Joins("JOIN stores ON stores.id = store_inventory.store_id").
		Where("store_inventory.product_id = ?", id).
		Scan(&rows).Error
	if err != nil {
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(err)
	}

	detail := &entity.ProductDetail{
		Product:      product,
		CategoryName: category.Name,
		Stock: entity.ProductStock{
			Warehouse: warehouse.Quantity,
			Stores:    make(map[string]entity.StoreQuantity, len(rows)),
		},
	}
	for _, row := range rows {
		detail.Stock.Stores[row.StoreID.String()] = entity.StoreQuantity{
			Name:     row.Name,
			Quantity: row.Quantity,
		}
	}

	return detail, nil
}

// GetAllDetails получает все товары (опционально по категории) с остатками.
// Собирает результат из четырех запросов вместо N+1 по каждому товару.
func (r *productRepository) GetAllDetails(ctx context.Context, categoryID *uuid.UUID) ([]entity.ProductDetail, error) {
	defer metrics.NewDBTimer(serviceName, "select", "products").ObserveDuration()

	db := r.db.WithContext(ctx)

	query := db.Order("created_at DESC")
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var products []entity.Product
	if err := query.Find(&products).Error; err != nil {
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(err)
	}

	if len(products) == 0 {
		return []entity.ProductDetail{}, nil
	}

	productIDs := make([]uuid.UUID, len(products))
	categoryIDs := make([]uuid.UUID, 0, len(products))
	seenCategories := make(map[uuid.UUID]bool)
	for i, p := range products {
		productIDs[i] = p.ID
		if !seenCategories[p.CategoryID] {
			seenCategories[p.CategoryID] = true
			categoryIDs = append(categoryIDs, p.CategoryID)
		}
	}

	var categories []entity.Category
	if err := db.Where("id IN ?", categoryIDs).Find(&categories).Error; err != nil {
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(err)
	}
	categoryNames := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	var warehouseRows []entity.WarehouseStock
	if err := db.Where("product_id IN ?", productIDs).Find(&warehouseRows).Error; err != nil {
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(err)
	}
	warehouseQty := make(map[uuid.UUID]int, len(warehouseRows))
	for _, w := range warehouseRows {
		warehouseQty[w.ProductID] = w.Quantity
	}

	var storeRows []storeStockRow
	err := db.Table("store_inventory").
		Select("store_inventory.product_id AS product_id, store_inventory.store_id AS store_id, stores.name AS name, store_inventory.quantity AS quantity").
		Joins("JOIN stores ON stores.id = store_inventory.store_id").
		Where("store_inventory.product_id IN ?", productIDs).
		Scan(&storeRows).Error
	if err != nil {
		metrics.RecordDBError(serviceName, "select")
		return nil, wrapDBError(err)
	}
	storeStocks := make(map[uuid.UUID]map[string]entity.StoreQuantity)
	for _, row := range storeRows {
		if storeStocks[row.ProductID] == nil {
			storeStocks[row.ProductID] = make(map[string]entity.StoreQuantity)
		}
		storeStocks[row.ProductID][row.StoreID.String()] = entity.StoreQuantity{
			Name:     row.Name,
			Quantity: row.Quantity,
		}
	}

	details := make([]entity.ProductDetail, len(products))
	for i, p := range products {
		stores := storeStocks[p.ID]
		if stores == nil {
			stores = make(map[string]entity.StoreQuantity)
		}
		details[i] = entity.ProductDetail{
			Product:      p,
			CategoryName: categoryNames[p.CategoryID],
			Stock: entity.ProductStock{
				Warehouse: warehouseQty[p.ID],
				Stores:    stores,
			},
		}
	}

	return details, nil
}

// sortedStoreIDs возвращает ключи карты остатков в стабильном порядке,
// чтобы порядок вставок внутри транзакции был детерминированным
func sortedStoreIDs(storeQty map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(storeQty))
	for id := range storeQty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
