package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category представляет категорию товаров.
// Категории образуют дерево через ParentID (nullable self-reference).
type Category struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string     `json:"name" gorm:"not null"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Category) TableName() string {
	return "categories"
}

// Product представляет товар в каталоге.
// SKU - справочное поле, уникальность не гарантируется.
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(16,2);not null"`
	CategoryID  uuid.UUID       `json:"category_id" gorm:"type:uuid;not null;index"`
	Image       string          `json:"image"`
	SKU         string          `json:"sku,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// WarehouseStock - остаток товара на центральном складе.
// Ровно одна строка на товар: создается в той же транзакции, что и сам товар.
type WarehouseStock struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex"`
	Quantity    int       `json:"quantity" gorm:"not null;check:quantity >= 0"`
	Location    string    `json:"location"`
	LastUpdated time.Time `json:"last_updated" gorm:"autoUpdateTime"`
}

func (WarehouseStock) TableName() string {
	return "warehouse_inventory"
}

// StoreStock - остаток товара в конкретном магазине.
// Не более одной строки на пару (store, product).
type StoreStock struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	StoreID     uuid.UUID `json:"store_id" gorm:"type:uuid;not null;uniqueIndex:idx_store_product"`
	ProductID   uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_store_product"`
	Quantity    int       `json:"quantity" gorm:"not null;check:quantity >= 0"`
	LastUpdated time.Time `json:"last_updated" gorm:"autoUpdateTime"`
}

func (StoreStock) TableName() string {
	return "store_inventory"
}

// Store - магазин розничной сети. Ведется другим контуром бэк-офиса,
// здесь нужен только как цель ссылок store_inventory.
type Store struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (Store) TableName() string {
	return "stores"
}

// StoreQuantity - остаток в магазине в собранном представлении товара
type StoreQuantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ProductStock - остатки товара: склад + карта магазинов (ключ - id магазина)
type ProductStock struct {
	Warehouse int                      `json:"warehouse"`
	Stores    map[string]StoreQuantity `json:"stores"`
}

// ProductDetail - товар в том виде, в котором его отдает API:
// вместе с именем категории и собранными остатками.
type ProductDetail struct {
	Product
	CategoryName string       `json:"category_name"`
	Stock        ProductStock `json:"stock"`
}

// StockChange - разобранное изменение остатков для записи.
// nil Warehouse и отсутствующие магазины означают "не трогать",
// а не "обнулить": частичное обновление не разрушает чужие строки.
type StockChange struct {
	Warehouse *int
	Stores    map[uuid.UUID]int
}
