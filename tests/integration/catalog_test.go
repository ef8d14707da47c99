//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backoffice/internal/app/catalog/entity"
	"backoffice/internal/app/catalog/handler"
	"backoffice/internal/app/catalog/repository"
	"backoffice/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// CatalogIntegrationTestSuite содержит интеграционные тесты каталога.
// Требует запущенный PostgreSQL.
type CatalogIntegrationTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupSuite выполняется один раз перед всеми тестами
func (s *CatalogIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	// Подключение к PostgreSQL (тестовая БД)
	dsn := "host=localhost port=5433 user=postgres password=postgres dbname=backoffice_test sslmode=disable"
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL")
	s.db = db

	// Применяем миграции
	require.NoError(s.T(), repository.Migrate(s.db))

	// Инициализируем слои
	categoryRepo := repository.NewCategoryRepository(s.db)
	productRepo := repository.NewProductRepository(s.db)
	storeRepo := repository.NewStoreRepository(s.db)

	catalogService := service.NewCatalogService(categoryRepo, productRepo, storeRepo)
	catalogHandler := handler.NewCatalogHandler(catalogService)

	// Маршруты без auth middleware: здесь проверяется поведение каталога
	s.router = gin.New()
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "catalog-service"})
	})

	categories := s.router.Group("/api/categories")
	{
		categories.POST("", catalogHandler.CreateCategory)
		categories.GET("", catalogHandler.GetAllCategories)
		categories.GET("/:id", catalogHandler.GetCategory)
		categories.PUT("/:id", catalogHandler.UpdateCategory)
		categories.DELETE("/:id", catalogHandler.DeleteCategory)
	}

	products := s.router.Group("/api/products")
	{
		products.POST("", catalogHandler.CreateProduct)
		products.GET("", catalogHandler.GetAllProducts)
		products.GET("/:id", catalogHandler.GetProduct)
		products.PUT("/:id", catalogHandler.UpdateProduct)
		products.DELETE("/:id", catalogHandler.DeleteProduct)
	}

	s.router.GET("/api/stores", catalogHandler.GetAllStores)
}

// TearDownSuite выполняется один раз после всех тестов
func (s *CatalogIntegrationTestSuite) TearDownSuite() {
	s.db.Exec("DROP TABLE IF EXISTS store_inventory")
	s.db.Exec("DROP TABLE IF EXISTS warehouse_inventory")
	s.db.Exec("DROP TABLE IF EXISTS products")
	s.db.Exec("DROP TABLE IF EXISTS stores")
	s.db.Exec("DROP TABLE IF EXISTS categories")
}

// SetupTest выполняется перед каждым тестом
func (s *CatalogIntegrationTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM store_inventory")
	s.db.Exec("DELETE FROM warehouse_inventory")
	s.db.Exec("DELETE FROM products")
	s.db.Exec("DELETE FROM stores")
	s.db.Exec("DELETE FROM categories")
}

// Хелперы

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (s *CatalogIntegrationTestSuite) do(method, target string, payload interface{}) *httptest.ResponseRecorder {
	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(s.T(), err)
		req = httptest.NewRequest(method, target, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *CatalogIntegrationTestSuite) decode(rec *httptest.ResponseRecorder) envelope {
	var resp envelope
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (s *CatalogIntegrationTestSuite) createCategory(name string) *entity.Category {
	category := &entity.Category{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	require.NoError(s.T(), s.db.Create(category).Error)
	return category
}

func (s *CatalogIntegrationTestSuite) createStore(name string) *entity.Store {
	store := &entity.Store{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	require.NoError(s.T(), s.db.Create(store).Error)
	return store
}

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

// ==================== Category Tests ====================

func (s *CatalogIntegrationTestSuite) TestCreateCategory_Success() {
	// Act
	rec := s.do(http.MethodPost, "/api/categories", entity.CreateCategoryRequest{Name: "Electronics"})

	// Assert
	assert.Equal(s.T(), http.StatusCreated, rec.Code)

	resp := s.decode(rec)
	assert.True(s.T(), resp.Success)

	var category entity.Category
	require.NoError(s.T(), json.Unmarshal(resp.Data, &category))
	assert.Equal(s.T(), "Electronics", category.Name)
	assert.NotEqual(s.T(), uuid.Nil, category.ID)
}

func (s *CatalogIntegrationTestSuite) TestGetCategory_NotFound() {
	rec := s.do(http.MethodGet, "/api/categories/"+uuid.NewString(), nil)

	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
	resp := s.decode(rec)
	assert.False(s.T(), resp.Success)
}

func (s *CatalogIntegrationTestSuite) TestDeleteCategory_HasChildren() {
	// Arrange
	parent := s.createCategory("Electronics")
	child := &entity.Category{ID: uuid.New(), Name: "Laptops", ParentID: &parent.ID, CreatedAt: time.Now()}
	require.NoError(s.T(), s.db.Create(child).Error)

	// Act
	rec := s.do(http.MethodDelete, "/api/categories/"+parent.ID.String(), nil)

	// Assert - родитель с детьми не удаляется
	assert.Equal(s.T(), http.StatusConflict, rec.Code)

	var count int64
	s.db.Model(&entity.Category{}).Where("id = ?", parent.ID).Count(&count)
	assert.Equal(s.T(), int64(1), count)
}

func (s *CatalogIntegrationTestSuite) TestDeleteCategory_InUseByProducts() {
	// Arrange
	category := s.createCategory("Electronics")
	product := &entity.Product{
		ID:         uuid.New(),
		Name:       "Laptop",
		Price:      *decPtr(999.99),
		CategoryID: category.ID,
		CreatedAt:  time.Now(),
	}
	require.NoError(s.T(), s.db.Create(product).Error)

	// Act
	rec := s.do(http.MethodDelete, "/api/categories/"+category.ID.String(), nil)

	// Assert
	assert.Equal(s.T(), http.StatusConflict, rec.Code)
}

func (s *CatalogIntegrationTestSuite) TestDeleteCategory_Success() {
	// Arrange
	category := s.createCategory("ToDelete")

	// Act
	rec := s.do(http.MethodDelete, "/api/categories/"+category.ID.String(), nil)

	// Assert
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var count int64
	s.db.Model(&entity.Category{}).Where("id = ?", category.ID).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

// ==================== Product Tests ====================

func (s *CatalogIntegrationTestSuite) TestCreateProduct_WithStock() {
	// Arrange
	category := s.createCategory("Electronics")
	store := s.createStore("Store Center")
	warehouse := 10

	reqBody := entity.CreateProductRequest{
		Name:       "Laptop",
		Price:      decPtr(1299.99),
		CategoryID: category.ID,
		Stock: &entity.StockInput{
			Warehouse: &warehouse,
			Stores:    map[string]int{store.ID.String(): 3},
		},
	}

	// Act
	rec := s.do(http.MethodPost, "/api/products", reqBody)

	// Assert
	assert.Equal(s.T(), http.StatusCreated, rec.Code)

	resp := s.decode(rec)
	var detail entity.ProductDetail
	require.NoError(s.T(), json.Unmarshal(resp.Data, &detail))
	assert.Equal(s.T(), "Laptop", detail.Name)
	assert.Equal(s.T(), "Electronics", detail.CategoryName)
	assert.Equal(s.T(), 10, detail.Stock.Warehouse)
	assert.Equal(s.T(), 3, detail.Stock.Stores[store.ID.String()].Quantity)

	// Строки остатков реально записаны
	var warehouseCount, storeCount int64
	s.db.Model(&entity.WarehouseStock{}).Where("product_id = ?", detail.ID).Count(&warehouseCount)
	s.db.Model(&entity.StoreStock{}).Where("product_id = ?", detail.ID).Count(&storeCount)
	assert.Equal(s.T(), int64(1), warehouseCount)
	assert.Equal(s.T(), int64(1), storeCount)
}

func (s *CatalogIntegrationTestSuite) TestCreateProduct_NoStock_WarehouseRowCreated() {
	// Arrange
	category := s.createCategory("Electronics")

	reqBody := entity.CreateProductRequest{
		Name:       "Phone",
		Price:      decPtr(499.99),
		CategoryID: category.ID,
	}

	// Act
	rec := s.do(http.MethodPost, "/api/products", reqBody)

	// Assert - строка склада создается всегда, даже без остатков в запросе
	assert.Equal(s.T(), http.StatusCreated, rec.Code)

	resp := s.decode(rec)
	var detail entity.ProductDetail
	require.NoError(s.T(), json.Unmarshal(resp.Data, &detail))
	assert.Equal(s.T(), 0, detail.Stock.Warehouse)

	var warehouseRow entity.WarehouseStock
	require.NoError(s.T(), s.db.First(&warehouseRow, "product_id = ?", detail.ID).Error)
	assert.Equal(s.T(), 0, warehouseRow.Quantity)
}

func (s *CatalogIntegrationTestSuite) TestCreateProduct_UnknownStore() {
	// Arrange
	category := s.createCategory("Electronics")

	reqBody := entity.CreateProductRequest{
		Name:       "Laptop",
		Price:      decPtr(999.99),
		CategoryID: category.ID,
		Stock: &entity.StockInput{
			Stores: map[string]int{uuid.NewString(): 5},
		},
	}

	// Act
	rec := s.do(http.MethodPost, "/api/products", reqBody)

	// Assert - товар не создан вовсе
	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)

	var count int64
	s.db.Model(&entity.Product{}).Count(&count)
	assert.Equal(s.T(), int64(0), count)
}

func (s *CatalogIntegrationTestSuite) TestUpdateProduct_PartialStock() {
	// Arrange - товар с остатками в двух магазинах
	category := s.createCategory("Electronics")
	storeA := s.createStore("Store A")
	storeB := s.createStore("Store B")
	warehouse := 10

	createBody := entity.CreateProductRequest{
		Name:       "Laptop",
		Price:      decPtr(1299.99),
		CategoryID: category.ID,
		Stock: &entity.StockInput{
			Warehouse: &warehouse,
			Stores: map[string]int{
				storeA.ID.String(): 3,
				storeB.ID.String(): 5,
			},
		},
	}
	createRec := s.do(http.MethodPost, "/api/products", createBody)
	require.Equal(s.T(), http.StatusCreated, createRec.Code)

	var created entity.ProductDetail
	require.NoError(s.T(), json.Unmarshal(s.decode(createRec).Data, &created))

	// Act - обновляем остаток только в одном магазине
	updateBody := entity.UpdateProductRequest{
		Stock: &entity.StockInput{
			Stores: map[string]int{storeA.ID.String(): 8},
		},
	}
	rec := s.do(http.MethodPut, "/api/products/"+created.ID.String(), updateBody)

	// Assert - склад и второй магазин не тронуты
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var detail entity.ProductDetail
	require.NoError(s.T(), json.Unmarshal(s.decode(rec).Data, &detail))
	assert.Equal(s.T(), 10, detail.Stock.Warehouse)
	assert.Equal(s.T(), 8, detail.Stock.Stores[storeA.ID.String()].Quantity)
	assert.Equal(s.T(), 5, detail.Stock.Stores[storeB.ID.String()].Quantity)
}

func (s *CatalogIntegrationTestSuite) TestDeleteProduct_RemovesStockRows() {
	// Arrange
	category := s.createCategory("Electronics")
	store := s.createStore("Store Center")
	warehouse := 10

	createBody := entity.CreateProductRequest{
		Name:       "Laptop",
		Price:      decPtr(1299.99),
		CategoryID: category.ID,
		Stock: &entity.StockInput{
			Warehouse: &warehouse,
			Stores:    map[string]int{store.ID.String(): 3},
		},
	}
	createRec := s.do(http.MethodPost, "/api/products", createBody)
	require.Equal(s.T(), http.StatusCreated, createRec.Code)

	var created entity.ProductDetail
	require.NoError(s.T(), json.Unmarshal(s.decode(createRec).Data, &created))

	// Act
	rec := s.do(http.MethodDelete, "/api/products/"+created.ID.String(), nil)

	// Assert - товар и все строки остатков удалены
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var productCount, warehouseCount, storeCount int64
	s.db.Model(&entity.Product{}).Where("id = ?", created.ID).Count(&productCount)
	s.db.Model(&entity.WarehouseStock{}).Where("product_id = ?", created.ID).Count(&warehouseCount)
	s.db.Model(&entity.StoreStock{}).Where("product_id = ?", created.ID).Count(&storeCount)
	assert.Equal(s.T(), int64(0), productCount)
	assert.Equal(s.T(), int64(0), warehouseCount)
	assert.Equal(s.T(), int64(0), storeCount)
}

func (s *CatalogIntegrationTestSuite) TestGetAllProducts_CategoryFilter() {
	// Arrange
	electronics := s.createCategory("Electronics")
	books := s.createCategory("Books")

	for _, p := range []entity.Product{
		{ID: uuid.New(), Name: "Laptop", Price: decimal.NewFromFloat(999.99), CategoryID: electronics.ID, CreatedAt: time.Now()},
		{ID: uuid.New(), Name: "Novel", Price: decimal.NewFromFloat(9.99), CategoryID: books.ID, CreatedAt: time.Now()},
	} {
		require.NoError(s.T(), s.db.Create(&p).Error)
	}

	// Act
	rec := s.do(http.MethodGet, "/api/products?category_id="+electronics.ID.String(), nil)

	// Assert
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var list []entity.ProductDetail
	require.NoError(s.T(), json.Unmarshal(s.decode(rec).Data, &list))
	require.Len(s.T(), list, 1)
	assert.Equal(s.T(), "Laptop", list[0].Name)
}

// ==================== Store Tests ====================

func (s *CatalogIntegrationTestSuite) TestGetAllStores_Success() {
	// Arrange
	s.createStore("Store North")
	s.createStore("Store Center")

	// Act
	rec := s.do(http.MethodGet, "/api/stores", nil)

	// Assert - магазины отсортированы по имени
	assert.Equal(s.T(), http.StatusOK, rec.Code)

	var stores []entity.Store
	require.NoError(s.T(), json.Unmarshal(s.decode(rec).Data, &stores))
	require.Len(s.T(), stores, 2)
	assert.Equal(s.T(), "Store Center", stores[0].Name)
}

func (s *CatalogIntegrationTestSuite) TestHealthCheck() {
	rec := s.do(http.MethodGet, "/health", nil)
	assert.Equal(s.T(), http.StatusOK, rec.Code)
}

// Запуск test suite
func TestCatalogIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogIntegrationTestSuite))
}
