package handler

import (
	"errors"
	"net/http"

	"backoffice/internal/app/catalog/entity"
	"backoffice/internal/app/catalog/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CatalogHandler обрабатывает HTTP запросы каталога с использованием Gin
type CatalogHandler struct {
	catalogService *service.CatalogService
	validator      *validator.Validate
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// === CATEGORIES HANDLERS ===

// CreateCategory обрабатывает POST /api/categories
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req entity.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrParentNotFound) {
			respondError(c, http.StatusBadRequest, "Parent category not found")
			return
		}
		h.respondServiceError(c, err, "Failed to create category")
		return
	}

	respondData(c, http.StatusCreated, category)
}

// GetCategory обрабатывает GET /api/categories/:id
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			respondError(c, http.StatusNotFound, "Category not found")
			return
		}
		h.respondServiceError(c, err, "Failed to get category")
		return
	}

	respondData(c, http.StatusOK, category)
}

// GetAllCategories обрабатывает GET /api/categories
func (h *CatalogHandler) GetAllCategories(c *gin.Context) {
	categories, err := h.catalogService.GetAllCategories(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "Failed to get categories")
		return
	}

	respondData(c, http.StatusOK, categories)
}

// UpdateCategory обрабатывает PUT /api/categories/:id
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, http.StatusNotFound, "Category not found")
		case errors.Is(err, service.ErrParentNotFound):
			respondError(c, http.StatusBadRequest, "Parent category not found")
		case errors.Is(err, service.ErrSelfParent):
			respondError(c, http.StatusBadRequest, "Category cannot be its own parent")
		default:
			h.respondServiceError(c, err, "Failed to update category")
		}
		return
	}

	respondData(c, http.StatusOK, category)
}

// DeleteCategory обрабатывает DELETE /api/categories/:id.
// Guards на детей и товары возвращают 409, а не тихий no-op.
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, http.StatusNotFound, "Category not found")
		case errors.Is(err, service.ErrCategoryHasChildren):
			respondError(c, http.StatusConflict, "Category has child categories")
		case errors.Is(err, service.ErrCategoryInUse):
			respondError(c, http.StatusConflict, "Category is referenced by products")
		default:
			h.respondServiceError(c, err, "Failed to delete category")
		}
		return
	}

	respondMessage(c, http.StatusOK, "Category deleted successfully")
}

// === PRODUCTS HANDLERS ===

// CreateProduct обрабатывает POST /api/products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req entity.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		if status, message, handled := productWriteError(err); handled {
			respondError(c, status, message)
			return
		}
		h.respondServiceError(c, err, "Failed to create product")
		return
	}

	respondData(c, http.StatusCreated, product)
}

// GetProduct обрабатывает GET /api/products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.respondServiceError(c, err, "Failed to get product")
		return
	}

	respondData(c, http.StatusOK, product)
}

// GetAllProducts обрабатывает GET /api/products с опциональным ?category_id=
func (h *CatalogHandler) GetAllProducts(c *gin.Context) {
	var categoryID *uuid.UUID
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid category_id filter")
			return
		}
		categoryID = &id
	}

	products, err := h.catalogService.GetAllProducts(c.Request.Context(), categoryID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to get products")
		return
	}

	respondData(c, http.StatusOK, products)
}

// UpdateProduct обрабатывает PUT /api/products/:id
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req entity.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		respondError(c, http.StatusBadRequest, formatValidationError(err))
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		if status, message, handled := productWriteError(err); handled {
			respondError(c, status, message)
			return
		}
		h.respondServiceError(c, err, "Failed to update product")
		return
	}

	respondData(c, http.StatusOK, product)
}

// DeleteProduct обрабатывает DELETE /api/products/:id
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondError(c, http.StatusNotFound, "Product not found")
			return
		}
		h.respondServiceError(c, err, "Failed to delete product")
		return
	}

	respondMessage(c, http.StatusOK, "Product deleted successfully")
}

// === STORES HANDLERS ===

// GetAllStores обрабатывает GET /api/stores
func (h *CatalogHandler) GetAllStores(c *gin.Context) {
	stores, err := h.catalogService.GetAllStores(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err, "Failed to get stores")
		return
	}

	respondData(c, http.StatusOK, stores)
}

// === HELPER FUNCTIONS ===

// productWriteError маппит ошибки валидации ссылок и входных данных
// при записи товара в 400
func productWriteError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		return http.StatusBadRequest, "Category not found", true
	case errors.Is(err, service.ErrStoreNotFound):
		return http.StatusBadRequest, "Store not found", true
	case errors.Is(err, service.ErrInvalidPrice):
		return http.StatusBadRequest, "Price must be a non-negative number", true
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest, "Stock quantity must be non-negative", true
	case errors.Is(err, service.ErrInvalidStoreID):
		return http.StatusBadRequest, "Invalid store id in stock", true
	}
	return 0, "", false
}

// respondServiceError обрабатывает остаточные ошибки сервиса:
// недоступность хранилища - 503, все прочее - 500
func (h *CatalogHandler) respondServiceError(c *gin.Context, err error, message string) {
	if errors.Is(err, service.ErrUnavailable) {
		respondError(c, http.StatusServiceUnavailable, "Storage temporarily unavailable")
		return
	}
	_ = c.Error(err)
	respondError(c, http.StatusInternalServerError, message)
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, entity.APIResponse{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, entity.APIResponse{Success: true, Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.APIResponse{Success: false, Message: message})
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return validationErrors[0].Field() + " validation failed"
	}
	return "Validation failed"
}
