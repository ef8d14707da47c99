package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateCategoryRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=100"`
	Description string     `json:"description" validate:"omitempty,max=2000"`
	ParentID    *uuid.UUID `json:"parent_id" validate:"omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	ParentID    *uuid.UUID `json:"parent_id" validate:"omitempty"`
}

// StockInput - остатки в запросе на создание/обновление товара.
// Ключи Stores - строковые UUID магазинов.
type StockInput struct {
	Warehouse *int           `json:"warehouse" validate:"omitempty,gte=0"`
	Stores    map[string]int `json:"stores" validate:"omitempty,dive,gte=0"`
}

type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,min=1,max=200"`
	Description string           `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	CategoryID  uuid.UUID        `json:"category_id" validate:"required"`
	Image       string           `json:"image" validate:"omitempty,max=500"`
	SKU         string           `json:"sku" validate:"omitempty,max=100"`
	Stock       *StockInput      `json:"stock"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uuid.UUID       `json:"category_id" validate:"omitempty"`
	Image       *string          `json:"image" validate:"omitempty,max=500"`
	SKU         *string          `json:"sku" validate:"omitempty,max=100"`
	Stock       *StockInput      `json:"stock"`
}

// APIResponse - единый конверт всех ответов API.
// Успех: {"success": true, "data": ...}; ошибка: {"success": false, "message": "..."}.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}
