package service

import "errors"

// Ошибки бизнес-логики для обработки в handlers.
// Handler сам решает, чем является ErrCategoryNotFound в его контексте:
// 404 при прямом запросе категории или 400 при ссылке из товара.
var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrStoreNotFound       = errors.New("store not found")
	ErrParentNotFound      = errors.New("parent category not found")
	ErrSelfParent          = errors.New("category cannot be its own parent")
	ErrCategoryHasChildren = errors.New("category has child categories")
	ErrCategoryInUse       = errors.New("category is referenced by products")
	ErrInvalidPrice        = errors.New("price must be a non-negative number")
	ErrInvalidQuantity     = errors.New("stock quantity must be non-negative")
	ErrInvalidStoreID      = errors.New("invalid store id in stock")
	ErrUnavailable         = errors.New("storage temporarily unavailable")
)
