package service

import (
	"context"

	"backoffice/internal/app/catalog/entity"

	"github.com/google/uuid"
)

type CatalogServiceInterface interface {
	CreateCategory(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAllCategories(ctx context.Context) ([]entity.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, req *entity.UpdateCategoryRequest) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, req *entity.CreateProductRequest) (*entity.ProductDetail, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error)
	GetAllProducts(ctx context.Context, categoryID *uuid.UUID) ([]entity.ProductDetail, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *entity.UpdateProductRequest) (*entity.ProductDetail, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	GetAllStores(ctx context.Context) ([]entity.Store, error)
}
