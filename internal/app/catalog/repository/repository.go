package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"backoffice/internal/app/catalog/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrStoreNotFound    = errors.New("store not found")
	ErrUnavailable      = errors.New("storage unavailable")
)

// serviceName - метка сервиса для метрик БД
const serviceName = "catalog"

type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	GetAll(ctx context.Context) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountChildren(ctx context.Context, id uuid.UUID) (int64, error)
	CountProducts(ctx context.Context, id uuid.UUID) (int64, error)
}

// ProductRepository объединяет CRUD товара с согласованностью его остатков:
// все мутации выполняются в одной транзакции вместе со строками
// warehouse_inventory и store_inventory.
type ProductRepository interface {
	CreateWithStock(ctx context.Context, product *entity.Product, warehouseQty int, storeQty map[uuid.UUID]int) error
	UpdateWithStock(ctx context.Context, product *entity.Product, stock *entity.StockChange) error
	DeleteWithStock(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*entity.ProductDetail, error)
	GetAllDetails(ctx context.Context, categoryID *uuid.UUID) ([]entity.ProductDetail, error)
}

type StoreRepository interface {
	GetAll(ctx context.Context) ([]entity.Store, error)
	CountByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// wrapDBError переводит ошибки таймаута и обрыва соединения в ErrUnavailable,
// чтобы handler мог отдать 503 вместо 500
func wrapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && isUnavailableCode(pgErr.Code) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// isUnavailableCode определяет SQLSTATE коды недоступности хранилища:
// 57014 - statement_timeout, 57P01 - admin_shutdown, класс 08 - connection exception
func isUnavailableCode(code string) bool {
	return code == "57014" || code == "57P01" || strings.HasPrefix(code, "08")
}
