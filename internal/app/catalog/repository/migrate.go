package repository

import (
	"backoffice/internal/app/catalog/entity"

	"gorm.io/gorm"
)

// Migrate приводит схему БД к актуальному состоянию.
// Порядок важен: stores и products должны существовать до инвентарных таблиц.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Category{},
		&entity.Store{},
		&entity.Product{},
		&entity.WarehouseStock{},
		&entity.StoreStock{},
	)
}
