package db

import (
	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the catalog, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.AttributeGroup{},
		&model.Attribute{},
		&model.Category{},
		&model.Subcategory{},
		&model.Product{},
		&model.ProductImage{},
		&model.ProductSubcategory{},
		&model.ProductAttributeValue{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs the catalog migrations against conn.
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
