package repository

import (
	"context"

	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/pkg/logger"
	"github.com/movilstore/catalog-backend/pkg/redis"
	"gorm.io/gorm"
)

const categoryTreeCacheKey = "categories:tree"

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *model.Category) error
	FindCategoryByID(ctx context.Context, id uint) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id uint, cascade bool) error
	Tree(ctx context.Context) ([]model.Category, error)

	CreateSubcategory(ctx context.Context, subcategory *model.Subcategory) error
	FindSubcategoryByID(ctx context.Context, id uint) (*model.Subcategory, error)
	FindSubcategoriesByIDs(ctx context.Context, ids []uint) ([]model.Subcategory, error)
	FindSubcategoriesByCategory(ctx context.Context, categoryID uint) ([]model.Subcategory, error)
	UpdateSubcategory(ctx context.Context, subcategory *model.Subcategory) error
	DeleteSubcategory(ctx context.Context, id uint, cascade bool) error

	CountSubcategories(ctx context.Context, categoryID uint) (int64, error)
	CountProductLinks(ctx context.Context, subcategoryIDs []uint) (int64, error)
	CountProductsOnlyIn(ctx context.Context, subcategoryIDs []uint) (int64, error)
}

type categoryRepository struct {
	db    *gorm.DB
	cache *redis.Cache
}

func NewCategoryRepository(db *gorm.DB, cache *redis.Cache) CategoryRepository {
	return &categoryRepository{db: db, cache: cache}
}

func orderedSubcategories(db *gorm.DB) *gorm.DB {
	return db.Order("subcategories.name ASC, subcategories.id ASC")
}

func (r *categoryRepository) invalidate(ctx context.Context) {
	r.cache.Invalidate(ctx, categoryTreeCacheKey)
}

func (r *categoryRepository) CreateCategory(ctx context.Context, category *model.Category) error {
	logger.Debug("Creating category in database", map[string]interface{}{
		"name": category.Name,
	})

	if err := r.db.WithContext(ctx).Omit("Subcategories").Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *categoryRepository) FindCategoryByID(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).
		Preload("Subcategories", orderedSubcategories).
		First(&category, id).Error; err != nil {
		logger.Debug("Category lookup failed", map[string]interface{}{
			"category_id": id,
			"error":       err.Error(),
		})
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to list categories", err, nil)
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) UpdateCategory(ctx context.Context, category *model.Category) error {
	logger.Debug("Updating category in database", map[string]interface{}{
		"category_id": category.ID,
	})

	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":        category.Name,
			"description": category.Description,
			"is_active":   category.IsActive,
		}).Error; err != nil {
		logger.Error("Failed to update category in database", err, map[string]interface{}{
			"category_id": category.ID,
		})
		return err
	}
	r.invalidate(ctx)
	return nil
}

// DeleteCategory soft-deletes a category. With cascade its subcategories and
// their product links go with it.
func (r *categoryRepository) DeleteCategory(ctx context.Context, id uint, cascade bool) error {
	logger.Debug("Deleting category from database", map[string]interface{}{
		"category_id": id,
		"cascade":     cascade,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cascade {
			subcategoryIDs := tx.Model(&model.Subcategory{}).Select("id").Where("category_id = ?", id)
			if err := tx.Where("subcategory_id IN (?)", subcategoryIDs).
				Delete(&model.ProductSubcategory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("category_id = ?", id).Delete(&model.Subcategory{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Category{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete category from database", err, map[string]interface{}{
			"category_id": id,
		})
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Tree returns every category with its subcategories nested, in one round of
// queries, so cascading selectors never fetch per category.
func (r *categoryRepository) Tree(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if r.cache.GetJSON(ctx, categoryTreeCacheKey, &categories) {
		logger.Debug("Category tree served from cache", map[string]interface{}{
			"category_count": len(categories),
		})
		return categories, nil
	}

	if err := r.db.WithContext(ctx).
		Preload("Subcategories", orderedSubcategories).
		Order("categories.name ASC, categories.id ASC").
		Find(&categories).Error; err != nil {
		logger.Error("Failed to load category tree", err, nil)
		return nil, err
	}
	r.cache.SetJSON(ctx, categoryTreeCacheKey, categories)

	logger.Debug("Category tree loaded", map[string]interface{}{
		"category_count": len(categories),
	})
	return categories, nil
}

func (r *categoryRepository) CreateSubcategory(ctx context.Context, subcategory *model.Subcategory) error {
	logger.Debug("Creating subcategory in database", map[string]interface{}{
		"name":        subcategory.Name,
		"category_id": subcategory.CategoryID,
	})

	if err := r.db.WithContext(ctx).Omit("Category").Create(subcategory).Error; err != nil {
		logger.Error("Failed to create subcategory in database", err, map[string]interface{}{
			"name":        subcategory.Name,
			"category_id": subcategory.CategoryID,
		})
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *categoryRepository) FindSubcategoryByID(ctx context.Context, id uint) (*model.Subcategory, error) {
	var subcategory model.Subcategory
	if err := r.db.WithContext(ctx).Preload("Category").First(&subcategory, id).Error; err != nil {
		logger.Debug("Subcategory lookup failed", map[string]interface{}{
			"subcategory_id": id,
			"error":          err.Error(),
		})
		return nil, err
	}
	return &subcategory, nil
}

// FindSubcategoriesByIDs returns only live subcategories whose category is
// also live.
func (r *categoryRepository) FindSubcategoriesByIDs(ctx context.Context, ids []uint) ([]model.Subcategory, error) {
	var subcategories []model.Subcategory
	if len(ids) == 0 {
		return subcategories, nil
	}
	if err := r.db.WithContext(ctx).
		Joins("JOIN categories ON categories.id = subcategories.category_id AND categories.deleted_at IS NULL").
		Where("subcategories.id IN ?", ids).
		Find(&subcategories).Error; err != nil {
		logger.Error("Failed to find subcategories by ids", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return subcategories, nil
}

func (r *categoryRepository) FindSubcategoriesByCategory(ctx context.Context, categoryID uint) ([]model.Subcategory, error) {
	var subcategories []model.Subcategory
	if err := orderedSubcategories(r.db.WithContext(ctx)).
		Where("category_id = ?", categoryID).
		Find(&subcategories).Error; err != nil {
		logger.Error("Failed to find subcategories by category", err, map[string]interface{}{
			"category_id": categoryID,
		})
		return nil, err
	}
	return subcategories, nil
}

func (r *categoryRepository) UpdateSubcategory(ctx context.Context, subcategory *model.Subcategory) error {
	logger.Debug("Updating subcategory in database", map[string]interface{}{
		"subcategory_id": subcategory.ID,
		"category_id":    subcategory.CategoryID,
	})

	if err := r.db.WithContext(ctx).Model(&model.Subcategory{}).
		Where("id = ?", subcategory.ID).
		Updates(map[string]interface{}{
			"name":        subcategory.Name,
			"description": subcategory.Description,
			"category_id": subcategory.CategoryID,
			"is_active":   subcategory.IsActive,
		}).Error; err != nil {
		logger.Error("Failed to update subcategory in database", err, map[string]interface{}{
			"subcategory_id": subcategory.ID,
		})
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *categoryRepository) DeleteSubcategory(ctx context.Context, id uint, cascade bool) error {
	logger.Debug("Deleting subcategory from database", map[string]interface{}{
		"subcategory_id": id,
		"cascade":        cascade,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cascade {
			if err := tx.Where("subcategory_id = ?", id).Delete(&model.ProductSubcategory{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Subcategory{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete subcategory from database", err, map[string]interface{}{
			"subcategory_id": id,
		})
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *categoryRepository) CountSubcategories(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Subcategory{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// CountProductLinks counts links from live products to the subcategories.
func (r *categoryRepository) CountProductLinks(ctx context.Context, subcategoryIDs []uint) (int64, error) {
	var count int64
	if len(subcategoryIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&model.ProductSubcategory{}).
		Joins("JOIN products ON products.id = product_subcategories.product_id AND products.deleted_at IS NULL").
		Where("product_subcategories.subcategory_id IN ?", subcategoryIDs).
		Count(&count).Error
	return count, err
}

// CountProductsOnlyIn counts live products linked to the subcategories that
// have no link to any other live subcategory.
func (r *categoryRepository) CountProductsOnlyIn(ctx context.Context, subcategoryIDs []uint) (int64, error) {
	var count int64
	if len(subcategoryIDs) == 0 {
		return 0, nil
	}
	linked := r.db.Model(&model.ProductSubcategory{}).
		Select("product_id").
		Where("subcategory_id IN ?", subcategoryIDs)
	elsewhere := r.db.Table("product_subcategories AS other").
		Select("1").
		Joins("JOIN subcategories ON subcategories.id = other.subcategory_id AND subcategories.deleted_at IS NULL").
		Where("other.product_id = products.id AND other.subcategory_id NOT IN ?", subcategoryIDs)

	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("products.id IN (?)", linked).
		Where("NOT EXISTS (?)", elsewhere).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count products left without subcategory", err, map[string]interface{}{
			"subcategory_count": len(subcategoryIDs),
		})
	}
	return count, err
}
