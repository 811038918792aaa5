package repository

import (
	"context"
	"strings"

	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortName      ProductSort = "name"
)

type ProductFilter struct {
	Search         string
	MinPrice       *float64
	MaxPrice       *float64
	SubcategoryIDs []uint
	ActiveOnly     bool
	SortBy         ProductSort
	Limit          int
	Offset         int
}

// ProductCollections selects which owned collections an update replaces.
type ProductCollections struct {
	Images          bool
	Subcategories   bool
	AttributeValues bool
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	FindWithFilter(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, product *model.Product, replace ProductCollections) error
	Delete(ctx context.Context, id uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("product_images.position ASC, product_images.id ASC")
}

func orderedLinks(db *gorm.DB) *gorm.DB {
	return db.Order("product_subcategories.id ASC")
}

func orderedValues(db *gorm.DB) *gorm.DB {
	return db.Order("product_attribute_values.attribute_id ASC")
}

// Create writes the product row and all of its owned collections in one
// transaction; either everything lands or nothing does.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":              product.Name,
		"code":              product.Code,
		"image_count":       len(product.Images),
		"subcategory_count": len(product.Subcategories),
		"value_count":       len(product.AttributeValues),
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return err
		}
		return writeCollections(tx, product, ProductCollections{Images: true, Subcategories: true, AttributeValues: true})
	})
	if err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
			"code": product.Code,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"code":       product.Code,
	})
	return nil
}

// writeCollections inserts the selected collections of product. Callers are
// responsible for clearing previous rows first.
func writeCollections(tx *gorm.DB, product *model.Product, which ProductCollections) error {
	if which.Images && len(product.Images) > 0 {
		for i := range product.Images {
			product.Images[i].ID = 0
			product.Images[i].ProductID = product.ID
			product.Images[i].Position = i
		}
		if err := tx.Create(&product.Images).Error; err != nil {
			return err
		}
	}
	if which.Subcategories && len(product.Subcategories) > 0 {
		for i := range product.Subcategories {
			product.Subcategories[i].ID = 0
			product.Subcategories[i].ProductID = product.ID
		}
		if err := tx.Omit("Subcategory").Create(&product.Subcategories).Error; err != nil {
			return err
		}
	}
	if which.AttributeValues && len(product.AttributeValues) > 0 {
		for i := range product.AttributeValues {
			product.AttributeValues[i].ProductID = product.ID
		}
		if err := tx.Omit("Attribute").Create(&product.AttributeValues).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID loads a live product with images, subcategory links resolved to
// their category, and attribute values resolved to attribute and group.
func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Images", orderedImages).
		Preload("Subcategories", orderedLinks).
		Preload("Subcategories.Subcategory.Category").
		Preload("AttributeValues", orderedValues).
		Preload("AttributeValues.Attribute.AttributeGroup").
		First(&product, id).Error
	if err != nil {
		logger.Debug("Product lookup failed", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *productRepository) applyFilter(query *gorm.DB, filter ProductFilter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		query = query.Where(
			`(LOWER(products.name) LIKE ? ESCAPE '\' OR LOWER(products.code) LIKE ? ESCAPE '\')`,
			like, like,
		)
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}
	if len(filter.SubcategoryIDs) > 0 {
		linked := r.db.Model(&model.ProductSubcategory{}).
			Select("product_subcategories.product_id").
			Where("product_subcategories.subcategory_id IN ?", filter.SubcategoryIDs)
		query = query.Where("products.id IN (?)", linked)
	}
	if filter.ActiveOnly {
		query = query.Where("products.is_active = ?", true)
	}
	return query
}

func sortClause(sort ProductSort) string {
	switch sort {
	case ProductSortPriceAsc:
		return "products.price ASC, products.id ASC"
	case ProductSortPriceDesc:
		return "products.price DESC, products.id DESC"
	case ProductSortName:
		return "products.name ASC, products.id ASC"
	case ProductSortNewest:
		fallthrough
	default:
		return "products.created_at DESC, products.id DESC"
	}
}

// FindWithFilter returns one page of live products matching filter together
// with the total number of matches across all pages.
func (r *productRepository) FindWithFilter(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"search":          filter.Search,
		"min_price":       filter.MinPrice,
		"max_price":       filter.MaxPrice,
		"subcategory_ids": filter.SubcategoryIDs,
		"active_only":     filter.ActiveOnly,
		"sort_by":         filter.SortBy,
		"limit":           filter.Limit,
		"offset":          filter.Offset,
	})

	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&model.Product{}), filter).
		Count(&total).Error; err != nil {
		logger.Error("Failed to count products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}

	products := []model.Product{}
	if total == 0 {
		return products, 0, nil
	}

	query := r.applyFilter(r.db.WithContext(ctx).Model(&model.Product{}), filter).
		Preload("Images", orderedImages).
		Preload("Subcategories", orderedLinks).
		Preload("Subcategories.Subcategory.Category").
		Order(sortClause(filter.SortBy))
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

// Update rewrites the scalar columns and, for every collection selected in
// replace, deletes the stored rows and inserts the product's current ones.
func (r *productRepository) Update(ctx context.Context, product *model.Product, replace ProductCollections) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id":            product.ID,
		"replace_images":        replace.Images,
		"replace_subcategories": replace.Subcategories,
		"replace_values":        replace.AttributeValues,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]interface{}{
				"name":           product.Name,
				"code":           product.Code,
				"description":    product.Description,
				"price":          product.Price,
				"price_discount": product.PriceDiscount,
				"stock":          product.Stock,
				"is_active":      product.IsActive,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if replace.Images {
			if err := tx.Where("product_id = ?", product.ID).Delete(&model.ProductImage{}).Error; err != nil {
				return err
			}
		}
		if replace.Subcategories {
			if err := tx.Where("product_id = ?", product.ID).Delete(&model.ProductSubcategory{}).Error; err != nil {
				return err
			}
		}
		if replace.AttributeValues {
			if err := tx.Where("product_id = ?", product.ID).Delete(&model.ProductAttributeValue{}).Error; err != nil {
				return err
			}
		}
		return writeCollections(tx, product, replace)
	})
	if err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	logger.Debug("Product updated in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

// Delete soft-deletes the product. Its links stay in place but every read
// path filters deleted products out.
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	result := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id": id,
	})
	return nil
}
