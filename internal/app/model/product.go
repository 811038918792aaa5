package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"type:varchar(200);not null" json:"name"`
	Code          string         `gorm:"type:varchar(80);not null;uniqueIndex:idx_products_code,where:deleted_at IS NULL" json:"code"`
	Description   string         `gorm:"type:text" json:"description"`
	Price         float64        `gorm:"not null" json:"price"`
	PriceDiscount *float64       `json:"priceDiscount"`
	Stock         int            `gorm:"not null;default:0" json:"stock"`
	IsActive      bool           `gorm:"not null" json:"isActive"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships, replaced wholesale on update
	Images          []ProductImage          `gorm:"foreignKey:ProductID" json:"-"`
	Subcategories   []ProductSubcategory    `gorm:"foreignKey:ProductID" json:"-"`
	AttributeValues []ProductAttributeValue `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// ImageURLs returns the image urls in stored order.
func (p *Product) ImageURLs() []string {
	urls := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		urls = append(urls, img.ImageURL)
	}
	return urls
}

// SubcategoryIDs returns linked subcategory ids in link order.
func (p *Product) SubcategoryIDs() []uint {
	ids := make([]uint, 0, len(p.Subcategories))
	for _, link := range p.Subcategories {
		ids = append(ids, link.SubcategoryID)
	}
	return ids
}

// CategoryLabel builds the display label from the first linked subcategory.
func (p *Product) CategoryLabel() string {
	if len(p.Subcategories) == 0 || p.Subcategories[0].Subcategory == nil {
		return ""
	}
	return p.Subcategories[0].Subcategory.Label()
}

type ProductImage struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProductID uint      `gorm:"index;not null" json:"productId"`
	ImageURL  string    `gorm:"type:text;not null" json:"imageUrl"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

func (ProductImage) TableName() string {
	return "product_images"
}

// ProductSubcategory links a product to one subcategory. The row id keeps
// insertion order, which decides the product's display category.
type ProductSubcategory struct {
	ID            uint         `gorm:"primarykey" json:"id"`
	ProductID     uint         `gorm:"uniqueIndex:idx_product_subcategory;not null" json:"productId"`
	SubcategoryID uint         `gorm:"uniqueIndex:idx_product_subcategory;index;not null" json:"subcategoryId"`
	Subcategory   *Subcategory `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
}

func (ProductSubcategory) TableName() string {
	return "product_subcategories"
}

// ProductAttributeValue is a sparse (product, attribute) -> value entry.
// A missing row means "not specified"; blank values are never stored.
type ProductAttributeValue struct {
	ProductID   uint       `gorm:"primaryKey" json:"-"`
	AttributeID uint       `gorm:"primaryKey;index" json:"attributeId"`
	Value       string     `gorm:"type:text;not null" json:"value"`
	Attribute   *Attribute `gorm:"foreignKey:AttributeID" json:"attribute,omitempty"`
}

func (ProductAttributeValue) TableName() string {
	return "product_attribute_values"
}
