package model

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"type:varchar(120);not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	IsActive      bool           `gorm:"not null" json:"isActive"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Subcategories []Subcategory  `gorm:"foreignKey:CategoryID" json:"subcategories,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

// Subcategory has exactly one parent category.
type Subcategory struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(120);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CategoryID  uint           `gorm:"index;not null" json:"categoryId"`
	IsActive    bool           `gorm:"not null" json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (Subcategory) TableName() string {
	return "subcategories"
}

// Label is the display label used in catalog rows: "<category> - <subcategory>".
func (s Subcategory) Label() string {
	if s.Category == nil {
		return s.Name
	}
	return s.Category.Name + " - " + s.Name
}
