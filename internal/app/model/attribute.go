package model

import (
	"time"

	"gorm.io/gorm"
)

// AttributeGroup is a named bucket of related specification fields
// (e.g. "Display", "Battery"). Shared master data, never owned by a product.
type AttributeGroup struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	Name       string         `gorm:"type:varchar(120);not null" json:"name"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	Attributes []Attribute    `gorm:"foreignKey:AttributeGroupID" json:"attributes"`
}

func (AttributeGroup) TableName() string {
	return "attribute_groups"
}

// Attribute is a single specification field. Order sorts it inside its group.
type Attribute struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	Name             string          `gorm:"type:varchar(120);not null" json:"name"`
	Order            int             `gorm:"column:sort_order;not null;default:0" json:"order"`
	AttributeGroupID uint            `gorm:"index;not null" json:"attributeGroupId"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
	AttributeGroup   *AttributeGroup `gorm:"foreignKey:AttributeGroupID" json:"attributeGroup,omitempty"`
}

func (Attribute) TableName() string {
	return "attributes"
}
