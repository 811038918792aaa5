package repository

import (
	"context"

	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/pkg/logger"
	"github.com/movilstore/catalog-backend/pkg/redis"
	"gorm.io/gorm"
)

const attributeTreeCacheKey = "attributes:groups:tree"

type AttributeRepository interface {
	CreateGroup(ctx context.Context, group *model.AttributeGroup) error
	FindGroupByID(ctx context.Context, id uint) (*model.AttributeGroup, error)
	UpdateGroup(ctx context.Context, group *model.AttributeGroup) error
	DeleteGroup(ctx context.Context, id uint, cascade bool) error
	ListGroups(ctx context.Context) ([]model.AttributeGroup, error)

	CreateAttribute(ctx context.Context, attribute *model.Attribute) error
	FindAttributeByID(ctx context.Context, id uint) (*model.Attribute, error)
	FindAttributesByIDs(ctx context.Context, ids []uint) ([]model.Attribute, error)
	FindAttributesByGroup(ctx context.Context, groupID uint) ([]model.Attribute, error)
	UpdateAttribute(ctx context.Context, attribute *model.Attribute) error
	DeleteAttribute(ctx context.Context, id uint, cascade bool) error

	CountAttributesInGroup(ctx context.Context, groupID uint) (int64, error)
	CountValuesForAttributes(ctx context.Context, attributeIDs []uint) (int64, error)
}

type attributeRepository struct {
	db    *gorm.DB
	cache *redis.Cache
}

func NewAttributeRepository(db *gorm.DB, cache *redis.Cache) AttributeRepository {
	return &attributeRepository{db: db, cache: cache}
}

func orderedAttributes(db *gorm.DB) *gorm.DB {
	return db.Order("attributes.sort_order ASC, attributes.id ASC")
}

func (r *attributeRepository) invalidate(ctx context.Context) {
	r.cache.Invalidate(ctx, attributeTreeCacheKey)
}

func (r *attributeRepository) CreateGroup(ctx context.Context, group *model.AttributeGroup) error {
	logger.Debug("Creating attribute group in database", map[string]interface{}{
		"name": group.Name,
	})

	if err := r.db.WithContext(ctx).Omit("Attributes").Create(group).Error; err != nil {
		logger.Error("Failed to create attribute group in database", err, map[string]interface{}{
			"name": group.Name,
		})
		return err
	}
	r.invalidate(ctx)

	logger.Debug("Attribute group created in database", map[string]interface{}{
		"group_id": group.ID,
	})
	return nil
}

func (r *attributeRepository) FindGroupByID(ctx context.Context, id uint) (*model.AttributeGroup, error) {
	var group model.AttributeGroup
	err := r.db.WithContext(ctx).
		Preload("Attributes", orderedAttributes).
		First(&group, id).Error
	if err != nil {
		logger.Debug("Attribute group lookup failed", map[string]interface{}{
			"group_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}
	return &group, nil
}

func (r *attributeRepository) UpdateGroup(ctx context.Context, group *model.AttributeGroup) error {
	logger.Debug("Updating attribute group in database", map[string]interface{}{
		"group_id": group.ID,
		"name":     group.Name,
	})

	if err := r.db.WithContext(ctx).Model(&model.AttributeGroup{}).
		Where("id = ?", group.ID).
		Update("name", group.Name).Error; err != nil {
		logger.Error("Failed to update attribute group in database", err, map[string]interface{}{
			"group_id": group.ID,
		})
		return err
	}
	r.invalidate(ctx)
	return nil
}

// DeleteGroup soft-deletes a group. With cascade it first removes the group's
// attributes and every product value that points at them.
func (r *attributeRepository) DeleteGroup(ctx context.Context, id uint, cascade bool) error {
	logger.Debug("Deleting attribute group from database", map[string]interface{}{
		"group_id": id,
		"cascade":  cascade,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cascade {
			attributeIDs := tx.Model(&model.Attribute{}).Select("id").Where("attribute_group_id = ?", id)
			if err := tx.Where("attribute_id IN (?)", attributeIDs).
				Delete(&model.ProductAttributeValue{}).Error; err != nil {
				return err
			}
			if err := tx.Where("attribute_group_id = ?", id).Delete(&model.Attribute{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.AttributeGroup{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete attribute group from database", err, map[string]interface{}{
			"group_id": id,
		})
		return err
	}
	r.invalidate(ctx)
	return nil
}

// ListGroups returns the registry as a tree: groups by name, attributes by order.
func (r *attributeRepository) ListGroups(ctx context.Context) ([]model.AttributeGroup, error) {
	var groups []model.AttributeGroup
	if r.cache.GetJSON(ctx, attributeTreeCacheKey, &groups) {
		logger.Debug("Attribute registry served from cache", map[string]interface{}{
			"group_count": len(groups),
		})
		return groups, nil
	}

	if err := r.db.WithContext(ctx).
		Preload("Attributes", orderedAttributes).
		Order("attribute_groups.name ASC, attribute_groups.id ASC").
		Find(&groups).Error; err != nil {
		logger.Error("Failed to list attribute groups", err, nil)
		return nil, err
	}
	r.cache.SetJSON(ctx, attributeTreeCacheKey, groups)

	logger.Debug("Attribute groups listed", map[string]interface{}{
		"group_count": len(groups),
	})
	return groups, nil
}

func (r *attributeRepository) CreateAttribute(ctx context.Context, attribute *model.Attribute) error {
	logger.Debug("Creating attribute in database", map[string]interface{}{
		"name":     attribute.Name,
		"group_id": attribute.AttributeGroupID,
		"order":    attribute.Order,
	})

	if err := r.db.WithContext(ctx).Omit("AttributeGroup").Create(attribute).Error; err != nil {
		logger.Error("Failed to create attribute in database", err, map[string]interface{}{
			"name":     attribute.Name,
			"group_id": attribute.AttributeGroupID,
		})
		return err
	}
	r.invalidate(ctx)

	logger.Debug("Attribute created in database", map[string]interface{}{
		"attribute_id": attribute.ID,
	})
	return nil
}

func (r *attributeRepository) FindAttributeByID(ctx context.Context, id uint) (*model.Attribute, error) {
	var attribute model.Attribute
	if err := r.db.WithContext(ctx).Preload("AttributeGroup").First(&attribute, id).Error; err != nil {
		logger.Debug("Attribute lookup failed", map[string]interface{}{
			"attribute_id": id,
			"error":        err.Error(),
		})
		return nil, err
	}
	return &attribute, nil
}

func (r *attributeRepository) FindAttributesByIDs(ctx context.Context, ids []uint) ([]model.Attribute, error) {
	var attributes []model.Attribute
	if len(ids) == 0 {
		return attributes, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&attributes).Error; err != nil {
		logger.Error("Failed to find attributes by ids", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return attributes, nil
}

func (r *attributeRepository) FindAttributesByGroup(ctx context.Context, groupID uint) ([]model.Attribute, error) {
	var attributes []model.Attribute
	if err := orderedAttributes(r.db.WithContext(ctx)).
		Where("attribute_group_id = ?", groupID).
		Find(&attributes).Error; err != nil {
		logger.Error("Failed to find attributes by group", err, map[string]interface{}{
			"group_id": groupID,
		})
		return nil, err
	}
	return attributes, nil
}

func (r *attributeRepository) UpdateAttribute(ctx context.Context, attribute *model.Attribute) error {
	logger.Debug("Updating attribute in database", map[string]interface{}{
		"attribute_id": attribute.ID,
		"group_id":     attribute.AttributeGroupID,
	})

	if err := r.db.WithContext(ctx).Model(&model.Attribute{}).
		Where("id = ?", attribute.ID).
		Updates(map[string]interface{}{
			"name":               attribute.Name,
			"sort_order":         attribute.Order,
			"attribute_group_id": attribute.AttributeGroupID,
		}).Error; err != nil {
		logger.Error("Failed to update attribute in database", err, map[string]interface{}{
			"attribute_id": attribute.ID,
		})
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *attributeRepository) DeleteAttribute(ctx context.Context, id uint, cascade bool) error {
	logger.Debug("Deleting attribute from database", map[string]interface{}{
		"attribute_id": id,
		"cascade":      cascade,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if cascade {
			if err := tx.Where("attribute_id = ?", id).Delete(&model.ProductAttributeValue{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Attribute{}, id).Error
	})
	if err != nil {
		logger.Error("Failed to delete attribute from database", err, map[string]interface{}{
			"attribute_id": id,
		})
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *attributeRepository) CountAttributesInGroup(ctx context.Context, groupID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Attribute{}).
		Where("attribute_group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

// CountValuesForAttributes counts product values held for the attributes,
// ignoring values that belong to soft-deleted products.
func (r *attributeRepository) CountValuesForAttributes(ctx context.Context, attributeIDs []uint) (int64, error) {
	var count int64
	if len(attributeIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&model.ProductAttributeValue{}).
		Joins("JOIN products ON products.id = product_attribute_values.product_id AND products.deleted_at IS NULL").
		Where("product_attribute_values.attribute_id IN ?", attributeIDs).
		Count(&count).Error
	return count, err
}
