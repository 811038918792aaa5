package service

import (
	"context"
	"strings"

	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/internal/app/repository"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/movilstore/catalog-backend/pkg/logger"
)

type AttributeInput struct {
	Name    string
	GroupID uint
	Order   int
}

// AttributeUpdate carries optional changes; nil fields are left as they are.
type AttributeUpdate struct {
	Name    *string
	Order   *int
	GroupID *uint
}

type AttributeService interface {
	CreateGroup(ctx context.Context, name string) (*model.AttributeGroup, error)
	RenameGroup(ctx context.Context, id uint, name string) (*model.AttributeGroup, error)
	GetGroup(ctx context.Context, id uint) (*model.AttributeGroup, error)
	DeleteGroup(ctx context.Context, id uint) error
	ListGroups(ctx context.Context) ([]model.AttributeGroup, error)

	CreateAttribute(ctx context.Context, input AttributeInput) (*model.Attribute, error)
	UpdateAttribute(ctx context.Context, id uint, input AttributeUpdate) (*model.Attribute, error)
	GetAttribute(ctx context.Context, id uint) (*model.Attribute, error)
	ListAttributesByGroup(ctx context.Context, groupID uint) ([]model.Attribute, error)
	DeleteAttribute(ctx context.Context, id uint) error
}

type attributeService struct {
	repo   repository.AttributeRepository
	policy DeletePolicy
}

func NewAttributeService(repo repository.AttributeRepository, policy DeletePolicy) AttributeService {
	return &attributeService{repo: repo, policy: policy}
}

func requireName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidation(field, "must not be blank")
	}
	return name, nil
}

func (s *attributeService) CreateGroup(ctx context.Context, name string) (*model.AttributeGroup, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}

	group := &model.AttributeGroup{Name: name}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, apperrors.FromStore(err, "attribute.create_group", apperrors.EntityAttributeGroup, 0)
	}
	group.Attributes = []model.Attribute{}

	logger.Info("Attribute group created", map[string]interface{}{
		"group_id": group.ID,
		"name":     group.Name,
	})
	return group, nil
}

func (s *attributeService) RenameGroup(ctx context.Context, id uint, name string) (*model.AttributeGroup, error) {
	name, err := requireName("name", name)
	if err != nil {
		return nil, err
	}

	group, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Name = name
	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, apperrors.FromStore(err, "attribute.rename_group", apperrors.EntityAttributeGroup, id)
	}

	logger.Info("Attribute group renamed", map[string]interface{}{
		"group_id": id,
		"name":     name,
	})
	return group, nil
}

func (s *attributeService) GetGroup(ctx context.Context, id uint) (*model.AttributeGroup, error) {
	group, err := s.repo.FindGroupByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "attribute.get_group", apperrors.EntityAttributeGroup, id)
	}
	return group, nil
}

func (s *attributeService) DeleteGroup(ctx context.Context, id uint) error {
	if _, err := s.GetGroup(ctx, id); err != nil {
		return err
	}

	if !s.policy.cascades() {
		count, err := s.repo.CountAttributesInGroup(ctx, id)
		if err != nil {
			return apperrors.FromStore(err, "attribute.delete_group", apperrors.EntityAttributeGroup, id)
		}
		if count > 0 {
			logger.Warn("Attribute group delete blocked", map[string]interface{}{
				"group_id":   id,
				"attributes": count,
			})
			return &apperrors.ReferentialIntegrityError{
				Entity:     apperrors.EntityAttributeGroup,
				ID:         id,
				Referrer:   apperrors.EntityAttribute,
				References: count,
			}
		}
	}

	if err := s.repo.DeleteGroup(ctx, id, s.policy.cascades()); err != nil {
		return apperrors.FromStore(err, "attribute.delete_group", apperrors.EntityAttributeGroup, id)
	}

	logger.Info("Attribute group deleted", map[string]interface{}{
		"group_id": id,
		"policy":   s.policy,
	})
	return nil
}

func (s *attributeService) ListGroups(ctx context.Context) ([]model.AttributeGroup, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, apperrors.FromStore(err, "attribute.list_groups", apperrors.EntityAttributeGroup, 0)
	}
	if groups == nil {
		groups = []model.AttributeGroup{}
	}
	for i := range groups {
		if groups[i].Attributes == nil {
			groups[i].Attributes = []model.Attribute{}
		}
	}
	return groups, nil
}

func (s *attributeService) CreateAttribute(ctx context.Context, input AttributeInput) (*model.Attribute, error) {
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}
	if input.GroupID == 0 {
		return nil, apperrors.NewValidation("attributeGroupId", "is required")
	}
	if _, err := s.GetGroup(ctx, input.GroupID); err != nil {
		return nil, err
	}

	attribute := &model.Attribute{
		Name:             name,
		Order:            input.Order,
		AttributeGroupID: input.GroupID,
	}
	if err := s.repo.CreateAttribute(ctx, attribute); err != nil {
		return nil, apperrors.FromStore(err, "attribute.create", apperrors.EntityAttribute, 0)
	}

	logger.Info("Attribute created", map[string]interface{}{
		"attribute_id": attribute.ID,
		"group_id":     attribute.AttributeGroupID,
		"name":         attribute.Name,
	})
	return attribute, nil
}

func (s *attributeService) UpdateAttribute(ctx context.Context, id uint, input AttributeUpdate) (*model.Attribute, error) {
	attribute, err := s.GetAttribute(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := requireName("name", *input.Name)
		if err != nil {
			return nil, err
		}
		attribute.Name = name
	}
	if input.Order != nil {
		attribute.Order = *input.Order
	}
	if input.GroupID != nil && *input.GroupID != attribute.AttributeGroupID {
		group, err := s.GetGroup(ctx, *input.GroupID)
		if err != nil {
			return nil, err
		}
		attribute.AttributeGroupID = group.ID
		attribute.AttributeGroup = group
	}

	if err := s.repo.UpdateAttribute(ctx, attribute); err != nil {
		return nil, apperrors.FromStore(err, "attribute.update", apperrors.EntityAttribute, id)
	}

	logger.Info("Attribute updated", map[string]interface{}{
		"attribute_id": id,
		"group_id":     attribute.AttributeGroupID,
	})
	return attribute, nil
}

func (s *attributeService) GetAttribute(ctx context.Context, id uint) (*model.Attribute, error) {
	attribute, err := s.repo.FindAttributeByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "attribute.get", apperrors.EntityAttribute, id)
	}
	return attribute, nil
}

func (s *attributeService) ListAttributesByGroup(ctx context.Context, groupID uint) ([]model.Attribute, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	attributes, err := s.repo.FindAttributesByGroup(ctx, groupID)
	if err != nil {
		return nil, apperrors.FromStore(err, "attribute.list_by_group", apperrors.EntityAttributeGroup, groupID)
	}
	return attributes, nil
}

func (s *attributeService) DeleteAttribute(ctx context.Context, id uint) error {
	if _, err := s.GetAttribute(ctx, id); err != nil {
		return err
	}

	if !s.policy.cascades() {
		count, err := s.repo.CountValuesForAttributes(ctx, []uint{id})
		if err != nil {
			return apperrors.FromStore(err, "attribute.delete", apperrors.EntityAttribute, id)
		}
		if count > 0 {
			logger.Warn("Attribute delete blocked", map[string]interface{}{
				"attribute_id": id,
				"values":       count,
			})
			return &apperrors.ReferentialIntegrityError{
				Entity:     apperrors.EntityAttribute,
				ID:         id,
				Referrer:   apperrors.EntityProduct,
				References: count,
			}
		}
	}

	if err := s.repo.DeleteAttribute(ctx, id, s.policy.cascades()); err != nil {
		return apperrors.FromStore(err, "attribute.delete", apperrors.EntityAttribute, id)
	}

	logger.Info("Attribute deleted", map[string]interface{}{
		"attribute_id": id,
		"policy":       s.policy,
	})
	return nil
}
