package service

import (
	"context"
	"strings"

	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/internal/app/repository"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/movilstore/catalog-backend/pkg/logger"
)

type CategoryInput struct {
	Name        string
	Description string
	IsActive    *bool
}

type CategoryUpdate struct {
	Name        *string
	Description *string
	IsActive    *bool
}

type SubcategoryInput struct {
	Name        string
	Description string
	CategoryID  uint
	IsActive    *bool
}

type SubcategoryUpdate struct {
	Name        *string
	Description *string
	CategoryID  *uint
	IsActive    *bool
}

type CategoryService interface {
	Tree(ctx context.Context) ([]model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id uint) (*model.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uint, input CategoryUpdate) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	GetSubcategory(ctx context.Context, id uint) (*model.Subcategory, error)
	ListSubcategoriesByCategory(ctx context.Context, categoryID uint) ([]model.Subcategory, error)
	CreateSubcategory(ctx context.Context, input SubcategoryInput) (*model.Subcategory, error)
	UpdateSubcategory(ctx context.Context, id uint, input SubcategoryUpdate) (*model.Subcategory, error)
	DeleteSubcategory(ctx context.Context, id uint) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	policy DeletePolicy
}

func NewCategoryService(repo repository.CategoryRepository, policy DeletePolicy) CategoryService {
	return &categoryService{repo: repo, policy: policy}
}

func activeOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

// Tree returns every category with its subcategories nested.
func (s *categoryService) Tree(ctx context.Context) ([]model.Category, error) {
	tree, err := s.repo.Tree(ctx)
	if err != nil {
		return nil, apperrors.FromStore(err, "category.tree", apperrors.EntityCategory, 0)
	}
	if tree == nil {
		tree = []model.Category{}
	}
	for i := range tree {
		if tree[i].Subcategories == nil {
			tree[i].Subcategories = []model.Subcategory{}
		}
	}
	return tree, nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, apperrors.FromStore(err, "category.list", apperrors.EntityCategory, 0)
	}
	return categories, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uint) (*model.Category, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "category.get", apperrors.EntityCategory, id)
	}
	return category, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error) {
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		IsActive:    activeOrDefault(input.IsActive),
	}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, apperrors.FromStore(err, "category.create", apperrors.EntityCategory, 0)
	}

	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uint, input CategoryUpdate) (*model.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := requireName("name", *input.Name)
		if err != nil {
			return nil, err
		}
		category.Name = name
	}
	if input.Description != nil {
		category.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, apperrors.FromStore(err, "category.update", apperrors.EntityCategory, id)
	}

	logger.Info("Category updated", map[string]interface{}{
		"category_id": id,
	})
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uint) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	if !s.policy.cascades() {
		count, err := s.repo.CountSubcategories(ctx, id)
		if err != nil {
			return apperrors.FromStore(err, "category.delete", apperrors.EntityCategory, id)
		}
		if count > 0 {
			logger.Warn("Category delete blocked", map[string]interface{}{
				"category_id":   id,
				"subcategories": count,
			})
			return &apperrors.ReferentialIntegrityError{
				Entity:     apperrors.EntityCategory,
				ID:         id,
				Referrer:   apperrors.EntitySubcategory,
				References: count,
			}
		}
	}

	if s.policy.cascades() {
		subcategories, err := s.repo.FindSubcategoriesByCategory(ctx, id)
		if err != nil {
			return apperrors.FromStore(err, "category.delete", apperrors.EntityCategory, id)
		}
		ids := make([]uint, 0, len(subcategories))
		for _, sub := range subcategories {
			ids = append(ids, sub.ID)
		}
		if err := s.ensureNoProductLeftBare(ctx, apperrors.EntityCategory, id, ids); err != nil {
			return err
		}
	}

	if err := s.repo.DeleteCategory(ctx, id, s.policy.cascades()); err != nil {
		return apperrors.FromStore(err, "category.delete", apperrors.EntityCategory, id)
	}

	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
		"policy":      s.policy,
	})
	return nil
}

// ensureNoProductLeftBare refuses a cascade that would strip a live product
// of its last subcategory.
func (s *categoryService) ensureNoProductLeftBare(ctx context.Context, entity string, id uint, subcategoryIDs []uint) error {
	count, err := s.repo.CountProductsOnlyIn(ctx, subcategoryIDs)
	if err != nil {
		return apperrors.FromStore(err, entity+".delete", entity, id)
	}
	if count == 0 {
		return nil
	}
	logger.Warn("Cascade delete blocked by products without another subcategory", map[string]interface{}{
		"entity":   entity,
		"id":       id,
		"products": count,
	})
	return &apperrors.ReferentialIntegrityError{
		Entity:     entity,
		ID:         id,
		Referrer:   apperrors.EntityProduct,
		References: count,
	}
}

func (s *categoryService) GetSubcategory(ctx context.Context, id uint) (*model.Subcategory, error) {
	subcategory, err := s.repo.FindSubcategoryByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "subcategory.get", apperrors.EntitySubcategory, id)
	}
	return subcategory, nil
}

func (s *categoryService) ListSubcategoriesByCategory(ctx context.Context, categoryID uint) ([]model.Subcategory, error) {
	if _, err := s.GetCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	subcategories, err := s.repo.FindSubcategoriesByCategory(ctx, categoryID)
	if err != nil {
		return nil, apperrors.FromStore(err, "subcategory.list_by_category", apperrors.EntityCategory, categoryID)
	}
	return subcategories, nil
}

func (s *categoryService) CreateSubcategory(ctx context.Context, input SubcategoryInput) (*model.Subcategory, error) {
	name, err := requireName("name", input.Name)
	if err != nil {
		return nil, err
	}
	if input.CategoryID == 0 {
		return nil, apperrors.NewValidation("categoryId", "is required")
	}
	category, err := s.GetCategory(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	subcategory := &model.Subcategory{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CategoryID:  category.ID,
		IsActive:    activeOrDefault(input.IsActive),
	}
	if err := s.repo.CreateSubcategory(ctx, subcategory); err != nil {
		return nil, apperrors.FromStore(err, "subcategory.create", apperrors.EntitySubcategory, 0)
	}
	category.Subcategories = nil
	subcategory.Category = category

	logger.Info("Subcategory created", map[string]interface{}{
		"subcategory_id": subcategory.ID,
		"category_id":    category.ID,
		"name":           subcategory.Name,
	})
	return subcategory, nil
}

func (s *categoryService) UpdateSubcategory(ctx context.Context, id uint, input SubcategoryUpdate) (*model.Subcategory, error) {
	subcategory, err := s.GetSubcategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := requireName("name", *input.Name)
		if err != nil {
			return nil, err
		}
		subcategory.Name = name
	}
	if input.Description != nil {
		subcategory.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsActive != nil {
		subcategory.IsActive = *input.IsActive
	}
	if input.CategoryID != nil && *input.CategoryID != subcategory.CategoryID {
		category, err := s.GetCategory(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		category.Subcategories = nil
		subcategory.CategoryID = category.ID
		subcategory.Category = category
	}

	if err := s.repo.UpdateSubcategory(ctx, subcategory); err != nil {
		return nil, apperrors.FromStore(err, "subcategory.update", apperrors.EntitySubcategory, id)
	}

	logger.Info("Subcategory updated", map[string]interface{}{
		"subcategory_id": id,
		"category_id":    subcategory.CategoryID,
	})
	return subcategory, nil
}

func (s *categoryService) DeleteSubcategory(ctx context.Context, id uint) error {
	if _, err := s.GetSubcategory(ctx, id); err != nil {
		return err
	}

	if !s.policy.cascades() {
		count, err := s.repo.CountProductLinks(ctx, []uint{id})
		if err != nil {
			return apperrors.FromStore(err, "subcategory.delete", apperrors.EntitySubcategory, id)
		}
		if count > 0 {
			logger.Warn("Subcategory delete blocked", map[string]interface{}{
				"subcategory_id": id,
				"products":       count,
			})
			return &apperrors.ReferentialIntegrityError{
				Entity:     apperrors.EntitySubcategory,
				ID:         id,
				Referrer:   apperrors.EntityProduct,
				References: count,
			}
		}
	}

	if s.policy.cascades() {
		if err := s.ensureNoProductLeftBare(ctx, apperrors.EntitySubcategory, id, []uint{id}); err != nil {
			return err
		}
	}

	if err := s.repo.DeleteSubcategory(ctx, id, s.policy.cascades()); err != nil {
		return apperrors.FromStore(err, "subcategory.delete", apperrors.EntitySubcategory, id)
	}

	logger.Info("Subcategory deleted", map[string]interface{}{
		"subcategory_id": id,
		"policy":         s.policy,
	})
	return nil
}
