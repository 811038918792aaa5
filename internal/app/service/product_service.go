package service

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/internal/app/repository"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/movilstore/catalog-backend/pkg/logger"
	"gorm.io/gorm"
)

type AttributeValueInput struct {
	AttributeID uint
	Value       string
}

// ProductDraft is the full shape submitted on create. VisibleGroupIDs, when
// non-nil, is the editor's visible group set; otherwise the groups of the
// submitted values are visible.
type ProductDraft struct {
	Name            string
	Code            string
	Description     string
	Price           float64
	PriceDiscount   *float64
	Stock           int
	IsActive        *bool
	Images          []string
	SubcategoryIDs  []uint
	AttributeValues []AttributeValueInput
	VisibleGroupIDs []uint
}

// ProductPatch holds optional changes. A nil collection is left untouched;
// a non-nil one replaces the stored collection wholesale. A PriceDiscount of
// zero removes the discount.
type ProductPatch struct {
	Name            *string
	Code            *string
	Description     *string
	Price           *float64
	PriceDiscount   *float64
	Stock           *int
	IsActive        *bool
	Images          *[]string
	SubcategoryIDs  *[]uint
	AttributeValues *[]AttributeValueInput
	VisibleGroupIDs *[]uint
}

// AttributeView is the projected attribute editor for one product.
type AttributeView struct {
	ProductID        uint        `json:"productId"`
	DetectedGroupIDs []uint      `json:"detectedGroupIds"`
	VisibleGroupIDs  []uint      `json:"visibleGroupIds"`
	Groups           []GroupView `json:"groups"`
}

type ProductService interface {
	Create(ctx context.Context, draft ProductDraft) (*model.Product, error)
	Update(ctx context.Context, id uint, patch ProductPatch) (*model.Product, error)
	GetByID(ctx context.Context, id uint) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
	AttributeView(ctx context.Context, id uint) (*AttributeView, error)
}

type productService struct {
	productRepo   repository.ProductRepository
	categoryRepo  repository.CategoryRepository
	attributeRepo repository.AttributeRepository
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	attributeRepo repository.AttributeRepository,
) ProductService {
	return &productService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		attributeRepo: attributeRepo,
	}
}

func validPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validateScalars checks the product's own columns after a draft or patch has
// been applied.
func validateScalars(p *model.Product, requirePositivePrice bool) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Code = strings.TrimSpace(p.Code)
	if p.Name == "" {
		return apperrors.NewValidation("name", "must not be blank")
	}
	if p.Code == "" {
		return apperrors.NewValidation("code", "must not be blank")
	}
	if !validPrice(p.Price) {
		return apperrors.NewValidation("price", "must be a number")
	}
	if requirePositivePrice && p.Price <= 0 {
		return apperrors.NewValidation("price", "must be greater than 0")
	}
	if p.Price < 0 {
		return apperrors.NewValidation("price", "must not be negative")
	}
	if p.PriceDiscount != nil {
		d := *p.PriceDiscount
		switch {
		case !validPrice(d):
			return apperrors.NewValidation("priceDiscount", "must be a number")
		case d < 0:
			return apperrors.NewValidation("priceDiscount", "must not be negative")
		case d == 0:
			p.PriceDiscount = nil
		case d >= p.Price:
			return apperrors.NewValidation("priceDiscount", "must be lower than price")
		}
	}
	if p.Stock < 0 {
		return apperrors.NewValidation("stock", "must not be negative")
	}
	return nil
}

func (s *productService) ensureCodeFree(ctx context.Context, code string, selfID uint) error {
	existing, err := s.productRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.FromStore(err, "product.find_by_code", apperrors.EntityProduct, 0)
	}
	if existing.ID != selfID {
		return apperrors.NewValidation("code", "already in use")
	}
	return nil
}

// resolveSubcategories de-duplicates ids in submitted order and checks that
// each one is a live subcategory under a live category.
func (s *productService) resolveSubcategories(ctx context.Context, ids []uint) ([]model.ProductSubcategory, error) {
	unique := make([]uint, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return nil, apperrors.NewValidation("subcategoryIds", "at least one subcategory is required")
	}

	found, err := s.categoryRepo.FindSubcategoriesByIDs(ctx, unique)
	if err != nil {
		return nil, apperrors.FromStore(err, "product.resolve_subcategories", apperrors.EntitySubcategory, 0)
	}
	live := make(map[uint]bool, len(found))
	for _, sub := range found {
		live[sub.ID] = true
	}

	links := make([]model.ProductSubcategory, 0, len(unique))
	for _, id := range unique {
		if !live[id] {
			return nil, apperrors.NewNotFound(apperrors.EntitySubcategory, id)
		}
		links = append(links, model.ProductSubcategory{SubcategoryID: id})
	}
	return links, nil
}

func imageRows(urls []string) []model.ProductImage {
	images := make([]model.ProductImage, 0, len(urls))
	for _, url := range urls {
		images = append(images, model.ProductImage{ImageURL: url})
	}
	return images
}

// projectValues runs the submitted values through an editing session seeded
// with the persisted ones and returns what should be stored.
func (s *productService) projectValues(
	ctx context.Context,
	persisted []model.ProductAttributeValue,
	submitted *[]AttributeValueInput,
	visible *[]uint,
) ([]model.ProductAttributeValue, error) {
	groups, err := s.attributeRepo.ListGroups(ctx)
	if err != nil {
		return nil, apperrors.FromStore(err, "product.load_registry", apperrors.EntityAttributeGroup, 0)
	}
	session := NewAttributeSession(groups, persisted)

	if submitted != nil {
		session.ClearValues()
		for _, v := range *submitted {
			if err := session.SetValue(v.AttributeID, v.Value); err != nil {
				return nil, err
			}
		}
	}

	if visible != nil {
		if err := session.SetVisibleGroups(*visible); err != nil {
			return nil, err
		}
	} else if submitted != nil {
		for _, v := range *submitted {
			if strings.TrimSpace(v.Value) == "" {
				continue
			}
			groupID, _ := session.GroupOf(v.AttributeID)
			if err := session.AttachGroup(groupID); err != nil {
				return nil, err
			}
		}
	}

	return session.Submission(), nil
}

func (s *productService) Create(ctx context.Context, draft ProductDraft) (*model.Product, error) {
	logger.Debug("Creating product", map[string]interface{}{
		"name":              draft.Name,
		"code":              draft.Code,
		"subcategory_count": len(draft.SubcategoryIDs),
		"value_count":       len(draft.AttributeValues),
	})

	product := &model.Product{
		Name:          draft.Name,
		Code:          draft.Code,
		Description:   strings.TrimSpace(draft.Description),
		Price:         draft.Price,
		PriceDiscount: draft.PriceDiscount,
		Stock:         draft.Stock,
		IsActive:      activeOrDefault(draft.IsActive),
		Images:        imageRows(draft.Images),
	}
	if err := validateScalars(product, true); err != nil {
		return nil, err
	}

	links, err := s.resolveSubcategories(ctx, draft.SubcategoryIDs)
	if err != nil {
		return nil, err
	}
	product.Subcategories = links

	var visible *[]uint
	if draft.VisibleGroupIDs != nil {
		visible = &draft.VisibleGroupIDs
	}
	values, err := s.projectValues(ctx, nil, &draft.AttributeValues, visible)
	if err != nil {
		return nil, err
	}
	product.AttributeValues = values

	if err := s.ensureCodeFree(ctx, product.Code, 0); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, apperrors.FromStore(err, "product.create", apperrors.EntityProduct, 0)
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id":  product.ID,
		"code":        product.Code,
		"value_count": len(product.AttributeValues),
	})
	return s.GetByID(ctx, product.ID)
}

func (s *productService) Update(ctx context.Context, id uint, patch ProductPatch) (*model.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	originalCode := product.Code

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Code != nil {
		product.Code = *patch.Code
	}
	if patch.Description != nil {
		product.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.PriceDiscount != nil {
		product.PriceDiscount = patch.PriceDiscount
	}
	if patch.Stock != nil {
		product.Stock = *patch.Stock
	}
	if patch.IsActive != nil {
		product.IsActive = *patch.IsActive
	}
	if err := validateScalars(product, false); err != nil {
		return nil, err
	}
	if product.Code != originalCode {
		if err := s.ensureCodeFree(ctx, product.Code, product.ID); err != nil {
			return nil, err
		}
	}

	var replace repository.ProductCollections
	if patch.Images != nil {
		product.Images = imageRows(*patch.Images)
		replace.Images = true
	}
	if patch.SubcategoryIDs != nil {
		links, err := s.resolveSubcategories(ctx, *patch.SubcategoryIDs)
		if err != nil {
			return nil, err
		}
		product.Subcategories = links
		replace.Subcategories = true
	} else if len(product.Subcategories) == 0 {
		return nil, apperrors.NewValidation("subcategoryIds", "at least one subcategory is required")
	}
	if patch.AttributeValues != nil || patch.VisibleGroupIDs != nil {
		values, err := s.projectValues(ctx, product.AttributeValues, patch.AttributeValues, patch.VisibleGroupIDs)
		if err != nil {
			return nil, err
		}
		product.AttributeValues = values
		replace.AttributeValues = true
	}

	if err := s.productRepo.Update(ctx, product, replace); err != nil {
		return nil, apperrors.FromStore(err, "product.update", apperrors.EntityProduct, id)
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id":            id,
		"replace_images":        replace.Images,
		"replace_subcategories": replace.Subcategories,
		"replace_values":        replace.AttributeValues,
	})
	return s.GetByID(ctx, id)
}

func (s *productService) GetByID(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore(err, "product.get", apperrors.EntityProduct, id)
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uint) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return apperrors.FromStore(err, "product.delete", apperrors.EntityProduct, id)
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

// AttributeView loads the registry and the product's persisted values and
// returns a fresh session's projection.
func (s *productService) AttributeView(ctx context.Context, id uint) (*AttributeView, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	groups, err := s.attributeRepo.ListGroups(ctx)
	if err != nil {
		return nil, apperrors.FromStore(err, "product.load_registry", apperrors.EntityAttributeGroup, 0)
	}

	session := NewAttributeSession(groups, product.AttributeValues)
	return &AttributeView{
		ProductID:        product.ID,
		DetectedGroupIDs: session.DetectedGroups(),
		VisibleGroupIDs:  session.VisibleGroups(),
		Groups:           session.View(),
	}, nil
}
