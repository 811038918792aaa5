package service

import (
	"context"

	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/internal/app/repository"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/movilstore/catalog-backend/pkg/logger"
)

// PageMetadata describes one page of a paginated list.
type PageMetadata struct {
	ItemsPerPage int    `json:"itemsPerPage"`
	TotalItems   int64  `json:"totalItems"`
	TotalPages   int    `json:"totalPages"`
	CurrentPage  int    `json:"currentPage"`
	NextPage     *int   `json:"nextPage"`
	SearchTerm   string `json:"searchTerm"`
}

// NewPageMetadata computes totalPages as ceil(totalItems/itemsPerPage) and
// sets nextPage only when the following page exists.
func NewPageMetadata(totalItems int64, itemsPerPage, currentPage int, searchTerm string) PageMetadata {
	meta := PageMetadata{
		ItemsPerPage: itemsPerPage,
		TotalItems:   totalItems,
		CurrentPage:  currentPage,
		SearchTerm:   searchTerm,
	}
	if itemsPerPage > 0 {
		per := int64(itemsPerPage)
		meta.TotalPages = int((totalItems + per - 1) / per)
	}
	if currentPage < meta.TotalPages {
		next := currentPage + 1
		meta.NextPage = &next
	}
	return meta
}

type CatalogPage struct {
	Rows     []model.Product
	Metadata PageMetadata
}

type CatalogService interface {
	Query(ctx context.Context, params QueryParams) (*CatalogPage, error)
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

func NewCatalogService(productRepo repository.ProductRepository, categoryRepo repository.CategoryRepository) CatalogService {
	return &catalogService{productRepo: productRepo, categoryRepo: categoryRepo}
}

// resolveSubcategoryFilter applies the category cascade: with a category the
// selection is narrowed to its children, and an empty result widens to all of
// them. ok is false when the category has no children, so nothing can match.
func (s *catalogService) resolveSubcategoryFilter(ctx context.Context, params QueryParams) (ids []uint, ok bool, err error) {
	if params.CategoryID == nil {
		return params.SubcategoryIDs, true, nil
	}

	tree, err := s.categoryRepo.Tree(ctx)
	if err != nil {
		return nil, false, apperrors.FromStore(err, "catalog.load_tree", apperrors.EntityCategory, 0)
	}
	category, found := findCategory(*params.CategoryID, tree)
	if !found {
		return nil, false, apperrors.NewNotFound(apperrors.EntityCategory, *params.CategoryID)
	}

	selected := SelectCategory(params.SubcategoryIDs, category.ID, tree)
	if len(selected) == 0 {
		selected = subcategoryIDs(category.Subcategories)
	}
	return selected, len(selected) > 0, nil
}

// Query runs one catalog page. Store failures are returned as errors and
// never as an empty page.
func (s *catalogService) Query(ctx context.Context, params QueryParams) (*CatalogPage, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("Querying catalog", map[string]interface{}{
		"page":            params.Page,
		"per_page":        params.PerPage,
		"search":          params.Search,
		"subcategory_ids": params.SubcategoryIDs,
		"category_id":     params.CategoryID,
		"sort":            params.Sort,
	})

	subcategories, matchable, err := s.resolveSubcategoryFilter(ctx, params)
	if err != nil {
		return nil, err
	}
	if !matchable {
		return &CatalogPage{
			Rows:     []model.Product{},
			Metadata: NewPageMetadata(0, params.PerPage, params.Page, params.Search),
		}, nil
	}

	filter := repository.ProductFilter{
		Search:         params.Search,
		MinPrice:       params.MinPrice,
		MaxPrice:       params.MaxPrice,
		SubcategoryIDs: subcategories,
		ActiveOnly:     params.ActiveOnly,
		SortBy:         params.Sort,
		Limit:          params.PerPage,
		Offset:         (params.Page - 1) * params.PerPage,
	}

	rows, total, err := s.productRepo.FindWithFilter(ctx, filter)
	if err != nil {
		logger.Error("Catalog query failed", err, map[string]interface{}{
			"page":   params.Page,
			"search": params.Search,
		})
		return nil, apperrors.FromStore(err, "catalog.query", apperrors.EntityProduct, 0)
	}

	return &CatalogPage{
		Rows:     rows,
		Metadata: NewPageMetadata(total, params.PerPage, params.Page, params.Search),
	}, nil
}
