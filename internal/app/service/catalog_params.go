package service

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/internal/app/repository"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// PageSizes are the page sizes a caller may pick.
var PageSizes = []int{5, 10, 15, 20}

// QueryParams is the catalog filter state. The With* methods are the reducer
// used by clients: every filter change returns params reset to page 1, so a
// narrowed result set never leaves the caller on an out-of-range page.
type QueryParams struct {
	Page           int
	PerPage        int
	Search         string
	MinPrice       *float64
	MaxPrice       *float64
	SubcategoryIDs []uint
	CategoryID     *uint
	ActiveOnly     bool
	Sort           repository.ProductSort
}

func DefaultQueryParams() QueryParams {
	return QueryParams{
		Page:    DefaultPage,
		PerPage: DefaultPerPage,
		Sort:    repository.ProductSortNewest,
	}
}

func (p QueryParams) WithPage(page int) QueryParams {
	p.Page = page
	return p
}

func (p QueryParams) WithPerPage(perPage int) QueryParams {
	p.PerPage = perPage
	p.Page = 1
	return p
}

func (p QueryParams) WithSearch(search string) QueryParams {
	p.Search = search
	p.Page = 1
	return p
}

func (p QueryParams) WithMinPrice(price *float64) QueryParams {
	p.MinPrice = copyFloat(price)
	p.Page = 1
	return p
}

func (p QueryParams) WithMaxPrice(price *float64) QueryParams {
	p.MaxPrice = copyFloat(price)
	p.Page = 1
	return p
}

func (p QueryParams) WithSubcategories(ids []uint) QueryParams {
	p.SubcategoryIDs = append([]uint(nil), ids...)
	p.Page = 1
	return p
}

// WithCategory selects a category and drops every selected subcategory that
// is not one of its children.
func (p QueryParams) WithCategory(categoryID uint, tree []model.Category) QueryParams {
	id := categoryID
	p.CategoryID = &id
	p.SubcategoryIDs = SelectCategory(p.SubcategoryIDs, categoryID, tree)
	p.Page = 1
	return p
}

func (p QueryParams) WithoutCategory() QueryParams {
	p.CategoryID = nil
	p.Page = 1
	return p
}

func (p QueryParams) WithActiveOnly(active bool) QueryParams {
	p.ActiveOnly = active
	p.Page = 1
	return p
}

func (p QueryParams) WithSort(sort repository.ProductSort) QueryParams {
	p.Sort = sort
	p.Page = 1
	return p
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func validPageSize(n int) bool {
	for _, size := range PageSizes {
		if size == n {
			return true
		}
	}
	return false
}

func validSort(sort repository.ProductSort) bool {
	switch sort {
	case repository.ProductSortNewest, repository.ProductSortPriceAsc,
		repository.ProductSortPriceDesc, repository.ProductSortName:
		return true
	}
	return false
}

// Validate checks the params a query is about to run with.
func (p QueryParams) Validate() error {
	if p.Page < 1 {
		return apperrors.NewValidation("page", "must be 1 or greater")
	}
	if !validPageSize(p.PerPage) {
		return apperrors.NewValidation("perPage", "must be one of 5, 10, 15, 20")
	}
	if p.MinPrice != nil && (*p.MinPrice < 0 || !validPrice(*p.MinPrice)) {
		return apperrors.NewValidation("minPrice", "must be a non-negative number")
	}
	if p.MaxPrice != nil && (*p.MaxPrice < 0 || !validPrice(*p.MaxPrice)) {
		return apperrors.NewValidation("maxPrice", "must be a non-negative number")
	}
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return apperrors.NewValidation("minPrice", "must not exceed maxPrice")
	}
	if !validSort(p.Sort) {
		return apperrors.NewValidation("sort", "must be one of newest, price_asc, price_desc, name")
	}
	return nil
}

func parseIDList(field string, raw []string) ([]uint, error) {
	ids := []uint{}
	seen := map[uint]bool{}
	for _, chunk := range raw {
		for _, part := range strings.Split(chunk, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil || id == 0 {
				return nil, apperrors.NewValidation(field, "must be a comma separated list of ids")
			}
			if !seen[uint(id)] {
				seen[uint(id)] = true
				ids = append(ids, uint(id))
			}
		}
	}
	return ids, nil
}

func parsePrice(field, raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperrors.NewValidation(field, "must be a number")
	}
	return &v, nil
}

// ParseQueryParams reads catalog params from a query string. Missing values
// take their defaults; malformed ones are a ValidationError.
func ParseQueryParams(values url.Values) (QueryParams, error) {
	params := DefaultQueryParams()

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return params, apperrors.NewValidation("page", "must be an integer")
		}
		params.Page = page
	}
	if raw := strings.TrimSpace(values.Get("perPage")); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil {
			return params, apperrors.NewValidation("perPage", "must be an integer")
		}
		params.PerPage = perPage
	}

	params.Search = strings.TrimSpace(values.Get("search"))

	var err error
	if params.MinPrice, err = parsePrice("minPrice", strings.TrimSpace(values.Get("minPrice"))); err != nil {
		return params, err
	}
	if params.MaxPrice, err = parsePrice("maxPrice", strings.TrimSpace(values.Get("maxPrice"))); err != nil {
		return params, err
	}

	if params.SubcategoryIDs, err = parseIDList("subcategoryId", values["subcategoryId"]); err != nil {
		return params, err
	}
	if len(params.SubcategoryIDs) == 0 {
		params.SubcategoryIDs = nil
	}

	if raw := strings.TrimSpace(values.Get("categoryId")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return params, apperrors.NewValidation("categoryId", "must be a positive integer")
		}
		categoryID := uint(id)
		params.CategoryID = &categoryID
	}

	if raw := strings.TrimSpace(values.Get("active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return params, apperrors.NewValidation("active", "must be true or false")
		}
		params.ActiveOnly = active
	}

	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		params.Sort = repository.ProductSort(strings.ToLower(raw))
	}

	return params, params.Validate()
}

// Encode renders params as a query string understood by ParseQueryParams.
func (p QueryParams) Encode() string {
	values := url.Values{}
	values.Set("page", strconv.Itoa(p.Page))
	values.Set("perPage", strconv.Itoa(p.PerPage))
	if p.Search != "" {
		values.Set("search", p.Search)
	}
	if p.MinPrice != nil {
		values.Set("minPrice", strconv.FormatFloat(*p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice != nil {
		values.Set("maxPrice", strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64))
	}
	if len(p.SubcategoryIDs) > 0 {
		parts := make([]string, 0, len(p.SubcategoryIDs))
		for _, id := range p.SubcategoryIDs {
			parts = append(parts, strconv.FormatUint(uint64(id), 10))
		}
		values.Set("subcategoryId", strings.Join(parts, ","))
	}
	if p.CategoryID != nil {
		values.Set("categoryId", strconv.FormatUint(uint64(*p.CategoryID), 10))
	}
	if p.ActiveOnly {
		values.Set("active", "true")
	}
	if p.Sort != "" && p.Sort != repository.ProductSortNewest {
		values.Set("sort", string(p.Sort))
	}
	return values.Encode()
}
