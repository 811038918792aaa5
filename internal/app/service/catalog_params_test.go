package service

import (
	"net/url"
	"testing"

	"github.com/movilstore/catalog-backend/internal/app/repository"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryParams_FilterChangesResetPage(t *testing.T) {
	price := 150000.0
	onPage4 := DefaultQueryParams().WithPage(4)
	require.Equal(t, 4, onPage4.Page)

	changes := map[string]func(QueryParams) QueryParams{
		"search":        func(p QueryParams) QueryParams { return p.WithSearch("galaxy") },
		"minPrice":      func(p QueryParams) QueryParams { return p.WithMinPrice(&price) },
		"maxPrice":      func(p QueryParams) QueryParams { return p.WithMaxPrice(&price) },
		"clear minimum": func(p QueryParams) QueryParams { return p.WithMinPrice(nil) },
		"subcategoryId": func(p QueryParams) QueryParams { return p.WithSubcategories([]uint{10, 11}) },
		"categoryId":    func(p QueryParams) QueryParams { return p.WithCategory(1, treeFixture()) },
		"no category":   func(p QueryParams) QueryParams { return p.WithoutCategory() },
		"perPage":       func(p QueryParams) QueryParams { return p.WithPerPage(20) },
		"active":        func(p QueryParams) QueryParams { return p.WithActiveOnly(true) },
		"sort":          func(p QueryParams) QueryParams { return p.WithSort(repository.ProductSortPriceAsc) },
	}

	for name, change := range changes {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, 1, change(onPage4).Page)
		})
	}
}

func TestQueryParams_WithPageKeepsFilters(t *testing.T) {
	params := DefaultQueryParams().WithSearch("pixel").WithPerPage(5).WithPage(3)

	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 5, params.PerPage)
	assert.Equal(t, "pixel", params.Search)
}

func TestQueryParams_WithCategoryNarrowsSelection(t *testing.T) {
	params := DefaultQueryParams().WithSubcategories([]uint{10, 20, 21})

	params = params.WithCategory(2, treeFixture())

	require.NotNil(t, params.CategoryID)
	assert.Equal(t, uint(2), *params.CategoryID)
	assert.Equal(t, []uint{20, 21}, params.SubcategoryIDs)
}

func TestQueryParams_ReducerDoesNotAliasInput(t *testing.T) {
	ids := []uint{10, 11}
	params := DefaultQueryParams().WithSubcategories(ids)
	ids[0] = 99

	assert.Equal(t, []uint{10, 11}, params.SubcategoryIDs)
}

func TestParseQueryParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		params, err := ParseQueryParams(url.Values{})
		require.NoError(t, err)
		assert.Equal(t, DefaultQueryParams(), params)
	})

	t.Run("all fields", func(t *testing.T) {
		values, _ := url.ParseQuery("page=2&perPage=15&search=+Galaxy+&minPrice=100000&maxPrice=200000" +
			"&subcategoryId=3,4,3&categoryId=7&active=true&sort=PRICE_DESC")

		params, err := ParseQueryParams(values)
		require.NoError(t, err)
		assert.Equal(t, 2, params.Page)
		assert.Equal(t, 15, params.PerPage)
		assert.Equal(t, "Galaxy", params.Search)
		assert.Equal(t, 100000.0, *params.MinPrice)
		assert.Equal(t, 200000.0, *params.MaxPrice)
		assert.Equal(t, []uint{3, 4}, params.SubcategoryIDs)
		assert.Equal(t, uint(7), *params.CategoryID)
		assert.True(t, params.ActiveOnly)
		assert.Equal(t, repository.ProductSortPriceDesc, params.Sort)
	})

	t.Run("repeated subcategory params", func(t *testing.T) {
		values, _ := url.ParseQuery("subcategoryId=3&subcategoryId=5,6")
		params, err := ParseQueryParams(values)
		require.NoError(t, err)
		assert.Equal(t, []uint{3, 5, 6}, params.SubcategoryIDs)
	})

	invalid := map[string]string{
		"page=0":                    "page",
		"page=abc":                  "page",
		"perPage=7":                 "perPage",
		"perPage=x":                 "perPage",
		"minPrice=cheap":            "minPrice",
		"maxPrice=-1":               "maxPrice",
		"minPrice=NaN":              "minPrice",
		"minPrice=300&maxPrice=200": "minPrice",
		"subcategoryId=1,a":         "subcategoryId",
		"subcategoryId=0":           "subcategoryId",
		"categoryId=-2":             "categoryId",
		"active=maybe":              "active",
		"sort=popular":              "sort",
	}
	for query, field := range invalid {
		t.Run(query, func(t *testing.T) {
			values, _ := url.ParseQuery(query)
			_, err := ParseQueryParams(values)

			var validationErr *apperrors.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, field, validationErr.Field)
		})
	}
}

func TestQueryParams_EncodeParsesBack(t *testing.T) {
	low, high := 99.5, 1000.0
	params := DefaultQueryParams().
		WithSearch("usb-c").
		WithMinPrice(&low).
		WithMaxPrice(&high).
		WithCategory(1, treeFixture()).
		WithSubcategories([]uint{11, 10}).
		WithSort(repository.ProductSortName).
		WithPerPage(5).
		WithPage(2)

	values, err := url.ParseQuery(params.Encode())
	require.NoError(t, err)

	parsed, err := ParseQueryParams(values)
	require.NoError(t, err)
	assert.Equal(t, params, parsed)
}
