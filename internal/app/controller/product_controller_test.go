package controller

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/movilstore/catalog-backend/internal/app/service"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productFixture struct {
	api       *catalogAPI
	android   uint
	chargers  uint
	display   uint
	battery   uint
	size      uint
	capacity  uint
	phonesCat uint
}

func setupProductControllerTest(t *testing.T) *productFixture {
	api := setupCatalogAPI(t, service.DeletePolicyBlock)

	phones := api.createdID(t, "/api/v1/catalog/categories", gin.H{"name": "Phones"})
	accessories := api.createdID(t, "/api/v1/catalog/categories", gin.H{"name": "Accessories"})
	display := api.createdID(t, "/api/v1/catalog/attributes/groups", gin.H{"name": "Display"})
	battery := api.createdID(t, "/api/v1/catalog/attributes/groups", gin.H{"name": "Battery"})

	return &productFixture{
		api:       api,
		phonesCat: phones,
		android:   api.createdID(t, "/api/v1/catalog/categories/subcategories", gin.H{"name": "Android", "categoryId": phones}),
		chargers:  api.createdID(t, "/api/v1/catalog/categories/subcategories", gin.H{"name": "Chargers", "categoryId": accessories}),
		display:   display,
		battery:   battery,
		size:      api.createdID(t, "/api/v1/catalog/attributes", gin.H{"name": "Screen size", "attributeGroupId": display}),
		capacity:  api.createdID(t, "/api/v1/catalog/attributes", gin.H{"name": "Capacity", "attributeGroupId": battery}),
	}
}

func (f *productFixture) createProduct(t *testing.T, body gin.H) uint {
	return f.api.createdID(t, "/api/v1/catalog/products", body)
}

func TestProductController_CreateAndGet(t *testing.T) {
	f := setupProductControllerTest(t)

	id := f.createProduct(t, gin.H{
		"name":           "Galaxy S24",
		"code":           "SAM-S24",
		"price":          899.0,
		"priceDiscount":  849.0,
		"stock":          4,
		"images":         []string{"https://cdn.example.com/s24-front.jpg", "https://cdn.example.com/s24-back.jpg"},
		"subcategoryIds": []uint{f.android, f.chargers},
		"attributeValues": []gin.H{
			{"attributeId": f.size, "value": "6.2 in"},
			{"attributeId": f.capacity, "value": "4000 mAh"},
		},
	})

	w := f.api.do(t, http.MethodGet, fmt.Sprintf("/api/v1/catalog/products/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var product ProductResponse
	decode(t, w, &product)
	assert.Equal(t, "Galaxy S24", product.Name)
	assert.True(t, product.IsActive)
	require.NotNil(t, product.PriceDiscount)
	assert.Equal(t, 849.0, *product.PriceDiscount)
	assert.Equal(t, "Phones - Android", product.Category)
	assert.Equal(t, []uint{f.android, f.chargers}, product.SubcategoryIDs)
	require.Len(t, product.Subcategories, 2)
	assert.Equal(t, CategoryRef{ID: f.phonesCat, Name: "Phones"}, product.Subcategories[0].Category)
	assert.Equal(t, "Accessories", product.Subcategories[1].Category.Name)
	assert.Equal(t, "Accessories - Chargers", product.Subcategories[1].Label)
	assert.Equal(t, []string{"https://cdn.example.com/s24-front.jpg", "https://cdn.example.com/s24-back.jpg"}, product.Images)
	require.Len(t, product.AttributeValues, 2)
	assert.Equal(t, "Screen size", product.AttributeValues[0].Name)
	assert.Equal(t, "Display", product.AttributeValues[0].GroupName)
}

func TestProductController_Create_Rejected(t *testing.T) {
	f := setupProductControllerTest(t)
	f.createProduct(t, gin.H{"name": "Pixel 8", "code": "GOO-P8", "price": 699.0, "subcategoryIds": []uint{f.android}})

	tests := []struct {
		name       string
		body       gin.H
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "zero price",
			body:       gin.H{"name": "Free", "code": "FREE", "price": 0, "subcategoryIds": []uint{f.android}},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ValidationInvalidInput,
			wantField:  "price",
		},
		{
			name:       "discount above price",
			body:       gin.H{"name": "Odd", "code": "ODD", "price": 10, "priceDiscount": 12, "subcategoryIds": []uint{f.android}},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ValidationInvalidInput,
			wantField:  "priceDiscount",
		},
		{
			name:       "no subcategory",
			body:       gin.H{"name": "Loose", "code": "LOOSE", "price": 10},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ValidationInvalidInput,
			wantField:  "subcategoryIds",
		},
		{
			name:       "duplicate code",
			body:       gin.H{"name": "Pixel 8 copy", "code": "GOO-P8", "price": 699.0, "subcategoryIds": []uint{f.android}},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ValidationDuplicate,
			wantField:  "code",
		},
		{
			name:       "unknown subcategory",
			body:       gin.H{"name": "Ghost", "code": "GHOST", "price": 10, "subcategoryIds": []uint{999}},
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.SubcategoryNotFound,
		},
		{
			name: "unknown attribute",
			body: gin.H{"name": "Ghost", "code": "GHOST", "price": 10, "subcategoryIds": []uint{f.android},
				"attributeValues": []gin.H{{"attributeId": 999, "value": "x"}}},
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.AttributeNotFound,
		},
		{
			name:       "malformed body",
			body:       gin.H{"name": "Bad", "price": "cheap"},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ValidationInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.api.do(t, http.MethodPost, "/api/v1/catalog/products", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			var body errorBody
			decode(t, w, &body)
			assert.Equal(t, tt.wantCode, body.Error)
			assert.Equal(t, tt.wantStatus, body.StatusCode)
			if tt.wantField != "" {
				assert.Contains(t, body.Fields, tt.wantField)
			}
		})
	}
}

func TestProductController_GetProduct_NotFound(t *testing.T) {
	f := setupProductControllerTest(t)

	w := f.api.do(t, http.MethodGet, "/api/v1/catalog/products/404", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body errorBody
	decode(t, w, &body)
	assert.Equal(t, apperrors.ProductNotFound, body.Error)
	assert.True(t, strings.HasPrefix(body.Message, "record unavailable"))

	w = f.api.do(t, http.MethodGet, "/api/v1/catalog/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	decode(t, w, &body)
	assert.Equal(t, apperrors.ValidationInvalidID, body.Error)
}

func TestProductController_ListProducts(t *testing.T) {
	f := setupProductControllerTest(t)
	for i := 0; i < 12; i++ {
		f.createProduct(t, gin.H{
			"name":           fmt.Sprintf("Phone %02d", i),
			"code":           fmt.Sprintf("PH-%02d", i),
			"price":          float64(100 + i*10),
			"subcategoryIds": []uint{f.android},
		})
	}
	f.createProduct(t, gin.H{"name": "USB-C Charger", "code": "CH-1", "price": 25.0, "subcategoryIds": []uint{f.chargers}})

	var page struct {
		Rows     []ProductResponse    `json:"rows"`
		Metadata service.PageMetadata `json:"metadata"`
	}

	w := f.api.do(t, http.MethodGet, "/api/v1/catalog/products?perPage=5&page=3&categoryId="+fmt.Sprint(f.phonesCat)+"&sort=name", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &page)
	assert.Equal(t, int64(12), page.Metadata.TotalItems)
	assert.Equal(t, 3, page.Metadata.TotalPages)
	assert.Nil(t, page.Metadata.NextPage)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "Phone 10", page.Rows[0].Name)
	assert.Equal(t, "Phones - Android", page.Rows[0].Category)
	assert.Empty(t, page.Rows[0].AttributeValues)

	w = f.api.do(t, http.MethodGet, "/api/v1/catalog/products?search=charger&minPrice=10&maxPrice=30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &page)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "CH-1", page.Rows[0].Code)
	assert.Equal(t, "charger", page.Metadata.SearchTerm)

	w = f.api.do(t, http.MethodGet, "/api/v1/catalog/products?search=nothing-like-this", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rows":[]`)

	w = f.api.do(t, http.MethodGet, "/api/v1/catalog/products?perPage=7", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body errorBody
	decode(t, w, &body)
	assert.Contains(t, body.Fields, "perPage")
}

func TestProductController_UpdateProduct(t *testing.T) {
	f := setupProductControllerTest(t)
	id := f.createProduct(t, gin.H{
		"name":           "Moto G",
		"code":           "MOT-G",
		"price":          199.0,
		"subcategoryIds": []uint{f.android},
		"attributeValues": []gin.H{
			{"attributeId": f.size, "value": "6.5 in"},
			{"attributeId": f.capacity, "value": "5000 mAh"},
		},
	})
	path := fmt.Sprintf("/api/v1/catalog/products/%d", id)

	w := f.api.do(t, http.MethodPatch, path, gin.H{
		"name": "Moto G Power",
		"attributeValues": []gin.H{
			{"attributeId": f.size, "value": "6.5 in"},
			{"attributeId": f.capacity, "value": ""},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"statusCode":200`)

	var product ProductResponse
	decode(t, f.api.do(t, http.MethodGet, path, nil), &product)
	assert.Equal(t, "Moto G Power", product.Name)
	assert.Equal(t, "MOT-G", product.Code)
	assert.Equal(t, []uint{f.android}, product.SubcategoryIDs)
	require.Len(t, product.AttributeValues, 1)
	assert.Equal(t, f.size, product.AttributeValues[0].AttributeID)

	w = f.api.do(t, http.MethodPatch, path, gin.H{"priceDiscount": 250.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.api.do(t, http.MethodPatch, "/api/v1/catalog/products/999", gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductController_DeleteProduct(t *testing.T) {
	f := setupProductControllerTest(t)
	id := f.createProduct(t, gin.H{"name": "Nokia 3310", "code": "NOK-3310", "price": 49.0, "subcategoryIds": []uint{f.android}})
	path := fmt.Sprintf("/api/v1/catalog/products/%d", id)

	w := f.api.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, f.api.do(t, http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.api.do(t, http.MethodDelete, path, nil).Code)

	// the code is free again once the holder is deleted
	f.createProduct(t, gin.H{"name": "Nokia 3310 (2017)", "code": "NOK-3310", "price": 59.0, "subcategoryIds": []uint{f.android}})
}

func TestProductController_GetProductAttributes(t *testing.T) {
	f := setupProductControllerTest(t)
	id := f.createProduct(t, gin.H{
		"name":            "iPad",
		"code":            "APL-IPAD",
		"price":           499.0,
		"subcategoryIds":  []uint{f.android},
		"attributeValues": []gin.H{{"attributeId": f.size, "value": "10.9 in"}},
	})

	w := f.api.do(t, http.MethodGet, fmt.Sprintf("/api/v1/catalog/products/%d/attributes", id), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view service.AttributeView
	decode(t, w, &view)
	assert.Equal(t, id, view.ProductID)
	assert.Equal(t, []uint{f.display}, view.DetectedGroupIDs)
	assert.Equal(t, []uint{f.display}, view.VisibleGroupIDs)
	require.Len(t, view.Groups, 2)

	// groups come back by name
	battery, display := view.Groups[0], view.Groups[1]
	assert.Equal(t, f.battery, battery.ID)
	assert.False(t, battery.Visible)
	assert.Equal(t, "", battery.Attributes[0].Value)
	assert.Equal(t, f.display, display.ID)
	assert.True(t, display.Visible)
	assert.Equal(t, "10.9 in", display.Attributes[0].Value)
}
