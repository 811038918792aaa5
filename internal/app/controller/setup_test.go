package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/movilstore/catalog-backend/internal/app/repository"
	"github.com/movilstore/catalog-backend/internal/app/service"
	"github.com/movilstore/catalog-backend/internal/db"
	"github.com/stretchr/testify/require"
)

type catalogAPI struct {
	router     *gin.Engine
	attributes service.AttributeService
	categories service.CategoryService
}

// setupCatalogAPI wires the catalog controllers over an in-memory store,
// mounting the same paths the router does without the auth layer.
func setupCatalogAPI(t *testing.T, policy service.DeletePolicy) *catalogAPI {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	attributeRepo := repository.NewAttributeRepository(testDB, nil)
	categoryRepo := repository.NewCategoryRepository(testDB, nil)
	productRepo := repository.NewProductRepository(testDB)

	attributeService := service.NewAttributeService(attributeRepo, policy)
	categoryService := service.NewCategoryService(categoryRepo, policy)
	productService := service.NewProductService(productRepo, categoryRepo, attributeRepo)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)

	products := NewProductController(productService, catalogService)
	attributes := NewAttributeController(attributeService)
	categories := NewCategoryController(categoryService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	catalog := router.Group("/api/v1/catalog")

	catalog.GET("/products", products.ListProducts)
	catalog.POST("/products", products.CreateProduct)
	catalog.GET("/products/:id", products.GetProduct)
	catalog.PATCH("/products/:id", products.UpdateProduct)
	catalog.DELETE("/products/:id", products.DeleteProduct)
	catalog.GET("/products/:id/attributes", products.GetProductAttributes)

	catalog.GET("/attributes/groups", attributes.ListGroups)
	catalog.POST("/attributes/groups", attributes.CreateGroup)
	catalog.GET("/attributes/groups/:id", attributes.GetGroup)
	catalog.PATCH("/attributes/groups/:id", attributes.RenameGroup)
	catalog.DELETE("/attributes/groups/:id", attributes.DeleteGroup)
	catalog.POST("/attributes", attributes.CreateAttribute)
	catalog.GET("/attributes/by-group/:groupId", attributes.ListAttributesByGroup)
	catalog.GET("/attributes/:id", attributes.GetAttribute)
	catalog.PATCH("/attributes/:id", attributes.UpdateAttribute)
	catalog.DELETE("/attributes/:id", attributes.DeleteAttribute)

	catalog.GET("/categories/tree", categories.Tree)
	catalog.GET("/categories", categories.ListCategories)
	catalog.POST("/categories", categories.CreateCategory)
	catalog.POST("/categories/subcategories", categories.CreateSubcategory)
	catalog.GET("/categories/subcategories/by-category/:categoryId", categories.ListSubcategoriesByCategory)
	catalog.GET("/categories/subcategories/:id", categories.GetSubcategory)
	catalog.PATCH("/categories/subcategories/:id", categories.UpdateSubcategory)
	catalog.DELETE("/categories/subcategories/:id", categories.DeleteSubcategory)
	catalog.GET("/categories/:id", categories.GetCategory)
	catalog.PATCH("/categories/:id", categories.UpdateCategory)
	catalog.DELETE("/categories/:id", categories.DeleteCategory)

	return &catalogAPI{
		router:     router,
		attributes: attributeService,
		categories: categoryService,
	}
}

func (a *catalogAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// createdID posts body and returns the id of the created record.
func (a *catalogAPI) createdID(t *testing.T, path string, body interface{}) uint {
	w := a.do(t, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ID         uint `json:"id"`
		StatusCode int  `json:"statusCode"`
	}
	decode(t, w, &resp)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return resp.ID
}

type errorBody struct {
	Error      string            `json:"error"`
	Message    string            `json:"message"`
	StatusCode int               `json:"statusCode"`
	Fields     map[string]string `json:"fields"`
}
