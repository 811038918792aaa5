package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/movilstore/catalog-backend/internal/app/service"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/movilstore/catalog-backend/internal/middleware"
)

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{
		categoryService: categoryService,
	}
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

type CreateSubcategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CategoryID  uint   `json:"categoryId" binding:"required"`
	IsActive    *bool  `json:"isActive"`
}

type UpdateSubcategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CategoryID  *uint   `json:"categoryId"`
	IsActive    *bool   `json:"isActive"`
}

// Tree returns every category with its subcategories
// GET /api/v1/catalog/categories/tree
func (ctrl *CategoryController) Tree(c *gin.Context) {
	tree, err := ctrl.categoryService.Tree(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to load category tree", err, nil)
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, tree)
}

// ListCategories returns the categories without their children
// GET /api/v1/catalog/categories
func (ctrl *CategoryController) ListCategories(c *gin.Context) {
	categories, err := ctrl.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategory returns one category
// GET /api/v1/catalog/categories/:id
func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := ctrl.categoryService.GetCategory(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// CreateCategory creates a category
// POST /api/v1/catalog/categories
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := ctrl.categoryService.CreateCategory(c.Request.Context(), service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to create category", map[string]interface{}{
			"name":  req.Name,
			"error": err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	respondCreated(c, "category created", category.ID)
}

// UpdateCategory updates a category
// PATCH /api/v1/catalog/categories/:id
func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := ctrl.categoryService.UpdateCategory(c.Request.Context(), id, service.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	respondOK(c, "category updated")
}

// DeleteCategory deletes a category under the configured delete policy
// DELETE /api/v1/catalog/categories/:id
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to delete category", map[string]interface{}{
			"category_id": id,
			"error":       err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	respondOK(c, "category deleted")
}

// GetSubcategory returns one subcategory with its parent
// GET /api/v1/catalog/categories/subcategories/:id
func (ctrl *CategoryController) GetSubcategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	sub, err := ctrl.categoryService.GetSubcategory(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// ListSubcategoriesByCategory returns the children of one category
// GET /api/v1/catalog/categories/subcategories/by-category/:categoryId
func (ctrl *CategoryController) ListSubcategoriesByCategory(c *gin.Context) {
	categoryID, ok := parseIDParam(c, "categoryId")
	if !ok {
		return
	}

	subs, err := ctrl.categoryService.ListSubcategoriesByCategory(c.Request.Context(), categoryID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, subs)
}

// CreateSubcategory creates a subcategory under an existing category
// POST /api/v1/catalog/categories/subcategories
func (ctrl *CategoryController) CreateSubcategory(c *gin.Context) {
	var req CreateSubcategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	sub, err := ctrl.categoryService.CreateSubcategory(c.Request.Context(), service.SubcategoryInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to create subcategory", map[string]interface{}{
			"category_id": req.CategoryID,
			"error":       err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	respondCreated(c, "subcategory created", sub.ID)
}

// UpdateSubcategory updates or re-parents a subcategory
// PATCH /api/v1/catalog/categories/subcategories/:id
func (ctrl *CategoryController) UpdateSubcategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateSubcategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := ctrl.categoryService.UpdateSubcategory(c.Request.Context(), id, service.SubcategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	respondOK(c, "subcategory updated")
}

// DeleteSubcategory deletes a subcategory under the configured delete policy
// DELETE /api/v1/catalog/categories/subcategories/:id
func (ctrl *CategoryController) DeleteSubcategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.categoryService.DeleteSubcategory(c.Request.Context(), id); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to delete subcategory", map[string]interface{}{
			"subcategory_id": id,
			"error":          err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	respondOK(c, "subcategory deleted")
}
