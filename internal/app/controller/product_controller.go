package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/internal/app/service"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/movilstore/catalog-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
	catalogService service.CatalogService
}

func NewProductController(productService service.ProductService, catalogService service.CatalogService) *ProductController {
	return &ProductController{
		productService: productService,
		catalogService: catalogService,
	}
}

type AttributeValueRequest struct {
	AttributeID uint   `json:"attributeId" binding:"required"`
	Value       string `json:"value"`
}

// CreateProductRequest carries no field rules; the product service checks them.
type CreateProductRequest struct {
	Name            string                  `json:"name"`
	Code            string                  `json:"code"`
	Description     string                  `json:"description"`
	Price           float64                 `json:"price"`
	PriceDiscount   *float64                `json:"priceDiscount"`
	Stock           int                     `json:"stock"`
	IsActive        *bool                   `json:"isActive"`
	Images          []string                `json:"images"`
	SubcategoryIDs  []uint                  `json:"subcategoryIds"`
	AttributeValues []AttributeValueRequest `json:"attributeValues" binding:"dive"`
	VisibleGroupIDs []uint                  `json:"visibleGroupIds"`
}

// UpdateProductRequest is a partial update. Omitted collections are kept,
// present ones replace the stored collection.
type UpdateProductRequest struct {
	Name            *string                  `json:"name"`
	Code            *string                  `json:"code"`
	Description     *string                  `json:"description"`
	Price           *float64                 `json:"price"`
	PriceDiscount   *float64                 `json:"priceDiscount"`
	Stock           *int                     `json:"stock"`
	IsActive        *bool                    `json:"isActive"`
	Images          *[]string                `json:"images"`
	SubcategoryIDs  *[]uint                  `json:"subcategoryIds"`
	AttributeValues *[]AttributeValueRequest `json:"attributeValues"`
	VisibleGroupIDs *[]uint                  `json:"visibleGroupIds"`
}

type CategoryRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// SubcategoryRef is a product link with its owning category resolved.
type SubcategoryRef struct {
	ID         uint        `json:"id"`
	Name       string      `json:"name"`
	CategoryID uint        `json:"categoryId"`
	Category   CategoryRef `json:"category"`
	Label      string      `json:"label"`
}

type AttributeValueResponse struct {
	AttributeID uint   `json:"attributeId"`
	Name        string `json:"name"`
	GroupID     uint   `json:"groupId"`
	GroupName   string `json:"groupName"`
	Value       string `json:"value"`
}

// ProductResponse is the flattened product shape; catalog rows leave
// attributeValues out.
type ProductResponse struct {
	ID              uint                     `json:"id"`
	Name            string                   `json:"name"`
	Code            string                   `json:"code"`
	Description     string                   `json:"description"`
	Price           float64                  `json:"price"`
	PriceDiscount   *float64                 `json:"priceDiscount"`
	Stock           int                      `json:"stock"`
	IsActive        bool                     `json:"isActive"`
	Category        string                   `json:"category"`
	Images          []string                 `json:"images"`
	SubcategoryIDs  []uint                   `json:"subcategoryIds"`
	Subcategories   []SubcategoryRef         `json:"subcategories"`
	AttributeValues []AttributeValueResponse `json:"attributeValues,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

func newProductResponse(p *model.Product) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Code:           p.Code,
		Description:    p.Description,
		Price:          p.Price,
		PriceDiscount:  p.PriceDiscount,
		Stock:          p.Stock,
		IsActive:       p.IsActive,
		Category:       p.CategoryLabel(),
		Images:         p.ImageURLs(),
		SubcategoryIDs: p.SubcategoryIDs(),
		Subcategories:  make([]SubcategoryRef, 0, len(p.Subcategories)),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	for _, link := range p.Subcategories {
		if link.Subcategory == nil {
			continue
		}
		ref := SubcategoryRef{
			ID:         link.Subcategory.ID,
			Name:       link.Subcategory.Name,
			CategoryID: link.Subcategory.CategoryID,
			Category:   CategoryRef{ID: link.Subcategory.CategoryID},
			Label:      link.Subcategory.Label(),
		}
		if link.Subcategory.Category != nil {
			ref.Category.Name = link.Subcategory.Category.Name
		}
		resp.Subcategories = append(resp.Subcategories, ref)
	}
	for _, v := range p.AttributeValues {
		value := AttributeValueResponse{AttributeID: v.AttributeID, Value: v.Value}
		if v.Attribute != nil {
			value.Name = v.Attribute.Name
			value.GroupID = v.Attribute.AttributeGroupID
			if v.Attribute.AttributeGroup != nil {
				value.GroupName = v.Attribute.AttributeGroup.Name
			}
		}
		resp.AttributeValues = append(resp.AttributeValues, value)
	}
	return resp
}

func toValueInputs(reqs []AttributeValueRequest) []service.AttributeValueInput {
	inputs := make([]service.AttributeValueInput, 0, len(reqs))
	for _, r := range reqs {
		inputs = append(inputs, service.AttributeValueInput{AttributeID: r.AttributeID, Value: r.Value})
	}
	return inputs
}

// ListProducts returns one catalog page
// GET /api/v1/catalog/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	params, err := service.ParseQueryParams(c.Request.URL.Query())
	if err != nil {
		log.Warn("Invalid catalog query", map[string]interface{}{
			"query": c.Request.URL.RawQuery,
			"error": err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	page, err := ctrl.catalogService.Query(c.Request.Context(), params)
	if err != nil {
		log.Error("Failed to query catalog", err, map[string]interface{}{
			"query": params.Encode(),
		})
		apperrors.Respond(c, err)
		return
	}

	rows := make([]ProductResponse, 0, len(page.Rows))
	for i := range page.Rows {
		rows = append(rows, newProductResponse(&page.Rows[i]))
	}

	log.Info("Catalog page fetched", map[string]interface{}{
		"page":  page.Metadata.CurrentPage,
		"count": len(rows),
		"total": page.Metadata.TotalItems,
	})

	c.JSON(http.StatusOK, gin.H{
		"rows":     rows,
		"metadata": page.Metadata,
	})
}

// GetProduct returns a product by ID
// GET /api/v1/catalog/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		middleware.GetLoggerFromContext(c).Warn("Product lookup failed", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, newProductResponse(product))
}

// CreateProduct creates a product with its images, subcategory links and attribute values
// POST /api/v1/catalog/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	draft := service.ProductDraft{
		Name:            req.Name,
		Code:            req.Code,
		Description:     req.Description,
		Price:           req.Price,
		PriceDiscount:   req.PriceDiscount,
		Stock:           req.Stock,
		IsActive:        req.IsActive,
		Images:          req.Images,
		SubcategoryIDs:  req.SubcategoryIDs,
		AttributeValues: toValueInputs(req.AttributeValues),
		VisibleGroupIDs: req.VisibleGroupIDs,
	}

	product, err := ctrl.productService.Create(c.Request.Context(), draft)
	if err != nil {
		log.Warn("Failed to create product", map[string]interface{}{
			"code":  req.Code,
			"error": err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	log.Info("Product created successfully", map[string]interface{}{
		"product_id": product.ID,
		"code":       product.Code,
	})

	respondCreated(c, "product created", product.ID)
}

// UpdateProduct applies a partial update
// PATCH /api/v1/catalog/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !bindJSON(c, &req) {
		return
	}

	patch := service.ProductPatch{
		Name:            req.Name,
		Code:            req.Code,
		Description:     req.Description,
		Price:           req.Price,
		PriceDiscount:   req.PriceDiscount,
		Stock:           req.Stock,
		IsActive:        req.IsActive,
		Images:          req.Images,
		SubcategoryIDs:  req.SubcategoryIDs,
		VisibleGroupIDs: req.VisibleGroupIDs,
	}
	if req.AttributeValues != nil {
		values := toValueInputs(*req.AttributeValues)
		patch.AttributeValues = &values
	}

	if _, err := ctrl.productService.Update(c.Request.Context(), id, patch); err != nil {
		log.Warn("Failed to update product", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	log.Info("Product updated successfully", map[string]interface{}{
		"product_id": id,
	})

	respondOK(c, "product updated")
}

// DeleteProduct soft-deletes a product
// DELETE /api/v1/catalog/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.Delete(c.Request.Context(), id); err != nil {
		log.Warn("Failed to delete product", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	log.Info("Product deleted successfully", map[string]interface{}{
		"product_id": id,
	})

	respondOK(c, "product deleted")
}

// GetProductAttributes returns the projected attribute editor of a product
// GET /api/v1/catalog/products/:id/attributes
func (ctrl *ProductController) GetProductAttributes(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := ctrl.productService.AttributeView(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}
