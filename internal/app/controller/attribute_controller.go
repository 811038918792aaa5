package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/movilstore/catalog-backend/internal/app/service"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/movilstore/catalog-backend/internal/middleware"
)

type AttributeController struct {
	attributeService service.AttributeService
}

func NewAttributeController(attributeService service.AttributeService) *AttributeController {
	return &AttributeController{
		attributeService: attributeService,
	}
}

type GroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateAttributeRequest struct {
	Name    string `json:"name" binding:"required"`
	GroupID uint   `json:"attributeGroupId" binding:"required"`
	Order   int    `json:"order"`
}

type UpdateAttributeRequest struct {
	Name    *string `json:"name"`
	GroupID *uint   `json:"attributeGroupId"`
	Order   *int    `json:"order"`
}

// ListGroups returns every attribute group with its attributes in order
// GET /api/v1/catalog/attributes/groups
func (ctrl *AttributeController) ListGroups(c *gin.Context) {
	groups, err := ctrl.attributeService.ListGroups(c.Request.Context())
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list attribute groups", err, nil)
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// GetGroup returns one attribute group
// GET /api/v1/catalog/attributes/groups/:id
func (ctrl *AttributeController) GetGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	group, err := ctrl.attributeService.GetGroup(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// CreateGroup creates an attribute group
// POST /api/v1/catalog/attributes/groups
func (ctrl *AttributeController) CreateGroup(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GroupRequest
	if !bindJSON(c, &req) {
		return
	}

	group, err := ctrl.attributeService.CreateGroup(c.Request.Context(), req.Name)
	if err != nil {
		log.Warn("Failed to create attribute group", map[string]interface{}{
			"name":  req.Name,
			"error": err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	respondCreated(c, "attribute group created", group.ID)
}

// RenameGroup renames an attribute group
// PATCH /api/v1/catalog/attributes/groups/:id
func (ctrl *AttributeController) RenameGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req GroupRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := ctrl.attributeService.RenameGroup(c.Request.Context(), id, req.Name); err != nil {
		apperrors.Respond(c, err)
		return
	}

	respondOK(c, "attribute group updated")
}

// DeleteGroup deletes an attribute group under the configured delete policy
// DELETE /api/v1/catalog/attributes/groups/:id
func (ctrl *AttributeController) DeleteGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.attributeService.DeleteGroup(c.Request.Context(), id); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to delete attribute group", map[string]interface{}{
			"group_id": id,
			"error":    err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	respondOK(c, "attribute group deleted")
}

// CreateAttribute creates an attribute inside a group
// POST /api/v1/catalog/attributes
func (ctrl *AttributeController) CreateAttribute(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateAttributeRequest
	if !bindJSON(c, &req) {
		return
	}

	attr, err := ctrl.attributeService.CreateAttribute(c.Request.Context(), service.AttributeInput{
		Name:    req.Name,
		GroupID: req.GroupID,
		Order:   req.Order,
	})
	if err != nil {
		log.Warn("Failed to create attribute", map[string]interface{}{
			"group_id": req.GroupID,
			"error":    err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	respondCreated(c, "attribute created", attr.ID)
}

// GetAttribute returns one attribute
// GET /api/v1/catalog/attributes/:id
func (ctrl *AttributeController) GetAttribute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attr, err := ctrl.attributeService.GetAttribute(c.Request.Context(), id)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, attr)
}

// UpdateAttribute renames, reorders or moves an attribute
// PATCH /api/v1/catalog/attributes/:id
func (ctrl *AttributeController) UpdateAttribute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAttributeRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := ctrl.attributeService.UpdateAttribute(c.Request.Context(), id, service.AttributeUpdate{
		Name:    req.Name,
		Order:   req.Order,
		GroupID: req.GroupID,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	respondOK(c, "attribute updated")
}

// DeleteAttribute deletes an attribute under the configured delete policy
// DELETE /api/v1/catalog/attributes/:id
func (ctrl *AttributeController) DeleteAttribute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.attributeService.DeleteAttribute(c.Request.Context(), id); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to delete attribute", map[string]interface{}{
			"attribute_id": id,
			"error":        err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	respondOK(c, "attribute deleted")
}

// ListAttributesByGroup returns the attributes of one group in order
// GET /api/v1/catalog/attributes/by-group/:groupId
func (ctrl *AttributeController) ListAttributesByGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "groupId")
	if !ok {
		return
	}

	attrs, err := ctrl.attributeService.ListAttributesByGroup(c.Request.Context(), groupID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, attrs)
}
