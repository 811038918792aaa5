package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/movilstore/catalog-backend/internal/app/model"
	"github.com/movilstore/catalog-backend/internal/app/service"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributeController_GroupLifecycle(t *testing.T) {
	api := setupCatalogAPI(t, service.DeletePolicyBlock)

	id := api.createdID(t, "/api/v1/catalog/attributes/groups", gin.H{"name": "Screen"})
	path := fmt.Sprintf("/api/v1/catalog/attributes/groups/%d", id)

	w := api.do(t, http.MethodPatch, path, gin.H{"name": "Display"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var group model.AttributeGroup
	decode(t, api.do(t, http.MethodGet, path, nil), &group)
	assert.Equal(t, "Display", group.Name)

	w = api.do(t, http.MethodPost, "/api/v1/catalog/attributes/groups", gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	var body errorBody
	decode(t, w, &body)
	assert.Equal(t, apperrors.AttributeGroupNotFound, body.Error)
}

func TestAttributeController_AttributeLifecycle(t *testing.T) {
	api := setupCatalogAPI(t, service.DeletePolicyBlock)

	general := api.createdID(t, "/api/v1/catalog/attributes/groups", gin.H{"name": "General"})
	network := api.createdID(t, "/api/v1/catalog/attributes/groups", gin.H{"name": "Network"})
	api.createdID(t, "/api/v1/catalog/attributes", gin.H{"name": "Weight", "attributeGroupId": general, "order": 2})
	id := api.createdID(t, "/api/v1/catalog/attributes", gin.H{"name": "Brand", "attributeGroupId": general, "order": 1})

	var attrs []model.Attribute
	decode(t, api.do(t, http.MethodGet, fmt.Sprintf("/api/v1/catalog/attributes/by-group/%d", general), nil), &attrs)
	require.Len(t, attrs, 2)
	assert.Equal(t, "Brand", attrs[0].Name)
	assert.Equal(t, "Weight", attrs[1].Name)

	path := fmt.Sprintf("/api/v1/catalog/attributes/%d", id)
	w := api.do(t, http.MethodPatch, path, gin.H{"attributeGroupId": network})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var attr model.Attribute
	decode(t, api.do(t, http.MethodGet, path, nil), &attr)
	assert.Equal(t, network, attr.AttributeGroupID)
	assert.Equal(t, "Brand", attr.Name)

	w = api.do(t, http.MethodPost, "/api/v1/catalog/attributes", gin.H{"name": "Orphan", "attributeGroupId": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodPost, "/api/v1/catalog/attributes", gin.H{"name": "Orphan"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	require.Equal(t, http.StatusOK, api.do(t, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, path, nil).Code)
}

func TestAttributeController_ListGroups(t *testing.T) {
	api := setupCatalogAPI(t, service.DeletePolicyBlock)

	w := api.do(t, http.MethodGet, "/api/v1/catalog/attributes/groups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	battery := api.createdID(t, "/api/v1/catalog/attributes/groups", gin.H{"name": "Battery"})
	api.createdID(t, "/api/v1/catalog/attributes", gin.H{"name": "Capacity", "attributeGroupId": battery})

	var groups []model.AttributeGroup
	decode(t, api.do(t, http.MethodGet, "/api/v1/catalog/attributes/groups", nil), &groups)
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Attributes, 1)
	assert.Equal(t, "Capacity", groups[0].Attributes[0].Name)
}

func TestAttributeController_DeleteGroupInUse(t *testing.T) {
	f := setupProductControllerTest(t)
	f.createProduct(t, gin.H{
		"name":            "Pixel 8",
		"code":            "GOO-P8",
		"price":           699.0,
		"subcategoryIds":  []uint{f.android},
		"attributeValues": []gin.H{{"attributeId": f.capacity, "value": "4575 mAh"}},
	})

	w := f.api.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/catalog/attributes/groups/%d", f.battery), nil)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var body errorBody
	decode(t, w, &body)
	assert.Equal(t, apperrors.ResourceInUse, body.Error)

	w = f.api.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/catalog/attributes/%d", f.capacity), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// an unused attribute can still go
	w = f.api.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/catalog/attributes/%d", f.size), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
