package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/movilstore/catalog-backend/internal/errors"
	"github.com/movilstore/catalog-backend/internal/middleware"
)

// parseIDParam reads a positive uint path parameter. On failure it writes a
// 400 and returns false.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid id parameter", map[string]interface{}{
			"param": name,
			"value": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds the request body. On failure it writes a 400 and returns false.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, err.Error())
		return false
	}
	return true
}

func respondCreated(c *gin.Context, message string, id uint) {
	c.JSON(http.StatusCreated, gin.H{
		"message":    message,
		"statusCode": http.StatusCreated,
		"id":         id,
	})
}

func respondOK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"message":    message,
		"statusCode": http.StatusOK,
	})
}
