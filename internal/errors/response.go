package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error      string            `json:"error"`
	Message    string            `json:"message"`
	StatusCode int               `json:"statusCode"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// RespondWithError writes an error body with an explicit status and code.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:      errorCode,
		Message:    message,
		StatusCode: statusCode,
	})
}

// Respond classifies err and writes the matching error body.
func Respond(c *gin.Context, err error) {
	info := ParseError(err)
	c.JSON(info.Status, ErrorResponse{
		Error:      info.Code,
		Message:    info.Message,
		StatusCode: info.Status,
		Fields:     info.Fields,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "a bearer credential is required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

// RespondWithValidationError reports several invalid fields at once.
func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:      ValidationInvalidInput,
		Message:    "invalid input",
		StatusCode: http.StatusBadRequest,
		Fields:     fields,
	})
}
