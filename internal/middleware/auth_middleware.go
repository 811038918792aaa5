package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/movilstore/catalog-backend/internal/errors"
	"github.com/movilstore/catalog-backend/pkg/util"
)

// Context keys for caller information
const (
	SubjectKey   = "subject"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
)

// AuthMiddleware checks the bearer credential handed over by the identity
// service. With an empty secret any non-empty credential is accepted.
type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// Authenticate requires an Authorization: Bearer header
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.Unauthorized(c, "authorization header must be in format: Bearer <credential>")
			c.Abort()
			return
		}
		token := parts[1]

		if m.jwtSecret == "" {
			c.Next()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if err == util.ErrExpiredToken {
				errors.Unauthorized(c, "credential has expired")
			} else {
				errors.Unauthorized(c, "invalid credential")
			}
			c.Abort()
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, claims.Role)

		log.Debug("Caller authenticated", map[string]interface{}{
			"subject": claims.Subject,
			"role":    claims.Role,
		})

		c.Next()
	}
}

// GetSubject extracts the credential subject from context
func GetSubject(c *gin.Context) (string, bool) {
	subject, exists := c.Get(SubjectKey)
	if !exists {
		return "", false
	}
	s, ok := subject.(string)
	return s, ok
}

// GetUserRole extracts the caller role from context
func GetUserRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	r, ok := role.(string)
	return r, ok
}
