// Package middleware holds gin middleware shared across routing groups.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lockd/models"
	"lockd/service/adminauth"
)

// RequireAdminToken returns a middleware that validates a bearer token
// against the admin bootstrap token. It returns 401 Unauthorized if the
// token is missing or does not match.
func RequireAdminToken(authService *adminauth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.JSON(http.StatusUnauthorized, models.Fail("admin bearer token required"))
			c.Abort()
			return
		}

		if !authService.Validate(token) {
			c.JSON(http.StatusUnauthorized, models.Fail("invalid admin token"))
			c.Abort()
			return
		}

		c.Next()
	}
}
