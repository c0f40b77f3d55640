// auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"course-order-service/internal/service"

	"github.com/gin-gonic/gin"
)

// TokenValidator lo implementa service.AuthService; es interfaz para poder
// stubear auth en los tests de controller.
type TokenValidator interface {
	ValidateToken(token string) (*service.AuthUser, error)
}

// Middleware que valida el token y guarda la info del usuario en el contexto
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)
		user, err := validator.ValidateToken(token)

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		// Guardamos los datos del usuario en el contexto
		c.Set("userID", user.ID)
		c.Set("userName", user.Name)
		c.Set("userEmail", user.Email)
		c.Set("userPhone", user.Phone)
		c.Set("userRole", user.Role)
		c.Set("isAdmin", user.IsAdmin())
		c.Next()
	}
}
