package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smpconsole/subscription-tracker/internal/domain"
)

const principalKey = "principal"

// Principal resolves the acting principal from the authenticated identity
// headers set by the gateway in front of this service. X-User-ID carries
// the user's uuid; X-User-Role "admin" grants the elevated scope.
func Principal() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid X-User-ID header"})
			return
		}
		c.Set(principalKey, domain.Principal{
			ID:        id,
			Superuser: c.GetHeader("X-User-Role") == "admin",
		})
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by the Principal middleware.
func PrincipalFrom(c *gin.Context) domain.Principal {
	value, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}
	}
	principal, _ := value.(domain.Principal)
	return principal
}
