package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const contextClaimsKey = "authClaims"

// RequireAuth validates the bearer token and stores the claims on the gin
// context for downstream handlers.
func RequireAuth(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := svc.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		SetClaims(c, claims)
		c.Next()
	}
}

// RequireRole must run after RequireAuth. Admins pass every role check.
func RequireRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing auth context"})
			return
		}
		if claims.Role == RoleAdmin {
			c.Next()
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// SetClaims attaches verified claims to the request context.
func SetClaims(c *gin.Context, claims *Claims) {
	c.Set(contextClaimsKey, claims)
}

func ClaimsFromContext(c *gin.Context) (*Claims, bool) {
	value, exists := c.Get(contextClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}
