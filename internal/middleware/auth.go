package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/salmalteam/salmal/backend/internal/auth"
)

// MemberIDKey is the gin context key holding the authenticated member id.
const MemberIDKey = "member_id"

// AuthMiddleware requires a valid bearer access token.
func AuthMiddleware(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Authorization header required"})
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "error": "Invalid authorization header format"})
			return
		}

		claims, err := issuer.Parse(token, auth.AccessToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "error": "Invalid or expired token"})
			return
		}

		c.Set(MemberIDKey, claims.MemberID)
		c.Next()
	}
}

// MemberID returns the id set by AuthMiddleware.
func MemberID(c *gin.Context) (int, bool) {
	id, ok := c.Get(MemberIDKey)
	if !ok {
		return 0, false
	}
	memberID, ok := id.(int)
	return memberID, ok
}
