package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"smartbox-platform/backend/internal/security"
)

// RequireAuth validates the bearer token and stores the caller identity on the
// context. Every failure mode (missing header, malformed scheme, expired or
// forged token) aborts with the same 401 body so callers cannot probe which
// check failed.
func RequireAuth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthenticated(c)
			return
		}
		claims, err := tokens.Validate(token)
		if err != nil {
			abortUnauthenticated(c)
			return
		}
		SetIdentity(c, Identity{
			AccountID: claims.Subject,
			Username:  claims.Username,
			Role:      claims.Role,
		})
		c.Next()
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme comparison is case-insensitive.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
}
