package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/agrosub/agrosub-backend/internal/logger"
	"github.com/agrosub/agrosub-backend/internal/requestdata"
)

// Authenticator is the narrow surface the guard needs; the auth service
// satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*requestdata.RequestData, error)
}

type AuthMiddleware struct {
	log  *logger.Logger
	auth Authenticator
}

func NewAuthMiddleware(log *logger.Logger, auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{
		log:  log.With("middleware", "AuthMiddleware"),
		auth: auth,
	}
}

// Guard classifies the request exactly once: missing or invalid credentials
// abort with 401, a failed predicate aborts with 403, otherwise the resolved
// identity is attached to the request context. The elevated variant is the
// same guard with an admin predicate, not a second code path.
func (am *AuthMiddleware) Guard(predicate func(*requestdata.RequestData) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		rd, err := am.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if predicate != nil && !predicate(rd) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Request = c.Request.WithContext(requestdata.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// RequireAuth admits any authenticated session.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return am.Guard(nil)
}

// RequireAdmin admits only sessions whose user is in the privileged table.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return am.Guard(func(rd *requestdata.RequestData) bool {
		return rd.IsAdmin
	})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
