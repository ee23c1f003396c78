package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"salescrm/internal/modules/session"
)

const principalKey = "principal"

// Authenticator resolves a bearer token to the principal of a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (session.Principal, error)
}

// RequireSession rejects requests without a live session and places the
// principal on the gin context.
func RequireSession(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		p, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired session")
			return
		}

		c.Set(principalKey, p)
		c.Set("user_id", p.UserID)
		c.Next()
	}
}

// Principal returns the acting user set by RequireSession, or the zero
// Principal on unauthenticated routes.
func Principal(c *gin.Context) session.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(session.Principal); ok {
			return p
		}
	}
	return session.Principal{}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": message},
	})
}
