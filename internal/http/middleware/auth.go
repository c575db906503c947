package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/supporthub/backend/internal/auth"
	"github.com/supporthub/backend/internal/models"
)

// IdentityKey is where RequireAuth stores the resolved auth.Identity in the
// gin context.
const IdentityKey = "identity"

// RequireAuth resolves the bearer token into an identity and aborts with 401
// when there is none.
func RequireAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		ident, err := svc.Identify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Authentication required",
				},
			})
			return
		}
		c.Set(IdentityKey, ident)
		c.Next()
	}
}

// RequireShiftLead gates the reporting surface. It must run after
// RequireAuth.
func RequireShiftLead() gin.HandlerFunc {
	return func(c *gin.Context) {
		ident := MustIdentity(c)
		if ident.Role != models.RoleShiftLead {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Shift lead role required",
				},
			})
			return
		}
		c.Next()
	}
}

// MustIdentity returns the identity RequireAuth installed; calling it from a
// route outside the authenticated group is a programming error.
func MustIdentity(c *gin.Context) auth.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return auth.Identity{}
	}
	ident, _ := v.(auth.Identity)
	return ident
}

// BearerToken strips the Bearer scheme off an Authorization header; any
// other scheme yields an empty token.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
