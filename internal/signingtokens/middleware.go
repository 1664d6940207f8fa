package signingtokens

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/shared/server/middleware"
	"kingsign-backend/internal/shared/server/respond"
)

const claimsKey = "capabilityClaims"

// Middleware authenticates public signing routes by capability token and
// scopes the request to the token's document and contact.
func Middleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		token, ok := middleware.BearerToken(c)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
			return
		}

		claims, err := svc.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, ErrTokenExpired):
				respond.Error(c, http.StatusForbidden, "token_expired", "Token has expired", nil)
			case errors.Is(err, ErrConfiguration):
				respond.Error(c, http.StatusInternalServerError, "internal_error", "Token verification unavailable", nil)
			default:
				respond.Error(c, http.StatusForbidden, "invalid_token", "Invalid token", nil)
			}
			return
		}

		c.Set(claimsKey, claims)
		c.Set("documentId", claims.DocumentID)
		c.Set("contactId", claims.ContactID)
		c.Next()
	}
}

// FromContext returns the capability claims set by Middleware.
func FromContext(c *gin.Context) (Claims, bool) {
	val, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := val.(Claims)
	return claims, ok
}
