package apikeys

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/shared/server/middleware"
	"kingsign-backend/internal/shared/server/respond"
	"kingsign-backend/internal/shared/telemetry"
)

// WorkspaceKeyLookup returns the API key currently stored for a workspace.
type WorkspaceKeyLookup interface {
	CurrentAPIKey(ctx context.Context, workspaceID string) (string, error)
}

// Middleware authenticates machine-to-machine calls by the ks-api-key header.
// The workspace ID is taken only from the decrypted key, and the key must
// still be the one stored on the workspace so that rotation revokes old keys.
func Middleware(issuer *Issuer, lookup WorkspaceKeyLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(middleware.APIKeyHeader))
		if key == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "API key is required in "+middleware.APIKeyHeader+" header", nil)
			return
		}

		workspaceID, err := issuer.Parse(key)
		if err != nil {
			if errors.Is(err, ErrConfiguration) {
				telemetry.Error("apikeys.codec_unconfigured", map[string]any{
					"request_id": middleware.RequestIDFromContext(c),
				})
				respond.Error(c, http.StatusInternalServerError, "internal_error", "API keys are not configured", nil)
				return
			}
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid API key", nil)
			return
		}

		if lookup != nil {
			current, err := lookup.CurrentAPIKey(c.Request.Context(), workspaceID)
			if err != nil || subtle.ConstantTimeCompare([]byte(current), []byte(key)) != 1 {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid API key", nil)
				return
			}
		}

		middleware.SetWorkspaceID(c, workspaceID)
		c.Next()
	}
}
