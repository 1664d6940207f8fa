package workspaces

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/shared/server/middleware"
	"kingsign-backend/internal/shared/server/respond"
)

// RequireOwner scopes a session route to the :workspaceId path parameter.
// Unknown workspaces and workspaces of other users both answer 404.
func RequireOwner(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := svc.GetOwned(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("workspaceId"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				respond.Error(c, http.StatusNotFound, "not_found", "workspace not found", nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load workspace", nil)
			return
		}
		middleware.SetWorkspaceID(c, ws.ID)
		c.Next()
	}
}
