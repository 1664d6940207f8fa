package middleware

import "github.com/gin-gonic/gin"

const workspaceIDKey = "workspaceId"

// SetWorkspaceID records the workspace a request is scoped to.
func SetWorkspaceID(c *gin.Context, workspaceID string) {
	c.Set(workspaceIDKey, workspaceID)
}

// WorkspaceIDFromContext returns the workspace set by the owner check or the API key middleware.
func WorkspaceIDFromContext(c *gin.Context) string {
	return stringFromContext(c, workspaceIDKey)
}
