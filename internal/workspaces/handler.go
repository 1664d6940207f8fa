package workspaces

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/apikeys"
	"kingsign-backend/internal/shared/server/middleware"
	"kingsign-backend/internal/shared/server/respond"
	"kingsign-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches workspace routes to a session-authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/workspaces", h.create)
	rg.GET("/workspaces", h.list)
	rg.GET("/workspaces/:workspaceId", h.get)
	rg.POST("/workspaces/:workspaceId/api-key", h.rotateKey)
}

type createRequest struct {
	Name string `json:"name"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	ws, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, ws)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, list)
}

func (h *Handler) get(c *gin.Context) {
	ws, err := h.Svc.GetOwned(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("workspaceId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, ws)
}

func (h *Handler) rotateKey(c *gin.Context) {
	key, err := h.Svc.RotateAPIKey(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("workspaceId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"apiKey": key})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "workspace not found", nil)
	case errors.Is(err, apikeys.ErrConfiguration):
		respond.Error(c, http.StatusInternalServerError, "internal_error", "API keys are not configured", nil)
	default:
		telemetry.Error("workspaces.request_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"error":      err,
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "workspace request failed", nil)
	}
}
