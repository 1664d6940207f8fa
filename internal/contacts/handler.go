package contacts

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/shared/server/middleware"
	"kingsign-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches contact routes to a workspace-scoped group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/contacts", h.list)
	rg.POST("/contacts", h.create)
	rg.GET("/contacts/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), middleware.WorkspaceIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list contacts", nil)
		return
	}
	respond.OK(c, list)
}

func (h *Handler) create(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	contact, created, err := h.Svc.FindOrCreate(c.Request.Context(), middleware.WorkspaceIDFromContext(c), in)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "a valid email is required", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create contact", nil)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond.JSON(c, status, contact)
}

func (h *Handler) get(c *gin.Context) {
	contact, err := h.Svc.Get(c.Request.Context(), middleware.WorkspaceIDFromContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "contact not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch contact", nil)
		return
	}
	respond.OK(c, contact)
}
