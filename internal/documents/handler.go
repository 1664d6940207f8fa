package documents

import (
	"errors"
	"net/http"
	"strconv"

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

// RegisterRoutes attaches document routes to a workspace-scoped group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.create)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.PATCH("/documents/:id", h.update)
}

func (h *Handler) create(c *gin.Context) {
	var in CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	doc, err := h.Svc.Create(c.Request.Context(), middleware.WorkspaceIDFromContext(c), in)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, doc)
}

func (h *Handler) list(c *gin.Context) {
	includeArchived, _ := strconv.ParseBool(c.Query("archived"))
	list, err := h.Svc.List(c.Request.Context(), middleware.WorkspaceIDFromContext(c), includeArchived)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, list)
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.GetInWorkspace(c.Request.Context(), middleware.WorkspaceIDFromContext(c), c.Param("id"))
	if err != nil {
		WriteError(c, err)
		return
	}
	wf, err := h.Svc.Assemble(c.Request.Context(), doc)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, wf)
}

func (h *Handler) update(c *gin.Context) {
	var p Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	doc, err := h.Svc.Update(c.Request.Context(), middleware.WorkspaceIDFromContext(c), c.Param("id"), p)
	if err != nil {
		WriteError(c, err)
		return
	}
	respond.OK(c, doc)
}

// WriteError maps document errors to the standard error envelope.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrStatusRegression):
		respond.Error(c, http.StatusConflict, "status_regression", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "document request failed", nil)
	}
}
