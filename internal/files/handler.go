package files

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

// RegisterRoutes attaches file routes to a workspace-scoped group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/files", h.upload)
	rg.GET("/files/:id", h.get)
	rg.GET("/files/:id/download", h.download)
}

func (h *Handler) upload(c *gin.Context) {
	workspaceID := middleware.WorkspaceIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.MaxBytes+(1<<20))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	f, err := h.Svc.Upload(c.Request.Context(), workspaceID, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnsupportedFile):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload file", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, f)
}

func (h *Handler) get(c *gin.Context) {
	f, ok := h.load(c)
	if !ok {
		return
	}
	respond.OK(c, f)
}

func (h *Handler) download(c *gin.Context) {
	f, ok := h.load(c)
	if !ok {
		return
	}
	url, err := h.Svc.DownloadURL(c.Request.Context(), f)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to sign download url", nil)
		return
	}
	respond.OK(c, gin.H{
		"downloadUrl":   url,
		"fileName":      f.FileName,
		"fileType":      f.FileType,
		"fileExtension": f.FileExtension,
		"expiresIn":     int(h.Svc.DownloadTTL.Seconds()),
	})
}

func (h *Handler) load(c *gin.Context) (File, bool) {
	f, err := h.Svc.Get(c.Request.Context(), middleware.WorkspaceIDFromContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		} else {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch file", nil)
		}
		return File{}, false
	}
	return f, true
}
