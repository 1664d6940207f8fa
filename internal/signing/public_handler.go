package signing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/documents"
	"kingsign-backend/internal/fields"
	"kingsign-backend/internal/footprints"
	"kingsign-backend/internal/integrations"
	"kingsign-backend/internal/shared/server/middleware"
	"kingsign-backend/internal/shared/server/respond"
	"kingsign-backend/internal/signingtokens"
)

// PublicDocuments is the document view available to capability-token holders.
type PublicDocuments interface {
	GetWithFields(ctx context.Context, id string) (documents.WithFields, error)
	UpdateContent(ctx context.Context, id string, title, note *string) (documents.Document, error)
}

// PublicFields is the field access available to capability-token holders.
type PublicFields interface {
	FieldStore
	Get(ctx context.Context, id string) (fields.Field, error)
}

// PublicHandler serves the signer-facing routes. Every route is scoped to the
// document named by the capability token.
type PublicHandler struct {
	Coordinator *Coordinator
	Documents   PublicDocuments
	Fields      PublicFields
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(coord *Coordinator, docs PublicDocuments, fieldSvc PublicFields) *PublicHandler {
	return &PublicHandler{Coordinator: coord, Documents: docs, Fields: fieldSvc}
}

// RegisterRoutes attaches public routes to a group guarded by signingtokens.Middleware.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/document", h.getDocument)
	rg.PATCH("/document", h.patchDocument)
	rg.GET("/document-fields", h.listFields)
	rg.GET("/document-fields/:id", h.getField)
	rg.PATCH("/document-fields/:id", h.patchField)
	rg.POST("/batch-sign", h.batchSign)
}

type documentContentRequest struct {
	Title *string `json:"title"`
	Note  *string `json:"note"`
}

type fieldPatchRequest struct {
	Value    *json.RawMessage `json:"value"`
	IsSigned *bool            `json:"isSigned"`
}

func (h *PublicHandler) getDocument(c *gin.Context) {
	claims, ok := signingtokens.FromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}
	doc, err := h.Documents.GetWithFields(c.Request.Context(), claims.DocumentID)
	if err != nil {
		documents.WriteError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *PublicHandler) patchDocument(c *gin.Context) {
	claims, ok := signingtokens.FromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}
	var req documentContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	doc, err := h.Documents.UpdateContent(c.Request.Context(), claims.DocumentID, req.Title, req.Note)
	if err != nil {
		documents.WriteError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *PublicHandler) listFields(c *gin.Context) {
	claims, ok := signingtokens.FromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}
	list, err := h.Fields.FindFields(c.Request.Context(), claims.DocumentID, "")
	if err != nil {
		writeFieldError(c, err)
		return
	}
	respond.OK(c, list)
}

func (h *PublicHandler) getField(c *gin.Context) {
	field, ok := h.scopedField(c)
	if !ok {
		return
	}
	respond.OK(c, field)
}

func (h *PublicHandler) patchField(c *gin.Context) {
	field, ok := h.scopedField(c)
	if !ok {
		return
	}
	var req fieldPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	ctx := requestContext(c)
	updated, err := h.Fields.Patch(ctx, field.ID, fields.Patch{Value: req.Value, IsSigned: req.IsSigned})
	if err != nil {
		writeFieldError(c, err)
		return
	}
	if req.IsSigned != nil && *req.IsSigned {
		h.Coordinator.publish(ctx, integrations.TypeDocumentUpdated, updated.DocumentID, map[string]any{
			"document_id": updated.DocumentID,
			"field_id":    updated.ID,
			"request_id":  middleware.RequestIDFromContext(c),
		})
	}
	respond.OK(c, updated)
}

func (h *PublicHandler) batchSign(c *gin.Context) {
	claims, ok := signingtokens.FromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return
	}
	result, err := h.Coordinator.BatchSign(requestContext(c), claims.DocumentID, claims.ContactID, footprints.FromRequest(c.Request, c.ClientIP()))
	writeBatchSign(c, result, err)
}

// scopedField loads the :id field and rejects fields of other documents.
func (h *PublicHandler) scopedField(c *gin.Context) (fields.Field, bool) {
	claims, ok := signingtokens.FromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", nil)
		return fields.Field{}, false
	}
	field, err := h.Fields.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeFieldError(c, err)
		return fields.Field{}, false
	}
	if field.DocumentID != claims.DocumentID {
		respond.Error(c, http.StatusForbidden, "forbidden", "Invalid field access", nil)
		return fields.Field{}, false
	}
	return field, true
}

func writeFieldError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, fields.ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "value or isSigned is required", nil)
	case errors.Is(err, fields.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document field not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "document field request failed", nil)
	}
}
