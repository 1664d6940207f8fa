package signing

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/documents"
	"kingsign-backend/internal/events"
	"kingsign-backend/internal/footprints"
	"kingsign-backend/internal/shared/server/middleware"
	"kingsign-backend/internal/shared/server/respond"
	"kingsign-backend/internal/shared/telemetry"
	"kingsign-backend/internal/signingtokens"
)

const (
	msgSigned        = "All document fields for the contact have been signed successfully"
	msgRequired      = "documentId and contactId are required"
	msgAlreadySigned = "Document has already been signed by this contact"
	msgNoFields      = "No fields found for the given document and contact"
	msgInternal      = "Internal server error while processing the signing request"
)

type batchSignRequest struct {
	DocumentID string `json:"documentId"`
	ContactID  string `json:"contactId"`
}

type batchSignResponse struct {
	Success           bool             `json:"success"`
	Message           string           `json:"message"`
	Code              string           `json:"code,omitempty"`
	SignedFieldsCount *int             `json:"signedFieldsCount,omitempty"`
	DocumentStatus    documents.Status `json:"documentStatus,omitempty"`
}

// Handler serves batch-sign for authenticated sessions.
type Handler struct {
	Coordinator *Coordinator
	Authz       signingtokens.DocumentAuthorizer
}

// NewHandler constructs a Handler.
func NewHandler(coord *Coordinator, authz signingtokens.DocumentAuthorizer) *Handler {
	return &Handler{Coordinator: coord, Authz: authz}
}

// RegisterRoutes attaches the session batch-sign route.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/document-fields/batch-sign", h.batchSign)
}

func (h *Handler) batchSign(c *gin.Context) {
	var req batchSignRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		telemetry.Warn("signing.batch_sign_bad_body", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    middleware.UserIDFromContext(c),
			"error":      err,
		})
	}
	if req.DocumentID == "" || req.ContactID == "" {
		writeBatchSign(c, Result{}, ErrValidation)
		return
	}

	if h.Authz != nil {
		if err := h.Authz.AuthorizeDocument(c.Request.Context(), middleware.UserIDFromContext(c), req.DocumentID); err != nil {
			if errors.Is(err, signingtokens.ErrForbidden) {
				respond.Abort(c, http.StatusForbidden, batchSignResponse{Message: "You do not have access to this document"})
				return
			}
			respond.Abort(c, http.StatusNotFound, batchSignResponse{Message: "Document not found"})
			return
		}
	}

	c.Set("documentId", req.DocumentID)
	c.Set("contactId", req.ContactID)
	result, err := h.Coordinator.BatchSign(requestContext(c), req.DocumentID, req.ContactID, footprints.FromRequest(c.Request, c.ClientIP()))
	writeBatchSign(c, result, err)
}

// requestContext carries the request id into work that outlives the request.
func requestContext(c *gin.Context) context.Context {
	return events.WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
}

func writeBatchSign(c *gin.Context, result Result, err error) {
	switch {
	case err == nil:
		count := result.SignedFieldsCount
		respond.OK(c, batchSignResponse{
			Success:           true,
			Message:           msgSigned,
			SignedFieldsCount: &count,
			DocumentStatus:    result.DocumentStatus,
		})
	case errors.Is(err, ErrValidation):
		respond.Abort(c, http.StatusBadRequest, batchSignResponse{Message: msgRequired})
	case errors.Is(err, ErrAlreadySigned):
		respond.Abort(c, http.StatusBadRequest, batchSignResponse{Message: msgAlreadySigned, Code: "ALREADY_SIGNED"})
	case errors.Is(err, ErrNoFieldsFound):
		respond.Abort(c, http.StatusNotFound, batchSignResponse{Message: msgNoFields})
	default:
		telemetry.Error("signing.batch_sign_failed", map[string]any{
			"request_id":  middleware.RequestIDFromContext(c),
			"document_id": c.GetString("documentId"),
			"contact_id":  c.GetString("contactId"),
			"error":       err,
		})
		respond.Abort(c, http.StatusInternalServerError, batchSignResponse{Message: msgInternal})
	}
}
