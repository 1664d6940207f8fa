package signingtokens

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/shared/server/middleware"
	"kingsign-backend/internal/shared/server/respond"
	"kingsign-backend/internal/shared/telemetry"
)

const maxRequestTTL = 30 * 24 * time.Hour

// ErrForbidden is returned by a DocumentAuthorizer when the session user may
// not grant access to the document.
var ErrForbidden = errors.New("signingtokens: forbidden")

// DocumentAuthorizer checks that userID may grant access to documentID.
type DocumentAuthorizer interface {
	AuthorizeDocument(ctx context.Context, userID, documentID string) error
}

// Handler serves capability-token issuance for authenticated sessions.
type Handler struct {
	Svc   *Service
	Authz DocumentAuthorizer
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, authz DocumentAuthorizer) *Handler {
	return &Handler{Svc: svc, Authz: authz}
}

// RegisterRoutes attaches issuance routes to a session-authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/public-document-auth", h.issue)
}

type issueRequest struct {
	DocumentID string `json:"documentId"`
	ContactID  string `json:"contactId"`
	ExpiresIn  string `json:"expiresIn,omitempty"`
}

type issueResponse struct {
	Token      string    `json:"token"`
	DocumentID string    `json:"documentId"`
	ContactID  string    `json:"contactId"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

func (h *Handler) issue(c *gin.Context) {
	session, ok := middleware.SessionClaimsFromContext(c)
	if !ok || session.Sub == "" || session.Aud == "" || session.Iss == "" {
		respond.Error(c, http.StatusForbidden, "forbidden", "Session token is missing sub, aud or iss", nil)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	reqs, isBatch, err := decodeIssueRequests(body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	out := make([]issueResponse, 0, len(reqs))
	for _, req := range reqs {
		resp, status, code, msg := h.issueOne(c.Request.Context(), session.Sub, session.Aud, session.Iss, req)
		if status != 0 {
			respond.Error(c, status, code, msg, nil)
			return
		}
		out = append(out, resp)
	}

	if isBatch {
		respond.JSON(c, http.StatusCreated, out)
		return
	}
	respond.JSON(c, http.StatusCreated, out[0])
}

func (h *Handler) issueOne(ctx context.Context, sub, aud, iss string, req issueRequest) (issueResponse, int, string, string) {
	var ttl time.Duration
	if raw := strings.TrimSpace(req.ExpiresIn); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 || parsed > maxRequestTTL {
			return issueResponse{}, http.StatusBadRequest, "validation_error", "expiresIn must be a positive duration up to 720h"
		}
		ttl = parsed
	}

	if h.Authz != nil && strings.TrimSpace(req.DocumentID) != "" {
		if err := h.Authz.AuthorizeDocument(ctx, sub, req.DocumentID); err != nil {
			if errors.Is(err, ErrForbidden) {
				return issueResponse{}, http.StatusForbidden, "forbidden", "not allowed to share this document"
			}
			return issueResponse{}, http.StatusNotFound, "not_found", "document not found"
		}
	}

	token, claims, err := h.Svc.Issue(IssueInput{
		DocumentID: strings.TrimSpace(req.DocumentID),
		ContactID:  strings.TrimSpace(req.ContactID),
		Subject:    sub,
		Audience:   aud,
		Issuer:     iss,
		TTL:        ttl,
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			return issueResponse{}, http.StatusBadRequest, "validation_error", strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
		}
		telemetry.Error("signingtokens.issue_failed", map[string]any{
			"document_id": req.DocumentID,
			"error":       err,
		})
		return issueResponse{}, http.StatusInternalServerError, "internal_error", "failed to issue token"
	}

	return issueResponse{
		Token:      token,
		DocumentID: claims.DocumentID,
		ContactID:  claims.ContactID,
		ExpiresAt:  time.Unix(claims.Exp, 0).UTC(),
	}, 0, "", ""
}

// decodeIssueRequests accepts a single object or a non-empty array.
func decodeIssueRequests(body []byte) ([]issueRequest, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, errors.New("empty body")
	}
	if trimmed[0] == '[' {
		var reqs []issueRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, true, err
		}
		if len(reqs) == 0 {
			return nil, true, errors.New("empty batch")
		}
		return reqs, true, nil
	}
	var req issueRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, false, err
	}
	return []issueRequest{req}, false, nil
}
