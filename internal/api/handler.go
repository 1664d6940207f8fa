package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"kingsign-backend/internal/contacts"
	"kingsign-backend/internal/documents"
	"kingsign-backend/internal/files"
	"kingsign-backend/internal/shared/server/middleware"
	"kingsign-backend/internal/shared/server/respond"
	"kingsign-backend/internal/shared/telemetry"
	"kingsign-backend/internal/templates"
)

const timeLayout = time.RFC3339

// maxBatch bounds the number of actions in one array request.
const maxBatch = 50

type actionRequest struct {
	Action         Action          `json:"action"`
	RequestPayload json.RawMessage `json:"requestPayload"`
}

// Handler serves POST /api.
type Handler struct {
	Dispatcher *Dispatcher
}

// NewHandler constructs a Handler.
func NewHandler(d *Dispatcher) *Handler {
	return &Handler{Dispatcher: d}
}

// RegisterRoutes attaches the action route to a group guarded by apikeys.Middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/api", h.handle)
}

func (h *Handler) handle(c *gin.Context) {
	workspaceID := middleware.WorkspaceIDFromContext(c)
	if workspaceID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid API key", nil)
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	reqs, isBatch, err := decodeRequests(body)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	results := make([]any, len(reqs))
	g, ctx := errgroup.WithContext(c.Request.Context())
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			out, err := h.Dispatcher.Run(ctx, workspaceID, req.Action, req.RequestPayload)
			if err != nil {
				return actionError{action: req.Action, err: err}
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		writeError(c, err)
		return
	}

	if isBatch {
		respond.OK(c, results)
		return
	}
	respond.OK(c, results[0])
}

type actionError struct {
	action Action
	err    error
}

func (e actionError) Error() string { return string(e.action) + ": " + e.err.Error() }
func (e actionError) Unwrap() error { return e.err }

func decodeRequests(body []byte) ([]actionRequest, bool, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false, errors.New("request body is required")
	}
	if trimmed[0] == '[' {
		var reqs []actionRequest
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, true, errors.New("invalid request body")
		}
		if len(reqs) == 0 {
			return nil, true, errors.New("at least one action is required")
		}
		if len(reqs) > maxBatch {
			return nil, true, errors.New("too many actions in one request")
		}
		return reqs, true, nil
	}
	var req actionRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, false, errors.New("invalid request body")
	}
	return []actionRequest{req}, false, nil
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnknownAction), errors.Is(err, ErrBadPayload):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, documents.ErrInvalidInput),
		errors.Is(err, contacts.ErrInvalidInput),
		errors.Is(err, templates.ErrInvalidInput),
		errors.Is(err, templates.ErrFieldNotFound):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, documents.ErrNotFound),
		errors.Is(err, templates.ErrNotFound),
		errors.Is(err, contacts.ErrNotFound),
		errors.Is(err, files.ErrNotFound),
		errors.Is(err, ErrNoFile):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	default:
		telemetry.Error("api.action_failed", map[string]any{
			"request_id":   middleware.RequestIDFromContext(c),
			"workspace_id": middleware.WorkspaceIDFromContext(c),
			"error":        err,
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "action failed", nil)
	}
}
