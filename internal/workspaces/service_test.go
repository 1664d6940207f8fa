package workspaces

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/apikeys"
	"kingsign-backend/internal/documents"
	"kingsign-backend/internal/shared/server/middleware"
	"kingsign-backend/internal/signingtokens"
)

type stubDocs map[string]documents.Document

func (s stubDocs) Get(ctx context.Context, id string) (documents.Document, error) {
	doc, ok := s[id]
	if !ok {
		return documents.Document{}, documents.ErrNotFound
	}
	return doc, nil
}

func newService(docs stubDocs) *Service {
	return NewService(NewMemoryRepo(), apikeys.NewIssuer(apikeys.NewCodec("master-secret"), "ks_"), docs)
}

func TestCreateAndOwnership(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user-1", "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	ws, err := svc.Create(ctx, "user-1", "Acme")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, "user-2", "Other"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := svc.List(ctx, "user-1")
	if err != nil || len(list) != 1 || list[0].ID != ws.ID {
		t.Fatalf("unexpected list %+v (%v)", list, err)
	}
	if _, err := svc.GetOwned(ctx, "user-2", ws.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign workspace must look missing, got %v", err)
	}
}

func TestRotateAPIKeyRevokesPreviousKey(t *testing.T) {
	svc := newService(nil)
	ctx := context.Background()
	ws, _ := svc.Create(ctx, "user-1", "Acme")

	first, err := svc.RotateAPIKey(ctx, "user-1", ws.ID)
	if err != nil {
		t.Fatalf("RotateAPIKey: %v", err)
	}
	second, err := svc.RotateAPIKey(ctx, "user-1", ws.ID)
	if err != nil {
		t.Fatalf("RotateAPIKey: %v", err)
	}
	if first == second {
		t.Fatalf("rotation must produce a new key")
	}
	if _, err := svc.RotateAPIKey(ctx, "user-2", ws.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api", apikeys.Middleware(svc.Keys, svc), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.WorkspaceIDFromContext(c))
	})

	call := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api", nil)
		req.Header.Set(middleware.APIKeyHeader, key)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp
	}
	if resp := call(second); resp.Code != http.StatusOK || resp.Body.String() != ws.ID {
		t.Fatalf("current key rejected: %d %s", resp.Code, resp.Body.String())
	}
	if resp := call(first); resp.Code != http.StatusUnauthorized {
		t.Fatalf("rotated key must be rejected, got %d", resp.Code)
	}
}

func TestAuthorizeDocument(t *testing.T) {
	svc := newService(stubDocs{})
	ctx := context.Background()
	ws, _ := svc.Create(ctx, "user-1", "Acme")
	svc.Documents = stubDocs{"doc-1": {ID: "doc-1", WorkspaceID: ws.ID}}

	if err := svc.AuthorizeDocument(ctx, "user-1", "doc-1"); err != nil {
		t.Fatalf("owner must be authorized: %v", err)
	}
	if err := svc.AuthorizeDocument(ctx, "user-2", "doc-1"); !errors.Is(err, signingtokens.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.AuthorizeDocument(ctx, "user-1", "missing"); !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected documents.ErrNotFound, got %v", err)
	}
}
