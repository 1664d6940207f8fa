package workspaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/shared/auth"
	"kingsign-backend/internal/shared/server/middleware"
)

func newRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "session-secret")
	r := gin.New()
	api := r.Group("/api/v1", middleware.Auth())
	NewHandler(svc).RegisterRoutes(api)
	scoped := api.Group("/workspaces/:workspaceId", RequireOwner(svc))
	scoped.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.WorkspaceIDFromContext(c))
	})
	return r
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	token, err := auth.SignJWT(auth.Claims{Sub: sub})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	return "Bearer " + token
}

func TestCreateWorkspaceRoute(t *testing.T) {
	svc := newService(nil)
	r := newRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces", strings.NewReader(`{"name":"Acme"}`))
	req.Header.Set("Authorization", bearer(t, "user-1"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var ws Workspace
	if err := json.Unmarshal(resp.Body.Bytes(), &ws); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ws.OwnerUserID != "user-1" || ws.Name != "Acme" {
		t.Fatalf("unexpected workspace %+v", ws)
	}
	if strings.Contains(resp.Body.String(), "apiKey\"") {
		t.Fatalf("api key must never be serialized: %s", resp.Body.String())
	}
}

func TestRequireOwnerScopesRoutes(t *testing.T) {
	svc := newService(nil)
	r := newRouter(t, svc)
	ws, _ := svc.Create(context.Background(), "user-1", "Acme")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/"+ws.ID+"/ping", nil)
	req.Header.Set("Authorization", bearer(t, "user-1"))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || resp.Body.String() != ws.ID {
		t.Fatalf("owner request failed: %d %s", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/workspaces/"+ws.ID+"/ping", nil)
	req.Header.Set("Authorization", bearer(t, "user-2"))
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-owner, got %d", resp.Code)
	}
}

func TestRotateKeyRoute(t *testing.T) {
	svc := newService(nil)
	r := newRouter(t, svc)
	ws, _ := svc.Create(context.Background(), "user-1", "Acme")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/workspaces/"+ws.ID+"/api-key", nil)
	req.Header.Set("Authorization", bearer(t, "user-1"))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var out struct {
		APIKey string `json:"apiKey"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	if !strings.HasPrefix(out.APIKey, "ks_") {
		t.Fatalf("unexpected key %q", out.APIKey)
	}
	current, err := svc.CurrentAPIKey(context.Background(), ws.ID)
	if err != nil || current != out.APIKey {
		t.Fatalf("stored key mismatch: %q vs %q (%v)", current, out.APIKey, err)
	}
}
