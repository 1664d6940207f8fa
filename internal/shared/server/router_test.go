package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/shared/auth"
	"kingsign-backend/internal/shared/config"
	"kingsign-backend/internal/shared/server/middleware"
)

type routeFunc func(rg *gin.RouterGroup)

func (f routeFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func okRoute(method, path string) routeFunc {
	return func(rg *gin.RouterGroup) {
		rg.Handle(method, path, func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"workspaceId": middleware.WorkspaceIDFromContext(c)})
		})
	}
}

func denyUnlessHeader(header string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(header) == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "session-secret")
	return NewRouter(RouterDeps{
		Config:      config.Config{Env: "dev"},
		Users:       okRoute(http.MethodGet, "/me"),
		SessionSign: okRoute(http.MethodPost, "/document-fields/batch-sign"),
		OwnerCheck: func(c *gin.Context) {
			if c.Param("workspaceId") != "ws-1" {
				c.AbortWithStatus(http.StatusNotFound)
				return
			}
			middleware.SetWorkspaceID(c, "ws-1")
			c.Next()
		},
		Templates:  okRoute(http.MethodGet, "/templates"),
		PublicAuth: denyUnlessHeader("Authorization"),
		PublicSign: okRoute(http.MethodPost, "/batch-sign"),
		APIKeyAuth: denyUnlessHeader(middleware.APIKeyHeader),
		API:        okRoute(http.MethodPost, "/api"),
		RateLimits: map[string]middleware.RateLimitRule{
			middleware.RateLimitGroupSign: {Rate: 0.001, Burst: 1},
		},
	})
}

func serve(r *gin.Engine, method, path string, headers map[string]string) int {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp.Code
}

func TestRouterGroups(t *testing.T) {
	r := testRouter(t)
	token, err := auth.SignJWT(auth.Claims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	session := map[string]string{"Authorization": "Bearer " + token}

	cases := []struct {
		name    string
		method  string
		path    string
		headers map[string]string
		want    int
	}{
		{"health", http.MethodGet, "/api/v1/health", nil, http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", nil, http.StatusOK},
		{"me without session", http.MethodGet, "/api/v1/me", nil, http.StatusUnauthorized},
		{"me", http.MethodGet, "/api/v1/me", session, http.StatusOK},
		{"owned workspace", http.MethodGet, "/api/v1/workspaces/ws-1/templates", session, http.StatusOK},
		{"foreign workspace", http.MethodGet, "/api/v1/workspaces/ws-2/templates", session, http.StatusNotFound},
		{"public without token", http.MethodPost, "/api/v1/public/batch-sign", nil, http.StatusUnauthorized},
		{"api without key", http.MethodPost, "/api/v1/api", nil, http.StatusUnauthorized},
		{"api", http.MethodPost, "/api/v1/api", map[string]string{middleware.APIKeyHeader: "ks_x"}, http.StatusOK},
	}
	for _, tc := range cases {
		if got := serve(r, tc.method, tc.path, tc.headers); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestPublicBatchSignIsRateLimited(t *testing.T) {
	r := testRouter(t)
	headers := map[string]string{"Authorization": "Bearer capability"}

	if got := serve(r, http.MethodPost, "/api/v1/public/batch-sign", headers); got != http.StatusOK {
		t.Fatalf("first sign expected 200, got %d", got)
	}
	if got := serve(r, http.MethodPost, "/api/v1/public/batch-sign", headers); got != http.StatusTooManyRequests {
		t.Fatalf("second sign expected 429, got %d", got)
	}
}

func TestAddr(t *testing.T) {
	for in, want := range map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
