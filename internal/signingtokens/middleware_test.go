package signingtokens

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestMiddlewareStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService("public-secret", time.Minute)
	now := time.Now()
	svc.now = func() time.Time { return now }

	valid, _, err := svc.Issue(validInput())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	svc.now = func() time.Time { return now.Add(-2 * time.Minute) }
	expiredSoon, _, err := svc.Issue(validInput())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	svc.now = func() time.Time { return now }

	var seenDoc, seenContact string
	r := gin.New()
	r.GET("/api/v1/public/document", Middleware(svc), func(c *gin.Context) {
		claims, _ := FromContext(c)
		seenDoc = c.GetString("documentId")
		seenContact = claims.ContactID
		c.Status(http.StatusOK)
	})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", http.StatusForbidden},
		{"expired", "Bearer " + expiredSoon, http.StatusForbidden},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/public/document", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, resp.Code)
		}
	}
	if seenDoc != "doc-1" || seenContact != "contact-1" {
		t.Fatalf("expected scope doc-1/contact-1, got %q/%q", seenDoc, seenContact)
	}
}
