package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kingsign-backend/internal/shared/config"
	"kingsign-backend/internal/shared/metrics"
	"kingsign-backend/internal/shared/server/middleware"
	"kingsign-backend/internal/shared/server/respond"
)

// Registrar is implemented by every feature handler.
type Registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers and auth middleware wired by bootstrap.
// Nil handlers are skipped.
type RouterDeps struct {
	Config config.Config
	Health gin.HandlerFunc

	GoogleAuth Registrar

	// Session-authenticated.
	Users       Registrar
	Workspaces  Registrar
	TokenIssuer Registrar
	SessionSign Registrar

	// Below /workspaces/:workspaceId, behind OwnerCheck.
	OwnerCheck   gin.HandlerFunc
	Templates    Registrar
	Documents    Registrar
	Contacts     Registrar
	Files        Registrar
	Integrations Registrar

	// Capability-token routes under /public.
	PublicAuth gin.HandlerFunc
	PublicSign Registrar

	// Machine-to-machine action endpoint.
	APIKeyAuth gin.HandlerFunc
	API        Registrar

	RateLimits map[string]middleware.RateLimitRule
}

// DefaultRateLimits returns the per-principal token buckets for the
// unauthenticated-by-session surfaces.
func DefaultRateLimits() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		middleware.RateLimitGroupPublic: {Rate: 5, Burst: 30},
		middleware.RateLimitGroupSign:   {Rate: 0.5, Burst: 5},
		middleware.RateLimitGroupAPI:    {Rate: 10, Burst: 50},
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logging(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	r.GET("/metrics", metrics.Handler())

	rules := deps.RateLimits
	if rules == nil {
		rules = DefaultRateLimits()
	}
	limiter := middleware.NewRateLimiter(nil)

	base := r.Group("/api/v1")
	if deps.Health != nil {
		base.GET("/health", deps.Health)
	} else {
		base.GET("/health", func(c *gin.Context) {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
		})
	}
	register(base, deps.GoogleAuth)

	session := r.Group("/api/v1", middleware.Auth())
	register(session, deps.Users)
	register(session, deps.Workspaces)
	register(session, deps.TokenIssuer)
	register(session, deps.SessionSign)

	scopedMW := []gin.HandlerFunc{}
	if deps.OwnerCheck != nil {
		scopedMW = append(scopedMW, deps.OwnerCheck)
	}
	scoped := session.Group("/workspaces/:workspaceId", scopedMW...)
	register(scoped, deps.Templates)
	register(scoped, deps.Documents)
	register(scoped, deps.Contacts)
	register(scoped, deps.Files)
	register(scoped, deps.Integrations)

	if deps.PublicAuth != nil && deps.PublicSign != nil {
		public := r.Group("/api/v1/public", deps.PublicAuth, middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        rules,
			DefaultGroup: middleware.RateLimitGroupPublic,
			GroupFor:     publicRateGroup,
			Limiter:      limiter,
		}))
		register(public, deps.PublicSign)
	}

	if deps.APIKeyAuth != nil && deps.API != nil {
		machine := r.Group("/api/v1", deps.APIKeyAuth, middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        rules,
			DefaultGroup: middleware.RateLimitGroupAPI,
			Limiter:      limiter,
		}))
		register(machine, deps.API)
	}

	return r
}

func register(rg *gin.RouterGroup, h Registrar) {
	if h == nil {
		return
	}
	h.RegisterRoutes(rg)
}

// publicRateGroup puts signature submission on the tighter SIGN bucket.
func publicRateGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && strings.HasSuffix(c.FullPath(), "/batch-sign") {
		return middleware.RateLimitGroupSign
	}
	return middleware.RateLimitGroupPublic
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
