package server

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"poster-backend/internal/services/health"
	"poster-backend/internal/session"
	"poster-backend/internal/shared/config"
	"poster-backend/internal/shared/metrics"
	"poster-backend/internal/shared/server/middleware"
	"poster-backend/internal/shared/server/respond"
)

const (
	rateLimitGroupAnalyze = "ANALYZE"
	apiPrefix             = "/api/v1"
)

// RouterDeps carries the handlers mounted on the router.
type RouterDeps struct {
	Config         config.Config
	SessionHandler *session.Handler
	RateLimiter    *middleware.RateLimiter
	Health         *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" && deps.Config.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Session(
			http.MethodGet+" "+apiPrefix+"/health",
			http.MethodGet+" "+apiPrefix+"/metrics",
			http.MethodPost+" "+apiPrefix+"/sessions",
		),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter:  deps.RateLimiter,
			GroupFor: rateLimitGroup,
			KeyFor:   rateLimitKey(deps.SessionHandler),
			Rules:    rateLimitRules(deps.Config.AnalyzePerMinute),
		}),
	)

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	api := r.Group(apiPrefix)
	api.GET("/health", func(c *gin.Context) {
		ok, checks := deps.Health.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, gin.H{"ok": ok, "checks": checks})
	})
	api.GET("/metrics", metrics.Handler())
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == apiPrefix+"/analyses" {
		return rateLimitGroupAnalyze
	}
	return ""
}

// rateLimitKey buckets by session only once the session is known to exist;
// unknown ids share their client's bucket.
func rateLimitKey(h *session.Handler) func(*gin.Context) string {
	return func(c *gin.Context) string {
		id := middleware.SessionIDFromContext(c)
		if id == "" || h == nil || h.Svc == nil {
			return ""
		}
		if _, err := h.Svc.Get(c.Request.Context(), id); err != nil {
			return ""
		}
		return "session:" + id
	}
}

// rateLimitRules limits diagnosis submissions per session; other routes are unlimited.
func rateLimitRules(perMinute float64) map[string]middleware.RateLimitRule {
	if perMinute <= 0 {
		return nil
	}
	burst := int(math.Ceil(perMinute))
	return map[string]middleware.RateLimitRule{
		rateLimitGroupAnalyze: {Rate: perMinute / 60.0, Burst: burst},
	}
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
