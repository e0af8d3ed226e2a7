package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/skilltree-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skilltree-backend/internal/http/middleware"
	"github.com/yungbote/skilltree-backend/internal/observability"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	GenerationHandler *httpH.GenerationHandler
	SourceHandler     *httpH.SourceHandler
	DomainHandler     *httpH.DomainHandler
	AgentHandler      *httpH.AgentHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "skilltree"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	protected := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	// Group copies handlers, so admin is derived after auth is attached.
	admin := protected.Group("/")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireRole(httpMW.RoleAdmin))
	}

	// Generation
	if h := cfg.GenerationHandler; h != nil {
		admin.POST("/generation/domain", h.GenerateDomain)
		admin.POST("/generation/analyze", h.AnalyzeSources)
		protected.GET("/generation/runs", h.ListRuns)
		protected.GET("/generation/runs/:id", h.GetRun)
	}

	// Sources
	if h := cfg.SourceHandler; h != nil {
		protected.GET("/sources", h.ListSources)
		protected.GET("/sources/:id", h.GetSource)
		protected.GET("/sources/domain/:domainId", h.ListDomainSources)
		admin.POST("/sources/import", h.ImportSource)
	}

	// Domains
	if h := cfg.DomainHandler; h != nil {
		protected.GET("/domains", h.ListDomains)
		protected.GET("/domains/:id", h.GetDomain)
		admin.PUT("/domains/:id", h.UpdateDomain)
		admin.DELETE("/domains/:id", h.DeleteDomain)
	}

	// Agents
	if h := cfg.AgentHandler; h != nil {
		admin.GET("/agents", h.ListAgents)
		admin.PUT("/agents/:type", h.PutAgent)
	}

	return r
}
