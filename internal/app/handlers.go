package app

import (
	"context"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/skilltree-backend/internal/http"
	httpH "github.com/yungbote/skilltree-backend/internal/http/handlers"
	httpMW "github.com/yungbote/skilltree-backend/internal/http/middleware"
	"github.com/yungbote/skilltree-backend/internal/observability"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Generation *httpH.GenerationHandler
	Source     *httpH.SourceHandler
	Domain     *httpH.DomainHandler
	Agent      *httpH.AgentHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(log *logger.Logger, cfg Config, db *gorm.DB, rdb *goredis.Client, services Services) Handlers {
	log.Info("Wiring handlers...")
	checks := map[string]httpH.Pinger{
		"db": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return Handlers{
		Health: httpH.NewHealthHandler(checks),
		Generation: httpH.NewGenerationHandler(httpH.GenerationHandlerDeps{
			Log:          log,
			Generation:   services.Generation,
			DefaultAgent: cfg.DefaultAgent(),
			Timeout:      cfg.GenerationTimeout,
		}),
		Source: httpH.NewSourceHandler(log, services.Source),
		Domain: httpH.NewDomainHandler(log, services.Domain),
		Agent:  httpH.NewAgentHandler(log, services.AgentConfig),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func routerConfig(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) http.RouterConfig {
	return http.RouterConfig{
		Log:               log,
		ServiceName:       cfg.OtelServiceName,
		CORSOrigins:       cfg.CORSOrigins,
		Metrics:           metrics,
		AuthMiddleware:    middleware.Auth,
		GenerationHandler: handlers.Generation,
		SourceHandler:     handlers.Source,
		DomainHandler:     handlers.Domain,
		AgentHandler:      handlers.Agent,
		HealthHandler:     handlers.Health,
	}
}
