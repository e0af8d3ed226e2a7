package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/skilltree-backend/internal/modules/generation"
	"github.com/yungbote/skilltree-backend/internal/observability"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/platform/secrets"
	"github.com/yungbote/skilltree-backend/internal/research"
	"github.com/yungbote/skilltree-backend/internal/services"
)

type Services struct {
	Domain      services.DomainService
	Source      services.SourceService
	AgentConfig services.AgentConfigService
	Generation  generation.Usecases
}

// wireAgentConfigs is split out because the AI providers read their configs
// through it and must exist before the rest of the services.
func wireAgentConfigs(db *gorm.DB, log *logger.Logger, reposet Repos, box *secrets.Box) services.AgentConfigService {
	return services.NewAgentConfigService(db, log, reposet.AIAgentConfig, box)
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	reposet Repos,
	clients Clients,
	agentConfigs services.AgentConfigService,
	metrics *observability.Metrics,
) Services {
	log.Info("Wiring services...")

	domainSvc := services.NewDomainService(db, log, reposet.Domain)
	sourceSvc := services.NewSourceService(db, log, reposet.Source, reposet.DomainSource, clients.Research)
	aggregator := research.NewAggregator(log, sourceSvc, metrics, clients.Research...)

	gen := generation.New(generation.UsecasesDeps{
		Log:       log,
		Research:  aggregator,
		Providers: clients.Providers,
		Domains:   domainSvc,
		Sources:   sourceSvc,
		Runs:      reposet.GenerationRun,
		Metrics:   metrics,
		Tracer:    observability.Tracer(),
	})

	return Services{
		Domain:      domainSvc,
		Source:      sourceSvc,
		AgentConfig: agentConfigs,
		Generation:  gen,
	}
}
