package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/skilltree-backend/internal/data/repos"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

type Repos struct {
	Source        repos.SourceRepo
	Domain        repos.DomainRepo
	DomainSource  repos.DomainSourceRepo
	AIAgentConfig repos.AIAgentConfigRepo
	GenerationRun repos.GenerationRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Source:        repos.NewSourceRepo(db, log),
		Domain:        repos.NewDomainRepo(db, log),
		DomainSource:  repos.NewDomainSourceRepo(db, log),
		AIAgentConfig: repos.NewAIAgentConfigRepo(db, log),
		GenerationRun: repos.NewGenerationRunRepo(db, log),
	}
}
