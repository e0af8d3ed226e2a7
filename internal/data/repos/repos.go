package repos

import (
	"github.com/yungbote/skilltree-backend/internal/data/repos/agents"
	"github.com/yungbote/skilltree-backend/internal/data/repos/generation"
	"github.com/yungbote/skilltree-backend/internal/data/repos/sources"
	"github.com/yungbote/skilltree-backend/internal/data/repos/taxonomy"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type SourceRepo = sources.SourceRepo

type DomainRepo = taxonomy.DomainRepo
type DomainSourceRepo = taxonomy.DomainSourceRepo

type AIAgentConfigRepo = agents.AIAgentConfigRepo
type GenerationRunRepo = generation.GenerationRunRepo

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	return sources.NewSourceRepo(db, baseLog)
}

func NewDomainRepo(db *gorm.DB, baseLog *logger.Logger) DomainRepo {
	return taxonomy.NewDomainRepo(db, baseLog)
}

func NewDomainSourceRepo(db *gorm.DB, baseLog *logger.Logger) DomainSourceRepo {
	return taxonomy.NewDomainSourceRepo(db, baseLog)
}

func NewAIAgentConfigRepo(db *gorm.DB, baseLog *logger.Logger) AIAgentConfigRepo {
	return agents.NewAIAgentConfigRepo(db, baseLog)
}

func NewGenerationRunRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRunRepo {
	return generation.NewGenerationRunRepo(db, baseLog)
}
