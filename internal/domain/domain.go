package domain

import (
	"github.com/yungbote/skilltree-backend/internal/domain/agents"
	"github.com/yungbote/skilltree-backend/internal/domain/generation"
	"github.com/yungbote/skilltree-backend/internal/domain/sources"
	"github.com/yungbote/skilltree-backend/internal/domain/taxonomy"
)

type (
	Source     = sources.Source
	SourceType = sources.SourceType

	Domain       = taxonomy.Domain
	DomainSource = taxonomy.DomainSource

	AIAgentConfig = agents.AIAgentConfig
	AgentType     = agents.AgentType

	GenerationRun = generation.GenerationRun
	RunState      = generation.RunState
)

const (
	SourceTypeArxiv         = sources.SourceTypeArxiv
	SourceTypeWikipedia     = sources.SourceTypeWikipedia
	SourceTypeWebSearch     = sources.SourceTypeWebSearch
	SourceTypeOpenLibrary   = sources.SourceTypeOpenLibrary
	SourceTypeYouTube       = sources.SourceTypeYouTube
	SourceTypeCoursera      = sources.SourceTypeCoursera
	SourceTypeKhanAcademy   = sources.SourceTypeKhanAcademy
	SourceTypeMITOCW        = sources.SourceTypeMITOCW
	SourceTypeTextbook      = sources.SourceTypeTextbook
	SourceTypeResearchPaper = sources.SourceTypeResearchPaper
	SourceTypeBlog          = sources.SourceTypeBlog
	SourceTypeDocumentation = sources.SourceTypeDocumentation
	SourceTypeOther         = sources.SourceTypeOther

	AgentGemini      = agents.AgentGemini
	AgentOpenAI      = agents.AgentOpenAI
	AgentClaude      = agents.AgentClaude
	AgentHuggingFace = agents.AgentHuggingFace
	AgentCohere      = agents.AgentCohere
	AgentCustom      = agents.AgentCustom

	RunStarted           = generation.RunStarted
	RunResearched        = generation.RunResearched
	RunProviderValidated = generation.RunProviderValidated
	RunGenerated         = generation.RunGenerated
	RunPersisted         = generation.RunPersisted
	RunFailed            = generation.RunFailed
)

func ParseAgentType(s string) (AgentType, bool) { return agents.ParseAgentType(s) }
