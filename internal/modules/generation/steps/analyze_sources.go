package steps

import (
	"context"
	"fmt"
	"strings"
	"time"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/observability"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/services"
)

type SourceLoader interface {
	GetSourcesByIDs(ctx context.Context, ids []uint) ([]*types.Source, error)
}

type AnalyzeSourcesDeps struct {
	Log       *logger.Logger
	Providers ProviderResolver
	Sources   SourceLoader
	Metrics   *observability.Metrics
}

type AnalyzeSourcesInput struct {
	AgentType        types.AgentType `json:"ai_agent_type"`
	SourceIDs        []uint          `json:"source_ids"`
	ExtractionPrompt string          `json:"extraction_prompt"`
}

type AnalyzeSourcesOutput struct {
	AgentType types.AgentType `json:"ai_agent_type"`
	SourceIDs []uint          `json:"source_ids"`
	Analysis  string          `json:"analysis"`
}

// AnalyzeSources resolves the provider the same way GenerateDomain does and
// asks it to extract information from the stored sources.
func AnalyzeSources(ctx context.Context, deps AnalyzeSourcesDeps, in AnalyzeSourcesInput) (AnalyzeSourcesOutput, error) {
	out := AnalyzeSourcesOutput{AgentType: in.AgentType}
	if deps.Providers == nil || deps.Sources == nil || deps.Log == nil {
		return out, fmt.Errorf("analyze sources: missing dependency")
	}
	if len(in.SourceIDs) == 0 {
		return out, fmt.Errorf("%w: at least one source id is required", services.ErrInvalidInput)
	}
	if strings.TrimSpace(in.ExtractionPrompt) == "" {
		return out, fmt.Errorf("%w: extraction prompt is required", services.ErrInvalidInput)
	}

	sources, err := deps.Sources.GetSourcesByIDs(ctx, in.SourceIDs)
	if err != nil {
		return out, err
	}
	if len(sources) == 0 {
		return out, fmt.Errorf("sources %v: %w", in.SourceIDs, services.ErrNotFound)
	}
	for _, s := range sources {
		out.SourceIDs = append(out.SourceIDs, s.ID)
	}

	provider, err := deps.Providers.Resolve(ctx, in.AgentType)
	if err != nil {
		return out, err
	}
	start := time.Now()
	text, err := provider.AnalyzeSources(ctx, sources, in.ExtractionPrompt)
	deps.Metrics.ObserveAICall(string(in.AgentType), "analyze_sources", err, time.Since(start))
	if err != nil {
		deps.Log.Warn("Source analysis failed", "agent_type", string(in.AgentType), "error", err)
		return out, err
	}
	out.Analysis = text
	return out, nil
}
