package generation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/skilltree-backend/internal/data/repos"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/modules/generation/steps"
	"github.com/yungbote/skilltree-backend/internal/observability"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/services"
)

type UsecasesDeps struct {
	Log *logger.Logger

	Research  steps.Researcher
	Providers steps.ProviderResolver
	Domains   services.DomainService
	Sources   services.SourceService

	Runs    repos.GenerationRunRepo
	Metrics *observability.Metrics
	Tracer  trace.Tracer
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases { return Usecases{deps: deps} }

func (u Usecases) WithLog(log *logger.Logger) Usecases {
	u.deps.Log = log
	return u
}

type (
	GenerateDomainInput  = steps.GenerateDomainInput
	GenerateDomainOutput = steps.GenerateDomainOutput

	AnalyzeSourcesInput  = steps.AnalyzeSourcesInput
	AnalyzeSourcesOutput = steps.AnalyzeSourcesOutput

	Error = steps.Error
)

const (
	DefaultMaxSources  = steps.DefaultMaxSources
	MaxMaxSources      = steps.MaxMaxSources
	LinkRelevanceScore = steps.LinkRelevanceScore
)

func BuildDomainPrompt(topic string, sources []*types.Source) string {
	return steps.BuildDomainPrompt(topic, sources)
}

func (u Usecases) GenerateDomain(ctx context.Context, in GenerateDomainInput) (GenerateDomainOutput, error) {
	deps := steps.GenerateDomainDeps{
		Log:       u.deps.Log,
		Research:  u.deps.Research,
		Providers: u.deps.Providers,
		Domains:   u.deps.Domains,
		Sources:   u.deps.Sources,
		Runs:      u.deps.Runs,
		Metrics:   u.deps.Metrics,
		Tracer:    u.deps.Tracer,
	}
	return steps.GenerateDomain(ctx, deps, in)
}

func (u Usecases) AnalyzeSources(ctx context.Context, in AnalyzeSourcesInput) (AnalyzeSourcesOutput, error) {
	deps := steps.AnalyzeSourcesDeps{
		Log:       u.deps.Log,
		Providers: u.deps.Providers,
		Sources:   u.deps.Sources,
		Metrics:   u.deps.Metrics,
	}
	return steps.AnalyzeSources(ctx, deps, in)
}

func (u Usecases) GetRun(ctx context.Context, id uint) (*types.GenerationRun, error) {
	if u.deps.Runs == nil {
		return nil, fmt.Errorf("generation run %d: %w", id, services.ErrNotFound)
	}
	run, err := u.deps.Runs.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("get generation run: %w", err)
	}
	if run == nil {
		return nil, fmt.Errorf("generation run %d: %w", id, services.ErrNotFound)
	}
	return run, nil
}

func (u Usecases) ListRuns(ctx context.Context, limit int) ([]*types.GenerationRun, error) {
	if u.deps.Runs == nil {
		return []*types.GenerationRun{}, nil
	}
	runs, err := u.deps.Runs.ListRecent(dbctx.Context{Ctx: ctx}, limit)
	if err != nil {
		return nil, fmt.Errorf("list generation runs: %w", err)
	}
	return runs, nil
}
