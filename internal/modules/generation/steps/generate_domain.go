package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/skilltree-backend/internal/ai"
	"github.com/yungbote/skilltree-backend/internal/data/repos"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/observability"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/research"
	"github.com/yungbote/skilltree-backend/internal/services"
)

const (
	DefaultMaxSources = 10
	MaxMaxSources     = 50

	LinkRelevanceScore = 0.8
	promptStoreLimit   = 1000
	linkExcerptLimit   = 500
)

type Researcher interface {
	ResearchTopic(ctx context.Context, topic string, maxSources int) ([]*types.Source, error)
}

type ProviderResolver interface {
	Resolve(ctx context.Context, agentType types.AgentType) (ai.Provider, error)
}

// DomainCreator is the taxonomy side of persistence; services.DomainService
// satisfies it.
type DomainCreator interface {
	CreateDomain(ctx context.Context, name, description, prompt string) (*types.Domain, error)
	GetDomain(ctx context.Context, id uint) (*types.Domain, error)
}

type SourceLinker interface {
	LinkSourceToDomain(ctx context.Context, in services.LinkInput) (*types.DomainSource, error)
}

type GenerateDomainDeps struct {
	Log *logger.Logger

	Research  Researcher
	Providers ProviderResolver
	Domains   DomainCreator
	Sources   SourceLinker

	// Optional.
	Runs    repos.GenerationRunRepo
	Metrics *observability.Metrics
	Tracer  trace.Tracer
}

type GenerateDomainInput struct {
	Topic     string          `json:"topic"`
	AgentType types.AgentType `json:"ai_agent_type"`
	// MaxSources caps persisted research sources. Zero or negative means
	// DefaultMaxSources; callers that must reject such values validate first.
	MaxSources int `json:"max_sources"`
}

type GenerateDomainOutput struct {
	Domain       *types.Domain `json:"domain"`
	RunID        uint          `json:"run_id,omitempty"`
	SourcesFound int           `json:"sources_found"`
	LinksCreated int           `json:"links_created"`
}

// GenerateDomain runs research, provider validation, generation and
// persistence in that order. Failures before the domain is created leave no
// domain behind. Link failures are logged and skipped.
func GenerateDomain(ctx context.Context, deps GenerateDomainDeps, in GenerateDomainInput) (GenerateDomainOutput, error) {
	out := GenerateDomainOutput{}
	if err := validateDeps(deps); err != nil {
		return out, err
	}
	in.Topic = strings.TrimSpace(in.Topic)
	if in.Topic == "" {
		return out, fmt.Errorf("%w: topic is required", services.ErrInvalidInput)
	}
	if in.MaxSources <= 0 {
		in.MaxSources = DefaultMaxSources
	}

	log := deps.Log.With("topic", in.Topic, "agent_type", string(in.AgentType))
	tracer := deps.Tracer
	if tracer == nil {
		tracer = observability.Tracer()
	}
	ctx, span := tracer.Start(ctx, "generation.GenerateDomain", trace.WithAttributes(
		attribute.String("generation.topic", in.Topic),
		attribute.String("generation.agent_type", string(in.AgentType)),
		attribute.Int("generation.max_sources", in.MaxSources),
	))
	defer span.End()

	started := time.Now()
	rec := newRunRecorder(ctx, log, deps.Runs)
	rec.start(in, started.UTC())
	out.RunID = rec.runID
	log.Info("Domain generation started", "run_id", rec.runID, "max_sources", in.MaxSources)

	fail := func(err error) (GenerateDomainOutput, error) {
		gerr := &Error{State: rec.state, Err: err}
		rec.fail(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		deps.Metrics.ObserveGenerationRun(string(in.AgentType), string(types.RunFailed), out.SourcesFound, time.Since(started))
		log.Error("Domain generation failed", "run_id", rec.runID, "state", gerr.State, "error", err)
		return out, gerr
	}
	transition := func(state types.RunState, fields map[string]interface{}) {
		rec.advance(state, fields)
		span.AddEvent(string(state))
	}

	// Research.
	found, err := deps.Research.ResearchTopic(ctx, in.Topic, in.MaxSources)
	if err != nil {
		return fail(fmt.Errorf("research: %w", err))
	}
	out.SourcesFound = len(found)
	transition(types.RunResearched, map[string]interface{}{"sources_found": len(found)})
	log.Info("Research finished", "run_id", rec.runID, "sources_found", len(found))

	// Provider selection.
	provider, err := deps.Providers.Resolve(ctx, in.AgentType)
	if err != nil {
		return fail(err)
	}
	transition(types.RunProviderValidated, nil)

	// Generation.
	prompt := BuildDomainPrompt(in.Topic, found)
	callStart := time.Now()
	text, err := provider.GenerateContent(ctx, prompt, found, ai.GenerateOptions{})
	deps.Metrics.ObserveAICall(string(in.AgentType), "generate_content", err, time.Since(callStart))
	if err != nil {
		var callErr *ai.CallError
		var provErr *ai.ProviderError
		if !errors.As(err, &callErr) && !errors.As(err, &provErr) {
			err = &ai.CallError{AgentType: in.AgentType, Op: "generate_content", Err: err}
		}
		return fail(err)
	}
	transition(types.RunGenerated, nil)

	// Persistence.
	created, err := deps.Domains.CreateDomain(ctx, in.Topic, "AI-generated domain for "+in.Topic, research.Truncate(text, promptStoreLimit))
	if err != nil {
		return fail(err)
	}
	domain, err := deps.Domains.GetDomain(ctx, created.ID)
	if err != nil {
		return fail(fmt.Errorf("reload domain %d: %w", created.ID, err))
	}
	out.Domain = domain
	span.SetAttributes(attribute.Int("generation.domain_id", int(domain.ID)))

	out.LinksCreated = linkSources(ctx, deps, log, domain, found)
	transition(types.RunPersisted, map[string]interface{}{
		"domain_id":     domain.ID,
		"links_created": out.LinksCreated,
	})
	deps.Metrics.ObserveGenerationRun(string(in.AgentType), string(types.RunPersisted), out.SourcesFound, time.Since(started))
	log.Info("Domain generation finished",
		"run_id", rec.runID,
		"state", types.RunPersisted,
		"domain_id", domain.ID,
		"links_created", out.LinksCreated,
		"sources_found", out.SourcesFound,
	)
	return out, nil
}

func linkSources(ctx context.Context, deps GenerateDomainDeps, log *logger.Logger, domain *types.Domain, sources []*types.Source) int {
	linked := 0
	for _, src := range sources {
		if src == nil {
			continue
		}
		_, err := deps.Sources.LinkSourceToDomain(ctx, services.LinkInput{
			DomainID:          domain.ID,
			SourceID:          src.ID,
			RelevanceScore:    LinkRelevanceScore,
			RelevantExcerpt:   research.Truncate(src.Summary, linkExcerptLimit),
			UsedForGeneration: true,
		})
		deps.Metrics.ObserveLink(err)
		if err != nil {
			var linkErr *services.SourceLinkError
			if !errors.As(err, &linkErr) {
				err = &services.SourceLinkError{DomainID: domain.ID, SourceID: src.ID, Err: err}
			}
			log.Error("Failed to link source to domain",
				"source_id", src.ID,
				"domain_id", domain.ID,
				"error", err,
			)
			continue
		}
		linked++
	}
	return linked
}

func validateDeps(deps GenerateDomainDeps) error {
	switch {
	case deps.Log == nil:
		return fmt.Errorf("generation: missing logger")
	case deps.Research == nil:
		return fmt.Errorf("generation: missing researcher")
	case deps.Providers == nil:
		return fmt.Errorf("generation: missing provider resolver")
	case deps.Domains == nil:
		return fmt.Errorf("generation: missing domain creator")
	case deps.Sources == nil:
		return fmt.Errorf("generation: missing source linker")
	}
	return nil
}
