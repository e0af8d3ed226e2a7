package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/skilltree-backend/internal/data/repos"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/research"
)

// DomainSourceView is a linked source with its relevance metadata.
type DomainSourceView struct {
	Source            *types.Source `json:"source"`
	RelevanceScore    float64       `json:"relevance_score"`
	RelevantExcerpt   string        `json:"relevant_excerpt,omitempty"`
	UsedForGeneration bool          `json:"used_for_generation"`
}

type LinkInput struct {
	DomainID          uint
	SourceID          uint
	RelevanceScore    float64
	RelevantExcerpt   string
	UsedForGeneration bool
}

type SourceService interface {
	// CreateSource upserts by URL: an existing row is returned unchanged.
	CreateSource(ctx context.Context, s *types.Source) (*types.Source, error)
	FindByURL(ctx context.Context, url string) (*types.Source, error)
	LinkSourceToDomain(ctx context.Context, in LinkInput) (*types.DomainSource, error)
	GetSourcesForDomain(ctx context.Context, domainID uint) ([]DomainSourceView, error)
	GetAllSources(ctx context.Context, limit, offset int) ([]*types.Source, error)
	GetSourceByID(ctx context.Context, id uint) (*types.Source, error)
	GetSourcesByIDs(ctx context.Context, ids []uint) ([]*types.Source, error)
	// ImportByURL fetches details through the first provider that can
	// handle url and stores the result.
	ImportByURL(ctx context.Context, url string) (*types.Source, error)
}

type sourceService struct {
	db               *gorm.DB
	log              *logger.Logger
	sourceRepo       repos.SourceRepo
	domainSourceRepo repos.DomainSourceRepo
	providers        []research.ResearchSource
}

func NewSourceService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sourceRepo repos.SourceRepo,
	domainSourceRepo repos.DomainSourceRepo,
	providers []research.ResearchSource,
) SourceService {
	return &sourceService{
		db:               db,
		log:              baseLog.With("service", "SourceService"),
		sourceRepo:       sourceRepo,
		domainSourceRepo: domainSourceRepo,
		providers:        providers,
	}
}

func (s *sourceService) CreateSource(ctx context.Context, src *types.Source) (*types.Source, error) {
	if src == nil || strings.TrimSpace(src.URL) == "" {
		return nil, fmt.Errorf("%w: %w: url is required", ErrInvalidInput, research.ErrInvalidSource)
	}
	if strings.TrimSpace(src.Title) == "" {
		return nil, fmt.Errorf("%w: %w: title is required", ErrInvalidInput, research.ErrInvalidSource)
	}
	if src.SourceType == "" {
		src.SourceType = types.SourceTypeOther
	}
	out, created, err := s.sourceRepo.UpsertByURL(dbctx.Context{Ctx: ctx}, src)
	if err != nil {
		return nil, fmt.Errorf("upsert source: %w", err)
	}
	if created {
		s.log.Debug("Source created", "source_id", out.ID, "source_type", string(out.SourceType))
	}
	return out, nil
}

func (s *sourceService) FindByURL(ctx context.Context, url string) (*types.Source, error) {
	out, err := s.sourceRepo.GetByURL(dbctx.Context{Ctx: ctx}, url)
	if err != nil {
		return nil, fmt.Errorf("find source by url: %w", err)
	}
	return out, nil
}

func (s *sourceService) LinkSourceToDomain(ctx context.Context, in LinkInput) (*types.DomainSource, error) {
	if in.RelevanceScore < 0 || in.RelevanceScore > 1 {
		return nil, &SourceLinkError{DomainID: in.DomainID, SourceID: in.SourceID,
			Err: fmt.Errorf("%w: relevance score %v outside [0,1]", ErrInvalidInput, in.RelevanceScore)}
	}
	link, err := s.domainSourceRepo.Create(dbctx.Context{Ctx: ctx}, &types.DomainSource{
		DomainID:          in.DomainID,
		SourceID:          in.SourceID,
		RelevanceScore:    in.RelevanceScore,
		RelevantExcerpt:   in.RelevantExcerpt,
		UsedForGeneration: in.UsedForGeneration,
	})
	if err != nil {
		return nil, &SourceLinkError{DomainID: in.DomainID, SourceID: in.SourceID, Err: err}
	}
	return link, nil
}

func (s *sourceService) GetSourcesForDomain(ctx context.Context, domainID uint) ([]DomainSourceView, error) {
	links, err := s.domainSourceRepo.ListByDomain(dbctx.Context{Ctx: ctx}, domainID)
	if err != nil {
		return nil, fmt.Errorf("list domain sources: %w", err)
	}
	out := make([]DomainSourceView, 0, len(links))
	for _, l := range links {
		out = append(out, DomainSourceView{
			Source:            l.Source,
			RelevanceScore:    l.RelevanceScore,
			RelevantExcerpt:   l.RelevantExcerpt,
			UsedForGeneration: l.UsedForGeneration,
		})
	}
	return out, nil
}

func (s *sourceService) GetAllSources(ctx context.Context, limit, offset int) ([]*types.Source, error) {
	out, err := s.sourceRepo.List(dbctx.Context{Ctx: ctx}, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return out, nil
}

func (s *sourceService) GetSourceByID(ctx context.Context, id uint) (*types.Source, error) {
	out, err := s.sourceRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	if out == nil {
		return nil, fmt.Errorf("source %d: %w", id, ErrNotFound)
	}
	return out, nil
}

func (s *sourceService) GetSourcesByIDs(ctx context.Context, ids []uint) ([]*types.Source, error) {
	out, err := s.sourceRepo.GetByIDs(dbctx.Context{Ctx: ctx}, ids)
	if err != nil {
		return nil, fmt.Errorf("get sources: %w", err)
	}
	return out, nil
}

func (s *sourceService) ImportByURL(ctx context.Context, url string) (*types.Source, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if existing, err := s.FindByURL(ctx, url); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}
	for _, p := range s.providers {
		if !p.CanHandle(url) {
			continue
		}
		details, err := p.FetchDetails(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("fetch details: %w", err)
		}
		if details == nil {
			return nil, fmt.Errorf("source %q: %w", url, ErrNotFound)
		}
		return s.CreateSource(ctx, details)
	}
	return nil, fmt.Errorf("%w: no provider handles %q", ErrInvalidInput, url)
}
