package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/skilltree-backend/internal/data/db"
	"github.com/yungbote/skilltree-backend/internal/data/repos"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

type DomainUpdate struct {
	Name        *string
	Description *string
}

type DomainService interface {
	// CreateDomain fails with *DomainCreationError; name collisions wrap
	// ErrDomainNameTaken.
	CreateDomain(ctx context.Context, name, description, prompt string) (*types.Domain, error)
	GetDomain(ctx context.Context, id uint) (*types.Domain, error)
	ListDomains(ctx context.Context) ([]*types.Domain, error)
	UpdateDomain(ctx context.Context, id uint, in DomainUpdate) (*types.Domain, error)
	DeleteDomain(ctx context.Context, id uint) error
}

type domainService struct {
	db         *gorm.DB
	log        *logger.Logger
	domainRepo repos.DomainRepo
}

func NewDomainService(db *gorm.DB, baseLog *logger.Logger, domainRepo repos.DomainRepo) DomainService {
	return &domainService{
		db:         db,
		log:        baseLog.With("service", "DomainService"),
		domainRepo: domainRepo,
	}
}

func (s *domainService) CreateDomain(ctx context.Context, name, description, prompt string) (*types.Domain, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &DomainCreationError{Name: name, Err: fmt.Errorf("%w: name is required", ErrInvalidInput)}
	}
	dbc := dbctx.Context{Ctx: ctx}

	existing, err := s.domainRepo.GetByName(dbc, name)
	if err != nil {
		return nil, &DomainCreationError{Name: name, Err: err}
	}
	if existing != nil {
		return nil, &DomainCreationError{Name: name, Err: ErrDomainNameTaken}
	}

	created, err := s.domainRepo.Create(dbc, &types.Domain{
		Name:        name,
		Description: description,
		Prompt:      prompt,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, &DomainCreationError{Name: name, Err: ErrDomainNameTaken}
		}
		return nil, &DomainCreationError{Name: name, Err: err}
	}
	s.log.Info("Domain created", "domain_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *domainService) GetDomain(ctx context.Context, id uint) (*types.Domain, error) {
	d, err := s.domainRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("get domain: %w", err)
	}
	if d == nil {
		return nil, fmt.Errorf("domain %d: %w", id, ErrNotFound)
	}
	return d, nil
}

func (s *domainService) ListDomains(ctx context.Context) ([]*types.Domain, error) {
	out, err := s.domainRepo.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	return out, nil
}

func (s *domainService) UpdateDomain(ctx context.Context, id uint, in DomainUpdate) (*types.Domain, error) {
	dbc := dbctx.Context{Ctx: ctx}
	current, err := s.GetDomain(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		if name != current.Name {
			other, err := s.domainRepo.GetByName(dbc, name)
			if err != nil {
				return nil, fmt.Errorf("check domain name: %w", err)
			}
			if other != nil {
				return nil, ErrDomainNameTaken
			}
			updates["name"] = name
		}
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if err := s.domainRepo.UpdateFields(dbc, id, updates); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDomainNameTaken
		}
		return nil, fmt.Errorf("update domain: %w", err)
	}
	return s.GetDomain(ctx, id)
}

func (s *domainService) DeleteDomain(ctx context.Context, id uint) error {
	ok, err := s.domainRepo.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return fmt.Errorf("delete domain: %w", err)
	}
	if !ok {
		return fmt.Errorf("domain %d: %w", id, ErrNotFound)
	}
	s.log.Info("Domain deleted", "domain_id", id)
	return nil
}
