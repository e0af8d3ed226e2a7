package taxonomy

import (
	"gorm.io/gorm"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

type DomainSourceRepo interface {
	Create(dbc dbctx.Context, link *types.DomainSource) (*types.DomainSource, error)
	// ListByDomain returns links with their Source preloaded, oldest first.
	ListByDomain(dbc dbctx.Context, domainID uint) ([]*types.DomainSource, error)
	CountByDomain(dbc dbctx.Context, domainID uint) (int64, error)
}

type domainSourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDomainSourceRepo(db *gorm.DB, baseLog *logger.Logger) DomainSourceRepo {
	return &domainSourceRepo{
		db:  db,
		log: baseLog.With("repo", "DomainSourceRepo"),
	}
}

func (r *domainSourceRepo) Create(dbc dbctx.Context, link *types.DomainSource) (*types.DomainSource, error) {
	if err := dbc.DB(r.db).Omit("Domain", "Source").Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

func (r *domainSourceRepo) ListByDomain(dbc dbctx.Context, domainID uint) ([]*types.DomainSource, error) {
	out := []*types.DomainSource{}
	if err := dbc.DB(r.db).
		Preload("Source").
		Where("domain_id = ?", domainID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *domainSourceRepo) CountByDomain(dbc dbctx.Context, domainID uint) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.DomainSource{}).Where("domain_id = ?", domainID).Count(&n).Error
	return n, err
}
