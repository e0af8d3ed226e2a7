package taxonomy

import (
	"gorm.io/gorm"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

type DomainRepo interface {
	Create(dbc dbctx.Context, d *types.Domain) (*types.Domain, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Domain, error)
	GetByName(dbc dbctx.Context, name string) (*types.Domain, error)
	List(dbc dbctx.Context) ([]*types.Domain, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	// Delete removes the domain and its source links.
	Delete(dbc dbctx.Context, id uint) (bool, error)
	Count(dbc dbctx.Context) (int64, error)
}

type domainRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDomainRepo(db *gorm.DB, baseLog *logger.Logger) DomainRepo {
	return &domainRepo{
		db:  db,
		log: baseLog.With("repo", "DomainRepo"),
	}
}

func (r *domainRepo) Create(dbc dbctx.Context, d *types.Domain) (*types.Domain, error) {
	if err := dbc.DB(r.db).Omit("Sources").Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

func (r *domainRepo) GetByID(dbc dbctx.Context, id uint) (*types.Domain, error) {
	var out types.Domain
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *domainRepo) GetByName(dbc dbctx.Context, name string) (*types.Domain, error) {
	var out types.Domain
	if err := dbc.DB(r.db).Where("name = ?", name).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *domainRepo) List(dbc dbctx.Context) ([]*types.Domain, error) {
	out := []*types.Domain{}
	if err := dbc.DB(r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *domainRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Domain{}).Where("id = ?", id).Updates(updates).Error
}

func (r *domainRepo) Delete(dbc dbctx.Context, id uint) (bool, error) {
	var deleted bool
	err := dbc.DB(r.db).Transaction(func(txx *gorm.DB) error {
		if err := txx.Where("domain_id = ?", id).Delete(&types.DomainSource{}).Error; err != nil {
			return err
		}
		res := txx.Where("id = ?", id).Delete(&types.Domain{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func (r *domainRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Domain{}).Count(&n).Error
	return n, err
}
