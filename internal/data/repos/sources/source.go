package sources

import (
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

type SourceRepo interface {
	// UpsertByURL inserts s unless a row with the same URL exists, in which
	// case the stored row is returned unchanged. created reports which.
	UpsertByURL(dbc dbctx.Context, s *types.Source) (out *types.Source, created bool, err error)
	GetByURL(dbc dbctx.Context, url string) (*types.Source, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Source, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Source, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.Source, error)
	Count(dbc dbctx.Context) (int64, error)
}

type sourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	return &sourceRepo{
		db:  db,
		log: baseLog.With("repo", "SourceRepo"),
	}
}

func (r *sourceRepo) UpsertByURL(dbc dbctx.Context, s *types.Source) (*types.Source, bool, error) {
	if s == nil || strings.TrimSpace(s.URL) == "" {
		return nil, false, errors.New("source url is required")
	}
	t := dbc.DB(r.db)
	row := *s
	row.ID = 0
	res := t.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 && row.ID != 0 {
		return &row, true, nil
	}
	existing, err := r.GetByURL(dbc, s.URL)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, errors.New("source upsert lost row for url " + s.URL)
	}
	return existing, false, nil
}

func (r *sourceRepo) GetByURL(dbc dbctx.Context, url string) (*types.Source, error) {
	var out types.Source
	err := dbc.DB(r.db).Where("url = ?", url).Limit(1).Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *sourceRepo) GetByID(dbc dbctx.Context, id uint) (*types.Source, error) {
	var out types.Source
	err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *sourceRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Source, error) {
	out := []*types.Source{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sourceRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.Source, error) {
	out := []*types.Source{}
	q := dbc.DB(r.db).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sourceRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Source{}).Count(&n).Error
	return n, err
}
