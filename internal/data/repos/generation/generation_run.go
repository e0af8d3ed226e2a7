package generation

import (
	"gorm.io/gorm"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

type GenerationRunRepo interface {
	Create(dbc dbctx.Context, run *types.GenerationRun) (*types.GenerationRun, error)
	UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	GetByID(dbc dbctx.Context, id uint) (*types.GenerationRun, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.GenerationRun, error)
}

type generationRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationRunRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRunRepo {
	return &generationRunRepo{
		db:  db,
		log: baseLog.With("repo", "GenerationRunRepo"),
	}
}

func (r *generationRunRepo) Create(dbc dbctx.Context, run *types.GenerationRun) (*types.GenerationRun, error) {
	if err := dbc.DB(r.db).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *generationRunRepo) UpdateFields(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.GenerationRun{}).Where("id = ?", id).Updates(updates).Error
}

func (r *generationRunRepo) GetByID(dbc dbctx.Context, id uint) (*types.GenerationRun, error) {
	var out types.GenerationRun
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *generationRunRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.GenerationRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out := []*types.GenerationRun{}
	if err := dbc.DB(r.db).Order("id DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
