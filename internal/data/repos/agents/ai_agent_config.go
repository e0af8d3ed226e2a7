package agents

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

type AIAgentConfigRepo interface {
	// GetByType returns nil, nil when no config exists for agentType.
	GetByType(dbc dbctx.Context, agentType types.AgentType) (*types.AIAgentConfig, error)
	List(dbc dbctx.Context) ([]*types.AIAgentConfig, error)
	Upsert(dbc dbctx.Context, cfg *types.AIAgentConfig) (*types.AIAgentConfig, error)
}

type aiAgentConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAIAgentConfigRepo(db *gorm.DB, baseLog *logger.Logger) AIAgentConfigRepo {
	return &aiAgentConfigRepo{
		db:  db,
		log: baseLog.With("repo", "AIAgentConfigRepo"),
	}
}

func (r *aiAgentConfigRepo) GetByType(dbc dbctx.Context, agentType types.AgentType) (*types.AIAgentConfig, error) {
	var out types.AIAgentConfig
	if err := dbc.DB(r.db).Where("agent_type = ?", agentType).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == 0 {
		return nil, nil
	}
	return &out, nil
}

func (r *aiAgentConfigRepo) List(dbc dbctx.Context) ([]*types.AIAgentConfig, error) {
	out := []*types.AIAgentConfig{}
	if err := dbc.DB(r.db).Order("agent_type ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *aiAgentConfigRepo) Upsert(dbc dbctx.Context, cfg *types.AIAgentConfig) (*types.AIAgentConfig, error) {
	cfg.UpdatedAt = time.Now().UTC()
	err := dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "agent_type"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"api_endpoint",
			"default_model",
			"system_prompt",
			"active",
			"encrypted_credentials",
			"max_tokens",
			"temperature",
			"rate_limit",
			"updated_at",
		}),
	}).Create(cfg).Error
	if err != nil {
		return nil, err
	}
	return r.GetByType(dbc, cfg.AgentType)
}
