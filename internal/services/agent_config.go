package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/skilltree-backend/internal/ai"
	"github.com/yungbote/skilltree-backend/internal/data/repos"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/domain/agents"
	"github.com/yungbote/skilltree-backend/internal/platform/dbctx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/platform/secrets"
)

// AgentConfigInput is a config write. A blank APIKey keeps stored credentials.
type AgentConfigInput struct {
	AgentType    string   `yaml:"agentType" json:"agent_type"`
	APIEndpoint  string   `yaml:"apiEndpoint" json:"api_endpoint"`
	DefaultModel string   `yaml:"defaultModel" json:"default_model"`
	SystemPrompt string   `yaml:"systemPrompt" json:"system_prompt"`
	Active       *bool    `yaml:"active" json:"active"`
	APIKey       string   `yaml:"apiKey" json:"api_key"`
	MaxTokens    int      `yaml:"maxTokens" json:"max_tokens"`
	Temperature  *float64 `yaml:"temperature" json:"temperature"`
	RateLimit    int      `yaml:"rateLimit" json:"rate_limit"`
}

type agentSeedFile struct {
	Agents []AgentConfigInput `yaml:"agents"`
}

type AgentConfigService interface {
	ai.ConfigStore
	ListAgentConfigs(ctx context.Context) ([]*types.AIAgentConfig, error)
	UpsertAgentConfig(ctx context.Context, in AgentConfigInput) (*types.AIAgentConfig, error)
	// SeedFromFile upserts every agent in a YAML file. ${VAR} references in
	// apiKey are expanded from the environment.
	SeedFromFile(ctx context.Context, path string) (int, error)
}

type agentConfigService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo repos.AIAgentConfigRepo
	box  *secrets.Box
}

func NewAgentConfigService(db *gorm.DB, baseLog *logger.Logger, repo repos.AIAgentConfigRepo, box *secrets.Box) AgentConfigService {
	return &agentConfigService{
		db:   db,
		log:  baseLog.With("service", "AgentConfigService"),
		repo: repo,
		box:  box,
	}
}

func (s *agentConfigService) GetAgentConfig(ctx context.Context, t types.AgentType) (*types.AIAgentConfig, error) {
	cfg, err := s.repo.GetByType(dbctx.Context{Ctx: ctx}, t)
	if err != nil {
		return nil, fmt.Errorf("get agent config: %w", err)
	}
	if cfg == nil {
		return nil, ai.ErrConfigNotFound
	}
	return cfg, nil
}

func (s *agentConfigService) ListAgentConfigs(ctx context.Context) ([]*types.AIAgentConfig, error) {
	out, err := s.repo.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list agent configs: %w", err)
	}
	return out, nil
}

func (s *agentConfigService) UpsertAgentConfig(ctx context.Context, in AgentConfigInput) (*types.AIAgentConfig, error) {
	agentType, ok := types.ParseAgentType(strings.ToUpper(strings.TrimSpace(in.AgentType)))
	if !ok {
		return nil, fmt.Errorf("%w: unknown agent type %q", ErrInvalidInput, in.AgentType)
	}
	if in.Temperature != nil && (*in.Temperature < 0 || *in.Temperature > 2) {
		return nil, fmt.Errorf("%w: temperature must be within [0,2]", ErrInvalidInput)
	}
	if in.MaxTokens < 0 || in.RateLimit < 0 {
		return nil, fmt.Errorf("%w: maxTokens and rateLimit must be non-negative", ErrInvalidInput)
	}
	dbc := dbctx.Context{Ctx: ctx}

	existing, err := s.repo.GetByType(dbc, agentType)
	if err != nil {
		return nil, fmt.Errorf("load agent config: %w", err)
	}

	cfg := &types.AIAgentConfig{
		AgentType:    agentType,
		APIEndpoint:  strings.TrimSpace(in.APIEndpoint),
		DefaultModel: strings.TrimSpace(in.DefaultModel),
		SystemPrompt: in.SystemPrompt,
		Active:       true,
		MaxTokens:    in.MaxTokens,
		Temperature:  ai.DefaultTemperature,
		RateLimit:    in.RateLimit,
	}
	if in.Active != nil {
		cfg.Active = *in.Active
	}
	if in.Temperature != nil {
		cfg.Temperature = *in.Temperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = ai.DefaultMaxTokens
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = agents.DefaultRateLimit
	}

	if key := strings.TrimSpace(in.APIKey); key != "" {
		sealed, err := s.box.Seal(key)
		if err != nil {
			return nil, fmt.Errorf("seal credentials: %w", err)
		}
		cfg.EncryptedCredentials = sealed
	} else if existing != nil {
		cfg.EncryptedCredentials = existing.EncryptedCredentials
	}

	out, err := s.repo.Upsert(dbc, cfg)
	if err != nil {
		return nil, fmt.Errorf("upsert agent config: %w", err)
	}
	s.log.Info("Agent config saved",
		"agent_type", string(agentType),
		"active", out.Active,
		"has_credentials", out.HasCredentials(),
		"sealed", s.box.Enabled(),
	)
	return out, nil
}

func (s *agentConfigService) SeedFromFile(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read agent seed file: %w", err)
	}
	var file agentSeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("parse agent seed file: %w", err)
	}
	n := 0
	for _, in := range file.Agents {
		in.APIKey = os.ExpandEnv(in.APIKey)
		if _, err := s.UpsertAgentConfig(ctx, in); err != nil {
			return n, fmt.Errorf("seed %s: %w", in.AgentType, err)
		}
		n++
	}
	return n, nil
}
