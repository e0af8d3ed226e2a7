package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/platform/secrets"
)

// Deps are shared by every config-backed provider.
type Deps struct {
	Log      *logger.Logger
	Store    ConfigStore
	Box      *secrets.Box
	Limiters *Limiters
}

// callConfig is a resolved, decrypted agent config for one call.
type callConfig struct {
	endpoint     string
	model        string
	systemPrompt string
	apiKey       string
	maxTokens    int
	temperature  float64
}

type configBacked struct {
	agentType    types.AgentType
	defaultModel string
	log          *logger.Logger
	store        ConfigStore
	box          *secrets.Box
	limiters     *Limiters
}

func newConfigBacked(t types.AgentType, defaultModel, name string, deps Deps) configBacked {
	limiters := deps.Limiters
	if limiters == nil {
		limiters = NewLimiters()
	}
	return configBacked{
		agentType:    t,
		defaultModel: defaultModel,
		log:          deps.Log.With("provider", name),
		store:        deps.Store,
		box:          deps.Box,
		limiters:     limiters,
	}
}

func (b *configBacked) AgentType() types.AgentType { return b.agentType }

func (b *configBacked) IsAvailable(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("Availability probe panicked", "agent_type", string(b.agentType), "panic", fmt.Sprint(r))
			ok = false
		}
	}()
	if b.store == nil {
		return false
	}
	cfg, err := b.store.GetAgentConfig(ctx, b.agentType)
	if err != nil {
		if !errors.Is(err, ErrConfigNotFound) {
			b.log.Warn("Agent config lookup failed", "agent_type", string(b.agentType), "error", err)
		}
		return false
	}
	return cfg != nil && cfg.Active && cfg.HasCredentials()
}

// resolve loads and decrypts the config, then waits on the agent's rate limiter.
func (b *configBacked) resolve(ctx context.Context, opts GenerateOptions) (*callConfig, error) {
	if b.store == nil {
		return nil, &ProviderError{AgentType: b.agentType, Err: ErrProviderUnavailable}
	}
	cfg, err := b.store.GetAgentConfig(ctx, b.agentType)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			return nil, &ProviderError{AgentType: b.agentType, Err: ErrProviderUnavailable}
		}
		return nil, fmt.Errorf("load %s config: %w", b.agentType, err)
	}
	if cfg == nil || !cfg.Active || !cfg.HasCredentials() {
		return nil, &ProviderError{AgentType: b.agentType, Err: ErrProviderUnavailable}
	}
	apiKey, err := b.box.Open(strings.TrimSpace(cfg.EncryptedCredentials))
	if err != nil {
		return nil, fmt.Errorf("decrypt %s credentials: %w", b.agentType, err)
	}
	if err := b.limiters.Wait(ctx, b.agentType, cfg.RateLimit); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	out := &callConfig{
		endpoint:     strings.TrimSpace(cfg.APIEndpoint),
		model:        strings.TrimSpace(cfg.DefaultModel),
		systemPrompt: cfg.SystemPrompt,
		apiKey:       apiKey,
		maxTokens:    cfg.MaxTokens,
		temperature:  cfg.Temperature,
	}
	if out.model == "" {
		out.model = b.defaultModel
	}
	if out.maxTokens <= 0 {
		out.maxTokens = DefaultMaxTokens
	}
	if opts.MaxTokens > 0 {
		out.maxTokens = opts.MaxTokens
	}
	if opts.Temperature != nil {
		out.temperature = *opts.Temperature
	}
	return out, nil
}

func (b *configBacked) callErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return err
	}
	return &CallError{AgentType: b.agentType, Op: op, Err: err}
}

func analyzePrompt(sources []*types.Source, extractionPrompt string) string {
	return withSourceContext(strings.TrimSpace(extractionPrompt), sources)
}

// Limiters keeps one token bucket per agent type, sized from the config's
// requests-per-minute value.
type Limiters struct {
	mu       sync.Mutex
	limiters map[types.AgentType]*rate.Limiter
	perMin   map[types.AgentType]int
}

func NewLimiters() *Limiters {
	return &Limiters{
		limiters: map[types.AgentType]*rate.Limiter{},
		perMin:   map[types.AgentType]int{},
	}
}

// Wait blocks until a request is allowed. perMinute <= 0 disables limiting.
func (l *Limiters) Wait(ctx context.Context, t types.AgentType, perMinute int) error {
	if perMinute <= 0 {
		return nil
	}
	return l.limiter(t, perMinute).Wait(ctx)
}

func (l *Limiters) limiter(t types.AgentType, perMinute int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[t]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
		l.limiters[t] = lim
		l.perMin[t] = perMinute
		return lim
	}
	if l.perMin[t] != perMinute {
		lim.SetLimit(rate.Limit(float64(perMinute) / 60.0))
		lim.SetBurst(perMinute)
		l.perMin[t] = perMinute
	}
	return lim
}
