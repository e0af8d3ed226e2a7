package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/skilltree-backend/internal/ai"
	"github.com/yungbote/skilltree-backend/internal/platform/httpx"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/platform/openai"
	"github.com/yungbote/skilltree-backend/internal/platform/redis"
	"github.com/yungbote/skilltree-backend/internal/platform/secrets"
	"github.com/yungbote/skilltree-backend/internal/research"
)

type Clients struct {
	Redis     *goredis.Client
	Research  []research.ResearchSource
	Providers *ai.Registry
}

// wireClients builds external clients. Redis is optional; an empty REDIS_ADDR
// disables the search cache.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config, box *secrets.Box, store ai.ConfigStore) (Clients, error) {
	log.Info("Wiring clients...")

	rdb, err := redis.NewClient(ctx, log, cfg.Redis())
	switch {
	case errors.Is(err, redis.ErrEmptyAddress):
		log.Info("Redis disabled; research cache off")
		rdb = nil
	case err != nil:
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}

	researchHTTP := httpx.NewClient(cfg.ResearchHTTPTimeout)
	sources := []research.ResearchSource{
		research.NewArxivSource(log, researchHTTP, cfg.ArxivBaseURL),
		research.NewWikipediaSource(log, researchHTTP, cfg.WikipediaBaseURL),
		research.NewWebSearchSource(log, researchHTTP, cfg.WebSearchBaseURL),
	}
	if rdb != nil {
		for i, s := range sources {
			sources[i] = research.NewCachedSource(s, rdb, cfg.ResearchCacheTTL, log)
		}
	}

	oa, err := openai.NewClient(log, openai.Options{Timeout: cfg.AIHTTPTimeout, MaxRetries: cfg.AIMaxRetries})
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	deps := ai.Deps{Log: log, Store: store, Box: box, Limiters: ai.NewLimiters()}
	aiHTTP := httpx.NewClient(cfg.AIHTTPTimeout)
	providers := ai.NewRegistry(
		ai.NewGeminiProvider(deps, aiHTTP),
		ai.NewOpenAIProvider(deps, oa),
		ai.NewClaudeProvider(deps, aiHTTP, cfg.AIMaxRetries),
	)
	log.Info("AI providers registered", "agent_types", providers.Types())

	return Clients{
		Redis:     rdb,
		Research:  sources,
		Providers: providers,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
		c.Redis = nil
	}
}
