package ai

import (
	"context"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/platform/openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

type OpenAIProvider struct {
	configBacked
	client openai.Client
}

func NewOpenAIProvider(deps Deps, client openai.Client) *OpenAIProvider {
	return &OpenAIProvider{
		configBacked: newConfigBacked(types.AgentOpenAI, defaultOpenAIModel, "OpenAIProvider", deps),
		client:       client,
	}
}

func (p *OpenAIProvider) GenerateContent(ctx context.Context, prompt string, sources []*types.Source, opts GenerateOptions) (string, error) {
	return p.complete(ctx, "generate_content", withSourceContext(prompt, sources), opts)
}

func (p *OpenAIProvider) AnalyzeSources(ctx context.Context, sources []*types.Source, extractionPrompt string) (string, error) {
	return p.complete(ctx, "analyze_sources", analyzePrompt(sources, extractionPrompt), GenerateOptions{})
}

func (p *OpenAIProvider) complete(ctx context.Context, op, user string, opts GenerateOptions) (string, error) {
	cfg, err := p.resolve(ctx, opts)
	if err != nil {
		return "", p.callErr(op, err)
	}
	temp := cfg.temperature
	res, err := p.client.GenerateText(ctx, openai.TextRequest{
		BaseURL:         cfg.endpoint,
		APIKey:          cfg.apiKey,
		Model:           cfg.model,
		System:          cfg.systemPrompt,
		User:            user,
		MaxOutputTokens: cfg.maxTokens,
		Temperature:     &temp,
	})
	if err != nil {
		return "", p.callErr(op, err)
	}
	p.log.Debug("OpenAI call complete", "op", op, "model", res.Model, "output_tokens", res.OutputTokens)
	return res.Text, nil
}
