package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	types "github.com/yungbote/skilltree-backend/internal/domain"
)

const defaultGeminiModel = "gemini-2.5-flash"

type GeminiProvider struct {
	configBacked
	httpClient *http.Client
}

func NewGeminiProvider(deps Deps, httpClient *http.Client) *GeminiProvider {
	return &GeminiProvider{
		configBacked: newConfigBacked(types.AgentGemini, defaultGeminiModel, "GeminiProvider", deps),
		httpClient:   httpClient,
	}
}

func (p *GeminiProvider) GenerateContent(ctx context.Context, prompt string, sources []*types.Source, opts GenerateOptions) (string, error) {
	return p.complete(ctx, "generate_content", withSourceContext(prompt, sources), opts)
}

func (p *GeminiProvider) AnalyzeSources(ctx context.Context, sources []*types.Source, extractionPrompt string) (string, error) {
	return p.complete(ctx, "analyze_sources", analyzePrompt(sources, extractionPrompt), GenerateOptions{})
}

func (p *GeminiProvider) complete(ctx context.Context, op, user string, opts GenerateOptions) (string, error) {
	cfg, err := p.resolve(ctx, opts)
	if err != nil {
		return "", p.callErr(op, err)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	}
	if cfg.endpoint != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.endpoint}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return "", p.callErr(op, err)
	}

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(cfg.maxTokens),
		Temperature:     genai.Ptr(float32(cfg.temperature)),
	}
	if s := strings.TrimSpace(cfg.systemPrompt); s != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(s, genai.RoleUser)
	}

	result, err := client.Models.GenerateContent(ctx, cfg.model, genai.Text(user), genCfg)
	if err != nil {
		return "", p.callErr(op, err)
	}
	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", p.callErr(op, errors.New("empty response content"))
	}
	return text, nil
}
