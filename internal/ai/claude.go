package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	types "github.com/yungbote/skilltree-backend/internal/domain"
)

const defaultClaudeModel = "claude-sonnet-4-5"

type ClaudeProvider struct {
	configBacked
	httpClient *http.Client
	maxRetries int
}

func NewClaudeProvider(deps Deps, httpClient *http.Client, maxRetries int) *ClaudeProvider {
	return &ClaudeProvider{
		configBacked: newConfigBacked(types.AgentClaude, defaultClaudeModel, "ClaudeProvider", deps),
		httpClient:   httpClient,
		maxRetries:   maxRetries,
	}
}

func (p *ClaudeProvider) GenerateContent(ctx context.Context, prompt string, sources []*types.Source, opts GenerateOptions) (string, error) {
	return p.complete(ctx, "generate_content", withSourceContext(prompt, sources), opts)
}

func (p *ClaudeProvider) AnalyzeSources(ctx context.Context, sources []*types.Source, extractionPrompt string) (string, error) {
	return p.complete(ctx, "analyze_sources", analyzePrompt(sources, extractionPrompt), GenerateOptions{})
}

func (p *ClaudeProvider) complete(ctx context.Context, op, user string, opts GenerateOptions) (string, error) {
	cfg, err := p.resolve(ctx, opts)
	if err != nil {
		return "", p.callErr(op, err)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.apiKey),
		option.WithMaxRetries(p.maxRetries),
	}
	if cfg.endpoint != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.endpoint))
	}
	if p.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(p.httpClient))
	}
	client := anthropic.NewClient(reqOpts...)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(cfg.model),
		MaxTokens: int64(cfg.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
		Temperature: anthropic.Float(cfg.temperature),
	}
	if s := strings.TrimSpace(cfg.systemPrompt); s != "" {
		params.System = []anthropic.TextBlockParam{{Text: s}}
	}

	msg, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", p.callErr(op, err)
	}
	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", p.callErr(op, errors.New("empty response content"))
	}
	p.log.Debug("Claude call complete", "op", op, "model", string(msg.Model), "output_tokens", msg.Usage.OutputTokens)
	return out.String(), nil
}
