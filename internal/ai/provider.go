// Package ai wraps generative-AI vendors behind a common Provider interface.
// Vendor configuration is read from a ConfigStore on every call.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/domain/agents"
)

const (
	DefaultMaxTokens   = agents.DefaultMaxTokens
	DefaultTemperature = agents.DefaultTemperature
)

// GenerateOptions override the agent's configured limits. Zero values fall
// back to the stored config, then to DefaultMaxTokens/DefaultTemperature.
type GenerateOptions struct {
	MaxTokens   int
	Temperature *float64
}

type Provider interface {
	AgentType() types.AgentType
	GenerateContent(ctx context.Context, prompt string, sources []*types.Source, opts GenerateOptions) (string, error)
	AnalyzeSources(ctx context.Context, sources []*types.Source, extractionPrompt string) (string, error)
	// IsAvailable never fails: any lookup error reports false.
	IsAvailable(ctx context.Context) bool
}

// ConfigStore returns ErrConfigNotFound when no record exists.
type ConfigStore interface {
	GetAgentConfig(ctx context.Context, agentType types.AgentType) (*types.AIAgentConfig, error)
}

var (
	ErrProviderNotFound    = errors.New("ai provider not found")
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrConfigNotFound      = errors.New("ai agent config not found")
)

// ProviderError ties a resolution failure to the requested agent type.
type ProviderError struct {
	AgentType types.AgentType
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.AgentType, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// CallError is a failed vendor call on an available provider.
type CallError struct {
	AgentType types.AgentType
	Op        string
	Err       error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.AgentType, e.Op, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// FormatSourceContext renders the reference block appended to prompts.
func FormatSourceContext(sources []*types.Source) string {
	if len(sources) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Reference sources:\n")
	n := 0
	for _, s := range sources {
		if s == nil {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. %s (%s)\n", n, s.Title, s.URL)
		text := s.Excerpt
		if text == "" {
			text = s.Summary
		}
		if text = truncate(strings.TrimSpace(text), 500); text != "" {
			b.WriteString("   ")
			b.WriteString(text)
			b.WriteString("\n")
		}
	}
	if n == 0 {
		return ""
	}
	return b.String()
}

func withSourceContext(prompt string, sources []*types.Source) string {
	ctxBlock := FormatSourceContext(sources)
	if ctxBlock == "" {
		return prompt
	}
	return prompt + "\n\n" + ctxBlock
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
