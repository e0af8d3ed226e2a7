package generation

import (
	"context"
	"errors"

	"github.com/yungbote/skilltree-backend/internal/ai"
	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/services"
)

type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Request is the boundary payload for one generation run.
type Request struct {
	Topic       string `json:"topic"`
	AIAgentType string `json:"aiAgentType,omitempty"`
	MaxSources  *int   `json:"maxSources,omitempty"`
}

// Response is returned for both outcomes. Structured decomposition of the AI
// text is not performed, so the *Created counters stay 0.
type Response struct {
	DomainID             uint   `json:"domainId"`
	DomainName           string `json:"domainName"`
	SourcesUsed          int    `json:"sourcesUsed"`
	CategoriesCreated    int    `json:"categoriesCreated"`
	SubcategoriesCreated int    `json:"subcategoriesCreated"`
	SkillsCreated        int    `json:"skillsCreated"`
	MicroskillsCreated   int    `json:"microskillsCreated"`
	Status               Status `json:"status"`
	RunID                uint   `json:"runId,omitempty"`
	Code                 string `json:"code,omitempty"`
	Error                string `json:"error,omitempty"`
}

func CompletedResponse(out GenerateDomainOutput) Response {
	r := Response{
		SourcesUsed: out.LinksCreated,
		Status:      StatusCompleted,
		RunID:       out.RunID,
	}
	if out.Domain != nil {
		r.DomainID = out.Domain.ID
		r.DomainName = out.Domain.Name
	}
	return r
}

// Failure codes carried by a FAILED response.
const (
	CodeInvalidInput        = "invalid_input"
	CodeProviderNotFound    = "ai_provider_not_found"
	CodeProviderUnavailable = "ai_provider_unavailable"
	CodeProviderCallFailed  = "ai_call_failed"
	CodeDomainNameTaken     = "domain_name_taken"
	CodeTimeout             = "timeout"
	CodeCanceled            = "canceled"
	CodeGenerationFailed    = "generation_failed"
)

var failureMessages = map[string]string{
	CodeInvalidInput:        "invalid generation request",
	CodeProviderNotFound:    "requested AI provider is not configured",
	CodeProviderUnavailable: "requested AI provider is unavailable",
	CodeProviderCallFailed:  "AI provider call failed",
	CodeDomainNameTaken:     "a domain with this name already exists",
	CodeTimeout:             "generation timed out",
	CodeCanceled:            "generation was canceled",
	CodeGenerationFailed:    "domain generation failed",
}

// FailedResponse reports err as a stable code and message. The error text
// itself stays in the logs and the run record.
func FailedResponse(topic string, runID uint, err error) Response {
	code := FailureCode(err)
	return Response{
		DomainID:   0,
		DomainName: topic,
		Status:     StatusFailed,
		RunID:      runID,
		Code:       code,
		Error:      failureMessages[code],
	}
}

func FailureCode(err error) string {
	var callErr *ai.CallError
	switch {
	case errors.Is(err, ai.ErrProviderNotFound):
		return CodeProviderNotFound
	case errors.Is(err, ai.ErrProviderUnavailable):
		return CodeProviderUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.As(err, &callErr):
		return CodeProviderCallFailed
	case errors.Is(err, services.ErrDomainNameTaken):
		return CodeDomainNameTaken
	case errors.Is(err, services.ErrInvalidInput):
		return CodeInvalidInput
	default:
		return CodeGenerationFailed
	}
}

// ResolveAgentType returns def for a blank value.
func ResolveAgentType(raw string, def types.AgentType) (types.AgentType, bool) {
	if raw == "" {
		return def, true
	}
	return types.ParseAgentType(raw)
}
