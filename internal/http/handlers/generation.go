package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/skilltree-backend/internal/domain"
	"github.com/yungbote/skilltree-backend/internal/http/response"
	"github.com/yungbote/skilltree-backend/internal/modules/generation"
	"github.com/yungbote/skilltree-backend/internal/platform/apierr"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
)

type GenerationHandler struct {
	log          *logger.Logger
	generation   generation.Usecases
	defaultAgent types.AgentType
	timeout      time.Duration
}

type GenerationHandlerDeps struct {
	Log          *logger.Logger
	Generation   generation.Usecases
	DefaultAgent types.AgentType
	// Timeout bounds one generation request; zero means none.
	Timeout time.Duration
}

func NewGenerationHandler(deps GenerationHandlerDeps) *GenerationHandler {
	agent := deps.DefaultAgent
	if agent == "" {
		agent = types.AgentGemini
	}
	return &GenerationHandler{
		log:          deps.Log.With("handler", "GenerationHandler"),
		generation:   deps.Generation,
		defaultAgent: agent,
		timeout:      deps.Timeout,
	}
}

// POST /api/generation/domain
func (h *GenerationHandler) GenerateDomain(c *gin.Context) {
	var req generation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in, err := h.validateGenerate(req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}

	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	out, err := h.generation.GenerateDomain(ctx, in)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, generation.FailedResponse(in.Topic, out.RunID, err))
		return
	}
	response.RespondOK(c, generation.CompletedResponse(out))
}

func (h *GenerationHandler) validateGenerate(req generation.Request) (generation.GenerateDomainInput, error) {
	in := generation.GenerateDomainInput{
		Topic:      strings.TrimSpace(req.Topic),
		MaxSources: generation.DefaultMaxSources,
	}
	if in.Topic == "" {
		return in, apierr.BadRequest("invalid_topic", errors.New("topic is required"))
	}
	if req.MaxSources != nil {
		n := *req.MaxSources
		if n < 1 || n > generation.MaxMaxSources {
			return in, apierr.BadRequest("invalid_max_sources",
				fmt.Errorf("maxSources must be between 1 and %d", generation.MaxMaxSources))
		}
		in.MaxSources = n
	}
	agent, ok := generation.ResolveAgentType(req.AIAgentType, h.defaultAgent)
	if !ok {
		return in, apierr.BadRequest("invalid_ai_agent_type", fmt.Errorf("unknown aiAgentType %q", req.AIAgentType))
	}
	in.AgentType = agent
	return in, nil
}

type analyzeRequest struct {
	AIAgentType      string `json:"aiAgentType"`
	SourceIDs        []uint `json:"sourceIds"`
	ExtractionPrompt string `json:"extractionPrompt"`
}

// POST /api/generation/analyze
func (h *GenerationHandler) AnalyzeSources(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	agent, ok := generation.ResolveAgentType(req.AIAgentType, h.defaultAgent)
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "invalid_ai_agent_type", fmt.Errorf("unknown aiAgentType %q", req.AIAgentType))
		return
	}
	out, err := h.generation.AnalyzeSources(c.Request.Context(), generation.AnalyzeSourcesInput{
		AgentType:        agent,
		SourceIDs:        req.SourceIDs,
		ExtractionPrompt: req.ExtractionPrompt,
	})
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, out)
}

// GET /api/generation/runs/:id
func (h *GenerationHandler) GetRun(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	run, err := h.generation.GetRun(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, run)
}

// GET /api/generation/runs?limit=
func (h *GenerationHandler) ListRuns(c *gin.Context) {
	runs, err := h.generation.ListRuns(c.Request.Context(), queryInt(c, "limit", 50))
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, gin.H{"runs": runs})
}
