package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skilltree-backend/internal/http/response"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/services"
)

type AgentHandler struct {
	log    *logger.Logger
	agents services.AgentConfigService
}

func NewAgentHandler(log *logger.Logger, agents services.AgentConfigService) *AgentHandler {
	return &AgentHandler{log: log.With("handler", "AgentHandler"), agents: agents}
}

// GET /api/agents
func (h *AgentHandler) ListAgents(c *gin.Context) {
	out, err := h.agents.ListAgentConfigs(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, gin.H{"agents": out})
}

// PUT /api/agents/:type
func (h *AgentHandler) PutAgent(c *gin.Context) {
	var in services.AgentConfigInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in.AgentType = c.Param("type")
	cfg, err := h.agents.UpsertAgentConfig(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	h.log.Info("Agent config updated", "agent_type", string(cfg.AgentType), "active", cfg.Active)
	response.RespondOK(c, cfg)
}
