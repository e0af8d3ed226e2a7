package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skilltree-backend/internal/http/response"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/services"
)

type SourceHandler struct {
	log     *logger.Logger
	sources services.SourceService
}

func NewSourceHandler(log *logger.Logger, sources services.SourceService) *SourceHandler {
	return &SourceHandler{log: log.With("handler", "SourceHandler"), sources: sources}
}

// GET /api/sources?limit=&offset=
func (h *SourceHandler) ListSources(c *gin.Context) {
	out, err := h.sources.GetAllSources(c.Request.Context(), queryInt(c, "limit", 100), queryInt(c, "offset", 0))
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, gin.H{"sources": out})
}

// GET /api/sources/:id
func (h *SourceHandler) GetSource(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	src, err := h.sources.GetSourceByID(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, src)
}

// GET /api/sources/domain/:domainId
func (h *SourceHandler) ListDomainSources(c *gin.Context) {
	id, err := parseUintParam(c, "domainId")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out, err := h.sources.GetSourcesForDomain(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, gin.H{"sources": out})
}

type importRequest struct {
	URL string `json:"url"`
}

// POST /api/sources/import
func (h *SourceHandler) ImportSource(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_url", errors.New("url is required"))
		return
	}
	src, err := h.sources.ImportByURL(c.Request.Context(), strings.TrimSpace(req.URL))
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, src)
}
