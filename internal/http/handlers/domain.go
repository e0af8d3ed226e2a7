package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skilltree-backend/internal/http/response"
	"github.com/yungbote/skilltree-backend/internal/platform/logger"
	"github.com/yungbote/skilltree-backend/internal/services"
)

type DomainHandler struct {
	log     *logger.Logger
	domains services.DomainService
}

func NewDomainHandler(log *logger.Logger, domains services.DomainService) *DomainHandler {
	return &DomainHandler{log: log.With("handler", "DomainHandler"), domains: domains}
}

// GET /api/domains
func (h *DomainHandler) ListDomains(c *gin.Context) {
	out, err := h.domains.ListDomains(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, gin.H{"domains": out})
}

// GET /api/domains/:id
func (h *DomainHandler) GetDomain(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	d, err := h.domains.GetDomain(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, d)
}

type updateDomainRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// PUT /api/domains/:id
func (h *DomainHandler) UpdateDomain(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	var req updateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	d, err := h.domains.UpdateDomain(c.Request.Context(), id, services.DomainUpdate{Name: req.Name, Description: req.Description})
	if err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	response.RespondOK(c, d)
}

// DELETE /api/domains/:id
func (h *DomainHandler) DeleteDomain(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if err := h.domains.DeleteDomain(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, toAPIError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
