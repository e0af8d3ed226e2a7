package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skilltree-backend/internal/ai"
	"github.com/yungbote/skilltree-backend/internal/platform/apierr"
	"github.com/yungbote/skilltree-backend/internal/services"
)

// toAPIError maps service and provider errors onto HTTP statuses.
func toAPIError(err error) *apierr.Error {
	var ae *apierr.Error
	var callErr *ai.CallError
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, services.ErrInvalidInput):
		return apierr.BadRequest("invalid_input", err)
	case errors.Is(err, services.ErrNotFound):
		return apierr.NotFound("not_found", err)
	case errors.Is(err, services.ErrDomainNameTaken):
		return apierr.Conflict("domain_name_taken", err)
	case errors.Is(err, ai.ErrProviderNotFound):
		return apierr.BadRequest("ai_provider_not_found", err)
	case errors.Is(err, ai.ErrProviderUnavailable):
		return apierr.New(http.StatusServiceUnavailable, "ai_provider_unavailable", err)
	case errors.As(err, &callErr):
		return apierr.New(http.StatusBadGateway, "ai_call_failed", err)
	default:
		return apierr.Internal("internal_error", err)
	}
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := strings.TrimSpace(c.Param(name))
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || v == 0 {
		return 0, apierr.BadRequest("invalid_"+name, errors.New("invalid "+name))
	}
	return uint(v), nil
}

func queryInt(c *gin.Context, name string, def int) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
