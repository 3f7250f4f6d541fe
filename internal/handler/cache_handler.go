package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canvas-gateway-api/internal/dto"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
	"github.com/noah-isme/canvas-gateway-api/pkg/response"
)

type cacheInvalidator interface {
	Invalidate(ctx context.Context, scope string) error
}

// CacheHandler lets a user drop their cached Canvas data.
type CacheHandler struct {
	cache cacheInvalidator
}

// NewCacheHandler builds the handler.
func NewCacheHandler(cache cacheInvalidator) *CacheHandler {
	return &CacheHandler{cache: cache}
}

// Clear godoc
// @Summary Clear cached Canvas data for the user
// @Tags Cache
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /cache [delete]
func (h *CacheHandler) Clear(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	if err := h.cache.Invalidate(c.Request.Context(), sess.Scope); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear cache"))
		return
	}
	response.JSON(c, http.StatusOK, dto.CacheClearResponse{Cleared: true}, nil)
}
