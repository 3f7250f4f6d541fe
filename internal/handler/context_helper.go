package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canvas-gateway-api/internal/middleware"
	"github.com/noah-isme/canvas-gateway-api/internal/service"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
	"github.com/noah-isme/canvas-gateway-api/pkg/response"
)

// sessionFromContext writes an error response and returns nil when the
// session middleware did not run.
func sessionFromContext(c *gin.Context) *service.Session {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "canvas session missing"))
		return nil
	}
	return sess
}

// int64Param parses a positive numeric path parameter, writing a validation
// error on failure.
func int64Param(c *gin.Context, name string) (int64, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid "+name))
		return 0, false
	}
	return id, true
}
