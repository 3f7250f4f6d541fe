package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/noah-isme/canvas-gateway-api/internal/service"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
	"github.com/noah-isme/canvas-gateway-api/pkg/response"
)

// ContextSessionKey is the gin context key storing the Canvas session.
const ContextSessionKey = "canvasSession"

type sessionOpener interface {
	Open(ctx context.Context, userID string) (*service.Session, error)
}

type userIDBody struct {
	UserID string `json:"user_id"`
}

// CanvasSession opens a Canvas session for the user named by the user_id
// query parameter, or by the JSON body of write requests.
func CanvasSession(opener sessionOpener) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.Query("user_id"))
		if userID == "" && c.Request.Method != http.MethodGet && c.Request.ContentLength != 0 {
			var body userIDBody
			if err := c.ShouldBindBodyWith(&body, binding.JSON); err == nil {
				userID = strings.TrimSpace(body.UserID)
			}
		}
		if userID == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "User ID is required"))
			c.Abort()
			return
		}

		sess, err := opener.Open(c.Request.Context(), userID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, sess)
		c.Next()
	}
}

// SessionFromContext returns the session stored by CanvasSession.
func SessionFromContext(c *gin.Context) *service.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	sess, ok := value.(*service.Session)
	if !ok {
		return nil
	}
	return sess
}
