package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/canvas-gateway-api/internal/dto"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	"github.com/noah-isme/canvas-gateway-api/internal/service"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
	"github.com/noah-isme/canvas-gateway-api/pkg/response"
)

type userService interface {
	Init(ctx context.Context, sess *service.Session) (*models.CanvasUser, error)
	Profile(ctx context.Context, sess *service.Session) (*models.UserProfile, error)
}

// UserHandler serves the Canvas account endpoints.
type UserHandler struct {
	users     userService
	validator *validator.Validate
}

// NewUserHandler builds a user handler.
func NewUserHandler(users userService, validate *validator.Validate) *UserHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &UserHandler{users: users, validator: validate}
}

// Init godoc
// @Summary Open a Canvas session
// @Description Resolves the user's Canvas credentials and returns the Canvas account behind them.
// @Tags Session
// @Accept json
// @Produce json
// @Param payload body dto.InitRequest true "User"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /init [post]
func (h *UserHandler) Init(c *gin.Context) {
	var req dto.InitRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		req.UserID = c.Query("user_id")
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "User ID is required"))
		return
	}
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	user, err := h.users.Init(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// Profile godoc
// @Summary Get the user's Canvas profile
// @Tags Users
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /user-profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	profile, err := h.users.Profile(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
