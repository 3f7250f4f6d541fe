package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canvas-gateway-api/internal/dto"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
	"github.com/noah-isme/canvas-gateway-api/pkg/response"
)

type courseNicknameService interface {
	List(ctx context.Context, userID string) ([]models.CourseNickname, error)
	Set(ctx context.Context, userID string, courseID int64, req dto.CourseNicknameRequest) (*models.CourseNickname, error)
	Delete(ctx context.Context, userID string, courseID int64) error
}

// CourseNameHandler manages per-user course nicknames.
type CourseNameHandler struct {
	nicknames courseNicknameService
}

// NewCourseNameHandler builds the handler.
func NewCourseNameHandler(nicknames courseNicknameService) *CourseNameHandler {
	return &CourseNameHandler{nicknames: nicknames}
}

// List godoc
// @Summary List custom course names
// @Tags Course Names
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /course-names [get]
func (h *CourseNameHandler) List(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	nicknames, err := h.nicknames.List(c.Request.Context(), sess.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nicknames, nil)
}

// Set godoc
// @Summary Set a custom course name
// @Tags Course Names
// @Accept json
// @Produce json
// @Param user_id query string true "User ID"
// @Param courseId path int true "Course ID"
// @Param payload body dto.CourseNicknameRequest true "Nickname"
// @Success 200 {object} response.Envelope
// @Router /course-names/{courseId} [put]
func (h *CourseNameHandler) Set(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	courseID, ok := int64Param(c, "courseId")
	if !ok {
		return
	}
	var req dto.CourseNicknameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course name payload"))
		return
	}
	nickname, err := h.nicknames.Set(c.Request.Context(), sess.UserID, courseID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, nickname, nil)
}

// Delete godoc
// @Summary Remove a custom course name
// @Tags Course Names
// @Produce json
// @Param user_id query string true "User ID"
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /course-names/{courseId} [delete]
func (h *CourseNameHandler) Delete(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	courseID, ok := int64Param(c, "courseId")
	if !ok {
		return
	}
	if err := h.nicknames.Delete(c.Request.Context(), sess.UserID, courseID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": true}, nil)
}
