package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canvas-gateway-api/internal/middleware"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	"github.com/noah-isme/canvas-gateway-api/internal/service"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
	"github.com/noah-isme/canvas-gateway-api/pkg/response"
)

type courseDataService interface {
	AssembleFields(ctx context.Context, sess *service.Session, courseID int64, fields []string) (models.CompleteCourseData, bool, error)
}

// CourseDataHandler serves the complete course document.
type CourseDataHandler struct {
	service courseDataService
}

// NewCourseDataHandler builds the handler.
func NewCourseDataHandler(svc courseDataService) *CourseDataHandler {
	return &CourseDataHandler{service: svc}
}

// Get godoc
// @Summary Get everything about a course
// @Description Each field is fetched independently; failed fields are null and listed under errors.
// @Tags Courses
// @Produce json
// @Param user_id query string true "User ID"
// @Param courseId path int true "Course ID"
// @Param include query string false "Comma separated field names"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /course-data/{courseId} [get]
func (h *CourseDataHandler) Get(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	courseID, ok := int64Param(c, "courseId")
	if !ok {
		return
	}
	fields, err := parseInclude(c.Query("include"))
	if err != nil {
		response.Error(c, err)
		return
	}

	doc, hit, err := h.service.AssembleFields(c.Request.Context(), sess, courseID, fields)
	if err != nil {
		response.Error(c, err)
		return
	}
	if doc.CourseInfo == nil && includes(fields, models.FieldCourseInfo) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Course not found"))
		return
	}
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, doc, middleware.ExtractMeta(c))
}

func parseInclude(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	fields := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		field := strings.TrimSpace(part)
		if field == "" {
			continue
		}
		if !models.IsCourseDataField(field) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown include field "+field)
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// includes treats an empty selection as every field.
func includes(fields []string, name string) bool {
	if len(fields) == 0 {
		return true
	}
	for _, field := range fields {
		if field == name {
			return true
		}
	}
	return false
}
