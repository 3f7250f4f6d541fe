package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canvas-gateway-api/internal/dto"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	"github.com/noah-isme/canvas-gateway-api/internal/service"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
	"github.com/noah-isme/canvas-gateway-api/pkg/response"
)

type courseService interface {
	ListAll(ctx context.Context, sess *service.Session) ([]models.Course, error)
	ListCurrent(ctx context.Context, sess *service.Session) ([]models.Course, error)
	FindCourseID(ctx context.Context, sess *service.Session, name string) (models.CourseMatch, bool, error)
	Syllabus(ctx context.Context, sess *service.Session, courseID int64) (*models.Syllabus, error)
}

type professorService interface {
	Resolve(ctx context.Context, sess *service.Session, courseID int64) []models.Professor
}

// CourseHandler serves course listing and lookup endpoints.
type CourseHandler struct {
	courses    courseService
	professors professorService
}

// NewCourseHandler builds a course handler.
func NewCourseHandler(courses courseService, professors professorService) *CourseHandler {
	return &CourseHandler{courses: courses, professors: professors}
}

// AllCourseIDs godoc
// @Summary List course ids
// @Tags Courses
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /all-courses-id [get]
func (h *CourseHandler) AllCourseIDs(c *gin.Context) {
	courses, ok := h.listAll(c)
	if !ok {
		return
	}
	ids := make([]int64, 0, len(courses))
	for _, course := range courses {
		ids = append(ids, course.ID)
	}
	response.JSON(c, http.StatusOK, dto.CourseIDsResponse{CourseIDs: ids, Courses: courses}, nil)
}

// AllClasses godoc
// @Summary List every enrolled course
// @Tags Courses
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /all-classes [get]
func (h *CourseHandler) AllClasses(c *gin.Context) {
	courses, ok := h.listAll(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// CurrentClasses godoc
// @Summary List current-term courses
// @Tags Courses
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /current-classes [get]
func (h *CourseHandler) CurrentClasses(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	courses, err := h.courses.ListCurrent(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	if len(courses) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "No current courses found"))
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// FindCourse godoc
// @Summary Resolve a course name to its id
// @Tags Courses
// @Produce json
// @Param user_id query string true "User ID"
// @Param name query string true "Course name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /find-course [get]
func (h *CourseHandler) FindCourse(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	match, found, err := h.courses.FindCourseID(c.Request.Context(), sess, c.Query("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if !found {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "Course not found"))
		return
	}
	response.JSON(c, http.StatusOK, match, nil)
}

// Syllabus godoc
// @Summary Get the course syllabus
// @Tags Courses
// @Produce json
// @Param user_id query string true "User ID"
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /syllabus/{courseId} [get]
func (h *CourseHandler) Syllabus(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	courseID, ok := int64Param(c, "courseId")
	if !ok {
		return
	}
	syllabus, err := h.courses.Syllabus(c.Request.Context(), sess, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, syllabus, nil)
}

// Professors godoc
// @Summary Resolve who teaches a course
// @Description Never fails; falls back to announcement authors and then a placeholder.
// @Tags Courses
// @Produce json
// @Param user_id query string true "User ID"
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /class-professors/{courseId} [get]
func (h *CourseHandler) Professors(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	courseID, ok := int64Param(c, "courseId")
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.professors.Resolve(c.Request.Context(), sess, courseID), nil)
}

func (h *CourseHandler) listAll(c *gin.Context) ([]models.Course, bool) {
	sess := sessionFromContext(c)
	if sess == nil {
		return nil, false
	}
	courses, err := h.courses.ListAll(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if len(courses) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "No courses found"))
		return nil, false
	}
	return courses, true
}
