package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canvas-gateway-api/internal/models"
	"github.com/noah-isme/canvas-gateway-api/internal/service"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
	"github.com/noah-isme/canvas-gateway-api/pkg/response"
)

type assignmentService interface {
	Classify(ctx context.Context, sess *service.Session, courseID int64) (models.AssignmentBuckets, error)
	UpcomingTests(ctx context.Context, sess *service.Session, courseID int64) ([]models.UpcomingTest, error)
	Feedback(ctx context.Context, sess *service.Session, courseID, assignmentID int64) (*models.AssignmentFeedback, error)
}

type assignmentExporter interface {
	ExportAssignments(ctx context.Context, sess *service.Session, courseID int64, format string) (*service.ExportFile, error)
}

// AssignmentHandler serves assignment endpoints.
type AssignmentHandler struct {
	assignments assignmentService
	exporter    assignmentExporter
}

// NewAssignmentHandler builds an assignment handler.
func NewAssignmentHandler(assignments assignmentService, exporter assignmentExporter) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, exporter: exporter}
}

// List godoc
// @Summary Classify course assignments
// @Description Splits assignments into upcoming, past and missing for the current user.
// @Tags Assignments
// @Produce json
// @Param user_id query string true "User ID"
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /class-assignments/{courseId} [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	courseID, ok := int64Param(c, "courseId")
	if !ok {
		return
	}
	buckets, err := h.assignments.Classify(c.Request.Context(), sess, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if buckets.Total() == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "No assignments found"))
		return
	}
	response.JSON(c, http.StatusOK, buckets, nil)
}

// Export godoc
// @Summary Download course assignments
// @Tags Assignments
// @Produce text/csv
// @Produce application/pdf
// @Param user_id query string true "User ID"
// @Param courseId path int true "Course ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /class-assignments/{courseId}/export [get]
func (h *AssignmentHandler) Export(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	courseID, ok := int64Param(c, "courseId")
	if !ok {
		return
	}
	file, err := h.exporter.ExportAssignments(c.Request.Context(), sess, courseID, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Payload)
}

// Feedback godoc
// @Summary Get grader feedback on an assignment
// @Tags Assignments
// @Produce json
// @Param user_id query string true "User ID"
// @Param courseId path int true "Course ID"
// @Param assignmentId path int true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /class-assignments/{courseId}/{assignmentId}/feedback [get]
func (h *AssignmentHandler) Feedback(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	courseID, ok := int64Param(c, "courseId")
	if !ok {
		return
	}
	assignmentID, ok := int64Param(c, "assignmentId")
	if !ok {
		return
	}
	feedback, err := h.assignments.Feedback(c.Request.Context(), sess, courseID, assignmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feedback, nil)
}

// UpcomingTests godoc
// @Summary List upcoming tests and quizzes
// @Tags Assignments
// @Produce json
// @Param user_id query string true "User ID"
// @Param courseId path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /upcoming-tests/{courseId} [get]
func (h *AssignmentHandler) UpcomingTests(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	courseID, ok := int64Param(c, "courseId")
	if !ok {
		return
	}
	tests, err := h.assignments.UpcomingTests(c.Request.Context(), sess, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tests, nil)
}
