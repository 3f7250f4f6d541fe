package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/canvas-gateway-api/internal/dto"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	"github.com/noah-isme/canvas-gateway-api/internal/service"
	"github.com/noah-isme/canvas-gateway-api/pkg/response"
)

type aggregationService interface {
	AllData(ctx context.Context, sess *service.Session) (dto.AllDataResponse, error)
	Announcements(ctx context.Context, sess *service.Session) ([]models.Announcement, error)
}

// AggregateHandler serves endpoints that fan out across every course.
type AggregateHandler struct {
	aggregation aggregationService
}

// NewAggregateHandler builds the handler.
func NewAggregateHandler(aggregation aggregationService) *AggregateHandler {
	return &AggregateHandler{aggregation: aggregation}
}

// Announcements godoc
// @Summary Announcements across every course
// @Tags Aggregate
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcements [get]
func (h *AggregateHandler) Announcements(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	announcements, err := h.aggregation.Announcements(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcements, nil)
}

// AllData godoc
// @Summary Everything for the dashboard
// @Description Keys are all_classes, user_profile, announcements and class_professors_{course_id}; each value is a {data, error} pair.
// @Tags Aggregate
// @Produce json
// @Param user_id query string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /all-data [get]
func (h *AggregateHandler) AllData(c *gin.Context) {
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	data, err := h.aggregation.AllData(c.Request.Context(), sess)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}
