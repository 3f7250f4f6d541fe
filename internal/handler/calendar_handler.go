package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/canvas-gateway-api/internal/dto"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	"github.com/noah-isme/canvas-gateway-api/internal/service"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
	"github.com/noah-isme/canvas-gateway-api/pkg/response"
)

type calendarService interface {
	Range(startDate, endDate string) (models.CalendarRange, error)
	Events(ctx context.Context, sess *service.Session, r models.CalendarRange) ([]models.CalendarEvent, error)
}

// CalendarHandler serves calendar events.
type CalendarHandler struct {
	calendar  calendarService
	validator *validator.Validate
}

// NewCalendarHandler builds a calendar handler.
func NewCalendarHandler(calendar calendarService, validate *validator.Validate) *CalendarHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &CalendarHandler{calendar: calendar, validator: validate}
}

// Events godoc
// @Summary List the user's calendar events
// @Tags Calendar
// @Produce json
// @Param user_id query string true "User ID"
// @Param start_date query string false "YYYY-MM-DD, defaults to today"
// @Param end_date query string false "YYYY-MM-DD, defaults to start + 14 days"
// @Success 200 {object} response.Envelope
// @Router /calendar-events [get]
func (h *CalendarHandler) Events(c *gin.Context) {
	var query dto.CalendarQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid calendar query"))
		return
	}
	if err := h.validator.Struct(query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "dates must be YYYY-MM-DD"))
		return
	}
	sess := sessionFromContext(c)
	if sess == nil {
		return
	}
	r, err := h.calendar.Range(query.StartDate, query.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	events, err := h.calendar.Events(c.Request.Context(), sess, r)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, map[string]interface{}{
		"start_date": r.Start.Format("2006-01-02"),
		"end_date":   r.End.Format("2006-01-02"),
	})
}
