package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/models"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// CalendarService lists the user's calendar events.
type CalendarService struct {
	defaultDays int
	logger      *zap.Logger
	now         func() time.Time
}

// NewCalendarService constructs the calendar service. defaultDays bounds
// the window when no end date is given.
func NewCalendarService(defaultDays int, logger *zap.Logger) *CalendarService {
	if defaultDays <= 0 {
		defaultDays = 14
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{defaultDays: defaultDays, logger: logger, now: time.Now}
}

// Range parses YYYY-MM-DD bounds. An empty start means today and an empty
// end means start plus the default window.
func (s *CalendarService) Range(startDate, endDate string) (models.CalendarRange, error) {
	start := truncateDay(s.now())
	if v := strings.TrimSpace(startDate); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return models.CalendarRange{}, appErrors.Clone(appErrors.ErrValidation, "start_date must be YYYY-MM-DD")
		}
		start = parsed
	}
	end := start.AddDate(0, 0, s.defaultDays)
	if v := strings.TrimSpace(endDate); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return models.CalendarRange{}, appErrors.Clone(appErrors.ErrValidation, "end_date must be YYYY-MM-DD")
		}
		end = parsed
	}
	if end.Before(start) {
		return models.CalendarRange{}, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	return models.CalendarRange{Start: start, End: end}, nil
}

// Events returns the user's own calendar events inside r.
func (s *CalendarService) Events(ctx context.Context, sess *Session, r models.CalendarRange) ([]models.CalendarEvent, error) {
	user, err := sess.CurrentUser(ctx)
	if err != nil {
		return nil, mapUpstreamError(err, "current user")
	}
	raw, err := sess.Client.ListCalendarEvents(ctx, user.ID, r.Start, r.End)
	if err != nil {
		return nil, mapUpstreamError(err, "calendar events")
	}
	events := make([]models.CalendarEvent, 0, len(raw))
	for _, e := range raw {
		events = append(events, models.CalendarEvent{
			ID:           e.ID,
			Title:        e.Title,
			StartAt:      e.StartAt,
			EndAt:        e.EndAt,
			LocationName: e.LocationName,
			Description:  e.Description,
		})
	}
	s.logger.Debug("calendar events listed", zap.String("user_id", sess.UserID), zap.Int("count", len(events)))
	return events, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
