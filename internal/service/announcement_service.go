package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/canvas"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
)

// AnnouncementService reads course announcements.
type AnnouncementService struct {
	cache  *CacheService
	logger *zap.Logger
}

// NewAnnouncementService constructs an announcement service.
func NewAnnouncementService(cache *CacheService, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{cache: cache, logger: logger}
}

// ForCourse returns the course's announcements in upstream order. The
// returned slice is never shared with the cache.
func (s *AnnouncementService) ForCourse(ctx context.Context, sess *Session, courseID int64) ([]models.Announcement, error) {
	args := map[string]int64{"course_id": courseID}
	announcements, _, err := Remember(ctx, s.cache, sess.Scope, CacheAnnouncements, args, 0, func(ctx context.Context) ([]models.Announcement, error) {
		topics, err := sess.Client.ListDiscussionTopics(ctx, courseID, true)
		if err != nil {
			return nil, err
		}
		out := make([]models.Announcement, 0, len(topics))
		for _, topic := range topics {
			out = append(out, toAnnouncement(topic))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return announcements, nil
}

func toAnnouncement(topic canvas.DiscussionTopic) models.Announcement {
	author := topic.Author
	if author == nil {
		author = map[string]interface{}{}
	}
	return models.Announcement{
		ID:       topic.ID,
		Title:    topic.Title,
		Message:  topic.Message,
		PostedAt: topic.PostedAt,
		Author:   author,
	}
}
