package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/canvas"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
)

type courseAnnouncements interface {
	ForCourse(ctx context.Context, sess *Session, courseID int64) ([]models.Announcement, error)
}

// ProfessorService identifies who teaches a course.
type ProfessorService struct {
	cache         *CacheService
	announcements courseAnnouncements
	logger        *zap.Logger
}

// NewProfessorService constructs a professor resolver.
func NewProfessorService(cache *CacheService, announcements courseAnnouncements, logger *zap.Logger) *ProfessorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorService{cache: cache, announcements: announcements, logger: logger}
}

// Resolve never fails and always returns at least one professor. Teacher and
// TA enrollments are tried first; when they yield nobody (or only the
// placeholder name) announcement authors are used; otherwise the placeholder.
// Only the enrollment result is cached.
func (s *ProfessorService) Resolve(ctx context.Context, sess *Session, courseID int64) []models.Professor {
	args := map[string]int64{"course_id": courseID}
	professors, _, err := Remember(ctx, s.cache, sess.Scope, CacheProfessors, args, 0, func(ctx context.Context) ([]models.Professor, error) {
		return s.fromEnrollments(ctx, sess, courseID)
	})
	if err != nil {
		s.logger.Warn("professor enrollments unavailable", zap.Int64("course_id", courseID), zap.Error(err))
		professors = nil
	}

	if !needsInference(professors) {
		return professors
	}

	if inferred := s.fromAnnouncements(ctx, sess, courseID); len(inferred) > 0 {
		return inferred
	}
	return []models.Professor{models.PlaceholderProfessor()}
}

func needsInference(professors []models.Professor) bool {
	if len(professors) == 0 {
		return true
	}
	return len(professors) == 1 && professors[0].Name == models.PlaceholderProfessorName
}

func (s *ProfessorService) fromEnrollments(ctx context.Context, sess *Session, courseID int64) ([]models.Professor, error) {
	enrollments, err := sess.Client.ListEnrollments(ctx, courseID, canvas.EnrollmentFilter{
		Types: []string{canvas.EnrollmentTeacher, canvas.EnrollmentTA},
	})
	if err != nil {
		return nil, err
	}

	professors := make([]models.Professor, 0, len(enrollments))
	seen := make(map[int64]bool, len(enrollments))
	for _, enrollment := range enrollments {
		if seen[enrollment.UserID] {
			continue
		}
		user, err := sess.Client.GetUser(ctx, enrollment.UserID)
		if err != nil {
			s.logger.Debug("skip professor", zap.Int64("course_id", courseID), zap.Int64("user_id", enrollment.UserID), zap.Error(err))
			continue
		}
		seen[enrollment.UserID] = true
		professors = append(professors, models.Professor{
			ID:        user.ID,
			Name:      user.Name,
			Role:      roleName(enrollment),
			Email:     optionalString(user.Email),
			AvatarURL: optionalString(user.AvatarURL),
			Source:    models.ProfessorSourceEnrollment,
		})
	}
	return professors, nil
}

func (s *ProfessorService) fromAnnouncements(ctx context.Context, sess *Session, courseID int64) []models.Professor {
	if s.announcements == nil {
		return nil
	}
	announcements, err := s.announcements.ForCourse(ctx, sess, courseID)
	if err != nil {
		s.logger.Debug("announcements unavailable for professor inference", zap.Int64("course_id", courseID), zap.Error(err))
		return nil
	}

	professors := make([]models.Professor, 0)
	seen := map[string]bool{}
	for _, announcement := range announcements {
		name := strings.TrimSpace(announcement.AuthorString("display_name"))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		professors = append(professors, models.Professor{
			ID:        announcement.AuthorID(),
			Name:      name,
			Role:      models.DefaultProfessorRole,
			AvatarURL: optionalString(announcement.AuthorString("avatar_image_url")),
			Source:    models.ProfessorSourceAnnouncement,
		})
	}
	return professors
}

// roleName prefers a custom course role over the enrollment type.
func roleName(e canvas.Enrollment) string {
	if e.Role != "" && e.Role != e.Type {
		return e.Role
	}
	switch e.Type {
	case canvas.EnrollmentTA:
		return "TA"
	default:
		return models.DefaultProfessorRole
	}
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
