package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/dto"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
)

type courseNicknameRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.CourseNickname, error)
	Upsert(ctx context.Context, nickname *models.CourseNickname) error
	Delete(ctx context.Context, userID string, courseID int64) (bool, error)
}

// CourseNicknameService manages custom course names per user.
type CourseNicknameService struct {
	repo      courseNicknameRepository
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewCourseNicknameService constructs the service. repo is nil when no database is configured.
func NewCourseNicknameService(repo courseNicknameRepository, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *CourseNicknameService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseNicknameService{repo: repo, validator: validate, metrics: metrics, logger: logger}
}

// List returns the user's nicknames.
func (s *CourseNicknameService) List(ctx context.Context, userID string) ([]models.CourseNickname, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	start := time.Now()
	nicknames, err := s.repo.ListByUser(ctx, userID)
	s.metrics.ObserveDBQuery("list_course_nicknames", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course names")
	}
	if nicknames == nil {
		nicknames = []models.CourseNickname{}
	}
	return nicknames, nil
}

// Set stores a nickname for the course.
func (s *CourseNicknameService) Set(ctx context.Context, userID string, courseID int64, req dto.CourseNicknameRequest) (*models.CourseNickname, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	req.Nickname = strings.TrimSpace(req.Nickname)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course name payload")
	}
	if courseID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid course id")
	}

	nickname := &models.CourseNickname{UserID: userID, CourseID: courseID, Nickname: req.Nickname}
	start := time.Now()
	err := s.repo.Upsert(ctx, nickname)
	s.metrics.ObserveDBQuery("upsert_course_nickname", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save course name")
	}
	s.logger.Info("course name saved", zap.String("user_id", userID), zap.Int64("course_id", courseID))
	return nickname, nil
}

// Delete removes the nickname for the course.
func (s *CourseNicknameService) Delete(ctx context.Context, userID string, courseID int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	start := time.Now()
	removed, err := s.repo.Delete(ctx, userID, courseID)
	s.metrics.ObserveDBQuery("delete_course_nickname", time.Since(start))
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course name")
	}
	if !removed {
		return appErrors.Clone(appErrors.ErrNotFound, "Course name not found")
	}
	return nil
}

func (s *CourseNicknameService) ready() error {
	if s.repo == nil {
		return appErrors.Clone(appErrors.ErrUnavailable, "course names require a database")
	}
	return nil
}
