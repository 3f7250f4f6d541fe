package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/dto"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
	"github.com/noah-isme/canvas-gateway-api/pkg/jobs"
)

const aggregationPool = "course_aggregation"

type courseLister interface {
	ListAll(ctx context.Context, sess *Session) ([]models.Course, error)
}

// AggregationOptions selects the per-course work fanned out to the pool.
type AggregationOptions struct {
	Announcements bool
	Professors    bool
}

// courseContribution is what one per-course task hands back to the collector.
type courseContribution struct {
	CourseID      int64
	CourseName    string
	Announcements []models.Announcement
	Professors    []models.Professor
	// AnnouncementsErr drops only this course's announcements from the merge.
	AnnouncementsErr error
}

// AggregationService fans per-course work out across a bounded pool and
// merges the results on the calling goroutine.
type AggregationService struct {
	courses       courseLister
	announcements courseAnnouncements
	professors    professorResolver
	pool          *jobs.Pool[courseContribution]
	metrics       *MetricsService
	logger        *zap.Logger
}

// AggregationServiceParams groups orchestrator dependencies.
type AggregationServiceParams struct {
	Courses       courseLister
	Announcements courseAnnouncements
	Professors    professorResolver
	Metrics       *MetricsService
	Logger        *zap.Logger
	MaxWorkers    int
}

// NewAggregationService constructs the orchestrator.
func NewAggregationService(params AggregationServiceParams) *AggregationService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &AggregationService{
		courses:       params.Courses,
		announcements: params.Announcements,
		professors:    params.Professors,
		pool:          jobs.NewPool[courseContribution](aggregationPool, jobs.PoolConfig{MaxWorkers: params.MaxWorkers, Logger: params.Logger}),
		metrics:       params.Metrics,
		logger:        params.Logger,
	}
}

// AllData returns every course, the user profile, merged announcements and
// per-course professors.
func (s *AggregationService) AllData(ctx context.Context, sess *Session) (dto.AllDataResponse, error) {
	courses, err := s.listCourses(ctx, sess)
	if err != nil {
		return nil, err
	}

	result := dto.AllDataResponse{"all_classes": dto.OK(courses)}
	if user, err := sess.CurrentUser(ctx); err != nil {
		result["user_profile"] = dto.Failed(mapUpstreamError(err, "current user").Error())
	} else {
		result["user_profile"] = dto.OK(models.CanvasUser{ID: user.ID, Name: user.Name, Email: user.Email, AvatarURL: user.AvatarURL})
	}

	announcements, professors := s.fanOut(ctx, sess, courses, AggregationOptions{Announcements: true, Professors: true})
	result["announcements"] = dto.OK(announcements)
	for courseID, list := range professors {
		result[fmt.Sprintf("class_professors_%d", courseID)] = dto.OK(list)
	}
	return result, nil
}

// Announcements merges announcements across every course in completion order.
func (s *AggregationService) Announcements(ctx context.Context, sess *Session) ([]models.Announcement, error) {
	courses, err := s.listCourses(ctx, sess)
	if err != nil {
		return nil, err
	}
	announcements, _ := s.fanOut(ctx, sess, courses, AggregationOptions{Announcements: true})
	return announcements, nil
}

func (s *AggregationService) listCourses(ctx context.Context, sess *Session) ([]models.Course, error) {
	courses, err := s.courses.ListAll(ctx, sess)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No courses found")
	}
	return courses, nil
}

// fanOut runs one task per course. Tasks are detached from request
// cancellation and the call returns only after every task has finished. A
// failed announcement fetch excludes that course's announcements but keeps its
// professors; a panicking task contributes nothing.
func (s *AggregationService) fanOut(ctx context.Context, sess *Session, courses []models.Course, opts AggregationOptions) ([]models.Announcement, map[int64][]models.Professor) {
	tasks := make([]jobs.Task[courseContribution], 0, len(courses))
	for _, course := range courses {
		course := course
		tasks = append(tasks, jobs.Task[courseContribution]{
			ID: fmt.Sprintf("course-%d", course.ID),
			Run: func(ctx context.Context) (courseContribution, error) {
				contribution := courseContribution{CourseID: course.ID, CourseName: course.Name}
				if opts.Announcements {
					announcements, err := s.announcements.ForCourse(ctx, sess, course.ID)
					if err != nil {
						contribution.AnnouncementsErr = err
					} else {
						contribution.Announcements = announcements
					}
				}
				if opts.Professors {
					contribution.Professors = s.professors.Resolve(ctx, sess, course.ID)
				}
				return contribution, nil
			},
		})
	}

	merged := make([]models.Announcement, 0)
	professors := make(map[int64][]models.Professor)
	summary := s.pool.Run(context.WithoutCancel(ctx), tasks, func(outcome jobs.Outcome[courseContribution]) {
		if outcome.Err != nil {
			s.metrics.RecordTaskFailure(aggregationPool)
			return
		}
		c := outcome.Value
		if c.AnnouncementsErr != nil {
			s.metrics.RecordTaskFailure(aggregationPool)
			s.logger.Warn("course announcements failed",
				zap.String("user_id", sess.UserID),
				zap.Int64("course_id", c.CourseID),
				zap.Error(c.AnnouncementsErr),
			)
		}
		for _, announcement := range c.Announcements {
			announcement.CourseID = c.CourseID
			announcement.CourseName = c.CourseName
			merged = append(merged, announcement)
		}
		if opts.Professors {
			professors[c.CourseID] = c.Professors
		}
	})

	s.logger.Debug("course aggregation finished",
		zap.String("user_id", sess.UserID),
		zap.Int("courses", summary.Tasks),
		zap.Int("failed", summary.Failed),
		zap.Int("workers", summary.Workers),
	)
	return merged, professors
}
