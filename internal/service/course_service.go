package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/canvas"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
)

// CourseService lists and looks up the user's courses.
type CourseService struct {
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
}

// NewCourseService constructs a course service.
func NewCourseService(cache *CacheService, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{cache: cache, logger: logger, now: time.Now}
}

// ListAll returns every enrolled course in upstream order.
func (s *CourseService) ListAll(ctx context.Context, sess *Session) ([]models.Course, error) {
	courses, _, err := Remember(ctx, s.cache, sess.Scope, CacheCourses, nil, 0, func(ctx context.Context) ([]models.Course, error) {
		raw, err := sess.Client.ListCourses(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]models.Course, 0, len(raw))
		for _, c := range raw {
			out = append(out, toCourse(c))
		}
		return out, nil
	})
	if err != nil {
		return nil, mapUpstreamError(err, "courses")
	}
	return courses, nil
}

// ListCurrent returns courses whose name carries the current term token.
func (s *CourseService) ListCurrent(ctx context.Context, sess *Session) ([]models.Course, error) {
	courses, err := s.ListAll(ctx, sess)
	if err != nil {
		return nil, err
	}
	token := TermToken(s.now())
	current := make([]models.Course, 0, len(courses))
	for _, course := range courses {
		if strings.Contains(course.Name, token) {
			current = append(current, course)
		}
	}
	return current, nil
}

// TermToken is the institution's term marker for t: {year}SP for January to
// May, {year}SU for June and July, {year}FA for August to December.
func TermToken(t time.Time) string {
	var term string
	switch month := t.Month(); {
	case month <= time.May:
		term = "SP"
	case month <= time.July:
		term = "SU"
	default:
		term = "FA"
	}
	return fmt.Sprintf("%d%s", t.Year(), term)
}

// FindCourseID resolves a free-text course name. Tiers are tried in order
// and the first course in upstream order wins: exact match ignoring case,
// then substring, then every query word appearing in the name.
func (s *CourseService) FindCourseID(ctx context.Context, sess *Session, name string) (models.CourseMatch, bool, error) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return models.CourseMatch{}, false, appErrors.Clone(appErrors.ErrValidation, "Course name is required")
	}
	courses, err := s.ListAll(ctx, sess)
	if err != nil {
		return models.CourseMatch{}, false, err
	}

	tiers := []func(courseName string) bool{
		func(courseName string) bool { return courseName == query },
		func(courseName string) bool { return strings.Contains(courseName, query) },
		func(courseName string) bool {
			for _, word := range strings.Fields(query) {
				if !strings.Contains(courseName, word) {
					return false
				}
			}
			return true
		},
	}
	for tier, match := range tiers {
		for _, course := range courses {
			if match(strings.ToLower(course.Name)) {
				s.logger.Debug("course matched", zap.String("query", name), zap.Int("tier", tier+1), zap.Int64("course_id", course.ID))
				return models.CourseMatch{CourseID: course.ID, CourseName: course.Name}, true, nil
			}
		}
	}
	return models.CourseMatch{}, false, nil
}

// Syllabus returns the course syllabus body.
func (s *CourseService) Syllabus(ctx context.Context, sess *Session, courseID int64) (*models.Syllabus, error) {
	course, err := sess.Client.GetCourse(ctx, courseID, true)
	if err != nil {
		return nil, mapUpstreamError(err, "course")
	}
	return &models.Syllabus{CourseID: course.ID, CourseName: course.Name, SyllabusBody: course.SyllabusBody}, nil
}

func toCourse(c canvas.Course) models.Course {
	course := models.Course{ID: c.ID, Name: c.Name, StartDate: c.StartAt, EndDate: c.EndAt}
	if c.CourseCode != "" {
		code := c.CourseCode
		course.Code = &code
	}
	if c.WorkflowState != "" {
		state := c.WorkflowState
		course.WorkflowState = &state
	}
	return course
}
