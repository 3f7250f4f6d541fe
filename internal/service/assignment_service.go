package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/canvas"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
)

// Assignment buckets.
const (
	BucketUpcoming = "upcoming"
	BucketPast     = "past"
	BucketMissing  = "missing"
)

var testKeywords = []string{"test", "quiz", "exam", "midterm", "final"}

// AssignmentService classifies assignments against the user's submissions.
type AssignmentService struct {
	cache  *CacheService
	logger *zap.Logger
	now    func() time.Time
}

// NewAssignmentService constructs an assignment service.
func NewAssignmentService(cache *CacheService, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{cache: cache, logger: logger, now: time.Now}
}

// Classify fetches every assignment of the course with the user's submission
// and sorts each into exactly one bucket.
func (s *AssignmentService) Classify(ctx context.Context, sess *Session, courseID int64) (models.AssignmentBuckets, error) {
	args := map[string]int64{"course_id": courseID}
	buckets, _, err := Remember(ctx, s.cache, sess.Scope, CacheAssignments, args, 0, func(ctx context.Context) (models.AssignmentBuckets, error) {
		return s.classify(ctx, sess, courseID)
	})
	if err != nil {
		return models.AssignmentBuckets{}, mapUpstreamError(err, "assignments")
	}
	return buckets, nil
}

func (s *AssignmentService) classify(ctx context.Context, sess *Session, courseID int64) (models.AssignmentBuckets, error) {
	user, err := sess.CurrentUser(ctx)
	if err != nil {
		return models.AssignmentBuckets{}, err
	}
	raw, err := sess.Client.ListAssignments(ctx, courseID)
	if err != nil {
		return models.AssignmentBuckets{}, err
	}

	now := s.now()
	buckets := models.NewAssignmentBuckets()
	for _, a := range raw {
		assignment := models.Assignment{
			ID:             a.ID,
			Name:           a.Name,
			DueDate:        a.DueAt,
			Description:    a.Description,
			PointsPossible: a.PointsPossible,
		}
		submission, err := sess.Client.GetSubmission(ctx, courseID, a.ID, user.ID, false)
		if err != nil {
			s.logger.Debug("submission unavailable", zap.Int64("course_id", courseID), zap.Int64("assignment_id", a.ID), zap.Error(err))
		} else if submission != nil {
			applySubmission(&assignment, submission)
		}

		switch ClassifyAssignment(assignment, now) {
		case BucketUpcoming:
			buckets.Upcoming = append(buckets.Upcoming, assignment)
		case BucketPast:
			buckets.Past = append(buckets.Past, assignment)
		default:
			buckets.Missing = append(buckets.Missing, assignment)
		}
	}
	return buckets, nil
}

func applySubmission(a *models.Assignment, sub *canvas.Submission) {
	if sub.WorkflowState != "" {
		state := sub.WorkflowState
		a.SubmissionStatus = &state
	}
	a.Score = sub.Score
	a.SubmittedAt = sub.SubmittedAt
	a.Late = sub.Late
}

// ClassifyAssignment returns the bucket for a at time now. Undated and
// future-due work is upcoming; past-due work is past when handed in and
// missing otherwise.
func ClassifyAssignment(a models.Assignment, now time.Time) string {
	if a.DueDate == nil || a.DueDate.After(now) {
		return BucketUpcoming
	}
	if a.Submitted() {
		return BucketPast
	}
	return BucketMissing
}

// IsTestName reports whether an assignment name looks like an assessment.
func IsTestName(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range testKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// UpcomingTests returns assessments due strictly after now.
func (s *AssignmentService) UpcomingTests(ctx context.Context, sess *Session, courseID int64) ([]models.UpcomingTest, error) {
	buckets, err := s.Classify(ctx, sess, courseID)
	if err != nil {
		return nil, err
	}
	return UpcomingTestsFrom(buckets, s.now()), nil
}

// UpcomingTestsFrom selects assessments due after now from already classified buckets.
func UpcomingTestsFrom(buckets models.AssignmentBuckets, now time.Time) []models.UpcomingTest {
	tests := make([]models.UpcomingTest, 0)
	for _, a := range buckets.Upcoming {
		if a.DueDate == nil || !a.DueDate.After(now) || !IsTestName(a.Name) {
			continue
		}
		tests = append(tests, models.UpcomingTest{
			ID:             a.ID,
			Name:           a.Name,
			DueDate:        *a.DueDate,
			PointsPossible: a.PointsPossible,
			Description:    a.Description,
		})
	}
	return tests
}

// Feedback returns the grader's score and comments on the user's submission.
func (s *AssignmentService) Feedback(ctx context.Context, sess *Session, courseID, assignmentID int64) (*models.AssignmentFeedback, error) {
	user, err := sess.CurrentUser(ctx)
	if err != nil {
		return nil, mapUpstreamError(err, "current user")
	}
	submission, err := sess.Client.GetSubmission(ctx, courseID, assignmentID, user.ID, true)
	if err != nil {
		return nil, mapUpstreamError(err, "submission")
	}

	feedback := &models.AssignmentFeedback{
		AssignmentID: assignmentID,
		Score:        submission.Score,
		Grade:        submission.Grade,
		SubmittedAt:  submission.SubmittedAt,
		Late:         submission.Late,
		Comments:     make([]models.FeedbackComment, 0, len(submission.SubmissionComments)),
	}
	for _, c := range submission.SubmissionComments {
		feedback.Comments = append(feedback.Comments, models.FeedbackComment{
			AuthorName: c.AuthorName,
			Comment:    c.Comment,
			CreatedAt:  c.CreatedAt,
		})
	}
	return feedback, nil
}
