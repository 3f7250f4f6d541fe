package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/canvas-gateway-api/internal/canvas"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
)

var assignmentNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newAssignmentFixture() *fakeCanvas {
	past := assignmentNow.Add(-48 * time.Hour)
	future := assignmentNow.Add(72 * time.Hour)
	return &fakeCanvas{
		user: &canvas.User{ID: 77, Name: "Ada"},
		assignments: map[int64][]canvas.Assignment{
			5: {
				{ID: 1, Name: "Reading response"},
				{ID: 2, Name: "Midterm Exam", DueAt: &future, PointsPossible: floatPtr(100)},
				{ID: 3, Name: "Lab report", DueAt: &past},
				{ID: 4, Name: "Essay draft", DueAt: &past},
				{ID: 5, Name: "Problem set", DueAt: &past},
				{ID: 6, Name: "Quiz 1", DueAt: timePtr(assignmentNow)},
				{ID: 7, Name: "Worksheet", DueAt: &past},
			},
		},
		submissions: map[int64]*canvas.Submission{
			3: {WorkflowState: models.SubmissionGraded, Score: floatPtr(9)},
			4: {WorkflowState: "unsubmitted"},
			7: {WorkflowState: models.SubmissionSubmitted, SubmittedAt: &past},
		},
		submissionErr: map[int64]error{5: apiErr(403)},
	}
}

func TestClassifyAssignment(t *testing.T) {
	past := assignmentNow.Add(-time.Hour)
	future := assignmentNow.Add(time.Hour)
	cases := []struct {
		name string
		a    models.Assignment
		want string
	}{
		{"undated", models.Assignment{}, BucketUpcoming},
		{"future", models.Assignment{DueDate: &future}, BucketUpcoming},
		{"past graded", models.Assignment{DueDate: &past, SubmissionStatus: strPtr("graded")}, BucketPast},
		{"past submitted", models.Assignment{DueDate: &past, SubmissionStatus: strPtr("submitted")}, BucketPast},
		{"past unsubmitted", models.Assignment{DueDate: &past, SubmissionStatus: strPtr("unsubmitted")}, BucketMissing},
		{"past no submission", models.Assignment{DueDate: &past}, BucketMissing},
		{"due now", models.Assignment{DueDate: timePtr(assignmentNow)}, BucketMissing},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyAssignment(tc.a, assignmentNow), tc.name)
	}
}

func TestAssignmentServiceClassify(t *testing.T) {
	client := newAssignmentFixture()
	cache := newMemoryCache(&testClock{now: assignmentNow})
	svc := NewAssignmentService(cache, nil)
	svc.now = func() time.Time { return assignmentNow }
	sess := newTestSession(client, cache)

	buckets, err := svc.Classify(context.Background(), sess, 5)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, assignmentIDs(buckets.Upcoming))
	assert.Equal(t, []int64{3, 7}, assignmentIDs(buckets.Past))
	assert.Equal(t, []int64{4, 5, 6}, assignmentIDs(buckets.Missing))
	assert.Equal(t, 7, buckets.Total())
	require.NotNil(t, buckets.Past[0].Score)
	assert.Equal(t, 9.0, *buckets.Past[0].Score)

	_, err = svc.Classify(context.Background(), sess, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, client.count("list_assignments"))
	assert.Equal(t, 7, client.count("get_submission"))
}

func TestAssignmentServiceClassifyEmptyCourse(t *testing.T) {
	client := &fakeCanvas{user: &canvas.User{ID: 77}}
	svc := NewAssignmentService(nil, nil)

	buckets, err := svc.Classify(context.Background(), newTestSession(client, nil), 99)
	require.NoError(t, err)
	assert.Equal(t, 0, buckets.Total())
	assert.NotNil(t, buckets.Upcoming)
	assert.NotNil(t, buckets.Missing)
}

func TestAssignmentServiceClassifyUpstreamFailure(t *testing.T) {
	client := &fakeCanvas{user: &canvas.User{ID: 77}, assignmentsErr: map[int64]error{5: apiErr(404)}}
	svc := NewAssignmentService(nil, nil)

	_, err := svc.Classify(context.Background(), newTestSession(client, nil), 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpcomingTests(t *testing.T) {
	client := newAssignmentFixture()
	client.assignments[5] = append(client.assignments[5], canvas.Assignment{ID: 8, Name: "Final quiz review"})
	svc := NewAssignmentService(nil, nil)
	svc.now = func() time.Time { return assignmentNow }

	tests, err := svc.UpcomingTests(context.Background(), newTestSession(client, nil), 5)
	require.NoError(t, err)
	require.Len(t, tests, 1)
	assert.Equal(t, "Midterm Exam", tests[0].Name)
	assert.True(t, tests[0].DueDate.After(assignmentNow))
}

func TestIsTestName(t *testing.T) {
	assert.True(t, IsTestName("Unit 3 QUIZ"))
	assert.True(t, IsTestName("Final"))
	assert.True(t, IsTestName("midterm part b"))
	assert.False(t, IsTestName("Lab report"))
}

func TestAssignmentFeedback(t *testing.T) {
	created := assignmentNow.Add(-time.Hour)
	client := &fakeCanvas{
		user: &canvas.User{ID: 77},
		submissions: map[int64]*canvas.Submission{
			3: {
				Score:              floatPtr(8.5),
				Grade:              strPtr("B+"),
				SubmissionComments: []canvas.SubmissionComment{{AuthorName: "Prof. Lee", Comment: "Good work", CreatedAt: &created}},
			},
		},
	}
	svc := NewAssignmentService(nil, nil)

	feedback, err := svc.Feedback(context.Background(), newTestSession(client, nil), 5, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), feedback.AssignmentID)
	assert.Equal(t, "B+", *feedback.Grade)
	require.Len(t, feedback.Comments, 1)
	assert.Equal(t, "Prof. Lee", feedback.Comments[0].AuthorName)

	_, err = svc.Feedback(context.Background(), newTestSession(client, nil), 5, 4)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func assignmentIDs(items []models.Assignment) []int64 {
	ids := make([]int64, 0, len(items))
	for _, a := range items {
		ids = append(ids, a.ID)
	}
	return ids
}
