package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/canvas-gateway-api/internal/canvas"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
)

func TestTermToken(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), "2024SP"},
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "2024SP"},
		{time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC), "2024SP"},
		{time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "2024SU"},
		{time.Date(2024, 7, 31, 0, 0, 0, 0, time.UTC), "2024SU"},
		{time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), "2024FA"},
		{time.Date(2023, 12, 24, 0, 0, 0, 0, time.UTC), "2023FA"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TermToken(tc.at), tc.at.String())
	}
}

func TestCourseServiceListCurrent(t *testing.T) {
	client := &fakeCanvas{courses: []canvas.Course{
		{ID: 1, Name: "BIO 101 2024SP"},
		{ID: 2, Name: "CHEM 210 2023FA"},
		{ID: 3, Name: "MATH 300 2024SP", CourseCode: "MATH300"},
	}}
	clock := &testClock{now: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	svc := NewCourseService(newMemoryCache(clock), nil)
	svc.now = clock.Now
	sess := newTestSession(client, svc.cache)

	current, err := svc.ListCurrent(context.Background(), sess)
	require.NoError(t, err)
	require.Len(t, current, 2)
	assert.Equal(t, int64(1), current[0].ID)
	assert.Equal(t, int64(3), current[1].ID)
	require.NotNil(t, current[1].Code)
	assert.Equal(t, "MATH300", *current[1].Code)

	_, err = svc.ListAll(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 1, client.count("list_courses"))
}

func TestCourseServiceListAllUpstreamFailure(t *testing.T) {
	client := &fakeCanvas{coursesErr: apiErr(500)}
	svc := NewCourseService(newMemoryCache(&testClock{now: time.Now()}), nil)

	_, err := svc.ListAll(context.Background(), newTestSession(client, svc.cache))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(err).Code)
}

func TestFindCourseIDTierOrder(t *testing.T) {
	cases := []struct {
		name    string
		courses []canvas.Course
		query   string
		wantID  int64
		found   bool
	}{
		{
			name:    "exact beats earlier substring",
			courses: []canvas.Course{{ID: 1, Name: "Intro to Discrete Mathematics"}, {ID: 2, Name: "Discrete Math"}},
			query:   "discrete MATH",
			wantID:  2,
			found:   true,
		},
		{
			name:    "substring beats earlier word match",
			courses: []canvas.Course{{ID: 3, Name: "Math for Discrete Structures"}, {ID: 1, Name: "Intro to Discrete Mathematics"}},
			query:   "Discrete Math",
			wantID:  1,
			found:   true,
		},
		{
			name:    "all words in any order",
			courses: []canvas.Course{{ID: 3, Name: "Math for Discrete Structures"}},
			query:   "Discrete Math",
			wantID:  3,
			found:   true,
		},
		{
			name:    "no match",
			courses: []canvas.Course{{ID: 4, Name: "Organic Chemistry"}},
			query:   "Discrete Math",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &fakeCanvas{courses: tc.courses}
			svc := NewCourseService(newMemoryCache(&testClock{now: time.Now()}), nil)

			match, found, err := svc.FindCourseID(context.Background(), newTestSession(client, svc.cache), tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.found, found)
			assert.Equal(t, tc.wantID, match.CourseID)
		})
	}
}

func TestFindCourseIDRequiresName(t *testing.T) {
	svc := NewCourseService(nil, nil)
	_, _, err := svc.FindCourseID(context.Background(), newTestSession(&fakeCanvas{}, nil), "  ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCourseServiceSyllabus(t *testing.T) {
	body := "<p>Week 1</p>"
	client := &fakeCanvas{courses: []canvas.Course{{ID: 9, Name: "BIO", SyllabusBody: &body}}}
	svc := NewCourseService(nil, nil)

	syllabus, err := svc.Syllabus(context.Background(), newTestSession(client, nil), 9)
	require.NoError(t, err)
	assert.Equal(t, &body, syllabus.SyllabusBody)

	_, err = svc.Syllabus(context.Background(), newTestSession(client, nil), 10)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
