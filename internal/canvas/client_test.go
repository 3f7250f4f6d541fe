package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordedCall struct {
	operation string
	status    int
}

type fakeRecorder struct {
	calls  []recordedCall
	states map[string]string
}

func (f *fakeRecorder) ObserveUpstream(operation string, status int, _ time.Duration) {
	f.calls = append(f.calls, recordedCall{operation: operation, status: status})
}

func (f *fakeRecorder) SetBreakerState(name, state string) {
	if f.states == nil {
		f.states = map[string]string{}
	}
	f.states[name] = state
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeRecorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	rec := &fakeRecorder{}
	client, err := NewClient(Options{BaseURL: srv.URL + "/", APIKey: "secret", Recorder: rec})
	require.NoError(t, err)
	return client, rec
}

func TestListCoursesFollowsLinkPagination(t *testing.T) {
	var srvURL string
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v1/courses", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`[{"id":3,"name":"2024SP Physics"}]`))
			return
		}
		srvURL = "http://" + r.Host
		w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=1&per_page=100>; rel="current", <%s/api/v1/courses?page=2&per_page=100>; rel="next"`, srvURL, srvURL))
		_, _ = w.Write([]byte(`[{"id":1,"name":"2024SP Biology","start_at":"2024-01-10T00:00:00Z"},{"id":2,"name":"2023FA History","start_at":null}]`))
	})

	courses, err := client.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, int64(1), courses[0].ID)
	assert.NotNil(t, courses[0].StartAt)
	assert.Nil(t, courses[1].StartAt)
	assert.Equal(t, "2024SP Physics", courses[2].Name)
	assert.Len(t, rec.calls, 2)
	assert.Equal(t, "list_courses", rec.calls[0].operation)
}

func TestListCoursesFailsPastPageLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/api/v1/courses?page=%d>; rel="next"`, r.Host, n+1))
		_, _ = w.Write([]byte(fmt.Sprintf(`[{"id":%d}]`, n)))
	}))
	t.Cleanup(srv.Close)
	client, err := NewClient(Options{BaseURL: srv.URL, APIKey: "secret", MaxPages: 3})
	require.NoError(t, err)

	courses, err := client.ListCourses(context.Background())
	require.ErrorIs(t, err, ErrPageLimit)
	assert.Nil(t, courses)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestListCoursesRejectsForeignNextLink(t *testing.T) {
	var leaked int32
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&leaked, 1)
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(foreign.Close)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=2>; rel="next"`, foreign.URL))
		_, _ = w.Write([]byte(`[{"id":1}]`))
	})

	courses, err := client.ListCourses(context.Background())
	require.ErrorIs(t, err, ErrForeignNextLink)
	assert.Nil(t, courses)
	assert.Zero(t, atomic.LoadInt32(&leaked))
}

func TestGetCourseReturnsAPIError(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "syllabus_body", r.URL.Query().Get("include[]"))
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"errors":[{"message":"user not authorized to perform that action"}]}`))
	})

	course, err := client.GetCourse(context.Background(), 42, true)
	require.Error(t, err)
	assert.Nil(t, course)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "/courses/42", apiErr.Endpoint)
	assert.Equal(t, "user not authorized to perform that action", apiErr.Message)
	assert.True(t, IsForbidden(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, http.StatusForbidden, rec.calls[0].status)
}

func TestListEnrollmentsSendsFilter(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, []string{EnrollmentTeacher, EnrollmentTA}, r.URL.Query()["type[]"])
		assert.Equal(t, "7", r.URL.Query().Get("user_id"))
		_, _ = w.Write([]byte(`[{"id":1,"user_id":7,"type":"TeacherEnrollment","role":"TeacherEnrollment"}]`))
	})

	enrollments, err := client.ListEnrollments(context.Background(), 10, EnrollmentFilter{Types: []string{EnrollmentTeacher, EnrollmentTA}, UserID: 7})
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, int64(7), enrollments[0].UserID)
}

func TestListCalendarEventsUsesUserContext(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/v1/calendar_events", r.URL.Path)
		assert.Equal(t, "2024-03-01", q.Get("start_date"))
		assert.Equal(t, "2024-03-15", q.Get("end_date"))
		assert.Equal(t, "user_99", q.Get("context_codes[]"))
		_, _ = w.Write([]byte(`[]`))
	})

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	events, err := client.ListCalendarEvents(context.Background(), 99, start, start.AddDate(0, 0, 14))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestNextLink(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{header: "", want: ""},
		{header: `<https://x/api/v1/courses?page=2>; rel="next"`, want: "https://x/api/v1/courses?page=2"},
		{header: `<https://x/a?page=1>; rel="current",<https://x/a?page=2>; rel="next"`, want: "https://x/a?page=2"},
		{header: `<https://x/a?page=1>; rel="current", <https://x/a?page=5>; rel="last"`, want: ""},
		{header: "garbage", want: ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, nextLink(tc.header), tc.header)
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	got, err := NormalizeBaseURL(" https://school.instructure.com/api/v1/ ")
	require.NoError(t, err)
	assert.Equal(t, "https://school.instructure.com", got)

	_, err = NormalizeBaseURL("school.instructure.com")
	assert.Error(t, err)

	_, err = NormalizeBaseURL("")
	assert.Error(t, err)
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "https://school.instructure.com"})
	assert.Error(t, err)
}

func TestBreakerIgnoresClientErrorsAndTripsOnServerErrors(t *testing.T) {
	var hits int32
	var status int32 = http.StatusNotFound
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(int(atomic.LoadInt32(&status)))
	}))
	defer srv.Close()

	rec := &fakeRecorder{}
	factory := NewFactory(FactoryConfig{BreakerEnabled: true, Recorder: rec})
	client, err := factory.Client(srv.URL, "token")
	require.NoError(t, err)

	for i := 0; i < 12; i++ {
		_, err := client.GetUser(context.Background(), 1)
		require.True(t, IsNotFound(err))
	}
	assert.Equal(t, int32(12), atomic.LoadInt32(&hits))

	// 18 server errors after 12 successes reach the 60% trip ratio.
	atomic.StoreInt32(&status, http.StatusBadGateway)
	for i := 0; i < 18; i++ {
		_, _ = client.GetUser(context.Background(), 1)
	}

	before := atomic.LoadInt32(&hits)
	_, err = client.GetUser(context.Background(), 1)
	assert.Equal(t, http.StatusServiceUnavailable, StatusOf(err))
	assert.Equal(t, before, atomic.LoadInt32(&hits))

	var opened bool
	for _, state := range rec.states {
		if state == "open" {
			opened = true
		}
	}
	assert.True(t, opened)
}

func TestFactoryReusesClientsPerToken(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	factory := NewFactory(FactoryConfig{CacheSize: 2, RateLimit: 5, RateBurst: 5, Logger: zap.New(core)})

	a, err := factory.Client("https://school.instructure.com/", "token-a")
	require.NoError(t, err)
	again, err := factory.Client("https://school.instructure.com", "token-a")
	require.NoError(t, err)
	b, err := factory.Client("https://school.instructure.com", "token-b")
	require.NoError(t, err)

	assert.Same(t, a, again)
	assert.NotSame(t, a, b)
	assert.NotNil(t, a.limiter)

	_, err = factory.Client("https://other.instructure.com", "token-c")
	require.NoError(t, err)
	assert.Equal(t, 2, factory.clients.Len())
	evicted := logs.FilterMessage("canvas client evicted").All()
	require.Len(t, evicted, 1)
	assert.Equal(t, "https://school.instructure.com", evicted[0].ContextMap()["base_url"])

	_, err = factory.Client("not a url", "token")
	assert.Error(t, err)
}
