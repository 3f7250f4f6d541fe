package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/canvas-gateway-api/internal/dto"
	"github.com/noah-isme/canvas-gateway-api/internal/middleware"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
	"github.com/noah-isme/canvas-gateway-api/internal/service"
	appErrors "github.com/noah-isme/canvas-gateway-api/pkg/errors"
)

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *string                `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	c.Set(middleware.ContextSessionKey, service.NewSession("u1", "scope1", nil, nil))
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type courseServiceMock struct {
	courses  []models.Course
	current  []models.Course
	match    models.CourseMatch
	found    bool
	err      error
	lastName string
}

func (m *courseServiceMock) ListAll(context.Context, *service.Session) ([]models.Course, error) {
	return m.courses, m.err
}

func (m *courseServiceMock) ListCurrent(context.Context, *service.Session) ([]models.Course, error) {
	return m.current, m.err
}

func (m *courseServiceMock) FindCourseID(_ context.Context, _ *service.Session, name string) (models.CourseMatch, bool, error) {
	m.lastName = name
	return m.match, m.found, m.err
}

func (m *courseServiceMock) Syllabus(_ context.Context, _ *service.Session, courseID int64) (*models.Syllabus, error) {
	return &models.Syllabus{CourseID: courseID}, m.err
}

type professorServiceMock struct{}

func (professorServiceMock) Resolve(context.Context, *service.Session, int64) []models.Professor {
	return []models.Professor{models.PlaceholderProfessor()}
}

func TestCourseHandlerZeroResultsAreNotFound(t *testing.T) {
	h := NewCourseHandler(&courseServiceMock{}, professorServiceMock{})

	for name, fn := range map[string]gin.HandlerFunc{
		"all":     h.AllClasses,
		"ids":     h.AllCourseIDs,
		"current": h.CurrentClasses,
		"find":    h.FindCourse,
	} {
		c, w := newTestContext(http.MethodGet, "/x?name=bio", nil)
		fn(c)
		assert.Equal(t, http.StatusNotFound, w.Code, name)
		env := decode(t, w)
		require.NotNil(t, env.Error, name)
		assert.Equal(t, "null", string(env.Data), name)
	}
}

func TestCourseHandlerAllCourseIDs(t *testing.T) {
	h := NewCourseHandler(&courseServiceMock{courses: []models.Course{{ID: 3, Name: "BIO"}, {ID: 4, Name: "CHEM"}}}, professorServiceMock{})
	c, w := newTestContext(http.MethodGet, "/all-courses-id", nil)

	h.AllCourseIDs(c)

	require.Equal(t, http.StatusOK, w.Code)
	var payload dto.CourseIDsResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &payload))
	assert.Equal(t, []int64{3, 4}, payload.CourseIDs)
}

func TestCourseHandlerFindCourse(t *testing.T) {
	svc := &courseServiceMock{match: models.CourseMatch{CourseID: 9, CourseName: "Discrete Math"}, found: true}
	h := NewCourseHandler(svc, professorServiceMock{})
	c, w := newTestContext(http.MethodGet, "/find-course?name=discrete%20math", nil)

	h.FindCourse(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "discrete math", svc.lastName)
	assert.JSONEq(t, `{"course_id":9,"course_name":"Discrete Math"}`, string(decode(t, w).Data))
}

func TestCourseHandlerInvalidCourseID(t *testing.T) {
	h := NewCourseHandler(&courseServiceMock{}, professorServiceMock{})
	c, w := newTestContext(http.MethodGet, "/syllabus/abc", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "abc"}}

	h.Syllabus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlersRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/all-classes", nil)

	NewCourseHandler(&courseServiceMock{}, professorServiceMock{}).AllClasses(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

type courseDataServiceMock struct {
	doc        models.CompleteCourseData
	hit        bool
	lastFields []string
}

func (m *courseDataServiceMock) AssembleFields(_ context.Context, _ *service.Session, _ int64, fields []string) (models.CompleteCourseData, bool, error) {
	m.lastFields = fields
	return m.doc.Project(fields), m.hit, nil
}

func TestCourseDataHandler(t *testing.T) {
	svc := &courseDataServiceMock{
		doc: models.CompleteCourseData{CourseInfo: &models.CourseInfo{ID: 5, Name: "BIO"}, Errors: map[string]string{"groups": "boom"}},
		hit: false,
	}
	h := NewCourseDataHandler(svc)

	c, w := newTestContext(http.MethodGet, "/course-data/5?include=course_info,groups", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "5"}}
	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"course_info", "groups"}, svc.lastFields)
	env := decode(t, w)
	assert.Equal(t, false, env.Meta["cache_hit"])

	c, w = newTestContext(http.MethodGet, "/course-data/5?include=grades,bogus", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "5"}}
	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.doc.CourseInfo = nil
	c, w = newTestContext(http.MethodGet, "/course-data/5", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "5"}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, w = newTestContext(http.MethodGet, "/course-data/5?include=groups", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "5"}}
	h.Get(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

type assignmentServiceMock struct {
	buckets models.AssignmentBuckets
}

func (m *assignmentServiceMock) Classify(context.Context, *service.Session, int64) (models.AssignmentBuckets, error) {
	return m.buckets, nil
}

func (m *assignmentServiceMock) UpcomingTests(context.Context, *service.Session, int64) ([]models.UpcomingTest, error) {
	return []models.UpcomingTest{}, nil
}

func (m *assignmentServiceMock) Feedback(_ context.Context, _ *service.Session, _, assignmentID int64) (*models.AssignmentFeedback, error) {
	return &models.AssignmentFeedback{AssignmentID: assignmentID, Comments: []models.FeedbackComment{}}, nil
}

type exporterMock struct {
	format string
	err    error
}

func (m *exporterMock) ExportAssignments(_ context.Context, _ *service.Session, _ int64, format string) (*service.ExportFile, error) {
	m.format = format
	if m.err != nil {
		return nil, m.err
	}
	return &service.ExportFile{Filename: "course_5.csv", ContentType: "text/csv; charset=utf-8", Payload: []byte("a,b\n")}, nil
}

func TestAssignmentHandlerList(t *testing.T) {
	svc := &assignmentServiceMock{buckets: models.NewAssignmentBuckets()}
	h := NewAssignmentHandler(svc, &exporterMock{})

	c, w := newTestContext(http.MethodGet, "/class-assignments/5", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "5"}}
	h.List(c)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.buckets.Past = append(svc.buckets.Past, models.Assignment{ID: 1, Name: "Lab"})
	c, w = newTestContext(http.MethodGet, "/class-assignments/5", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "5"}}
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"upcoming":[]`)
}

func TestAssignmentHandlerExport(t *testing.T) {
	exporter := &exporterMock{}
	h := NewAssignmentHandler(&assignmentServiceMock{}, exporter)

	c, w := newTestContext(http.MethodGet, "/class-assignments/5/export", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "5"}}
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, `attachment; filename="course_5.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", w.Body.String())

	exporter.err = appErrors.Clone(appErrors.ErrNotFound, "No assignments found")
	c, w = newTestContext(http.MethodGet, "/class-assignments/5/export?format=pdf", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "5"}}
	h.Export(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "pdf", exporter.format)
}

func TestAssignmentHandlerFeedback(t *testing.T) {
	h := NewAssignmentHandler(&assignmentServiceMock{}, &exporterMock{})
	c, w := newTestContext(http.MethodGet, "/class-assignments/5/7/feedback", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "5"}, {Key: "assignmentId", Value: "7"}}

	h.Feedback(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"assignment_id":7`)
}

type calendarServiceMock struct {
	called bool
}

func (m *calendarServiceMock) Range(startDate, endDate string) (models.CalendarRange, error) {
	return service.NewCalendarService(14, nil).Range(startDate, endDate)
}

func (m *calendarServiceMock) Events(context.Context, *service.Session, models.CalendarRange) ([]models.CalendarEvent, error) {
	m.called = true
	return []models.CalendarEvent{}, nil
}

func TestCalendarHandler(t *testing.T) {
	svc := &calendarServiceMock{}
	h := NewCalendarHandler(svc, nil)

	c, w := newTestContext(http.MethodGet, "/calendar-events?start_date=03-10-2024", nil)
	h.Events(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, svc.called)

	c, w = newTestContext(http.MethodGet, "/calendar-events?start_date=2024-03-10", nil)
	h.Events(c)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	assert.Equal(t, "2024-03-24", env.Meta["end_date"])
}

type userServiceMock struct{}

func (userServiceMock) Init(_ context.Context, sess *service.Session) (*models.CanvasUser, error) {
	return &models.CanvasUser{ID: 77, Name: sess.UserID}, nil
}

func (userServiceMock) Profile(context.Context, *service.Session) (*models.UserProfile, error) {
	return nil, appErrors.ErrUpstream
}

func TestUserHandlerInit(t *testing.T) {
	h := NewUserHandler(userServiceMock{}, nil)

	c, w := newTestContext(http.MethodPost, "/init", []byte(`{"user_id":"u1"}`))
	h.Init(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":77,"name":"u1"}`, string(decode(t, w).Data))

	c, w = newTestContext(http.MethodPost, "/init", []byte(`{}`))
	h.Init(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newTestContext(http.MethodGet, "/user-profile", nil)
	h.Profile(c)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

type nicknameServiceMock struct {
	deleteErr error
	lastReq   dto.CourseNicknameRequest
}

func (m *nicknameServiceMock) List(context.Context, string) ([]models.CourseNickname, error) {
	return []models.CourseNickname{}, nil
}

func (m *nicknameServiceMock) Set(_ context.Context, userID string, courseID int64, req dto.CourseNicknameRequest) (*models.CourseNickname, error) {
	m.lastReq = req
	return &models.CourseNickname{UserID: userID, CourseID: courseID, Nickname: req.Nickname}, nil
}

func (m *nicknameServiceMock) Delete(context.Context, string, int64) error {
	return m.deleteErr
}

func TestCourseNameHandler(t *testing.T) {
	svc := &nicknameServiceMock{}
	h := NewCourseNameHandler(svc)

	c, w := newTestContext(http.MethodPut, "/course-names/5", []byte(`{"nickname":"Bio"}`))
	c.Params = gin.Params{{Key: "courseId", Value: "5"}}
	h.Set(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bio", svc.lastReq.Nickname)

	c, w = newTestContext(http.MethodPut, "/course-names/5", []byte(`{"nickname":`))
	c.Params = gin.Params{{Key: "courseId", Value: "5"}}
	h.Set(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.deleteErr = appErrors.Clone(appErrors.ErrNotFound, "Course name not found")
	c, w = newTestContext(http.MethodDelete, "/course-names/5", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "5"}}
	h.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type invalidatorMock struct {
	scope string
	err   error
}

func (m *invalidatorMock) Invalidate(_ context.Context, scope string) error {
	m.scope = scope
	return m.err
}

func TestCacheHandlerClear(t *testing.T) {
	cache := &invalidatorMock{}
	h := NewCacheHandler(cache)

	c, w := newTestContext(http.MethodDelete, "/cache", nil)
	h.Clear(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "scope1", cache.scope)
	assert.JSONEq(t, `{"cleared":true}`, string(decode(t, w).Data))

	cache.err = errors.New("redis down")
	c, w = newTestContext(http.MethodDelete, "/cache", nil)
	h.Clear(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"cache":    func(context.Context) error { return nil },
		"database": func(context.Context) error { return errors.New("connection refused") },
	})

	c, w := newTestContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	c, w = newTestContext(http.MethodGet, "/health", nil)
	h.Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cache_hit_ratio"`)
}
