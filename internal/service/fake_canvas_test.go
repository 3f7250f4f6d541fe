package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/canvas-gateway-api/internal/canvas"
	"github.com/noah-isme/canvas-gateway-api/internal/repository"
	"github.com/noah-isme/canvas-gateway-api/pkg/config"
)

// fakeCanvas is an in-memory canvas.API. Per-course maps are keyed by course id,
// submissions by assignment id, users by user id and module items by module id.
type fakeCanvas struct {
	mu    sync.Mutex
	calls map[string]int

	user       *canvas.User
	userErr    error
	profile    *canvas.Profile
	profileErr error

	courses    []canvas.Course
	coursesErr error
	courseErr  map[int64]error

	assignments    map[int64][]canvas.Assignment
	assignmentsErr map[int64]error
	submissions    map[int64]*canvas.Submission
	submissionErr  map[int64]error

	enrollments    map[int64][]canvas.Enrollment
	enrollmentsErr map[int64]error
	users          map[int64]*canvas.User
	usersErr       map[int64]error

	announcements      map[int64][]canvas.DiscussionTopic
	announcementsErr   map[int64]error
	announcementsPanic map[int64]bool
	discussions        map[int64][]canvas.DiscussionTopic
	discussionsErr     map[int64]error

	modules     map[int64][]canvas.Module
	modulesErr  map[int64]error
	moduleItems map[int64][]canvas.ModuleItem

	files     map[int64][]canvas.File
	filesErr  map[int64]error
	groups    map[int64][]canvas.Group
	groupsErr map[int64]error

	events    []canvas.CalendarEvent
	eventsErr error

	courseActivity    map[int64][]canvas.ParticipationDay
	courseActivityErr map[int64]error
	userActivity      map[int64]*canvas.UserParticipation
	userActivityErr   map[int64]error
}

var _ canvas.API = (*fakeCanvas)(nil)

func (f *fakeCanvas) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
}

func (f *fakeCanvas) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeCanvas) GetCurrentUser(context.Context) (*canvas.User, error) {
	f.record("get_current_user")
	if f.userErr != nil {
		return nil, f.userErr
	}
	return f.user, nil
}

func (f *fakeCanvas) GetProfile(context.Context) (*canvas.Profile, error) {
	f.record("get_profile")
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeCanvas) ListCourses(context.Context) ([]canvas.Course, error) {
	f.record("list_courses")
	return f.courses, f.coursesErr
}

func (f *fakeCanvas) GetCourse(_ context.Context, courseID int64, _ bool) (*canvas.Course, error) {
	f.record("get_course")
	if err := f.courseErr[courseID]; err != nil {
		return nil, err
	}
	for i := range f.courses {
		if f.courses[i].ID == courseID {
			course := f.courses[i]
			return &course, nil
		}
	}
	return nil, &canvas.APIError{Status: 404, Endpoint: "/courses", Message: "not found"}
}

func (f *fakeCanvas) ListAssignments(_ context.Context, courseID int64) ([]canvas.Assignment, error) {
	f.record("list_assignments")
	return f.assignments[courseID], f.assignmentsErr[courseID]
}

func (f *fakeCanvas) GetSubmission(_ context.Context, _, assignmentID, _ int64, _ bool) (*canvas.Submission, error) {
	f.record("get_submission")
	if err := f.submissionErr[assignmentID]; err != nil {
		return nil, err
	}
	if sub, ok := f.submissions[assignmentID]; ok {
		return sub, nil
	}
	return nil, &canvas.APIError{Status: 404, Endpoint: "/submissions", Message: "not found"}
}

func (f *fakeCanvas) ListEnrollments(_ context.Context, courseID int64, filter canvas.EnrollmentFilter) ([]canvas.Enrollment, error) {
	f.record("list_enrollments")
	if err := f.enrollmentsErr[courseID]; err != nil {
		return nil, err
	}
	out := make([]canvas.Enrollment, 0)
	for _, e := range f.enrollments[courseID] {
		if filter.UserID != 0 && e.UserID != filter.UserID {
			continue
		}
		if len(filter.Types) > 0 && !containsString(filter.Types, e.Type) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeCanvas) GetUser(_ context.Context, userID int64) (*canvas.User, error) {
	f.record("get_user")
	if err := f.usersErr[userID]; err != nil {
		return nil, err
	}
	if u, ok := f.users[userID]; ok {
		return u, nil
	}
	return nil, &canvas.APIError{Status: 404, Endpoint: "/users", Message: "not found"}
}

func (f *fakeCanvas) ListDiscussionTopics(_ context.Context, courseID int64, onlyAnnouncements bool) ([]canvas.DiscussionTopic, error) {
	if onlyAnnouncements {
		f.record("list_announcements")
		if f.announcementsPanic[courseID] {
			panic("announcement decoder exploded")
		}
		return f.announcements[courseID], f.announcementsErr[courseID]
	}
	f.record("list_discussion_topics")
	return f.discussions[courseID], f.discussionsErr[courseID]
}

func (f *fakeCanvas) ListModules(_ context.Context, courseID int64) ([]canvas.Module, error) {
	f.record("list_modules")
	return f.modules[courseID], f.modulesErr[courseID]
}

func (f *fakeCanvas) ListModuleItems(_ context.Context, _, moduleID int64) ([]canvas.ModuleItem, error) {
	f.record("list_module_items")
	return f.moduleItems[moduleID], nil
}

func (f *fakeCanvas) ListFiles(_ context.Context, courseID int64) ([]canvas.File, error) {
	f.record("list_files")
	return f.files[courseID], f.filesErr[courseID]
}

func (f *fakeCanvas) ListGroups(_ context.Context, courseID int64) ([]canvas.Group, error) {
	f.record("list_groups")
	return f.groups[courseID], f.groupsErr[courseID]
}

func (f *fakeCanvas) ListCalendarEvents(context.Context, int64, time.Time, time.Time) ([]canvas.CalendarEvent, error) {
	f.record("list_calendar_events")
	return f.events, f.eventsErr
}

func (f *fakeCanvas) GetCourseParticipation(_ context.Context, courseID int64) ([]canvas.ParticipationDay, error) {
	f.record("get_course_participation")
	return f.courseActivity[courseID], f.courseActivityErr[courseID]
}

func (f *fakeCanvas) GetUserCourseParticipation(_ context.Context, courseID, _ int64) (*canvas.UserParticipation, error) {
	f.record("get_user_course_participation")
	if err := f.userActivityErr[courseID]; err != nil {
		return nil, err
	}
	return f.userActivity[courseID], nil
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func apiErr(status int) error {
	return &canvas.APIError{Status: status, Endpoint: "/test", Message: "boom"}
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newMemoryCache(clock *testClock) *CacheService {
	repo := repository.NewMemoryCacheRepository(100, clock.Now)
	return NewCacheService(repo, nil, 10*time.Minute, nil, true).WithTTLs(defaultTTLs())
}

func newTestSession(client canvas.API, cache *CacheService) *Session {
	return NewSession("u1", "scope1", client, cache)
}

func defaultTTLs() config.CacheTTLConfig {
	return config.CacheTTLConfig{
		CurrentUser:   time.Hour,
		Courses:       30 * time.Minute,
		Announcements: 5 * time.Minute,
		Professors:    time.Hour,
		Assignments:   10 * time.Minute,
		CourseData:    30 * time.Minute,
	}
}

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }
