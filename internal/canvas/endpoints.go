package canvas

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// API is the subset of the Canvas REST API the gateway consumes. Every call
// fails independently; non-2xx responses surface as *APIError.
type API interface {
	GetCurrentUser(ctx context.Context) (*User, error)
	GetProfile(ctx context.Context) (*Profile, error)
	ListCourses(ctx context.Context) ([]Course, error)
	GetCourse(ctx context.Context, courseID int64, includeSyllabus bool) (*Course, error)
	ListAssignments(ctx context.Context, courseID int64) ([]Assignment, error)
	GetSubmission(ctx context.Context, courseID, assignmentID, userID int64, includeComments bool) (*Submission, error)
	ListEnrollments(ctx context.Context, courseID int64, filter EnrollmentFilter) ([]Enrollment, error)
	GetUser(ctx context.Context, userID int64) (*User, error)
	ListDiscussionTopics(ctx context.Context, courseID int64, onlyAnnouncements bool) ([]DiscussionTopic, error)
	ListModules(ctx context.Context, courseID int64) ([]Module, error)
	ListModuleItems(ctx context.Context, courseID, moduleID int64) ([]ModuleItem, error)
	ListFiles(ctx context.Context, courseID int64) ([]File, error)
	ListGroups(ctx context.Context, courseID int64) ([]Group, error)
	ListCalendarEvents(ctx context.Context, userID int64, start, end time.Time) ([]CalendarEvent, error)
	GetCourseParticipation(ctx context.Context, courseID int64) ([]ParticipationDay, error)
	GetUserCourseParticipation(ctx context.Context, courseID, userID int64) (*UserParticipation, error)
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func (c *Client) GetCurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.getOne(ctx, "get_current_user", "/users/self", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.getOne(ctx, "get_profile", "/users/self/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	return getAll[Course](ctx, c, "list_courses", "/courses", nil)
}

func (c *Client) GetCourse(ctx context.Context, courseID int64, includeSyllabus bool) (*Course, error) {
	query := url.Values{}
	if includeSyllabus {
		query.Add("include[]", "syllabus_body")
	}
	var course Course
	if err := c.getOne(ctx, "get_course", "/courses/"+id(courseID), query, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (c *Client) ListAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	return getAll[Assignment](ctx, c, "list_assignments", "/courses/"+id(courseID)+"/assignments", nil)
}

func (c *Client) GetSubmission(ctx context.Context, courseID, assignmentID, userID int64, includeComments bool) (*Submission, error) {
	query := url.Values{}
	if includeComments {
		query.Add("include[]", "submission_comments")
	}
	path := "/courses/" + id(courseID) + "/assignments/" + id(assignmentID) + "/submissions/" + id(userID)
	var submission Submission
	if err := c.getOne(ctx, "get_submission", path, query, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

func (c *Client) ListEnrollments(ctx context.Context, courseID int64, filter EnrollmentFilter) ([]Enrollment, error) {
	query := url.Values{}
	for _, t := range filter.Types {
		query.Add("type[]", t)
	}
	if filter.UserID != 0 {
		query.Set("user_id", id(filter.UserID))
	}
	return getAll[Enrollment](ctx, c, "list_enrollments", "/courses/"+id(courseID)+"/enrollments", query)
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*User, error) {
	var user User
	if err := c.getOne(ctx, "get_user", "/users/"+id(userID), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListDiscussionTopics(ctx context.Context, courseID int64, onlyAnnouncements bool) ([]DiscussionTopic, error) {
	query := url.Values{}
	operation := "list_discussion_topics"
	if onlyAnnouncements {
		query.Set("only_announcements", "true")
		operation = "list_announcements"
	}
	return getAll[DiscussionTopic](ctx, c, operation, "/courses/"+id(courseID)+"/discussion_topics", query)
}

func (c *Client) ListModules(ctx context.Context, courseID int64) ([]Module, error) {
	return getAll[Module](ctx, c, "list_modules", "/courses/"+id(courseID)+"/modules", nil)
}

func (c *Client) ListModuleItems(ctx context.Context, courseID, moduleID int64) ([]ModuleItem, error) {
	path := "/courses/" + id(courseID) + "/modules/" + id(moduleID) + "/items"
	return getAll[ModuleItem](ctx, c, "list_module_items", path, nil)
}

func (c *Client) ListFiles(ctx context.Context, courseID int64) ([]File, error) {
	return getAll[File](ctx, c, "list_files", "/courses/"+id(courseID)+"/files", nil)
}

func (c *Client) ListGroups(ctx context.Context, courseID int64) ([]Group, error) {
	return getAll[Group](ctx, c, "list_groups", "/courses/"+id(courseID)+"/groups", nil)
}

// ListCalendarEvents lists the user's own calendar between start and end (dates, inclusive).
func (c *Client) ListCalendarEvents(ctx context.Context, userID int64, start, end time.Time) ([]CalendarEvent, error) {
	query := url.Values{}
	query.Set("start_date", start.Format("2006-01-02"))
	query.Set("end_date", end.Format("2006-01-02"))
	query.Add("context_codes[]", "user_"+id(userID))
	return getAll[CalendarEvent](ctx, c, "list_calendar_events", "/calendar_events", query)
}

func (c *Client) GetCourseParticipation(ctx context.Context, courseID int64) ([]ParticipationDay, error) {
	var days []ParticipationDay
	if err := c.getOne(ctx, "get_course_participation", "/courses/"+id(courseID)+"/analytics/activity", nil, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func (c *Client) GetUserCourseParticipation(ctx context.Context, courseID, userID int64) (*UserParticipation, error) {
	path := "/courses/" + id(courseID) + "/analytics/users/" + id(userID) + "/activity"
	var participation UserParticipation
	if err := c.getOne(ctx, "get_user_course_participation", path, nil, &participation); err != nil {
		return nil, err
	}
	return &participation, nil
}
