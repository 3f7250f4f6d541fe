package dto

import "github.com/noah-isme/canvas-gateway-api/internal/models"

// Resource is the nested {data, error} pair used inside aggregate payloads.
type Resource struct {
	Data  interface{} `json:"data"`
	Error *string     `json:"error"`
}

// OK wraps a successful payload as a Resource.
func OK(data interface{}) Resource {
	return Resource{Data: data}
}

// Failed wraps an error message as a Resource.
func Failed(message string) Resource {
	return Resource{Error: &message}
}

// AllDataResponse is keyed by all_classes, user_profile, announcements and
// class_professors_{course_id}.
type AllDataResponse map[string]Resource

// CourseIDsResponse lists course ids alongside the full records.
type CourseIDsResponse struct {
	CourseIDs []int64         `json:"course_ids"`
	Courses   []models.Course `json:"courses"`
}

// InitRequest opens a session for a user.
type InitRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

// CalendarQuery bounds /calendar-events. Dates are YYYY-MM-DD.
type CalendarQuery struct {
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// CourseNicknameRequest sets a custom course name.
type CourseNicknameRequest struct {
	Nickname string `json:"nickname" validate:"required,max=120"`
}

// CacheClearResponse reports a per-user invalidation.
type CacheClearResponse struct {
	Cleared bool `json:"cleared"`
}
