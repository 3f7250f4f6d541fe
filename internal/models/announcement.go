package models

import "time"

// Announcement is a course announcement. Author is passed through from Canvas
// as-is; CourseID and CourseName are set when announcements are merged across courses.
type Announcement struct {
	ID         int64                  `json:"id"`
	Title      string                 `json:"title"`
	Message    string                 `json:"message"`
	PostedAt   *time.Time             `json:"posted_at"`
	Author     map[string]interface{} `json:"author"`
	CourseID   int64                  `json:"course_id,omitempty"`
	CourseName string                 `json:"course_name,omitempty"`
}

// AuthorString returns author[key] when it is a non-empty string.
func (a Announcement) AuthorString(key string) string {
	if a.Author == nil {
		return ""
	}
	if v, ok := a.Author[key].(string); ok {
		return v
	}
	return ""
}

// AuthorID returns author["id"] when it is numeric.
func (a Announcement) AuthorID() int64 {
	if a.Author == nil {
		return 0
	}
	switch v := a.Author["id"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case uint64:
		return int64(v)
	}
	return 0
}
