package models

import "time"

// Course is the normalized view of a Canvas course. Identity is ID.
type Course struct {
	ID            int64      `json:"course_id"`
	Name          string     `json:"course_name"`
	Code          *string    `json:"course_code"`
	WorkflowState *string    `json:"workflow_state,omitempty"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
}

// CourseMatch is the answer to a course name lookup.
type CourseMatch struct {
	CourseID   int64  `json:"course_id"`
	CourseName string `json:"course_name"`
}

// CourseInfo heads the complete course document.
type CourseInfo struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Code      *string    `json:"code"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Syllabus  *string    `json:"syllabus"`
}

type Syllabus struct {
	CourseID     int64   `json:"course_id"`
	CourseName   string  `json:"course_name"`
	SyllabusBody *string `json:"syllabus_body"`
}

// Grades is the current user's enrollment grade summary.
type Grades struct {
	CurrentScore *float64 `json:"current_score"`
	FinalScore   *float64 `json:"final_score"`
	CurrentGrade *string  `json:"current_grade"`
	FinalGrade   *string  `json:"final_grade"`
}

type Module struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	Items      []ModuleItem `json:"items"`
	UnlockDate *time.Time   `json:"unlock_date"`
}

type ModuleItem struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Type      string  `json:"type"`
	URL       *string `json:"url"`
	ContentID *int64  `json:"content_id"`
}

type Discussion struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	PostedAt   *time.Time `json:"posted_at"`
	ReplyCount int        `json:"reply_count"`
}

// CourseFile is a file in the course. Restricted marks the single sentinel
// returned when the user may not list files.
type CourseFile struct {
	ID          int64      `json:"id"`
	DisplayName string     `json:"display_name"`
	Filename    string     `json:"filename,omitempty"`
	ContentType string     `json:"content_type,omitempty"`
	URL         string     `json:"url,omitempty"`
	Size        int64      `json:"size,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Restricted  bool       `json:"restricted,omitempty"`
}

// RestrictedFilesPlaceholder stands in for a file listing the user cannot see.
func RestrictedFilesPlaceholder() []CourseFile {
	return []CourseFile{{ID: 0, DisplayName: "Access Restricted", Restricted: true}}
}

type Group struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	MembersCount int     `json:"members_count"`
}

type ActivityDay struct {
	Date           string `json:"date"`
	Participations int    `json:"participations"`
	Views          int    `json:"views"`
}

type ParticipationEvent struct {
	CreatedAt *time.Time `json:"created_at"`
	URL       string     `json:"url"`
}

type StudentActivity struct {
	PageViews      map[string]int       `json:"page_views"`
	Participations []ParticipationEvent `json:"participations"`
}

// CourseAnalytics is only populated when the instance has analytics enabled.
// Otherwise Supported is false and Reason says why.
type CourseAnalytics struct {
	Supported bool             `json:"supported"`
	Reason    string           `json:"reason,omitempty"`
	Student   *StudentActivity `json:"student,omitempty"`
	Course    []ActivityDay    `json:"course,omitempty"`
}
