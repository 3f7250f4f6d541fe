package canvas

import "time"

// User is a Canvas user as returned by /users/self and /users/:id.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ShortName    string `json:"short_name,omitempty"`
	SortableName string `json:"sortable_name,omitempty"`
	Email        string `json:"email,omitempty"`
	LoginID      string `json:"login_id,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty"`
}

// Profile is the /users/self/profile payload.
type Profile struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	ShortName    string  `json:"short_name,omitempty"`
	PrimaryEmail string  `json:"primary_email,omitempty"`
	LoginID      string  `json:"login_id,omitempty"`
	AvatarURL    string  `json:"avatar_url,omitempty"`
	Bio          *string `json:"bio"`
	TimeZone     string  `json:"time_zone,omitempty"`
}

type Course struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	CourseCode    string     `json:"course_code"`
	WorkflowState string     `json:"workflow_state"`
	StartAt       *time.Time `json:"start_at"`
	EndAt         *time.Time `json:"end_at"`
	SyllabusBody  *string    `json:"syllabus_body,omitempty"`
}

type Assignment struct {
	ID             int64      `json:"id"`
	CourseID       int64      `json:"course_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	DueAt          *time.Time `json:"due_at"`
	PointsPossible *float64   `json:"points_possible"`
	HTMLURL        string     `json:"html_url,omitempty"`
}

type SubmissionComment struct {
	ID         int64      `json:"id"`
	AuthorID   int64      `json:"author_id"`
	AuthorName string     `json:"author_name"`
	Comment    string     `json:"comment"`
	CreatedAt  *time.Time `json:"created_at"`
}

type Submission struct {
	ID                 int64               `json:"id"`
	AssignmentID       int64               `json:"assignment_id"`
	UserID             int64               `json:"user_id"`
	WorkflowState      string              `json:"workflow_state"`
	Score              *float64            `json:"score"`
	Grade              *string             `json:"grade"`
	SubmittedAt        *time.Time          `json:"submitted_at"`
	Late               bool                `json:"late"`
	Missing            bool                `json:"missing"`
	SubmissionComments []SubmissionComment `json:"submission_comments,omitempty"`
}

// Enrollment types used by the professor lookup.
const (
	EnrollmentTeacher = "TeacherEnrollment"
	EnrollmentTA      = "TaEnrollment"
	EnrollmentStudent = "StudentEnrollment"
)

type EnrollmentGrades struct {
	CurrentScore *float64 `json:"current_score"`
	FinalScore   *float64 `json:"final_score"`
	CurrentGrade *string  `json:"current_grade"`
	FinalGrade   *string  `json:"final_grade"`
}

type Enrollment struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	CourseID        int64             `json:"course_id"`
	Type            string            `json:"type"`
	Role            string            `json:"role"`
	EnrollmentState string            `json:"enrollment_state"`
	Grades          *EnrollmentGrades `json:"grades,omitempty"`
	User            *User             `json:"user,omitempty"`
}

// EnrollmentFilter narrows ListEnrollments. Zero values are not sent.
type EnrollmentFilter struct {
	Types  []string
	UserID int64
}

// DiscussionTopic covers both discussions and announcements. Author is left
// untyped because Canvas omits or reshapes it depending on permissions.
type DiscussionTopic struct {
	ID                      int64                  `json:"id"`
	Title                   string                 `json:"title"`
	Message                 string                 `json:"message"`
	PostedAt                *time.Time             `json:"posted_at"`
	Author                  map[string]interface{} `json:"author"`
	DiscussionSubentryCount int                    `json:"discussion_subentry_count"`
}

type Module struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Position   int        `json:"position"`
	UnlockAt   *time.Time `json:"unlock_at"`
	ItemsCount int        `json:"items_count"`
}

type ModuleItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	HTMLURL   string `json:"html_url,omitempty"`
	ContentID int64  `json:"content_id,omitempty"`
	Position  int    `json:"position"`
}

type File struct {
	ID          int64      `json:"id"`
	DisplayName string     `json:"display_name"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"content-type"`
	URL         string     `json:"url"`
	Size        int64      `json:"size"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type Group struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	MembersCount int     `json:"members_count"`
}

type CalendarEvent struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	StartAt      *time.Time `json:"start_at"`
	EndAt        *time.Time `json:"end_at"`
	LocationName *string    `json:"location_name"`
	Description  *string    `json:"description"`
	ContextCode  string     `json:"context_code,omitempty"`
}

// ParticipationDay is one bucket of /courses/:id/analytics/activity.
type ParticipationDay struct {
	Date           string `json:"date"`
	Participations int    `json:"participations"`
	Views          int    `json:"views"`
}

type Participation struct {
	CreatedAt *time.Time `json:"created_at"`
	URL       string     `json:"url"`
}

// UserParticipation is /courses/:id/analytics/users/:user_id/activity.
type UserParticipation struct {
	PageViews      map[string]int  `json:"page_views"`
	Participations []Participation `json:"participations"`
}
