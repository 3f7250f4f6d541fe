package models

import "time"

// Submission workflow states that count as handed in.
const (
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
)

// Assignment is an assignment enriched with the current user's submission.
type Assignment struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	DueDate          *time.Time `json:"due_date"`
	Description      string     `json:"description"`
	PointsPossible   *float64   `json:"points_possible"`
	SubmissionStatus *string    `json:"submission_status"`
	Score            *float64   `json:"score"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	Late             bool       `json:"late"`
}

// Submitted reports whether the submission state counts as handed in.
func (a Assignment) Submitted() bool {
	if a.SubmissionStatus == nil {
		return false
	}
	return *a.SubmissionStatus == SubmissionSubmitted || *a.SubmissionStatus == SubmissionGraded
}

// AssignmentBuckets partitions a course's assignments; each one lands in exactly one bucket.
type AssignmentBuckets struct {
	Upcoming []Assignment `json:"upcoming"`
	Past     []Assignment `json:"past"`
	Missing  []Assignment `json:"missing"`
}

// NewAssignmentBuckets returns buckets that encode as empty arrays.
func NewAssignmentBuckets() AssignmentBuckets {
	return AssignmentBuckets{Upcoming: []Assignment{}, Past: []Assignment{}, Missing: []Assignment{}}
}

func (b AssignmentBuckets) Total() int {
	return len(b.Upcoming) + len(b.Past) + len(b.Missing)
}

type UpcomingTest struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	DueDate        time.Time `json:"due_date"`
	PointsPossible *float64  `json:"points_possible"`
	Description    string    `json:"description"`
}

type FeedbackComment struct {
	AuthorName string     `json:"author_name"`
	Comment    string     `json:"comment"`
	CreatedAt  *time.Time `json:"created_at"`
}

// AssignmentFeedback is the grader's response to the user's submission.
type AssignmentFeedback struct {
	AssignmentID int64             `json:"assignment_id"`
	Score        *float64          `json:"score"`
	Grade        *string           `json:"grade"`
	SubmittedAt  *time.Time        `json:"submitted_at"`
	Late         bool              `json:"late"`
	Comments     []FeedbackComment `json:"comments"`
}
