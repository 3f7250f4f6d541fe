package models

// ProfessorSource records how a professor entry was obtained.
type ProfessorSource string

const (
	ProfessorSourceEnrollment   ProfessorSource = "enrollment"
	ProfessorSourceAnnouncement ProfessorSource = "announcement"
	ProfessorSourcePlaceholder  ProfessorSource = "placeholder"
)

const (
	PlaceholderProfessorName = "Course Instructor"
	DefaultProfessorRole     = "Teacher"
)

type Professor struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Role      string          `json:"role"`
	Email     *string         `json:"email"`
	AvatarURL *string         `json:"avatar_url,omitempty"`
	Source    ProfessorSource `json:"source"`
}

// PlaceholderProfessor is used when nobody teaching the course can be identified.
func PlaceholderProfessor() Professor {
	return Professor{ID: 0, Name: PlaceholderProfessorName, Role: DefaultProfessorRole, Source: ProfessorSourcePlaceholder}
}
