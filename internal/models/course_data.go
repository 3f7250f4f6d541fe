package models

// Field names of CompleteCourseData, also accepted by ?include=.
const (
	FieldCourseInfo    = "course_info"
	FieldProfessors    = "professors"
	FieldGrades        = "grades"
	FieldAssignments   = "assignments"
	FieldUpcomingTests = "upcoming_tests"
	FieldModules       = "modules"
	FieldAnnouncements = "announcements"
	FieldDiscussions   = "discussions"
	FieldFiles         = "files"
	FieldGroups        = "groups"
	FieldAnalytics     = "analytics"
)

// CourseDataFields lists every field in assembly order.
var CourseDataFields = []string{
	FieldCourseInfo,
	FieldProfessors,
	FieldGrades,
	FieldAssignments,
	FieldUpcomingTests,
	FieldModules,
	FieldAnnouncements,
	FieldDiscussions,
	FieldFiles,
	FieldGroups,
	FieldAnalytics,
}

// IsCourseDataField reports whether name is a CompleteCourseData field.
func IsCourseDataField(name string) bool {
	for _, field := range CourseDataFields {
		if field == name {
			return true
		}
	}
	return false
}

// CompleteCourseData is everything known about one course. Each field is
// fetched independently; a nil field either failed (see Errors) or was not requested.
type CompleteCourseData struct {
	CourseInfo    *CourseInfo        `json:"course_info"`
	Professors    []Professor        `json:"professors"`
	Grades        *Grades            `json:"grades"`
	Assignments   *AssignmentBuckets `json:"assignments"`
	UpcomingTests []UpcomingTest     `json:"upcoming_tests"`
	Modules       []Module           `json:"modules"`
	Announcements []Announcement     `json:"announcements"`
	Discussions   []Discussion       `json:"discussions"`
	Files         []CourseFile       `json:"files"`
	Groups        []Group            `json:"groups"`
	Analytics     *CourseAnalytics   `json:"analytics"`
	Errors        map[string]string  `json:"errors,omitempty"`
}

// Project keeps only the named fields. An empty list keeps everything.
func (d CompleteCourseData) Project(fields []string) CompleteCourseData {
	if len(fields) == 0 {
		return d
	}
	keep := make(map[string]bool, len(fields))
	for _, field := range fields {
		keep[field] = true
	}

	out := CompleteCourseData{}
	if keep[FieldCourseInfo] {
		out.CourseInfo = d.CourseInfo
	}
	if keep[FieldProfessors] {
		out.Professors = d.Professors
	}
	if keep[FieldGrades] {
		out.Grades = d.Grades
	}
	if keep[FieldAssignments] {
		out.Assignments = d.Assignments
	}
	if keep[FieldUpcomingTests] {
		out.UpcomingTests = d.UpcomingTests
	}
	if keep[FieldModules] {
		out.Modules = d.Modules
	}
	if keep[FieldAnnouncements] {
		out.Announcements = d.Announcements
	}
	if keep[FieldDiscussions] {
		out.Discussions = d.Discussions
	}
	if keep[FieldFiles] {
		out.Files = d.Files
	}
	if keep[FieldGroups] {
		out.Groups = d.Groups
	}
	if keep[FieldAnalytics] {
		out.Analytics = d.Analytics
	}
	for field, reason := range d.Errors {
		if !keep[field] {
			continue
		}
		if out.Errors == nil {
			out.Errors = map[string]string{}
		}
		out.Errors[field] = reason
	}
	return out
}
