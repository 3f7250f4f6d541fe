package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/canvas-gateway-api/internal/canvas"
	"github.com/noah-isme/canvas-gateway-api/internal/models"
)

var errIncompleteCourseData = errors.New("course data incomplete")

type professorResolver interface {
	Resolve(ctx context.Context, sess *Session, courseID int64) []models.Professor
}

type assignmentClassifier interface {
	Classify(ctx context.Context, sess *Session, courseID int64) (models.AssignmentBuckets, error)
}

// CourseDataService assembles the complete document for one course.
type CourseDataService struct {
	cache         *CacheService
	professors    professorResolver
	assignments   assignmentClassifier
	announcements courseAnnouncements
	logger        *zap.Logger
	now           func() time.Time
}

// CourseDataServiceParams groups the assembler's collaborators.
type CourseDataServiceParams struct {
	Cache         *CacheService
	Professors    professorResolver
	Assignments   assignmentClassifier
	Announcements courseAnnouncements
	Logger        *zap.Logger
}

// NewCourseDataService constructs the assembler.
func NewCourseDataService(params CourseDataServiceParams) *CourseDataService {
	if params.Logger == nil {
		params.Logger = zap.NewNop()
	}
	return &CourseDataService{
		cache:         params.Cache,
		professors:    params.Professors,
		assignments:   params.Assignments,
		announcements: params.Announcements,
		logger:        params.Logger,
		now:           time.Now,
	}
}

// Assemble returns the complete course document. Each field is fetched on
// its own; a failure nulls that field and records the reason in Errors.
// Only documents without field errors are cached, and a cached document whose
// professors were inferred or are the placeholder is re-resolved on every hit.
// The bool reports a cache hit.
func (s *CourseDataService) Assemble(ctx context.Context, sess *Session, courseID int64) (models.CompleteCourseData, bool, error) {
	var assembled models.CompleteCourseData
	args := map[string]int64{"course_id": courseID}
	data, hit, err := Remember(ctx, s.cache, sess.Scope, CacheCourseData, args, 0, func(ctx context.Context) (models.CompleteCourseData, error) {
		assembled = s.assemble(ctx, sess, courseID)
		if len(assembled.Errors) > 0 {
			return assembled, errIncompleteCourseData
		}
		return assembled, nil
	})
	if errors.Is(err, errIncompleteCourseData) {
		return assembled, false, nil
	}
	if err == nil && hit && !enrollmentBacked(data.Professors) {
		data.Professors = s.professors.Resolve(ctx, sess, courseID)
	}
	return data, hit, err
}

func enrollmentBacked(professors []models.Professor) bool {
	if len(professors) == 0 {
		return false
	}
	for _, p := range professors {
		if p.Source != models.ProfessorSourceEnrollment {
			return false
		}
	}
	return true
}

// AssembleFields is Assemble projected onto fields.
func (s *CourseDataService) AssembleFields(ctx context.Context, sess *Session, courseID int64, fields []string) (models.CompleteCourseData, bool, error) {
	data, hit, err := s.Assemble(ctx, sess, courseID)
	if err != nil {
		return models.CompleteCourseData{}, false, err
	}
	return data.Project(fields), hit, nil
}

func (s *CourseDataService) assemble(ctx context.Context, sess *Session, courseID int64) models.CompleteCourseData {
	doc := models.CompleteCourseData{}
	fail := func(field string, err error) {
		if doc.Errors == nil {
			doc.Errors = map[string]string{}
		}
		doc.Errors[field] = err.Error()
		s.logger.Warn("course data field failed", zap.Int64("course_id", courseID), zap.String("field", field), zap.Error(err))
	}

	if r := Capture(ctx, func(ctx context.Context) (*models.CourseInfo, error) { return s.courseInfo(ctx, sess, courseID) }); r.OK() {
		doc.CourseInfo = r.Value
	} else {
		fail(models.FieldCourseInfo, r.Err)
	}

	if r := Capture(ctx, func(ctx context.Context) ([]models.Professor, error) {
		return s.professors.Resolve(ctx, sess, courseID), nil
	}); r.OK() {
		doc.Professors = r.Value
	} else {
		fail(models.FieldProfessors, r.Err)
	}

	if r := Capture(ctx, func(ctx context.Context) (*models.Grades, error) { return s.grades(ctx, sess, courseID) }); r.OK() {
		doc.Grades = r.Value
	} else {
		fail(models.FieldGrades, r.Err)
	}

	assignments := Capture(ctx, func(ctx context.Context) (models.AssignmentBuckets, error) {
		return s.assignments.Classify(ctx, sess, courseID)
	})
	if assignments.OK() {
		doc.Assignments = &assignments.Value
		doc.UpcomingTests = UpcomingTestsFrom(assignments.Value, s.now())
	} else {
		fail(models.FieldAssignments, assignments.Err)
		fail(models.FieldUpcomingTests, assignments.Err)
	}

	if r := Capture(ctx, func(ctx context.Context) ([]models.Module, error) { return s.modules(ctx, sess, courseID) }); r.OK() {
		doc.Modules = r.Value
	} else {
		fail(models.FieldModules, r.Err)
	}

	if r := Capture(ctx, func(ctx context.Context) ([]models.Announcement, error) {
		return s.announcements.ForCourse(ctx, sess, courseID)
	}); r.OK() {
		doc.Announcements = r.Value
	} else {
		fail(models.FieldAnnouncements, r.Err)
	}

	if r := Capture(ctx, func(ctx context.Context) ([]models.Discussion, error) { return s.discussions(ctx, sess, courseID) }); r.OK() {
		doc.Discussions = r.Value
	} else {
		fail(models.FieldDiscussions, r.Err)
	}

	if r := Capture(ctx, func(ctx context.Context) ([]models.CourseFile, error) { return s.files(ctx, sess, courseID) }); r.OK() {
		doc.Files = r.Value
	} else {
		fail(models.FieldFiles, r.Err)
	}

	if r := Capture(ctx, func(ctx context.Context) ([]models.Group, error) { return s.groups(ctx, sess, courseID) }); r.OK() {
		doc.Groups = r.Value
	} else {
		fail(models.FieldGroups, r.Err)
	}

	if r := Capture(ctx, func(ctx context.Context) (*models.CourseAnalytics, error) { return s.analytics(ctx, sess, courseID) }); r.OK() {
		doc.Analytics = r.Value
	} else {
		fail(models.FieldAnalytics, r.Err)
	}

	return doc
}

func (s *CourseDataService) courseInfo(ctx context.Context, sess *Session, courseID int64) (*models.CourseInfo, error) {
	course, err := sess.Client.GetCourse(ctx, courseID, true)
	if err != nil {
		return nil, err
	}
	info := &models.CourseInfo{
		ID:        courseID,
		Name:      course.Name,
		StartDate: course.StartAt,
		EndDate:   course.EndAt,
		Syllabus:  course.SyllabusBody,
	}
	if course.CourseCode != "" {
		code := course.CourseCode
		info.Code = &code
	}
	return info, nil
}

// grades returns nil without error when the user has no enrollment with grades.
func (s *CourseDataService) grades(ctx context.Context, sess *Session, courseID int64) (*models.Grades, error) {
	user, err := sess.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	enrollments, err := sess.Client.ListEnrollments(ctx, courseID, canvas.EnrollmentFilter{UserID: user.ID})
	if err != nil {
		return nil, err
	}
	for _, e := range enrollments {
		if e.UserID != user.ID || e.Grades == nil {
			continue
		}
		return &models.Grades{
			CurrentScore: e.Grades.CurrentScore,
			FinalScore:   e.Grades.FinalScore,
			CurrentGrade: e.Grades.CurrentGrade,
			FinalGrade:   e.Grades.FinalGrade,
		}, nil
	}
	return nil, nil
}

func (s *CourseDataService) modules(ctx context.Context, sess *Session, courseID int64) ([]models.Module, error) {
	raw, err := sess.Client.ListModules(ctx, courseID)
	if err != nil {
		return nil, err
	}
	modules := make([]models.Module, 0, len(raw))
	for _, m := range raw {
		items, err := sess.Client.ListModuleItems(ctx, courseID, m.ID)
		if err != nil {
			return nil, err
		}
		module := models.Module{ID: m.ID, Name: m.Name, UnlockDate: m.UnlockAt, Items: make([]models.ModuleItem, 0, len(items))}
		for _, item := range items {
			mi := models.ModuleItem{ID: item.ID, Title: item.Title, Type: item.Type, URL: optionalString(item.HTMLURL)}
			if item.ContentID != 0 {
				contentID := item.ContentID
				mi.ContentID = &contentID
			}
			module.Items = append(module.Items, mi)
		}
		modules = append(modules, module)
	}
	return modules, nil
}

func (s *CourseDataService) discussions(ctx context.Context, sess *Session, courseID int64) ([]models.Discussion, error) {
	topics, err := sess.Client.ListDiscussionTopics(ctx, courseID, false)
	if err != nil {
		return nil, err
	}
	discussions := make([]models.Discussion, 0, len(topics))
	for _, t := range topics {
		discussions = append(discussions, models.Discussion{
			ID:         t.ID,
			Title:      t.Title,
			Message:    t.Message,
			PostedAt:   t.PostedAt,
			ReplyCount: t.DiscussionSubentryCount,
		})
	}
	return discussions, nil
}

// files maps a permission failure to the restricted placeholder.
func (s *CourseDataService) files(ctx context.Context, sess *Session, courseID int64) ([]models.CourseFile, error) {
	raw, err := sess.Client.ListFiles(ctx, courseID)
	if err != nil {
		if canvas.IsForbidden(err) {
			return models.RestrictedFilesPlaceholder(), nil
		}
		return nil, err
	}
	files := make([]models.CourseFile, 0, len(raw))
	for _, f := range raw {
		files = append(files, models.CourseFile{
			ID:          f.ID,
			DisplayName: f.DisplayName,
			Filename:    f.Filename,
			ContentType: f.ContentType,
			URL:         f.URL,
			Size:        f.Size,
			CreatedAt:   f.CreatedAt,
			UpdatedAt:   f.UpdatedAt,
		})
	}
	return files, nil
}

func (s *CourseDataService) groups(ctx context.Context, sess *Session, courseID int64) ([]models.Group, error) {
	raw, err := sess.Client.ListGroups(ctx, courseID)
	if err != nil {
		return nil, err
	}
	groups := make([]models.Group, 0, len(raw))
	for _, g := range raw {
		groups = append(groups, models.Group{ID: g.ID, Name: g.Name, Description: g.Description, MembersCount: g.MembersCount})
	}
	return groups, nil
}

// analytics reports supported=false when the instance has analytics disabled
// or the user may not read them. Numbers are never synthesised.
func (s *CourseDataService) analytics(ctx context.Context, sess *Session, courseID int64) (*models.CourseAnalytics, error) {
	user, err := sess.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	student, err := sess.Client.GetUserCourseParticipation(ctx, courseID, user.ID)
	if unsupported := unsupportedAnalytics(err); unsupported != nil {
		return unsupported, nil
	}
	if err != nil {
		return nil, err
	}
	course, err := sess.Client.GetCourseParticipation(ctx, courseID)
	if unsupported := unsupportedAnalytics(err); unsupported != nil {
		return unsupported, nil
	}
	if err != nil {
		return nil, err
	}

	analytics := &models.CourseAnalytics{Supported: true, Course: make([]models.ActivityDay, 0, len(course))}
	if student != nil {
		activity := &models.StudentActivity{PageViews: student.PageViews, Participations: make([]models.ParticipationEvent, 0, len(student.Participations))}
		for _, p := range student.Participations {
			activity.Participations = append(activity.Participations, models.ParticipationEvent{CreatedAt: p.CreatedAt, URL: p.URL})
		}
		analytics.Student = activity
	}
	for _, day := range course {
		analytics.Course = append(analytics.Course, models.ActivityDay{Date: day.Date, Participations: day.Participations, Views: day.Views})
	}
	return analytics, nil
}

func unsupportedAnalytics(err error) *models.CourseAnalytics {
	switch {
	case canvas.IsNotFound(err):
		return &models.CourseAnalytics{Supported: false, Reason: "analytics are not enabled for this course"}
	case canvas.IsForbidden(err):
		return &models.CourseAnalytics{Supported: false, Reason: "analytics are not available to this user"}
	}
	return nil
}
