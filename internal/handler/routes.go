package handler

import "github.com/gin-gonic/gin"

// Handlers groups every Canvas-facing handler.
type Handlers struct {
	Users       *UserHandler
	Courses     *CourseHandler
	CourseData  *CourseDataHandler
	Assignments *AssignmentHandler
	Calendar    *CalendarHandler
	Aggregate   *AggregateHandler
	CourseNames *CourseNameHandler
	Cache       *CacheHandler
}

// RegisterRoutes mounts the Canvas API on group. session must open the
// Canvas session for every route.
func RegisterRoutes(group *gin.RouterGroup, h Handlers, session gin.HandlerFunc) {
	group.Use(session)

	group.POST("/init", h.Users.Init)
	group.GET("/user-profile", h.Users.Profile)

	group.GET("/all-courses-id", h.Courses.AllCourseIDs)
	group.GET("/all-classes", h.Courses.AllClasses)
	group.GET("/current-classes", h.Courses.CurrentClasses)
	group.GET("/find-course", h.Courses.FindCourse)
	group.GET("/syllabus/:courseId", h.Courses.Syllabus)
	group.GET("/class-professors/:courseId", h.Courses.Professors)

	group.GET("/course-data/:courseId", h.CourseData.Get)

	group.GET("/class-assignments/:courseId", h.Assignments.List)
	group.GET("/class-assignments/:courseId/export", h.Assignments.Export)
	group.GET("/class-assignments/:courseId/:assignmentId/feedback", h.Assignments.Feedback)
	group.GET("/upcoming-tests/:courseId", h.Assignments.UpcomingTests)

	group.GET("/calendar-events", h.Calendar.Events)

	group.GET("/announcements", h.Aggregate.Announcements)
	group.GET("/all-data", h.Aggregate.AllData)

	group.GET("/course-names", h.CourseNames.List)
	group.PUT("/course-names/:courseId", h.CourseNames.Set)
	group.DELETE("/course-names/:courseId", h.CourseNames.Delete)

	group.DELETE("/cache", h.Cache.Clear)
}
