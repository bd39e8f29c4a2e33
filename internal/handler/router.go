package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/middleware"
	"github.com/noah-isme/school-portal/internal/service"
)

// Handlers groups every page handler of the portal.
type Handlers struct {
	Auth       *AuthHandler
	Admin      *AdminHandler
	Notices    *NoticeHandler
	Students   *StudentHandler
	Teachers   *TeacherHandler
	Courses    *CourseHandler
	Exams      *ExamHandler
	Fees       *FeeHandler
	Library    *LibraryHandler
	Attendance *AttendanceHandler
	Scheduler  *SchedulerHandler
	Parent     *ParentHandler
	Reports    *ReportHandler
	Settings   *SettingsHandler
	Profile    *ProfileHandler
}

// Register mounts the auth routes and the protected dashboard on r.
func (h *Handlers) Register(r gin.IRouter, guard middleware.SessionResolver, workspaces *service.WorkspaceRegistry, audit *service.AuditService) {
	auth := r.Group("/auth")
	auth.GET("/login", middleware.OptionalSession(guard, nil), h.Auth.Status)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/logout", h.Auth.Logout)

	dash := r.Group("/dashboard", middleware.RequireSession(guard, workspaces))
	dash.GET("/admin", h.Admin.Summary)
	dash.GET("/notices/:page", h.Notices.List)
	dash.DELETE("/notices/:page/:id", h.Notices.Dismiss)

	students := dash.Group("/students")
	students.GET("/departments", h.Students.Departments)
	h.Students.register(students, middleware.Audit(audit, service.PageStudents))

	teachers := dash.Group("/teachers")
	h.Teachers.register(teachers, middleware.Audit(audit, service.PageTeachers))

	courses := dash.Group("/courses")
	courseAudit := middleware.Audit(audit, service.PageCourses)
	h.Courses.register(courses, courseAudit)
	courses.POST("/:id/semesters", courseAudit, h.Courses.AddSemester)
	courses.DELETE("/:id/semesters/:number", courseAudit, h.Courses.DeleteSemester)
	courses.POST("/:id/semesters/:number/subjects", courseAudit, h.Courses.AddSubject)
	courses.DELETE("/:id/semesters/:number/subjects/:index", courseAudit, h.Courses.DeleteSubject)

	exams := dash.Group("/exams")
	exams.GET("/new", h.Exams.NewDraft)
	exams.GET("/:id/results", h.Exams.Results)
	h.Exams.register(exams, middleware.Audit(audit, service.PageExams))

	fees := dash.Group("/fees")
	feeAudit := middleware.Audit(audit, service.PageFees)
	fees.GET("", h.Fees.List)
	fees.POST("/reload", h.Fees.Reload)
	fees.GET("/:id/form", h.Fees.Form)
	fees.POST("", feeAudit, h.Fees.Create)
	fees.PUT("/:id", feeAudit, h.Fees.Update)
	fees.DELETE("/:id", feeAudit, h.Fees.Delete)
	fees.POST("/:id/pay", feeAudit, h.Fees.MarkPaid)
	fees.GET("/:id/receipt", h.Fees.Receipt)

	library := dash.Group("/library")
	libraryAudit := middleware.Audit(audit, service.PageLibrary)
	library.GET("/borrows", h.Library.Borrows)
	books := library.Group("/books")
	books.GET("", h.Library.List)
	books.POST("/reload", h.Library.Reload)
	books.GET("/:id/form", h.Library.Form)
	books.POST("", libraryAudit, h.Library.Create)
	books.PUT("/:id", libraryAudit, h.Library.Update)
	books.DELETE("/:id", libraryAudit, h.Library.Delete)
	books.POST("/:id/borrow", libraryAudit, h.Library.Borrow)
	books.POST("/:id/return", libraryAudit, h.Library.Return)

	attendance := dash.Group("/attendance")
	attendance.GET("/departments", h.Attendance.Departments)
	attendance.GET("/records", h.Attendance.Records)
	attendance.GET("/sheet", h.Attendance.Sheet)
	attendance.POST("/sheet", h.Attendance.LoadSheet)
	attendance.PUT("/sheet/:studentId", h.Attendance.SetStatus)
	attendance.POST("/sheet/submit", middleware.Audit(audit, service.PageAttendance), h.Attendance.SaveSheet)

	scheduler := dash.Group("/scheduler")
	scheduler.GET("", h.Scheduler.Calendar)
	scheduler.PUT("/view", h.Scheduler.SetView)
	scheduler.POST("/navigate", h.Scheduler.Navigate)
	scheduler.POST("/slot", h.Scheduler.SelectSlot)
	scheduler.GET("/teachers", h.Scheduler.Teachers)
	events := scheduler.Group("/events")
	events.GET("/:id/select", h.Scheduler.SelectEvent)
	h.Scheduler.register(events, middleware.Audit(audit, service.PageScheduler))

	parent := dash.Group("/" + service.PageParent)
	parent.GET("/students", h.Parent.Students)
	parent.GET("/overview", h.Parent.Overview)
	parent.GET("/teachers", h.Parent.Teachers)
	parent.GET("/messages", h.Parent.Messages)
	parent.POST("/messages", middleware.Audit(audit, "messages"), h.Parent.Send)

	reports := dash.Group("/reports")
	reports.GET("", h.Reports.List)
	reports.POST("", h.Reports.Generate)
	reports.GET("/exports", h.Reports.Jobs)
	reports.GET("/exports/download", h.Reports.Download)
	reports.GET("/exports/:jobId", h.Reports.Job)
	reports.GET("/:id", h.Reports.Get)
	reports.DELETE("/:id", h.Reports.Delete)
	reports.POST("/:id/exports", h.Reports.Export)

	settings := dash.Group("/settings")
	settings.GET("/system", h.Settings.School)
	settings.PUT("/system", middleware.Audit(audit, "settings"), h.Settings.SaveSchool)
	settings.GET("/activity-logs", h.Settings.ActivityLogs)
	h.Settings.register(settings.Group("/users"), middleware.Audit(audit, "users"))

	profile := dash.Group("/profile")
	profile.GET("", h.Profile.Get)
	profile.PUT("", h.Profile.Update)
	profile.PUT("/password", h.Profile.ChangePassword)
	profile.POST("/photo", h.Profile.UploadPhoto)
}
