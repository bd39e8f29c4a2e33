package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/pkg/response"
)

// photoField is the multipart part carrying a profile photo.
const photoField = "profilePhoto"

// StudentHandler exposes the students page.
type StudentHandler struct {
	*EntityHandler[models.Student]
	students *service.StudentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService) *StudentHandler {
	return &StudentHandler{
		EntityHandler: newEntityHandler[models.Student](service.PageStudents, students, photoField),
		students:      students,
	}
}

// Departments godoc
// @Summary List departments a student can join
// @Tags Students
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/students/departments [get]
func (h *StudentHandler) Departments(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	departments := h.students.Departments(c.Request.Context(), ws)
	response.OK(c, departments, ws.Notices.List(service.PageStudents))
}

// TeacherHandler exposes the teachers page.
type TeacherHandler struct {
	*EntityHandler[models.Teacher]
}

// NewTeacherHandler constructs TeacherHandler. Multipart submissions carry
// the array fields as JSON-encoded values.
func NewTeacherHandler(teachers *service.TeacherService) *TeacherHandler {
	h := newEntityHandler[models.Teacher](service.PageTeachers, teachers, photoField)
	h.prepare = func(_ *gin.Context, draft *models.Teacher) {
		draft.Qualifications = expandJSONList(draft.Qualifications)
		draft.SubjectSpecialization = expandJSONList(draft.SubjectSpecialization)
	}
	return &TeacherHandler{EntityHandler: h}
}

// AdminHandler exposes the admin dashboard.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Summary godoc
// @Summary Admin dashboard counts
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/admin [get]
func (h *AdminHandler) Summary(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	summary := h.admin.Summary(c.Request.Context(), ws)
	notices := append(ws.Notices.List(service.PageStudents), ws.Notices.List(service.PageTeachers)...)
	response.OK(c, summary, append(notices, ws.Notices.List(service.PageAdmin)...))
}

// NoticeHandler lets the user dismiss inline notices.
type NoticeHandler struct{}

// NewNoticeHandler constructs NoticeHandler.
func NewNoticeHandler() *NoticeHandler {
	return &NoticeHandler{}
}

// List godoc
// @Summary Pending notices of a page
// @Tags Notices
// @Produce json
// @Param page path string true "Page name"
// @Success 200 {object} response.Envelope
// @Router /dashboard/notices/{page} [get]
func (h *NoticeHandler) List(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	notices := ws.Notices.List(c.Param("page"))
	response.OK(c, notices, notices)
}

// Dismiss godoc
// @Summary Dismiss a notice
// @Tags Notices
// @Produce json
// @Param page path string true "Page name"
// @Param id path string true "Notice ID"
// @Success 200 {object} response.Envelope
// @Router /dashboard/notices/{page}/{id} [delete]
func (h *NoticeHandler) Dismiss(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	page := c.Param("page")
	dismissed := ws.Notices.Dismiss(page, c.Param("id"))
	response.OK(c, gin.H{"dismissed": dismissed}, ws.Notices.List(page))
}
