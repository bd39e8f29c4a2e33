package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/pkg/response"
)

// CourseHandler exposes the courses page and its curriculum editor.
type CourseHandler struct {
	*EntityHandler[models.Course]
	courses *service.CourseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{
		EntityHandler: newEntityHandler[models.Course](service.PageCourses, courses, "image"),
		courses:       courses,
	}
}

type semesterRequest struct {
	Number int `json:"number"`
}

type subjectRequest struct {
	Name string `json:"name"`
}

// AddSemester godoc
// @Summary Add a semester to a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body semesterRequest true "Semester"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dashboard/courses/{id}/semesters [post]
func (h *CourseHandler) AddSemester(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var req semesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageCourses)...)
		return
	}
	course, err := h.courses.AddSemester(c.Request.Context(), ws, c.Param("id"), req.Number)
	h.reply(c, ws, course, err)
}

// DeleteSemester godoc
// @Summary Remove a semester from a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Param number path int true "Semester number"
// @Success 200 {object} response.Envelope
// @Router /dashboard/courses/{id}/semesters/{number} [delete]
func (h *CourseHandler) DeleteSemester(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	number, err := intParam(c, "number")
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageCourses)...)
		return
	}
	course, err := h.courses.DeleteSemester(c.Request.Context(), ws, c.Param("id"), number)
	h.reply(c, ws, course, err)
}

// AddSubject godoc
// @Summary Add a subject to a semester
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param number path int true "Semester number"
// @Param payload body subjectRequest true "Subject"
// @Success 200 {object} response.Envelope
// @Router /dashboard/courses/{id}/semesters/{number}/subjects [post]
func (h *CourseHandler) AddSubject(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	number, err := intParam(c, "number")
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageCourses)...)
		return
	}
	var req subjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageCourses)...)
		return
	}
	course, err := h.courses.AddSubject(c.Request.Context(), ws, c.Param("id"), number,
		models.Subject{Name: strings.TrimSpace(req.Name)})
	h.reply(c, ws, course, err)
}

// DeleteSubject godoc
// @Summary Remove a subject from a semester
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Param number path int true "Semester number"
// @Param index path int true "Subject position"
// @Success 200 {object} response.Envelope
// @Router /dashboard/courses/{id}/semesters/{number}/subjects/{index} [delete]
func (h *CourseHandler) DeleteSubject(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	number, err := intParam(c, "number")
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageCourses)...)
		return
	}
	index, err := intParam(c, "index")
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageCourses)...)
		return
	}
	course, err := h.courses.DeleteSubject(c.Request.Context(), ws, c.Param("id"), number, index)
	h.reply(c, ws, course, err)
}

func (h *CourseHandler) reply(c *gin.Context, ws *service.Workspace, course *models.Course, err error) {
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageCourses)...)
		return
	}
	response.OK(c, course, ws.Notices.List(service.PageCourses))
}
