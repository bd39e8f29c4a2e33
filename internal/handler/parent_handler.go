package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/pkg/response"
)

// ParentHandler exposes the parent portal.
type ParentHandler struct {
	parents *service.ParentService
}

// NewParentHandler constructs ParentHandler.
func NewParentHandler(parents *service.ParentService) *ParentHandler {
	return &ParentHandler{parents: parents}
}

// Students godoc
// @Summary Students a parent can pick from
// @Tags Parent
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/parentportal/students [get]
func (h *ParentHandler) Students(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	response.OK(c, h.parents.Students(c.Request.Context(), ws), ws.Notices.List(service.PageParent))
}

// Overview godoc
// @Summary Attendance, exam results and fees of a student
// @Tags Parent
// @Produce json
// @Param student_id query string true "Student ID"
// @Param start_date query string false "Inclusive start date (YYYY-MM-DD)"
// @Param end_date query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/parentportal/overview [get]
func (h *ParentHandler) Overview(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	overview, err := h.parents.Overview(c.Request.Context(), ws,
		c.Query("student_id"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageParent)...)
		return
	}
	response.OK(c, overview, ws.Notices.List(service.PageParent))
}

// Teachers godoc
// @Summary Teachers a parent can message
// @Tags Parent
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/parentportal/teachers [get]
func (h *ParentHandler) Teachers(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	teachers, err := h.parents.Teachers(c.Request.Context(), ws)
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageParent)...)
		return
	}
	response.OK(c, teachers, ws.Notices.List(service.PageParent))
}

// Messages godoc
// @Summary Conversation with a teacher
// @Tags Parent
// @Produce json
// @Param teacher_id query string false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /dashboard/parentportal/messages [get]
func (h *ParentHandler) Messages(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	response.OK(c, h.parents.Messages(c.Request.Context(), ws, c.Query("teacher_id")), ws.Notices.List(service.PageParent))
}

// Send godoc
// @Summary Send a message to a teacher
// @Tags Parent
// @Accept json
// @Produce json
// @Param payload body models.Message true "Message"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/parentportal/messages [post]
func (h *ParentHandler) Send(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var msg models.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageParent)...)
		return
	}
	sent, err := h.parents.Send(c.Request.Context(), ws, msg)
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageParent)...)
		return
	}
	response.Created(c, sent, ws.Notices.List(service.PageParent))
}
