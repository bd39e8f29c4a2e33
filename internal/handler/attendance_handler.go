package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/pkg/response"
)

// AttendanceHandler exposes the attendance sheet.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

type loadSheetRequest struct {
	Department string `json:"department"`
	Semester   string `json:"semester"`
}

type statusRequest struct {
	Status models.AttendanceStatus `json:"status"`
}

type saveSheetRequest struct {
	Date string `json:"date"`
}

// Departments godoc
// @Summary Departments attendance can be taken for
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/attendance/departments [get]
func (h *AttendanceHandler) Departments(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	response.OK(c, h.attendance.Departments(c.Request.Context(), ws), ws.Notices.List(service.PageAttendance))
}

// LoadSheet godoc
// @Summary Build the attendance sheet of a department and semester
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body loadSheetRequest true "Department and semester"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/attendance/sheet [post]
func (h *AttendanceHandler) LoadSheet(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var req loadSheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageAttendance)...)
		return
	}
	sheet, err := h.attendance.LoadSheet(c.Request.Context(), ws, req.Department, req.Semester)
	h.replySheet(c, ws, sheet, err)
}

// Sheet godoc
// @Summary The sheet being edited
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/attendance/sheet [get]
func (h *AttendanceHandler) Sheet(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	sheet, err := h.attendance.Sheet(ws)
	h.replySheet(c, ws, sheet, err)
}

// SetStatus godoc
// @Summary Mark one student on the sheet
// @Tags Attendance
// @Accept json
// @Produce json
// @Param studentId path string true "Student ID"
// @Param payload body statusRequest true "Present, Absent, Late or Excused"
// @Success 200 {object} response.Envelope
// @Router /dashboard/attendance/sheet/{studentId} [put]
func (h *AttendanceHandler) SetStatus(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageAttendance)...)
		return
	}
	sheet, err := h.attendance.SetStatus(ws, c.Param("studentId"), req.Status)
	h.replySheet(c, ws, sheet, err)
}

// SaveSheet godoc
// @Summary Submit the sheet
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body saveSheetRequest false "Date, defaults to today"
// @Success 200 {object} response.Envelope
// @Router /dashboard/attendance/sheet/submit [post]
func (h *AttendanceHandler) SaveSheet(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var req saveSheetRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err), ws.Notices.List(service.PageAttendance)...)
			return
		}
	}
	if err := h.attendance.SaveSheet(c.Request.Context(), ws, req.Date); err != nil {
		response.Error(c, err, ws.Notices.List(service.PageAttendance)...)
		return
	}
	sheet, err := h.attendance.Sheet(ws)
	h.replySheet(c, ws, sheet, err)
}

// Records godoc
// @Summary Stored attendance marks
// @Tags Attendance
// @Produce json
// @Param student_id query string false "Student ID"
// @Success 200 {object} response.Envelope
// @Router /dashboard/attendance/records [get]
func (h *AttendanceHandler) Records(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	records, err := h.attendance.Records(c.Request.Context(), ws, c.Query("student_id"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageAttendance)...)
		return
	}
	response.OK(c, records, ws.Notices.List(service.PageAttendance))
}

func (h *AttendanceHandler) replySheet(c *gin.Context, ws *service.Workspace, sheet *models.AttendanceSheet, err error) {
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageAttendance)...)
		return
	}
	response.OK(c, sheet, ws.Notices.List(service.PageAttendance))
}
