package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/pkg/response"
)

// ExamHandler exposes the exams page.
type ExamHandler struct {
	*EntityHandler[models.Exam]
	exams *service.ExamService
}

// NewExamHandler constructs ExamHandler.
func NewExamHandler(exams *service.ExamService) *ExamHandler {
	return &ExamHandler{
		EntityHandler: newEntityHandler[models.Exam](service.PageExams, exams, ""),
		exams:         exams,
	}
}

// NewDraft godoc
// @Summary Blank exam form
// @Tags Exams
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/exams/new [get]
func (h *ExamHandler) NewDraft(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	response.OK(c, h.exams.NewDraft(), ws.Notices.List(service.PageExams))
}

// Results godoc
// @Summary Results of an exam
// @Tags Exams
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/exams/{id}/results [get]
func (h *ExamHandler) Results(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	results, err := h.exams.Results(c.Request.Context(), ws, c.Param("id"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageExams)...)
		return
	}
	response.OK(c, results, ws.Notices.List(service.PageExams))
}
