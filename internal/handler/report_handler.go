package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
	"github.com/noah-isme/school-portal/pkg/response"
)

// ReportHandler exposes report generation and exports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type exportRequest struct {
	Format models.ExportFormat `json:"format"`
}

// Generate godoc
// @Summary Generate a report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body models.ReportRequest true "Report request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/reports [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageReports)...)
		return
	}
	report, err := h.reports.Generate(c.Request.Context(), ws, req)
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageReports)...)
		return
	}
	response.Created(c, report, ws.Notices.List(service.PageReports))
}

// List godoc
// @Summary Saved reports
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	response.OK(c, h.reports.List(ws), ws.Notices.List(service.PageReports))
}

// Get godoc
// @Summary A saved report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	report, err := h.reports.Get(ws, c.Param("id"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageReports)...)
		return
	}
	response.OK(c, report, ws.Notices.List(service.PageReports))
}

// Delete godoc
// @Summary Discard a saved report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /dashboard/reports/{id} [delete]
func (h *ReportHandler) Delete(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	if err := h.reports.Delete(ws, c.Param("id")); err != nil {
		response.Error(c, err, ws.Notices.List(service.PageReports)...)
		return
	}
	response.OK(c, gin.H{"id": c.Param("id")}, ws.Notices.List(service.PageReports))
}

// Export godoc
// @Summary Queue an export of a saved report
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body exportRequest true "csv, pdf or xlsx"
// @Success 202 {object} response.Envelope
// @Router /dashboard/reports/{id}/exports [post]
func (h *ReportHandler) Export(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageReports)...)
		return
	}
	job, err := h.reports.Export(c.Request.Context(), ws, c.Param("id"), req.Format)
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageReports)...)
		return
	}
	response.JSON(c, http.StatusAccepted, job, ws.Notices.List(service.PageReports))
}

// Jobs godoc
// @Summary Export jobs of the session
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/reports/exports [get]
func (h *ReportHandler) Jobs(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	response.OK(c, h.reports.Jobs(ws), ws.Notices.List(service.PageReports))
}

// Job godoc
// @Summary Status of an export job
// @Tags Reports
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/reports/exports/{jobId} [get]
func (h *ReportHandler) Job(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	job, err := h.reports.Job(ws, c.Param("jobId"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageReports)...)
		return
	}
	response.OK(c, job, ws.Notices.List(service.PageReports))
}

// Download godoc
// @Summary Download a finished export
// @Tags Reports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /dashboard/reports/exports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	file, name, contentType, err := h.reports.Download(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
