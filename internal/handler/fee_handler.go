package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/pkg/response"
)

// FeeHandler exposes the fees page.
type FeeHandler struct {
	*EntityHandler[models.Fee]
	fees *service.FeeService
}

// NewFeeHandler constructs FeeHandler.
func NewFeeHandler(fees *service.FeeService) *FeeHandler {
	return &FeeHandler{
		EntityHandler: newEntityHandler[models.Fee](service.PageFees, fees, ""),
		fees:          fees,
	}
}

// List godoc
// @Summary List fees
// @Tags Fees
// @Produce json
// @Param status query string false "All, Paid or Pending"
// @Success 200 {object} response.Envelope
// @Router /dashboard/fees [get]
func (h *FeeHandler) List(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	rows, err := h.fees.Filter(c.Request.Context(), ws, c.Query("status"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageFees)...)
		return
	}
	response.OK(c, rows, ws.Notices.List(service.PageFees))
}

// MarkPaid godoc
// @Summary Mark a pending fee as paid
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /dashboard/fees/{id}/pay [post]
func (h *FeeHandler) MarkPaid(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	result, err := h.fees.MarkPaid(c.Request.Context(), ws, c.Param("id"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageFees)...)
		return
	}
	response.OK(c, saved(result), ws.Notices.List(service.PageFees))
}

// Receipt godoc
// @Summary Download a fee receipt
// @Tags Fees
// @Produce application/pdf
// @Param id path string true "Fee ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /dashboard/fees/{id}/receipt [get]
func (h *FeeHandler) Receipt(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	pdf, err := h.fees.Receipt(c.Request.Context(), ws, c.Param("id"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageFees)...)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="receipt-`+c.Param("id")+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
