package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/controller"
	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/pkg/response"
)

// SchedulerHandler exposes the calendar and its events.
type SchedulerHandler struct {
	*EntityHandler[models.Event]
	scheduler *service.SchedulerService
}

// NewSchedulerHandler constructs SchedulerHandler.
func NewSchedulerHandler(scheduler *service.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{
		EntityHandler: newEntityHandler[models.Event](service.PageScheduler, scheduler, ""),
		scheduler:     scheduler,
	}
}

type viewRequest struct {
	View controller.View `json:"view"`
}

type navigateRequest struct {
	Action string    `json:"action"`
	Date   time.Time `json:"date"`
}

type slotRequest struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Action string    `json:"action"`
}

// Calendar godoc
// @Summary Calendar state with the visible events
// @Tags Scheduler
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/scheduler [get]
func (h *SchedulerHandler) Calendar(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	response.OK(c, h.scheduler.Calendar(c.Request.Context(), ws), ws.Notices.List(service.PageScheduler))
}

// SetView godoc
// @Summary Switch between month, week and day
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body viewRequest true "View"
// @Success 200 {object} response.Envelope
// @Router /dashboard/scheduler/view [put]
func (h *SchedulerHandler) SetView(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageScheduler)...)
		return
	}
	view, err := h.scheduler.SetView(c.Request.Context(), ws, req.View)
	h.replyCalendar(c, ws, view, err)
}

// Navigate godoc
// @Summary Move the calendar
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body navigateRequest true "prev, next, today or date"
// @Success 200 {object} response.Envelope
// @Router /dashboard/scheduler/navigate [post]
func (h *SchedulerHandler) Navigate(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageScheduler)...)
		return
	}
	view, err := h.scheduler.Navigate(c.Request.Context(), ws, req.Action, req.Date)
	h.replyCalendar(c, ws, view, err)
}

// SelectSlot godoc
// @Summary Draft an event over a calendar slot
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body slotRequest true "Slot"
// @Success 200 {object} response.Envelope
// @Router /dashboard/scheduler/slot [post]
func (h *SchedulerHandler) SelectSlot(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageScheduler)...)
		return
	}
	draft := h.scheduler.SelectSlot(ws, req.Start, req.End, req.Action)
	response.OK(c, draft, ws.Notices.List(service.PageScheduler))
}

// SelectEvent godoc
// @Summary Open an event from the calendar
// @Tags Scheduler
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /dashboard/scheduler/events/{id}/select [get]
func (h *SchedulerHandler) SelectEvent(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	selected, err := h.scheduler.SelectEvent(c.Request.Context(), ws, c.Param("id"))
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageScheduler)...)
		return
	}
	setETag(c, selected.Revision)
	response.OK(c, selected, ws.Notices.List(service.PageScheduler))
}

// Teachers godoc
// @Summary Teachers an event can be assigned to
// @Tags Scheduler
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/scheduler/teachers [get]
func (h *SchedulerHandler) Teachers(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	response.OK(c, h.scheduler.Teachers(c.Request.Context(), ws), ws.Notices.List(service.PageScheduler))
}

func (h *SchedulerHandler) replyCalendar(c *gin.Context, ws *service.Workspace, view service.CalendarView, err error) {
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageScheduler)...)
		return
	}
	response.OK(c, view, ws.Notices.List(service.PageScheduler))
}
