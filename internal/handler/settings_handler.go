package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/pkg/response"
)

// defaultActivityLimit bounds the activity log page when no limit is sent.
const defaultActivityLimit = 50

// SettingsHandler exposes user management, school settings and the
// activity log.
type SettingsHandler struct {
	*EntityHandler[models.User]
	settings *service.SettingsService
}

// NewSettingsHandler constructs SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{
		EntityHandler: newEntityHandler[models.User](service.PageSettings, settings, ""),
		settings:      settings,
	}
}

// School godoc
// @Summary School settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/settings/system [get]
func (h *SettingsHandler) School(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	settings, err := h.settings.Settings(c.Request.Context(), ws)
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageSettings)...)
		return
	}
	response.OK(c, settings, ws.Notices.List(service.PageSettings))
}

// SaveSchool godoc
// @Summary Save school settings
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body models.SchoolSettings true "Settings"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/settings/system [put]
func (h *SettingsHandler) SaveSchool(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	var req models.SchoolSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageSettings)...)
		return
	}
	stored, err := h.settings.SaveSettings(c.Request.Context(), ws, req)
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageSettings)...)
		return
	}
	response.OK(c, stored, ws.Notices.List(service.PageSettings))
}

// ActivityLogs godoc
// @Summary Recent activity
// @Tags Settings
// @Produce json
// @Param user_id query string false "Filter by user"
// @Param resource query string false "Filter by resource"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /dashboard/settings/activity-logs [get]
func (h *SettingsHandler) ActivityLogs(c *gin.Context) {
	ws, ok := workspaceFromContext(c)
	if !ok {
		return
	}
	filter := models.AuditFilter{
		UserID:   c.Query("user_id"),
		Resource: c.Query("resource"),
		Limit:    defaultActivityLimit,
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	logs, err := h.settings.ActivityLogs(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageSettings)...)
		return
	}
	response.OK(c, logs, ws.Notices.List(service.PageSettings))
}
