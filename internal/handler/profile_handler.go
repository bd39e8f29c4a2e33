package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	"github.com/noah-isme/school-portal/pkg/response"
)

// ProfileHandler exposes the signed-in user's profile.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get godoc
// @Summary Current profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	sess, ws, ok := sessionFromContext(c)
	if !ok {
		return
	}
	response.OK(c, h.profiles.Profile(sess), ws.Notices.List(service.PageProfile))
}

// Update godoc
// @Summary Change username or email
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.ProfileUpdate true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	sess, ws, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageProfile)...)
		return
	}
	profile, err := h.profiles.Update(c.Request.Context(), sess, ws, req)
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageProfile)...)
		return
	}
	response.OK(c, profile, ws.Notices.List(service.PageProfile))
}

// ChangePassword godoc
// @Summary Change password
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body models.ChangePasswordRequest true "Passwords"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/profile/password [put]
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	sess, ws, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err), ws.Notices.List(service.PageProfile)...)
		return
	}
	if err := h.profiles.ChangePassword(c.Request.Context(), sess, ws, req); err != nil {
		response.Error(c, err, ws.Notices.List(service.PageProfile)...)
		return
	}
	response.OK(c, gin.H{"changed": true}, ws.Notices.List(service.PageProfile))
}

// UploadPhoto godoc
// @Summary Upload a profile photo
// @Tags Profile
// @Accept mpfd
// @Produce json
// @Param photo formData file true "Image, at most 10MB"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/profile/photo [post]
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	sess, ws, ok := sessionFromContext(c)
	if !ok {
		return
	}
	photo, err := formAttachment(c, "photo")
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageProfile)...)
		return
	}
	defer closeAttachment(photo)
	url, err := h.profiles.UploadPhoto(c.Request.Context(), sess, ws, photo)
	if err != nil {
		response.Error(c, err, ws.Notices.List(service.PageProfile)...)
		return
	}
	response.OK(c, gin.H{"photoUrl": url}, ws.Notices.List(service.PageProfile))
}
