package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal/internal/middleware"
	"github.com/noah-isme/school-portal/internal/models"
	"github.com/noah-isme/school-portal/internal/service"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
	"github.com/noah-isme/school-portal/pkg/response"
)

// HomePath is where a signed-in user lands.
const HomePath = "/dashboard/admin"

// cookieJar issues and expires the session cookie.
type cookieJar interface {
	CookieName() string
	Cookie(value string, scope models.SessionScope) *http.Cookie
	ClearCookie() *http.Cookie
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
	cookies cookieJar
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, cookies cookieJar) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies}
}

// Status godoc
// @Summary Login page state
// @Description A visitor who is already signed in is sent to the dashboard.
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/login [get]
func (h *AuthHandler) Status(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		response.OK(c, gin.H{"signed_in": false}, nil)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"signed_in": true, "user": sess.User}, nil,
		map[string]interface{}{"redirect": HomePath})
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate against the school backend. remember=true keeps the session across browser restarts.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	sess, cookie, err := h.service.Login(c.Request.Context(), req, middleware.RequestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	http.SetCookie(c.Writer, h.cookies.Cookie(cookie, sess.Scope))
	response.JSON(c, http.StatusOK, gin.H{"user": sess.User, "scope": sess.Scope}, nil,
		map[string]interface{}{"redirect": HomePath})
}

// Signup godoc
// @Summary Register an account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignupRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid signup payload"))
		return
	}
	if err := h.service.Signup(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"username": req.Username}, nil,
		map[string]interface{}{"redirect": middleware.LoginPath})
}

// Logout godoc
// @Summary Sign out
// @Description Clears both session scopes and the session workspace.
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	cookie, _ := c.Cookie(h.cookies.CookieName())
	err := h.service.Logout(c.Request.Context(), cookie, middleware.RequestMeta(c))
	http.SetCookie(c.Writer, h.cookies.ClearCookie())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"signed_out": true}, nil,
		map[string]interface{}{"redirect": middleware.LoginPath})
}
