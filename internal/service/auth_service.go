package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

type accountRepository interface {
	Login(ctx context.Context, username, password string) (*models.LoginResult, error)
	Signup(ctx context.Context, req models.SignupRequest) error
	UpdateProfile(ctx context.Context, token string, update models.ProfileUpdate) error
	ChangePassword(ctx context.Context, token string, req models.ChangePasswordRequest) error
	UploadPhoto(ctx context.Context, token string, photo *models.Attachment) (string, error)
}

type sessionGuard interface {
	Open(ctx context.Context, login *models.LoginResult, remember bool) (*models.Session, string, error)
	Resolve(ctx context.Context, cookie string) (*models.Session, error)
	Refresh(ctx context.Context, s *models.Session) error
	Close(ctx context.Context, id string) error
	SessionID(cookie string) (string, bool)
}

// AuthService signs users in and out of the portal.
type AuthService struct {
	accounts   accountRepository
	guard      sessionGuard
	workspaces *WorkspaceRegistry
	audit      *AuditService
	validator  *form.Validator
	logger     *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(accounts accountRepository, guard sessionGuard, workspaces *WorkspaceRegistry, audit *AuditService, validator *form.Validator, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = form.NewValidator()
	}
	return &AuthService{
		accounts:   accounts,
		guard:      guard,
		workspaces: workspaces,
		audit:      audit,
		validator:  validator,
		logger:     logger,
	}
}

// Login authenticates against the backend and opens a session in the scope
// selected by the remember flag. It returns the session and the signed
// cookie value. Nothing is persisted when the backend refuses.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest, meta RequestMeta) (*models.Session, string, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := s.validator.Struct(req); err != nil {
		return nil, "", err
	}

	result, err := s.accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		s.logger.Info("login refused", zap.String("username", req.Username), zap.Error(err))
		return nil, "", err
	}
	if result.Token == "" {
		return nil, "", appErrors.Clone(appErrors.ErrShape, "Login failed. Please try again.")
	}

	sess, cookie, err := s.guard.Open(ctx, result, req.Remember)
	if err != nil {
		return nil, "", err
	}

	s.audit.Record(ctx, models.AuditLog{
		UserID:   strPtr(sess.User.ID),
		Action:   models.AuditActionLogin,
		Resource: "auth",
		Status:   200,
	}, meta)
	s.logger.Info("user signed in", zap.String("session_id", sess.ID), zap.String("scope", string(sess.Scope)))
	return sess, cookie, nil
}

// Signup registers a new account. Self-registered accounts are plain users.
func (s *AuthService) Signup(ctx context.Context, req models.SignupRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	req.UserType = models.DefaultSignupUserType
	return s.accounts.Signup(ctx, req)
}

// Logout clears the session named by cookie from both scopes and drops its
// workspace. An unreadable cookie leaves nothing to clear.
func (s *AuthService) Logout(ctx context.Context, cookie string, meta RequestMeta) error {
	id, ok := s.guard.SessionID(cookie)
	if !ok {
		return nil
	}
	var userID string
	if sess, err := s.guard.Resolve(ctx, cookie); err == nil {
		userID = sess.User.ID
	}

	err := s.guard.Close(ctx, id)
	s.workspaces.Drop(id)
	if err != nil {
		s.logger.Warn("failed to clear session", zap.String("session_id", id), zap.Error(err))
		return err
	}

	s.audit.Record(ctx, models.AuditLog{
		UserID:   strPtr(userID),
		Action:   models.AuditActionLogout,
		Resource: "auth",
		Status:   200,
	}, meta)
	return nil
}
