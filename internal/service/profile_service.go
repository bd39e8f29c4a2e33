package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// ProfileService manages the signed-in account.
type ProfileService struct {
	accounts  accountRepository
	guard     sessionGuard
	validator *form.Validator
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(accounts accountRepository, guard sessionGuard, validator *form.Validator, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = form.NewValidator()
	}
	return &ProfileService{accounts: accounts, guard: guard, validator: validator, logger: logger}
}

// Profile returns the user snapshot held by the session.
func (s *ProfileService) Profile(sess *models.Session) models.UserProfile {
	return sess.User
}

// Update changes username and/or email, then rewrites the snapshot in the
// scope the session lives in.
func (s *ProfileService) Update(ctx context.Context, sess *models.Session, ws *Workspace, update models.ProfileUpdate) (*models.UserProfile, error) {
	update.Username = strings.TrimSpace(update.Username)
	update.Email = strings.TrimSpace(update.Email)
	if update.Empty() {
		return nil, appErrors.Validation("Please enter a username or email to update.",
			map[string]string{"username": "required", "email": "required"})
	}
	if err := s.validator.Struct(update); err != nil {
		return nil, err
	}
	if err := s.accounts.UpdateProfile(ctx, sess.Token, update); err != nil {
		ws.Notices.Error(PageProfile, err)
		return nil, err
	}

	if update.Username != "" {
		sess.User.Username = update.Username
	}
	if update.Email != "" {
		sess.User.Email = update.Email
	}
	if err := s.guard.Refresh(ctx, sess); err != nil {
		return nil, err
	}
	ws.Notices.Post(PageProfile, models.NoticeSuccess, "", "Profile updated successfully!")
	profile := sess.User
	return &profile, nil
}

// ChangePassword replaces the account password.
func (s *ProfileService) ChangePassword(ctx context.Context, sess *models.Session, ws *Workspace, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return err
	}
	if err := s.accounts.ChangePassword(ctx, sess.Token, req); err != nil {
		ws.Notices.Error(PageProfile, err)
		return err
	}
	ws.Notices.Post(PageProfile, models.NoticeSuccess, "", "Password changed successfully!")
	return nil
}

// UploadPhoto forwards a new profile photo and records its URL in the
// session snapshot.
func (s *ProfileService) UploadPhoto(ctx context.Context, sess *models.Session, ws *Workspace, photo *models.Attachment) (string, error) {
	if photo == nil || photo.Reader == nil {
		return "", appErrors.Validation("Please select a photo to upload.", map[string]string{"photo": "required"})
	}
	if photo.Size > models.MaxPhotoSize {
		return "", appErrors.Validation("File size must be less than 10MB.", map[string]string{"photo": "too large"})
	}
	url, err := s.accounts.UploadPhoto(ctx, sess.Token, photo)
	if err != nil {
		ws.Notices.Error(PageProfile, err)
		return "", err
	}
	sess.User.ProfilePhoto = url
	if err := s.guard.Refresh(ctx, sess); err != nil {
		return "", err
	}
	ws.Notices.Post(PageProfile, models.NoticeSuccess, "", "Photo uploaded successfully!")
	return url, nil
}
