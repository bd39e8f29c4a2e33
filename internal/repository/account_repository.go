package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/school-portal/internal/apiclient"
	"github.com/noah-isme/school-portal/internal/models"
)

// AccountRepository wraps the backend's /user endpoints.
type AccountRepository struct {
	client *apiclient.Client
}

// NewAccountRepository constructs the repository.
func NewAccountRepository(client *apiclient.Client) *AccountRepository {
	return &AccountRepository{client: client}
}

// Login exchanges credentials for a backend token and profile.
func (r *AccountRepository) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	resp, err := r.client.Do(ctx, apiclient.Request{
		Method:   http.MethodPost,
		Path:     "/user/login",
		Body:     map[string]string{"username": username, "password": password},
		Fallback: "Login failed. Please try again.",
	})
	if err != nil {
		return nil, err
	}
	result, err := apiclient.DecodeObject[models.LoginResult](resp.Body)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Signup registers a new account.
func (r *AccountRepository) Signup(ctx context.Context, req models.SignupRequest) error {
	req.ConfirmPassword = ""
	_, err := r.client.Do(ctx, apiclient.Request{
		Method:   http.MethodPost,
		Path:     "/user/signup",
		Body:     req,
		Fallback: "Signup failed",
	})
	return err
}

// UpdateProfile changes username and/or email of the token's account.
func (r *AccountRepository) UpdateProfile(ctx context.Context, token string, update models.ProfileUpdate) error {
	_, err := r.client.Do(ctx, apiclient.Request{
		Method:   http.MethodPut,
		Path:     "/user/update",
		Token:    token,
		Body:     update,
		Fallback: "Failed to update profile.",
	})
	return err
}

// ChangePassword replaces the account password.
func (r *AccountRepository) ChangePassword(ctx context.Context, token string, req models.ChangePasswordRequest) error {
	_, err := r.client.Do(ctx, apiclient.Request{
		Method:   http.MethodPut,
		Path:     "/user/change-password",
		Token:    token,
		Body:     map[string]string{"currentPassword": req.CurrentPassword, "newPassword": req.NewPassword},
		Fallback: "Failed to change password.",
	})
	return err
}

// UploadPhoto forwards a profile photo and returns its public URL.
func (r *AccountRepository) UploadPhoto(ctx context.Context, token string, photo *models.Attachment) (string, error) {
	photo.Field = "photo"
	resp, err := r.client.Do(ctx, apiclient.Request{
		Method:     http.MethodPost,
		Path:       "/user/upload-photo",
		Token:      token,
		Attachment: photo,
		Fallback:   "Failed to upload photo.",
	})
	if err != nil {
		return "", err
	}
	out, err := apiclient.DecodeObject[models.PhotoUpload](resp.Body)
	if err != nil {
		return "", err
	}
	return out.PhotoURL, nil
}

// SettingsRepository reads and writes the school-wide settings document.
type SettingsRepository struct {
	client *apiclient.Client
	token  string
}

// NewSettingsRepository binds the settings endpoint to token.
func NewSettingsRepository(client *apiclient.Client, token string) *SettingsRepository {
	return &SettingsRepository{client: client, token: token}
}

// Get fetches the settings document.
func (r *SettingsRepository) Get(ctx context.Context) (*models.SchoolSettings, error) {
	resp, err := r.client.Do(ctx, apiclient.Request{
		Method:   http.MethodGet,
		Path:     "/settings",
		Token:    r.token,
		Fallback: "Failed to load settings",
	})
	if err != nil {
		return nil, err
	}
	settings, ok, err := apiclient.DecodeRecord[models.SchoolSettings](resp.Body, "settings")
	if err != nil {
		return nil, err
	}
	if !ok {
		settings, err = apiclient.DecodeObject[models.SchoolSettings](resp.Body)
		if err != nil {
			return nil, err
		}
	}
	settings = settings.Normalize()
	return &settings, nil
}

// Save stores the settings document and returns the stored copy.
func (r *SettingsRepository) Save(ctx context.Context, settings models.SchoolSettings) (*models.SchoolSettings, error) {
	resp, err := r.client.Do(ctx, apiclient.Request{
		Method:   http.MethodPut,
		Path:     "/settings",
		Token:    r.token,
		Body:     settings,
		Fallback: "Failed to save settings",
	})
	if err != nil {
		return nil, err
	}
	stored, ok, err := apiclient.DecodeRecord[models.SchoolSettings](resp.Body, "settings", "updatedSettings")
	if err != nil {
		return nil, err
	}
	if !ok {
		stored = settings
	}
	stored = stored.Normalize()
	return &stored, nil
}
