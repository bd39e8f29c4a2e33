package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds the credentials submitted on the login page.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required" label:"Username"`
	Password string `json:"password" form:"password" validate:"required" label:"Password"`
	Remember bool   `json:"remember" form:"remember"`
}

// SignupRequest registers a new account on the backend.
type SignupRequest struct {
	Username        string `json:"username" validate:"required" label:"Username"`
	Email           string `json:"email" validate:"required,email" label:"Email"`
	Phone           string `json:"phone" validate:"required" label:"Phone"`
	Password        string `json:"password" validate:"required" label:"Password"`
	ConfirmPassword string `json:"confirmPassword,omitempty" validate:"eqfield=Password" label:"Confirm password"`
	UserType        string `json:"userType"`
}

// DefaultSignupUserType is assigned to self-registered accounts.
const DefaultSignupUserType = "user"

// UserProfile is the authenticated identity reported by the backend.
type UserProfile struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	UserType     string `json:"userType"`
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
}

// LoginResult is the backend reply to a successful login. The profile
// fields arrive flattened next to the token.
type LoginResult struct {
	Token string `json:"token" validate:"required"`
	UserProfile
}

// ProfileUpdate changes the editable fields of the signed-in account. At
// least one field must be set; empty ones are left unchanged.
type ProfileUpdate struct {
	Username string `json:"username,omitempty" label:"Username"`
	Email    string `json:"email,omitempty" validate:"omitempty,email" label:"Email"`
}

// Empty reports whether nothing would be updated.
func (p ProfileUpdate) Empty() bool {
	return p.Username == "" && p.Email == ""
}

// PhotoUpload is the backend reply to a profile photo upload.
type PhotoUpload struct {
	PhotoURL string `json:"photoUrl"`
}

// ChangePasswordRequest replaces the signed-in account's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required" label:"Current password"`
	NewPassword     string `json:"newPassword" validate:"required" label:"New password"`
	ConfirmPassword string `json:"confirmPassword,omitempty" validate:"required,eqfield=NewPassword" label:"Confirm password"`
}

// SessionClaims is the payload of the signed session cookie.
type SessionClaims struct {
	SessionID string       `json:"sid"`
	Scope     SessionScope `json:"scope"`
	jwt.RegisteredClaims
}
