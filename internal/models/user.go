package models

// UserRole represents the roles an account can hold on the backend.
type UserRole string

const (
	RoleAdmin   UserRole = "Admin"
	RoleTeacher UserRole = "Teacher"
	RoleStudent UserRole = "Student"
	RoleParent  UserRole = "Parent"
)

// User is an account managed from the settings page.
type User struct {
	ID       string   `json:"_id,omitempty"`
	Name     string   `json:"name" validate:"required" label:"Name"`
	Email    string   `json:"email" validate:"required,email" label:"Email"`
	Role     UserRole `json:"role" validate:"required,oneof=Student Teacher Admin Parent" label:"Role"`
	Password string   `json:"password,omitempty" validate:"required_without=ID,omitempty,min=6" label:"Password"`
}

func (u User) EntityID() string { return u.ID }

func (u User) WithID(id string) User {
	u.ID = id
	return u
}

// Normalize never carries a password into the canonical list.
func (u User) Normalize() User {
	u.Password = ""
	fillNA(&u.Name)
	return u
}

func (u User) Draft() User {
	u.Password = ""
	clearNA(&u.Name)
	return u
}
