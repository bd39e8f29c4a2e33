package models

import "strings"

// Teacher is a staff record as exchanged with the backend.
type Teacher struct {
	ID                    string   `json:"_id,omitempty" form:"_id"`
	Username              string   `json:"username" form:"username" validate:"required" label:"Username"`
	Email                 string   `json:"email" form:"email" validate:"required,email" label:"Email"`
	Phone                 string   `json:"phone" form:"phone"`
	FirstName             string   `json:"firstName" form:"firstName" validate:"required" label:"First name"`
	LastName              string   `json:"lastName" form:"lastName" validate:"required" label:"Last name"`
	DateOfBirth           string   `json:"dateOfBirth" form:"dateOfBirth"`
	Gender                string   `json:"gender" form:"gender"`
	City                  string   `json:"city" form:"city"`
	HomeAddress           string   `json:"homeAddress" form:"homeAddress"`
	Department            string   `json:"department" form:"department"`
	EmployeeID            string   `json:"employeeId" form:"employeeId"`
	HireDate              string   `json:"hireDate" form:"hireDate"`
	Qualifications        []string `json:"qualifications" form:"qualifications"`
	SubjectSpecialization []string `json:"subjectSpecialization" form:"subjectSpecialization"`
	EmergencyContact      string   `json:"emergencyContact" form:"emergencyContact"`
	ProfilePhoto          string   `json:"profilePhoto" form:"profilePhoto"`
}

func (t Teacher) EntityID() string { return t.ID }

func (t Teacher) WithID(id string) Teacher {
	t.ID = id
	return t
}

// Normalize fills missing optional scalars with the N/A placeholder.
func (t Teacher) Normalize() Teacher {
	fillNA(&t.Username, &t.Email, &t.Phone, &t.FirstName, &t.LastName, &t.Gender, &t.City,
		&t.HomeAddress, &t.Department, &t.EmployeeID, &t.EmergencyContact)
	t.DateOfBirth = dayOrNA(t.DateOfBirth)
	t.HireDate = dayOrNA(t.HireDate)
	if t.Qualifications == nil {
		t.Qualifications = []string{}
	}
	if t.SubjectSpecialization == nil {
		t.SubjectSpecialization = []string{}
	}
	return t
}

// Draft strips placeholders so the record can be edited.
func (t Teacher) Draft() Teacher {
	clearNA(&t.Username, &t.Email, &t.Phone, &t.FirstName, &t.LastName, &t.DateOfBirth, &t.Gender, &t.City,
		&t.HomeAddress, &t.Department, &t.EmployeeID, &t.HireDate, &t.EmergencyContact)
	return t
}

// TeacherRef is the populated teacher reference embedded in events.
type TeacherRef struct {
	ID        string `json:"_id,omitempty"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Ref reduces a teacher to the reference shape used by events.
func (t Teacher) Ref() TeacherRef {
	d := t.Draft()
	return TeacherRef{ID: d.ID, Username: d.Username, FirstName: d.FirstName, LastName: d.LastName}
}

// Label renders "First Last (username)", degrading when parts are missing.
func (r TeacherRef) Label() string {
	name := strings.TrimSpace(r.FirstName + " " + r.LastName)
	switch {
	case name == "" && r.Username == "":
		return r.ID
	case name == "":
		return r.Username
	case r.Username == "":
		return name
	}
	return name + " (" + r.Username + ")"
}
