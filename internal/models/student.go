package models

// Student is a learner record as exchanged with the backend.
type Student struct {
	ID                    string `json:"_id,omitempty" form:"_id"`
	Username              string `json:"username" form:"username" validate:"required" label:"Username"`
	Email                 string `json:"email" form:"email" validate:"required,email" label:"Email"`
	Phone                 string `json:"phone" form:"phone"`
	FirstName             string `json:"firstName" form:"firstName" validate:"required" label:"First name"`
	LastName              string `json:"lastName" form:"lastName" validate:"required" label:"Last name"`
	DateOfBirth           string `json:"dateOfBirth" form:"dateOfBirth"`
	Gender                string `json:"gender" form:"gender"`
	City                  string `json:"city" form:"city"`
	HomeAddress           string `json:"homeAddress" form:"homeAddress"`
	Department            string `json:"department" form:"department"`
	Semester              int    `json:"semester" form:"semester" validate:"gte=0" label:"Semester"`
	ParentGuardianName    string `json:"parentGuardianName" form:"parentGuardianName"`
	ParentGuardianContact string `json:"parentGuardianContact" form:"parentGuardianContact"`
	EnrollmentDate        string `json:"enrollmentDate" form:"enrollmentDate"`
	EmergencyContact      string `json:"emergencyContact" form:"emergencyContact"`
	ProfilePhoto          string `json:"profilePhoto" form:"profilePhoto"`
}

func (s Student) EntityID() string { return s.ID }

func (s Student) WithID(id string) Student {
	s.ID = id
	return s
}

// Normalize fills missing optional scalars with the N/A placeholder.
func (s Student) Normalize() Student {
	fillNA(&s.Username, &s.Email, &s.Phone, &s.FirstName, &s.LastName, &s.Gender, &s.City,
		&s.HomeAddress, &s.Department, &s.ParentGuardianName, &s.ParentGuardianContact, &s.EmergencyContact)
	s.DateOfBirth = dayOrNA(s.DateOfBirth)
	s.EnrollmentDate = dayOrNA(s.EnrollmentDate)
	return s
}

// Draft strips placeholders so the record can be edited.
func (s Student) Draft() Student {
	clearNA(&s.Username, &s.Email, &s.Phone, &s.FirstName, &s.LastName, &s.DateOfBirth, &s.Gender, &s.City,
		&s.HomeAddress, &s.Department, &s.ParentGuardianName, &s.ParentGuardianContact, &s.EnrollmentDate, &s.EmergencyContact)
	return s
}

// FullName joins first and last name for report rows.
func (s Student) FullName() string {
	d := s.Draft()
	switch {
	case d.FirstName == "" && d.LastName == "":
		return d.Username
	case d.LastName == "":
		return d.FirstName
	case d.FirstName == "":
		return d.LastName
	}
	return d.FirstName + " " + d.LastName
}
