package models

// AttendanceStatus is the mark recorded for a student on a day.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLate    AttendanceStatus = "Late"
	AttendanceExcused AttendanceStatus = "Excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	default:
		return false
	}
}

// AttendanceRecord is a stored attendance mark.
type AttendanceRecord struct {
	ID         string           `json:"_id,omitempty"`
	StudentID  string           `json:"student_id" validate:"required" label:"Student"`
	Department string           `json:"department"`
	Date       string           `json:"date" validate:"required,day" label:"Date"`
	Status     AttendanceStatus `json:"status" validate:"required,oneof=Present Absent Late Excused" label:"Status"`
}

func (a AttendanceRecord) EntityID() string { return a.ID }

func (a AttendanceRecord) WithID(id string) AttendanceRecord {
	a.ID = id
	return a
}

func (a AttendanceRecord) Normalize() AttendanceRecord {
	a.Date = dayOrNA(a.Date)
	return a
}

func (a AttendanceRecord) Draft() AttendanceRecord {
	clearNA(&a.Date)
	return a
}

// AttendanceRow is one line of the attendance sheet being edited.
type AttendanceRow struct {
	StudentID string           `json:"student_id"`
	Name      string           `json:"name"`
	Semester  int              `json:"semester"`
	Status    AttendanceStatus `json:"status"`
}

// AttendanceSheet is the editable roster of a department for a day.
type AttendanceSheet struct {
	Department string          `json:"department"`
	Semester   string          `json:"semester"`
	Date       string          `json:"date"`
	Rows       []AttendanceRow `json:"rows"`
}

// AttendanceSubmission is the payload posted to the backend on save.
type AttendanceSubmission struct {
	Department string          `json:"department" validate:"required" label:"Department"`
	Semester   string          `json:"semester" validate:"required" label:"Semester"`
	Date       string          `json:"date" validate:"required,day" label:"Date"`
	Attendance []AttendanceRow `json:"attendance" validate:"required,min=1" label:"Attendance"`
}
