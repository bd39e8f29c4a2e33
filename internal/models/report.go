package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReportType selects which rows a report carries.
type ReportType string

const (
	ReportAttendance ReportType = "Attendance"
	ReportExam       ReportType = "Exam"
	ReportFees       ReportType = "Fees"
)

// Valid reports whether the type is one of the supported kinds.
func (t ReportType) Valid() bool {
	switch t {
	case ReportAttendance, ReportExam, ReportFees:
		return true
	}
	return false
}

// ReportRequest describes a report to generate.
type ReportRequest struct {
	Type      ReportType `json:"type" validate:"required,oneof=Attendance Exam Fees" label:"Report type"`
	StartDate string     `json:"start_date" validate:"required,day,dayonorbefore=EndDate" label:"Start date"`
	EndDate   string     `json:"end_date" validate:"required,day" label:"End date"`
	StudentID string     `json:"student_id,omitempty"`
}

// AttendanceReportRow is one attendance mark in a report.
type AttendanceReportRow struct {
	Date        string           `json:"date"`
	StudentID   string           `json:"student_id"`
	StudentName string           `json:"student_name"`
	Status      AttendanceStatus `json:"status"`
}

// ExamReportRow is one exam outcome in a report.
type ExamReportRow struct {
	Date        string  `json:"date"`
	ExamName    string  `json:"exam_name"`
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	Marks       float64 `json:"marks"`
	Grade       string  `json:"grade"`
}

// FeeReportRow is one fee in a report.
type FeeReportRow struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	Amount      float64   `json:"amount"`
	DueDate     string    `json:"due_date"`
	Status      FeeStatus `json:"status"`
}

// Report is a generated report. Exactly one of the row slices is populated,
// the one selected by Type.
type Report struct {
	ID          string
	Type        ReportType
	StartDate   string
	EndDate     string
	StudentID   string
	GeneratedAt time.Time
	Attendance  []AttendanceReportRow
	Exam        []ExamReportRow
	Fees        []FeeReportRow
}

func (r Report) EntityID() string { return r.ID }

func (r Report) WithID(id string) Report {
	r.ID = id
	return r
}

func (r Report) Normalize() Report { return r }

func (r Report) Draft() Report { return r }

// Len returns the number of rows carried by the active variant.
func (r Report) Len() int {
	switch r.Type {
	case ReportAttendance:
		return len(r.Attendance)
	case ReportExam:
		return len(r.Exam)
	case ReportFees:
		return len(r.Fees)
	}
	return 0
}

type reportWire struct {
	ID          string          `json:"report_id"`
	Type        ReportType      `json:"type"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	StudentID   string          `json:"student_id,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Data        json.RawMessage `json:"data"`
}

// MarshalJSON emits the active variant under "data".
func (r Report) MarshalJSON() ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch r.Type {
	case ReportAttendance:
		data, err = json.Marshal(nonNil(r.Attendance))
	case ReportExam:
		data, err = json.Marshal(nonNil(r.Exam))
	case ReportFees:
		data, err = json.Marshal(nonNil(r.Fees))
	default:
		return nil, fmt.Errorf("unknown report type %q", r.Type)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(reportWire{
		ID:          r.ID,
		Type:        r.Type,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		StudentID:   r.StudentID,
		GeneratedAt: r.GeneratedAt,
		Data:        data,
	})
}

// UnmarshalJSON decodes "data" according to "type".
func (r *Report) UnmarshalJSON(b []byte) error {
	var wire reportWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	out := Report{
		ID:          wire.ID,
		Type:        wire.Type,
		StartDate:   wire.StartDate,
		EndDate:     wire.EndDate,
		StudentID:   wire.StudentID,
		GeneratedAt: wire.GeneratedAt,
	}
	if len(wire.Data) == 0 {
		wire.Data = []byte("[]")
	}
	var err error
	switch wire.Type {
	case ReportAttendance:
		err = json.Unmarshal(wire.Data, &out.Attendance)
	case ReportExam:
		err = json.Unmarshal(wire.Data, &out.Exam)
	case ReportFees:
		err = json.Unmarshal(wire.Data, &out.Fees)
	default:
		return fmt.Errorf("unknown report type %q", wire.Type)
	}
	if err != nil {
		return err
	}
	*r = out
	return nil
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
