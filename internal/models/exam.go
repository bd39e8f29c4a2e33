package models

// DefaultMaxMarks pre-fills the exam form.
const DefaultMaxMarks = 100

// Exam is a scheduled assessment for a course.
type Exam struct {
	ID       string `json:"_id,omitempty"`
	ExamName string `json:"exam_name" validate:"required" label:"Exam name"`
	CourseID string `json:"course_id" validate:"required" label:"Course"`
	Date     string `json:"date" validate:"required,day" label:"Date"`
	MaxMarks int    `json:"max_marks" validate:"positive" label:"Max marks"`
}

func (e Exam) EntityID() string { return e.ID }

func (e Exam) WithID(id string) Exam {
	e.ID = id
	return e
}

func (e Exam) Normalize() Exam {
	e.Date = dayOrNA(e.Date)
	fillNA(&e.CourseID)
	return e
}

func (e Exam) Draft() Exam {
	clearNA(&e.Date, &e.CourseID)
	return e
}

// NewExamDraft is the blank exam form.
func NewExamDraft() Exam {
	return Exam{MaxMarks: DefaultMaxMarks}
}

// ExamResult is one student's outcome for an exam.
type ExamResult struct {
	ID          string  `json:"_id,omitempty"`
	ExamID      string  `json:"exam_id"`
	ExamName    string  `json:"exam_name"`
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	Marks       float64 `json:"marks"`
	Grade       string  `json:"grade"`
	Date        string  `json:"date"`
}

func (r ExamResult) EntityID() string { return r.ID }

func (r ExamResult) WithID(id string) ExamResult {
	r.ID = id
	return r
}

func (r ExamResult) Normalize() ExamResult {
	fillNA(&r.ExamName, &r.StudentName, &r.Grade)
	r.Date = dayOrNA(r.Date)
	return r
}

func (r ExamResult) Draft() ExamResult {
	clearNA(&r.ExamName, &r.StudentName, &r.Grade, &r.Date)
	return r
}
