package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal/internal/form"
	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

// AttendanceService backs the attendance page: a per-workspace sheet of
// marks for one department and semester.
type AttendanceService struct {
	validator *form.Validator
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(validator *form.Validator, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = form.NewValidator()
	}
	return &AttendanceService{validator: validator, logger: logger, now: time.Now}
}

// Departments lists the departments attendance can be taken for.
func (s *AttendanceService) Departments(ctx context.Context, ws *Workspace) []string {
	departments, err := ws.Directory().Departments(ctx)
	if err != nil {
		s.logger.Warn("failed to load departments", zap.Error(err))
		ws.Notices.Error(PageAttendance, err)
		return []string{}
	}
	return departments
}

// LoadSheet builds a sheet of every student in department and semester,
// each marked Present. The student list is refetched so the roster is current.
func (s *AttendanceService) LoadSheet(ctx context.Context, ws *Workspace, department, semester string) (*models.AttendanceSheet, error) {
	if department == "" || semester == "" {
		return nil, appErrors.Validation("Department and semester are required", map[string]string{
			"department": "Department is required",
			"semester":   "Semester is required",
		})
	}
	_ = ws.Students.Mount(ctx)

	sheet := &models.AttendanceSheet{
		Department: department,
		Semester:   semester,
		Date:       models.Today(s.now()),
		Rows:       []models.AttendanceRow{},
	}
	for _, st := range ws.Students.Rows() {
		if st.Department != department || strconv.Itoa(st.Semester) != semester {
			continue
		}
		sheet.Rows = append(sheet.Rows, models.AttendanceRow{
			StudentID: st.ID,
			Name:      st.FullName(),
			Semester:  st.Semester,
			Status:    models.AttendancePresent,
		})
	}

	ws.sheetMu.Lock()
	ws.sheet = sheet
	ws.sheetMu.Unlock()
	return copySheet(sheet), nil
}

// Sheet returns the sheet being edited, if any.
func (s *AttendanceService) Sheet(ws *Workspace) (*models.AttendanceSheet, error) {
	ws.sheetMu.Lock()
	defer ws.sheetMu.Unlock()
	if ws.sheet == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance sheet loaded")
	}
	return copySheet(ws.sheet), nil
}

// SetStatus changes one student's mark on the loaded sheet.
func (s *AttendanceService) SetStatus(ws *Workspace, studentID string, status models.AttendanceStatus) (*models.AttendanceSheet, error) {
	if !status.Valid() {
		return nil, appErrors.Validation("Status must be one of Present, Absent, Late, Excused", map[string]string{"status": "invalid"})
	}
	ws.sheetMu.Lock()
	defer ws.sheetMu.Unlock()
	if ws.sheet == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no attendance sheet loaded")
	}
	for i := range ws.sheet.Rows {
		if ws.sheet.Rows[i].StudentID == studentID {
			ws.sheet.Rows[i].Status = status
			return copySheet(ws.sheet), nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not on the sheet")
}

// SaveSheet posts the loaded sheet for date. An empty date means today.
func (s *AttendanceService) SaveSheet(ctx context.Context, ws *Workspace, date string) error {
	sheet, err := s.Sheet(ws)
	if err != nil {
		return err
	}
	if date == "" {
		date = models.Today(s.now())
	}
	submission := models.AttendanceSubmission{
		Department: sheet.Department,
		Semester:   sheet.Semester,
		Date:       date,
		Attendance: sheet.Rows,
	}
	if err := s.validator.Struct(submission); err != nil {
		return err
	}
	if _, _, err := ws.attendance.Post(ctx, "/attendance", submission); err != nil {
		s.logger.Warn("failed to save attendance", zap.String("department", sheet.Department), zap.Error(err))
		ws.Notices.Error(PageAttendance, err)
		return err
	}

	ws.sheetMu.Lock()
	if ws.sheet != nil {
		ws.sheet.Date = date
	}
	ws.sheetMu.Unlock()
	ws.Notices.Post(PageAttendance, models.NoticeSuccess, "", "Attendance saved successfully!")
	return nil
}

// Records lists stored attendance marks, optionally for one student.
func (s *AttendanceService) Records(ctx context.Context, ws *Workspace, studentID string) ([]models.AttendanceRecord, error) {
	records, err := ws.attendance.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.AttendanceRecord, 0, len(records))
	for _, r := range records {
		if studentID != "" && r.StudentID != studentID {
			continue
		}
		out = append(out, r.Normalize())
	}
	return out, nil
}

func copySheet(in *models.AttendanceSheet) *models.AttendanceSheet {
	out := *in
	out.Rows = append([]models.AttendanceRow(nil), in.Rows...)
	return &out
}
